// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastionstake/bastion/bastion"
	"github.com/bastionstake/bastion/journal"
	"github.com/bastionstake/bastion/kv"
	"github.com/bastionstake/bastion/vault"
)

var admin = bastion.MustParseAddress("0xf077b491b355e64048ce21e3a6fc4751eeea77fa")

type treasuryStub struct{}

func (treasuryStub) Release(_ bastion.Address, _ *big.Int) error { return nil }

func initAPIServer(t *testing.T) (*httptest.Server, *journal.Journal) {
	db, err := journal.NewMem()
	require.NoError(t, err)

	vlt, err := vault.New(kv.NewMem(), treasuryStub{}, vault.Options{
		Admin:    admin,
		MinStake: big.NewInt(1),
	}, db)
	require.NoError(t, err)

	router := mux.NewRouter()
	NewAPI(New(vlt, db)).Mount(router, "/health")

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts, db
}

func TestHealth(t *testing.T) {
	ts, db := initAPIServer(t)
	defer db.Close()

	var status Status
	respBody, statusCode := httpGet(t, ts.URL+"/health")
	require.NoError(t, json.Unmarshal(respBody, &status))
	assert.Equal(t, http.StatusOK, statusCode)
	assert.True(t, status.Healthy)
	assert.True(t, status.LedgerAccessible)
	assert.True(t, status.JournalAccessible)
	assert.Equal(t, uint64(0), status.JournalHead)

	require.NoError(t, db.Append(&vault.Event{
		Kind:      vault.KindStaked,
		Account:   admin,
		Amount:    big.NewInt(100),
		Timestamp: 1000,
	}))

	respBody, statusCode = httpGet(t, ts.URL+"/health")
	require.NoError(t, json.Unmarshal(respBody, &status))
	assert.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, uint64(1), status.JournalHead)
}

func TestHealthDegradedJournal(t *testing.T) {
	ts, db := initAPIServer(t)
	db.Close()

	var status Status
	respBody, statusCode := httpGet(t, ts.URL+"/health")
	require.NoError(t, json.Unmarshal(respBody, &status))
	assert.Equal(t, http.StatusServiceUnavailable, statusCode)
	assert.False(t, status.Healthy)
	assert.True(t, status.LedgerAccessible)
	assert.False(t, status.JournalAccessible)
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	r, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}
	return r, res.StatusCode
}
