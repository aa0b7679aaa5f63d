// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package system_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/bastionstake/bastion/api/system"
	"github.com/bastionstake/bastion/bastion"
	"github.com/bastionstake/bastion/kv"
	"github.com/bastionstake/bastion/vault"
)

var (
	admin    = bastion.MustParseAddress("0xf077b491b355e64048ce21e3a6fc4751eeea77fa")
	acc1     = bastion.MustParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	stranger = bastion.MustParseAddress("0xd3ae78222beadb038203be21ed5ce7c9b1bff602")
)

const t0 = uint64(1735689600)

type treasuryStub struct{}

func (treasuryStub) Release(bastion.Address, *big.Int) error { return nil }

func initSystemServer(t *testing.T) *httptest.Server {
	vlt, err := vault.New(kv.NewMem(), treasuryStub{}, vault.Options{
		Admin:    admin,
		MinStake: big.NewInt(1),
	})
	if err != nil {
		t.Fatal(err)
	}
	router := mux.NewRouter()
	system.New(vlt, func() uint64 { return t0 }).Mount(router, "/system")
	return httptest.NewServer(router)
}

func TestSystem(t *testing.T) {
	ts := initSystemServer(t)
	defer ts.Close()

	getConfig(t, ts)
	togglePause(t, ts)
	setMinStakeDuration(t, ts)
	depositReserve(t, ts)
	setAdmin(t, ts)
}

func getConfig(t *testing.T, ts *httptest.Server) {
	body, status := httpGet(t, ts.URL+"/system")
	assert.Equal(t, http.StatusOK, status)

	var detail system.Detail
	if err := json.Unmarshal(body, &detail); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, admin, detail.Admin)
	assert.False(t, detail.Paused)
	assert.Equal(t, 30*uint64(86400), detail.MinStakeDuration)
	assert.Equal(t, "1", (*big.Int)(&detail.MinStake).String())
}

func togglePause(t *testing.T, ts *httptest.Server) {
	_, status := httpPost(t, ts.URL+"/system/pause", marshal(t, system.PauseBody{Caller: stranger}))
	assert.Equal(t, http.StatusForbidden, status)

	body, status := httpPost(t, ts.URL+"/system/pause", marshal(t, system.PauseBody{Caller: admin}))
	assert.Equal(t, http.StatusOK, status)
	var result system.PauseResult
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatal(err)
	}
	assert.True(t, result.Paused)

	body, _ = httpPost(t, ts.URL+"/system/pause", marshal(t, system.PauseBody{Caller: admin}))
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatal(err)
	}
	assert.False(t, result.Paused, "second flip unpauses")
}

func setMinStakeDuration(t *testing.T, ts *httptest.Server) {
	body, status := httpPost(t, ts.URL+"/system/min-stake-duration", marshal(t, system.DurationBody{Caller: admin, Duration: 7 * 86400}))
	assert.Equal(t, http.StatusOK, status)
	var detail system.Detail
	if err := json.Unmarshal(body, &detail); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 7*uint64(86400), detail.MinStakeDuration)

	// below the one day floor
	_, status = httpPost(t, ts.URL+"/system/min-stake-duration", marshal(t, system.DurationBody{Caller: admin, Duration: 3600}))
	assert.Equal(t, http.StatusBadRequest, status)

	_, status = httpPost(t, ts.URL+"/system/min-stake-duration", marshal(t, system.DurationBody{Caller: stranger, Duration: 7 * 86400}))
	assert.Equal(t, http.StatusForbidden, status)
}

func depositReserve(t *testing.T, ts *httptest.Server) {
	body, status := httpPost(t, ts.URL+"/system/reserve", []byte(`{"caller": "`+admin.String()+`", "amount": "500"}`))
	assert.Equal(t, http.StatusOK, status)
	var result system.ReserveResult
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "500", (*big.Int)(&result.Custody).String())

	_, status = httpPost(t, ts.URL+"/system/reserve", []byte(`{"caller": "`+admin.String()+`"}`))
	assert.Equal(t, http.StatusBadRequest, status, "missing amount")

	_, status = httpPost(t, ts.URL+"/system/reserve", []byte(`{"caller": "`+admin.String()+`", "amount": "0"}`))
	assert.Equal(t, http.StatusBadRequest, status, "zero amount")

	_, status = httpPost(t, ts.URL+"/system/reserve", []byte(`{"caller": "`+stranger.String()+`", "amount": "500"}`))
	assert.Equal(t, http.StatusForbidden, status)

	_, status = httpPost(t, ts.URL+"/system/reserve", []byte(`{"amount": "500", "extra": 1}`))
	assert.Equal(t, http.StatusBadRequest, status, "unknown field")
}

func setAdmin(t *testing.T, ts *httptest.Server) {
	_, status := httpPost(t, ts.URL+"/system/administrator", marshal(t, system.AdminBody{Caller: admin}))
	assert.Equal(t, http.StatusBadRequest, status, "zero identity")

	_, status = httpPost(t, ts.URL+"/system/administrator", marshal(t, system.AdminBody{Caller: stranger, Admin: acc1}))
	assert.Equal(t, http.StatusForbidden, status)

	body, status := httpPost(t, ts.URL+"/system/administrator", marshal(t, system.AdminBody{Caller: admin, Admin: acc1}))
	assert.Equal(t, http.StatusOK, status)
	var detail system.Detail
	if err := json.Unmarshal(body, &detail); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, acc1, detail.Admin)

	// the old administrator lost the role
	_, status = httpPost(t, ts.URL+"/system/pause", marshal(t, system.PauseBody{Caller: admin}))
	assert.Equal(t, http.StatusForbidden, status)

	_, status = httpPost(t, ts.URL+"/system/pause", marshal(t, system.PauseBody{Caller: acc1}))
	assert.Equal(t, http.StatusOK, status)
}

func marshal(t *testing.T, v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func httpPost(t *testing.T, url string, data []byte) ([]byte, int) {
	res, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	r, err := io.ReadAll(res.Body)
	res.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	return r, res.StatusCode
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	r, err := io.ReadAll(res.Body)
	res.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	return r, res.StatusCode
}
