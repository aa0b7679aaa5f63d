// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package treasury

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastionstake/bastion/bastion"
	"github.com/bastionstake/bastion/kv"
)

var (
	acc1 = bastion.MustParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	acc2 = bastion.MustParseAddress("0xd3ae78222beadb038203be21ed5ce7c9b1bff602")
)

func TestReleaseAccumulates(t *testing.T) {
	trs := New(kv.NewMem())

	totals, err := trs.Totals()
	require.NoError(t, err)
	assert.Equal(t, int64(0), totals.Released.Int64())
	assert.Equal(t, uint64(0), totals.Disbursements)

	require.NoError(t, trs.Release(acc1, big.NewInt(100)))
	require.NoError(t, trs.Release(acc1, big.NewInt(50)))
	require.NoError(t, trs.Release(acc2, big.NewInt(7)))

	totals, err = trs.Totals()
	require.NoError(t, err)
	assert.Equal(t, int64(157), totals.Released.Int64())
	assert.Equal(t, uint64(3), totals.Disbursements)

	released, err := trs.ReleasedTo(acc1)
	require.NoError(t, err)
	assert.Equal(t, int64(150), released.Int64())

	released, err = trs.ReleasedTo(acc2)
	require.NoError(t, err)
	assert.Equal(t, int64(7), released.Int64())
}

func TestReleaseRejectsBadInput(t *testing.T) {
	trs := New(kv.NewMem())

	assert.Error(t, trs.Release(bastion.Address{}, big.NewInt(1)))
	assert.Error(t, trs.Release(acc1, nil))
	assert.Error(t, trs.Release(acc1, big.NewInt(0)))
	assert.Error(t, trs.Release(acc1, big.NewInt(-1)))

	totals, err := trs.Totals()
	require.NoError(t, err)
	assert.Equal(t, int64(0), totals.Released.Int64())
	assert.Equal(t, uint64(0), totals.Disbursements)
}

func TestTallySurvivesReopen(t *testing.T) {
	store := kv.NewMem()

	trs := New(store)
	require.NoError(t, trs.Release(acc1, big.NewInt(934)))

	reopened := New(store)
	totals, err := reopened.Totals()
	require.NoError(t, err)
	assert.Equal(t, int64(934), totals.Released.Int64())
	assert.Equal(t, uint64(1), totals.Disbursements)

	released, err := reopened.ReleasedTo(acc1)
	require.NoError(t, err)
	assert.Equal(t, int64(934), released.Int64())
}
