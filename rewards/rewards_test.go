// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bastionstake/bastion/bastion"
)

func days(n uint64) uint64 {
	return n * bastion.DaySeconds
}

func TestAnnualRate(t *testing.T) {
	tests := []struct {
		days uint64
		want uint64
	}{
		{0, 2},
		{1, 2},
		{30, 2},
		{31, 5},
		{90, 5},
		{91, 10},
		{180, 10},
		{181, 12},
		{365, 12},
		{366, 15},
		{730, 15},
		{731, 20},
		{10000, 20},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AnnualRate(tt.days), "days=%d", tt.days)
	}
}

func TestCalc(t *testing.T) {
	// principal of 36500 cancels the divisor, making results exact
	assert.Equal(t, int64(450), Calc(big.NewInt(36500), days(90)).Int64())
	assert.Equal(t, int64(4380), Calc(big.NewInt(36500), days(365)).Int64())
	assert.Equal(t, int64(14620), Calc(big.NewInt(36500), days(731)).Int64())

	// floor division truncates
	assert.Equal(t, int64(0), Calc(big.NewInt(365), days(30)).Int64())  // 365*2*30/36500 = 0.6
	assert.Equal(t, int64(6), Calc(big.NewInt(1000), days(45)).Int64()) // 1000*5*45/36500 = 6.16
	assert.Equal(t, int64(6), Calc(big.NewInt(3650), days(30)).Int64()) // exact
}

func TestCalcTruncatesPartialDays(t *testing.T) {
	principal := big.NewInt(1e18)

	full := Calc(principal, days(90))
	almost := Calc(principal, days(90)+bastion.DaySeconds-1)
	assert.Equal(t, full, almost)
}

func TestCalcTotal(t *testing.T) {
	assert.Equal(t, int64(0), Calc(nil, days(1000)).Int64())
	assert.Equal(t, int64(0), Calc(big.NewInt(0), days(1000)).Int64())
	assert.Equal(t, int64(0), Calc(big.NewInt(-5), days(1000)).Int64())
	assert.Equal(t, int64(0), Calc(big.NewInt(1e18), 0).Int64())
}

func TestCalcMonotonicInDuration(t *testing.T) {
	principal := big.NewInt(1e18)

	prev := new(big.Int)
	for d := uint64(0); d <= 800; d++ {
		reward := Calc(principal, days(d))
		assert.True(t, reward.Cmp(prev) >= 0, "reward decreased at day %d", d)
		prev = reward
	}
}

func TestCalcMonotonicInPrincipal(t *testing.T) {
	elapsed := days(100)

	prev := new(big.Int)
	principal := big.NewInt(1)
	for range 40 {
		reward := Calc(principal, elapsed)
		assert.True(t, reward.Cmp(prev) >= 0, "reward decreased at principal %v", principal)
		prev = reward
		principal = new(big.Int).Mul(principal, big.NewInt(3))
	}
}

func TestPenalize(t *testing.T) {
	assert.Equal(t, int64(90), Penalize(big.NewInt(100), 10).Int64())
	assert.Equal(t, int64(100), Penalize(big.NewInt(100), 0).Int64())
	assert.Equal(t, int64(0), Penalize(big.NewInt(100), 100).Int64())

	// floored cut keeps the remainder with the staker
	assert.Equal(t, int64(9), Penalize(big.NewInt(10), 15).Int64()) // cut = 1.5 -> 1

	assert.Equal(t, int64(0), Penalize(nil, 10).Int64())
	assert.Equal(t, int64(0), Penalize(big.NewInt(0), 10).Int64())
}
