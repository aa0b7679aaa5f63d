// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rewards implements the tiered reward schedule for staked value.
//
// The annual rate is a step function keyed by total elapsed holding time,
// not by time spent within a tier, and rewards accrue linearly without
// compounding. The schedule is part of the ledger contract and must not
// be reshaped for economic plausibility.
package rewards

import (
	"math/big"

	"github.com/bastionstake/bastion/bastion"
)

// tier is one row of the schedule, bounded by a closed upper bound
// in whole days.
type tier struct {
	maxDays uint64
	rate    uint64 // annual rate in percent
}

var schedule = []tier{
	{30, 2},
	{90, 5},
	{180, 10},
	{365, 12},
	{730, 15},
}

// longTermRate applies beyond the last schedule bound.
const longTermRate = 20

var rateDivisor = new(big.Int).SetUint64(bastion.YearDays * 100)

// AnnualRate selects the annual rate in percent for a holding
// duration given in whole days.
func AnnualRate(elapsedDays uint64) uint64 {
	for _, t := range schedule {
		if elapsedDays <= t.maxDays {
			return t.rate
		}
	}
	return longTermRate
}

// Calc computes the reward accrued by principal over the elapsed
// duration in seconds.
//
// Elapsed time is truncated to whole days before the rate lookup and the
// pro-ration, and the final division floors. Calc is total: it returns 0
// for a nil, zero or negative principal and never fails.
func Calc(principal *big.Int, elapsed uint64) *big.Int {
	if principal == nil || principal.Sign() <= 0 {
		return new(big.Int)
	}
	days := elapsed / bastion.DaySeconds

	// reward = principal * rate * days / (365 * 100)
	reward := new(big.Int).SetUint64(AnnualRate(days) * days)
	reward.Mul(reward, principal)
	return reward.Div(reward, rateDivisor)
}

// Penalize reduces a reward by the given percentage, flooring the cut.
// Principal is never penalized, only reward passes through here.
func Penalize(reward *big.Int, percent uint64) *big.Int {
	if reward == nil || reward.Sign() <= 0 {
		return new(big.Int)
	}
	cut := new(big.Int).SetUint64(percent)
	cut.Mul(cut, reward)
	cut.Div(cut, big.NewInt(100))
	return new(big.Int).Sub(reward, cut)
}
