// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bastion

import "math/big"

// Constants of the staking ledger.
const (
	DaySeconds uint64 = 24 * 60 * 60 // seconds per accrual day.
	YearDays   uint64 = 365          // days per accrual year.

	// MinStakeDurationFloor is the lowest value the minimum stake duration
	// can be configured to.
	MinStakeDurationFloor uint64 = DaySeconds

	// InitialMinStakeDuration is the minimum stake duration a fresh vault
	// starts with.
	InitialMinStakeDuration uint64 = 30 * DaySeconds

	// EarlyExitPenaltyPercent is deducted from the accrued reward when a
	// stake is withdrawn before the minimum duration has passed.
	EarlyExitPenaltyPercent uint64 = 10
)

// InitialMinStake is the smallest deposit acceptable for Stake/AddStake,
// in base units, applied when a fresh vault is initialized.
var InitialMinStake = big.NewInt(1e18)
