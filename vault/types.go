// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"math/big"

	"github.com/bastionstake/bastion/bastion"
)

// Entry is the ledger record of one account.
// An account with no active stake has no stored entry at all;
// absence reads back as the zero entry.
type Entry struct {
	Principal   *big.Int
	DepositTime uint64 // unix seconds of the latest deposit
}

// IsEmpty returns whether the entry can be treated as empty.
func (e *Entry) IsEmpty() bool {
	return (e.Principal == nil || e.Principal.Sign() == 0) && e.DepositTime == 0
}

func (e *Entry) Copy() *Entry {
	cpy := *e
	if e.Principal != nil {
		cpy.Principal = new(big.Int).Set(e.Principal)
	}
	return &cpy
}

// SystemConfig holds the administrator-controlled parameters.
type SystemConfig struct {
	Admin            bastion.Address
	Paused           bool
	MinStakeDuration uint64 // seconds a stake must be held before unstaking
}

func (c *SystemConfig) Copy() *SystemConfig {
	cpy := *c
	return &cpy
}

// Totals aggregates the ledger across all accounts.
type Totals struct {
	TotalStaked *big.Int
	Accounts    uint64
}

func (t *Totals) Copy() *Totals {
	cpy := *t
	if t.TotalStaked != nil {
		cpy.TotalStaked = new(big.Int).Set(t.TotalStaked)
	}
	return &cpy
}

// StakeInfo is the read model of one account's position.
type StakeInfo struct {
	Principal   *big.Int
	Reward      *big.Int // accrued so far, not yet paid
	DepositTime uint64
}

// Payout reports the amounts released by an unstake.
type Payout struct {
	Principal *big.Int
	Reward    *big.Int
}

// Total returns principal plus reward.
func (p *Payout) Total() *big.Int {
	return new(big.Int).Add(p.Principal, p.Reward)
}

// Summary is the read model of the whole ledger.
type Summary struct {
	TotalStaked      *big.Int
	Accounts         uint64
	Custody          *big.Int
	Paused           bool
	MinStakeDuration uint64
}
