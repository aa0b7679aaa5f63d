// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"math/big"

	"github.com/bastionstake/bastion/bastion"
	"github.com/bastionstake/bastion/vault/faults"
)

// Access gates. Pure predicates, no side effects.

func requireAdmin(cfg *SystemConfig, caller bastion.Address) error {
	if caller != cfg.Admin {
		return faults.New(faults.Unauthorized, "caller is not the administrator")
	}
	return nil
}

func requireNotPaused(cfg *SystemConfig) error {
	if cfg.Paused {
		return faults.New(faults.SystemPaused, "deposits are paused")
	}
	return nil
}

func requireMinAmount(amount, floor *big.Int) error {
	if amount == nil || amount.Cmp(floor) < 0 {
		return faults.Newf(faults.InsufficientAmount, "amount below minimum stake of %v", floor)
	}
	return nil
}

func requireStake(entry *Entry) error {
	if entry.IsEmpty() {
		return faults.New(faults.NoStake, "no active stake for account")
	}
	return nil
}
