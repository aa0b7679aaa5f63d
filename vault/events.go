// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"math/big"

	"github.com/bastionstake/bastion/bastion"
)

// EventKind tags what a ledger event reports.
type EventKind uint8

const (
	KindStaked EventKind = iota
	KindStakeAdded
	KindUnstaked
	KindAdminChanged
	KindPaused
	KindUnpaused
	KindDurationChanged
	KindReserveDeposited
)

func (k EventKind) String() string {
	switch k {
	case KindStaked:
		return "staked"
	case KindStakeAdded:
		return "stake_added"
	case KindUnstaked:
		return "unstaked"
	case KindAdminChanged:
		return "admin_changed"
	case KindPaused:
		return "paused"
	case KindUnpaused:
		return "unpaused"
	case KindDurationChanged:
		return "duration_changed"
	case KindReserveDeposited:
		return "reserve_deposited"
	default:
		return "unknown"
	}
}

// ParseEventKind maps the string form back to the kind.
func ParseEventKind(s string) (EventKind, bool) {
	for k := KindStaked; k <= KindReserveDeposited; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Event reports a committed state change. Events are emitted strictly
// after the change landed in storage, so consumers always observe the
// already-committed state.
type Event struct {
	Kind      EventKind
	Account   bastion.Address // staker, or the new administrator for admin changes
	Amount    *big.Int        // principal moved, reserve deposited, or the new duration
	Reward    *big.Int        // set on unstake only
	Timestamp uint64
}

// Notifier consumes ledger events.
//
// Notify runs inside the emitting operation and must not call back
// into state-mutating vault operations.
type Notifier interface {
	Notify(ev *Event)
}
