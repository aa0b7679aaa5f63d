// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package system

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/bastionstake/bastion/bastion"
)

// Detail is the marshalable system config.
type Detail struct {
	Admin            bastion.Address      `json:"admin"`
	Paused           bool                 `json:"paused"`
	MinStakeDuration uint64               `json:"minStakeDuration"`
	MinStake         math.HexOrDecimal256 `json:"minStake,string"`
}

// PauseBody requests a pause flip on behalf of caller.
type PauseBody struct {
	Caller bastion.Address `json:"caller"`
}

// PauseResult reports the pause state after the flip.
type PauseResult struct {
	Paused bool `json:"paused"`
}

// AdminBody hands the administrator role to admin.
type AdminBody struct {
	Caller bastion.Address `json:"caller"`
	Admin  bastion.Address `json:"admin"`
}

// DurationBody sets the minimum stake duration, in seconds.
type DurationBody struct {
	Caller   bastion.Address `json:"caller"`
	Duration uint64          `json:"duration"`
}

// ReserveBody pre-funds the reward reserve.
type ReserveBody struct {
	Caller bastion.Address       `json:"caller"`
	Amount *math.HexOrDecimal256 `json:"amount,string"`
}

// ReserveResult reports total custody after the deposit.
type ReserveResult struct {
	Custody math.HexOrDecimal256 `json:"custody,string"`
}
