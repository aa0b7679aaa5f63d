// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/bastionstake/bastion/bastion"
	"github.com/bastionstake/bastion/journal"
)

// EventMessage is pushed to a subscriber for every journaled ledger
// event past its position.
type EventMessage struct {
	Sequence  uint64                `json:"sequence"`
	ID        bastion.Bytes32       `json:"id"`
	Kind      string                `json:"kind"`
	Account   bastion.Address       `json:"account"`
	Amount    *math.HexOrDecimal256 `json:"amount,string"`
	Reward    *math.HexOrDecimal256 `json:"reward,string"`
	Timestamp uint64                `json:"timestamp"`
}

func convertRecord(rec *journal.Record) *EventMessage {
	return &EventMessage{
		Sequence:  rec.Sequence,
		ID:        rec.ID,
		Kind:      rec.Kind.String(),
		Account:   rec.Account,
		Amount:    (*math.HexOrDecimal256)(rec.Amount),
		Reward:    (*math.HexOrDecimal256)(rec.Reward),
		Timestamp: rec.Timestamp,
	}
}
