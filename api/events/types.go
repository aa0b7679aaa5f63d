// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/bastionstake/bastion/bastion"
	"github.com/bastionstake/bastion/journal"
)

// Criteria selects records by account and/or kind. Conditions within
// one criteria AND together, criteria in a set OR together.
type Criteria struct {
	Account *bastion.Address `json:"account,omitempty"`
	Kind    *string          `json:"kind,omitempty"`
}

// Range bounds the query by sequence or by unix timestamp, inclusive
// on both ends. Nil bounds mean open.
type Range struct {
	Unit journal.RangeType `json:"unit,omitempty"`
	From *uint64           `json:"from,omitempty"`
	To   *uint64           `json:"to,omitempty"`
}

// Options paginates the result set.
type Options struct {
	Offset uint64  `json:"offset"`
	Limit  *uint64 `json:"limit,omitempty"`
}

// RecordFilter is the request body of the records query.
type RecordFilter struct {
	CriteriaSet []*Criteria   `json:"criteriaSet,omitempty"`
	Range       *Range        `json:"range,omitempty"`
	Options     *Options      `json:"options,omitempty"`
	Order       journal.Order `json:"order,omitempty"`
}

// FilteredRecord is the marshalable form of a journaled ledger event.
type FilteredRecord struct {
	Sequence  uint64                `json:"sequence"`
	ID        bastion.Bytes32       `json:"id"`
	Kind      string                `json:"kind"`
	Account   bastion.Address       `json:"account"`
	Amount    *math.HexOrDecimal256 `json:"amount,string"`
	Reward    *math.HexOrDecimal256 `json:"reward,string"`
	Timestamp uint64                `json:"timestamp"`
}

func convertRecord(rec *journal.Record) *FilteredRecord {
	return &FilteredRecord{
		Sequence:  rec.Sequence,
		ID:        rec.ID,
		Kind:      rec.Kind.String(),
		Account:   rec.Account,
		Amount:    (*math.HexOrDecimal256)(rec.Amount),
		Reward:    (*math.HexOrDecimal256)(rec.Reward),
		Timestamp: rec.Timestamp,
	}
}
