// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package journal

import (
	"math/big"

	"github.com/bastionstake/bastion/bastion"
	"github.com/bastionstake/bastion/vault"
)

// Record is one ledger event persisted to the journal. Sequence numbers are
// assigned on append and strictly increase, so a sequence is also a stable
// cursor into the stream.
type Record struct {
	Sequence  uint64
	ID        bastion.Bytes32
	Kind      vault.EventKind
	Account   bastion.Address
	Amount    *big.Int
	Reward    *big.Int
	Timestamp uint64
}

// newRecord derives a journal record from a committed ledger event.
func newRecord(seq uint64, ev *vault.Event) *Record {
	return &Record{
		Sequence:  seq,
		ID:        recordID(seq, ev),
		Kind:      ev.Kind,
		Account:   ev.Account,
		Amount:    ev.Amount,
		Reward:    ev.Reward,
		Timestamp: ev.Timestamp,
	}
}

type RangeType string

const (
	Sequence RangeType = "seq"
	Time     RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range bounds records by sequence or timestamp, inclusive on both ends.
type Range struct {
	Unit RangeType
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// Criteria matches records whose fields equal every non-nil member.
type Criteria struct {
	Account *bastion.Address
	Kind    *vault.EventKind
}

// Filter selects journal records. Criteria are OR-joined.
type Filter struct {
	CriteriaSet []*Criteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
