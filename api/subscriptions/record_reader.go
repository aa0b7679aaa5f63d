// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"

	"github.com/bastionstake/bastion/bastion"
	"github.com/bastionstake/bastion/journal"
	"github.com/bastionstake/bastion/vault"
)

const readBatchSize = 256

// recordFilter narrows a subscription to one account and/or kind.
// The zero value matches everything.
type recordFilter struct {
	account *bastion.Address
	kind    *vault.EventKind
}

func (f *recordFilter) match(rec *journal.Record) bool {
	if f.account != nil && *f.account != rec.Account {
		return false
	}
	if f.kind != nil && *f.kind != rec.Kind {
		return false
	}
	return true
}

// recordReader walks the journal from a position, batch by batch.
// The position advances past every record read, matched or not, so a
// sparse subscription never re-reads skipped history.
type recordReader struct {
	journal *journal.Journal
	filter  *recordFilter
	pos     uint64
}

func newRecordReader(j *journal.Journal, position uint64, filter *recordFilter) *recordReader {
	return &recordReader{
		journal: j,
		filter:  filter,
		pos:     position,
	}
}

func (r *recordReader) Read(ctx context.Context) ([]interface{}, bool, error) {
	records, err := r.journal.RecordsAfter(ctx, r.pos, readBatchSize)
	if err != nil {
		return nil, false, err
	}

	var msgs []interface{}
	for _, rec := range records {
		if r.filter.match(rec) {
			msgs = append(msgs, convertRecord(rec))
		}
		r.pos = rec.Sequence
	}
	return msgs, len(records) >= readBatchSize, nil
}
