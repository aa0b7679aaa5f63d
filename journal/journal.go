// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package journal persists the stream of committed ledger events to a
// sqlite-backed store, and lets consumers query past records or follow new
// ones as they are appended.
package journal

import (
	"context"
	"database/sql"
	"encoding/binary"
	"math/big"
	"sync"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/bastionstake/bastion/bastion"
	"github.com/bastionstake/bastion/co"
	"github.com/bastionstake/bastion/log"
	"github.com/bastionstake/bastion/vault"
)

var logger = log.WithContext("pkg", "journal")

type Journal struct {
	path          string
	db            *sql.DB
	driverVersion string

	lock    sync.Mutex
	nextSeq uint64
	tick    co.Signal
}

// New creates or opens the journal at the given path.
func New(path string) (journal *Journal, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if journal == nil {
			db.Close()
		}
	}()
	if _, err := db.Exec(recordTableSchema); err != nil {
		return nil, err
	}

	var maxSeq uint64
	if err := db.QueryRow("SELECT IFNULL(MAX(seq), 0) FROM record").Scan(&maxSeq); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &Journal{
		path:          path,
		db:            db,
		driverVersion: driverVer,
		nextSeq:       maxSeq + 1,
	}, nil
}

// NewMem creates a journal in ram.
func NewMem() (*Journal, error) {
	return New(":memory:")
}

// Close closes the journal.
func (j *Journal) Close() {
	j.db.Close()
}

func (j *Journal) Path() string {
	return j.path
}

// Notify implements vault.Notifier. Events arrive strictly after the state
// they describe is committed, so a failed append loses history but never
// desyncs the ledger; it is logged and swallowed.
func (j *Journal) Notify(ev *vault.Event) {
	if err := j.Append(ev); err != nil {
		logger.Error("failed to journal event",
			"kind", ev.Kind,
			"error", err,
		)
	}
}

// Append journals one event under the next sequence number and wakes tickers.
func (j *Journal) Append(ev *vault.Event) error {
	j.lock.Lock()
	defer j.lock.Unlock()

	r := newRecord(j.nextSeq, ev)
	if _, err := j.db.Exec(
		"INSERT OR REPLACE INTO record(seq, id, kind, account, amount, reward, ts) VALUES ( ?, ?, ?, ?, ?, ?, ?);",
		r.Sequence,
		r.ID.Bytes(),
		uint8(r.Kind),
		r.Account.Bytes(),
		amountValue(r.Amount),
		amountValue(r.Reward),
		r.Timestamp,
	); err != nil {
		return err
	}
	j.nextSeq++
	metricAppendCount().AddWithLabel(1, map[string]string{"kind": r.Kind.String()})
	j.tick.Broadcast()
	return nil
}

// MaxSequence returns the highest sequence number appended so far, or 0 when
// the journal is empty.
func (j *Journal) MaxSequence() uint64 {
	j.lock.Lock()
	defer j.lock.Unlock()
	return j.nextSeq - 1
}

// NewTicker creates a signal Waiter to receive notifications of appended
// records.
func (j *Journal) NewTicker() co.Waiter {
	return j.tick.NewWaiter()
}

func (j *Journal) Filter(ctx context.Context, filter *Filter) ([]*Record, error) {
	if filter == nil {
		return j.queryRecords(ctx, "SELECT * FROM record")
	}
	metricsHandleFilter(filter)

	var args []interface{}
	stmt := "SELECT * FROM record WHERE 1"
	condition := "seq"
	if filter.Range != nil {
		if filter.Range.Unit == Time {
			condition = "ts"
		}
		args = append(args, filter.Range.From)
		stmt += " AND " + condition + " >= ? "
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND " + condition + " <= ? "
		}
	}
	length := len(filter.CriteriaSet)
	if length > 0 {
		for i, criteria := range filter.CriteriaSet {
			if i == 0 {
				stmt += " AND (( 1 "
			} else {
				stmt += " OR ( 1 "
			}
			if criteria.Account != nil {
				args = append(args, criteria.Account.Bytes())
				stmt += " AND account = ? "
			}
			if criteria.Kind != nil {
				args = append(args, uint8(*criteria.Kind))
				stmt += " AND kind = ? "
			}
			if i == length-1 {
				stmt += " )) "
			} else {
				stmt += " ) "
			}
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC "
	} else {
		stmt += " ORDER BY seq ASC "
	}

	if filter.Options != nil {
		stmt += " limit ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return j.queryRecords(ctx, stmt, args...)
}

// RecordsAfter returns up to limit records with sequence strictly greater
// than seq, ascending. It backs stream consumers that resume from a cursor.
func (j *Journal) RecordsAfter(ctx context.Context, seq uint64, limit uint64) ([]*Record, error) {
	return j.queryRecords(ctx, "SELECT * FROM record WHERE seq > ? ORDER BY seq ASC limit ?", seq, limit)
}

func (j *Journal) queryRecords(ctx context.Context, stmt string, args ...interface{}) ([]*Record, error) {
	rows, err := j.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq     uint64
			id      []byte
			kind    uint8
			account []byte
			amount  []byte
			reward  []byte
			ts      uint64
		)
		if err := rows.Scan(
			&seq,
			&id,
			&kind,
			&account,
			&amount,
			&reward,
			&ts,
		); err != nil {
			return nil, err
		}
		records = append(records, &Record{
			Sequence:  seq,
			ID:        bastion.BytesToBytes32(id),
			Kind:      vault.EventKind(kind),
			Account:   bastion.BytesToAddress(account),
			Amount:    new(big.Int).SetBytes(amount),
			Reward:    new(big.Int).SetBytes(reward),
			Timestamp: ts,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// recordID derives the identity of a record from its position and payload.
func recordID(seq uint64, ev *vault.Event) bastion.Bytes32 {
	var b [17]byte
	binary.BigEndian.PutUint64(b[:8], seq)
	b[8] = byte(ev.Kind)
	binary.BigEndian.PutUint64(b[9:], ev.Timestamp)
	return bastion.Blake2b(b[:], ev.Account.Bytes())
}

func amountValue(amount *big.Int) []byte {
	if amount == nil {
		return nil
	}
	return amount.Bytes()
}
