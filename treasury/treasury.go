// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package treasury implements the disbursement counterpart of the vault:
// when the ledger zeroes a position, the treasury releases the funds and
// keeps a durable tally of everything that has left custody.
package treasury

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/bastionstake/bastion/bastion"
	"github.com/bastionstake/bastion/kv"
	"github.com/bastionstake/bastion/log"
	"github.com/bastionstake/bastion/metrics"
)

var (
	logger = log.WithContext("pkg", "treasury")

	payeesBucket = kv.Bucket("p")
	totalsKey    = []byte("t")

	metricReleaseCount = metrics.LazyLoadCounter("treasury_release_count")
)

// Totals is the running disbursement tally.
type Totals struct {
	Released      *big.Int
	Disbursements uint64
}

// Treasury records funds leaving custody. It implements vault.Treasury.
//
// A release lands atomically: the running totals and the payee's
// cumulative tally move in one batch or not at all.
type Treasury struct {
	lock  sync.Mutex
	store kv.Store
}

func New(store kv.Store) *Treasury {
	return &Treasury{store: store}
}

// Release records amount as paid out to the payee.
func (t *Treasury) Release(to bastion.Address, amount *big.Int) error {
	if to.IsZero() {
		return errors.New("payee must not be zero")
	}
	if amount == nil || amount.Sign() <= 0 {
		return errors.New("amount must be positive")
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	totals, err := t.getTotals()
	if err != nil {
		return err
	}
	released, err := t.getReleasedTo(to)
	if err != nil {
		return err
	}

	totals.Released.Add(totals.Released, amount)
	totals.Disbursements++
	released.Add(released, amount)

	batch := t.store.NewBatch()

	data, err := rlp.EncodeToBytes(totals)
	if err != nil {
		return errors.Wrap(err, "failed to encode totals")
	}
	if err := batch.Put(totalsKey, data); err != nil {
		return errors.Wrap(err, "failed to put totals")
	}

	data, err = rlp.EncodeToBytes(released)
	if err != nil {
		return errors.Wrap(err, "failed to encode payee tally")
	}
	if err := payeesBucket.NewPutter(batch).Put(to.Bytes(), data); err != nil {
		return errors.Wrap(err, "failed to put payee tally")
	}

	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "failed to commit release")
	}

	metricReleaseCount().Add(1)
	logger.Info("released funds", "to", to, "amount", amount)
	return nil
}

// Totals returns the running tally over all payees.
func (t *Treasury) Totals() (*Totals, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.getTotals()
}

// ReleasedTo returns the cumulative amount released to the payee.
func (t *Treasury) ReleasedTo(addr bastion.Address) (*big.Int, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.getReleasedTo(addr)
}

func (t *Treasury) getTotals() (*Totals, error) {
	data, err := t.store.Get(totalsKey)
	if err != nil {
		if t.store.IsNotFound(err) {
			return &Totals{Released: new(big.Int)}, nil
		}
		return nil, errors.Wrap(err, "failed to get totals")
	}

	var totals Totals
	if err := rlp.DecodeBytes(data, &totals); err != nil {
		return nil, errors.Wrap(err, "failed to decode totals")
	}
	return &totals, nil
}

func (t *Treasury) getReleasedTo(addr bastion.Address) (*big.Int, error) {
	data, err := payeesBucket.NewGetter(t.store).Get(addr.Bytes())
	if err != nil {
		if t.store.IsNotFound(err) {
			return new(big.Int), nil
		}
		return nil, errors.Wrap(err, "failed to get payee tally")
	}

	released := new(big.Int)
	if err := rlp.DecodeBytes(data, released); err != nil {
		return nil, errors.Wrap(err, "failed to decode payee tally")
	}
	return released, nil
}
