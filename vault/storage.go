// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/bastionstake/bastion/bastion"
	"github.com/bastionstake/bastion/kv"
)

var (
	entriesBucket = kv.Bucket("e")
	custodyKey    = []byte("c")
	configKey     = []byte("g")
	totalsKey     = []byte("t")
)

const entryCacheSize = 512

// storage persists the ledger in a kv store.
//
// All writes of one operation go through a single change set committed
// as one batch, so an operation either lands fully or not at all.
type storage struct {
	lock  sync.RWMutex
	store kv.Store
	cache *lru.Cache // address -> *Entry
}

// change is the state delta of one operation.
// A nil field leaves the corresponding state untouched;
// a nil or empty entry value deletes the account's record.
type change struct {
	entries map[bastion.Address]*Entry
	custody *big.Int
	config  *SystemConfig
	totals  *Totals
}

func newStorage(store kv.Store) (*storage, error) {
	cache, err := lru.New(entryCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create entry cache")
	}
	return &storage{
		store: store,
		cache: cache,
	}, nil
}

// GetEntry reads an account's entry. A missing record reads back as the
// zero entry, never as an error.
func (s *storage) GetEntry(addr bastion.Address) (*Entry, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if cached, ok := s.cache.Get(addr); ok {
		return cached.(*Entry).Copy(), nil
	}

	data, err := entriesBucket.NewGetter(s.store).Get(addr.Bytes())
	if err != nil {
		if s.store.IsNotFound(err) {
			return &Entry{Principal: new(big.Int)}, nil
		}
		return nil, errors.Wrap(err, "failed to get entry")
	}

	var entry Entry
	if err := rlp.DecodeBytes(data, &entry); err != nil {
		return nil, errors.Wrap(err, "failed to decode entry")
	}
	s.cache.Add(addr, entry.Copy())
	return &entry, nil
}

// GetConfig reads the system config, or nil if the ledger was never
// initialized.
func (s *storage) GetConfig() (*SystemConfig, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	data, err := s.store.Get(configKey)
	if err != nil {
		if s.store.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get config")
	}

	var cfg SystemConfig
	if err := rlp.DecodeBytes(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}
	return &cfg, nil
}

func (s *storage) GetCustody() (*big.Int, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	data, err := s.store.Get(custodyKey)
	if err != nil {
		if s.store.IsNotFound(err) {
			return new(big.Int), nil
		}
		return nil, errors.Wrap(err, "failed to get custody balance")
	}

	custody := new(big.Int)
	if err := rlp.DecodeBytes(data, custody); err != nil {
		return nil, errors.Wrap(err, "failed to decode custody balance")
	}
	return custody, nil
}

func (s *storage) GetTotals() (*Totals, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	data, err := s.store.Get(totalsKey)
	if err != nil {
		if s.store.IsNotFound(err) {
			return &Totals{TotalStaked: new(big.Int)}, nil
		}
		return nil, errors.Wrap(err, "failed to get totals")
	}

	var totals Totals
	if err := rlp.DecodeBytes(data, &totals); err != nil {
		return nil, errors.Wrap(err, "failed to decode totals")
	}
	return &totals, nil
}

// Commit writes a change set atomically and refreshes the entry cache.
func (s *storage) Commit(c *change) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	batch := s.store.NewBatch()
	putter := entriesBucket.NewPutter(batch)

	for addr, entry := range c.entries {
		if entry == nil || entry.IsEmpty() {
			if err := putter.Delete(addr.Bytes()); err != nil {
				return errors.Wrap(err, "failed to delete entry")
			}
			continue
		}
		data, err := rlp.EncodeToBytes(entry)
		if err != nil {
			return errors.Wrap(err, "failed to encode entry")
		}
		if err := putter.Put(addr.Bytes(), data); err != nil {
			return errors.Wrap(err, "failed to put entry")
		}
	}

	if c.custody != nil {
		data, err := rlp.EncodeToBytes(c.custody)
		if err != nil {
			return errors.Wrap(err, "failed to encode custody balance")
		}
		if err := batch.Put(custodyKey, data); err != nil {
			return errors.Wrap(err, "failed to put custody balance")
		}
	}

	if c.config != nil {
		data, err := rlp.EncodeToBytes(c.config)
		if err != nil {
			return errors.Wrap(err, "failed to encode config")
		}
		if err := batch.Put(configKey, data); err != nil {
			return errors.Wrap(err, "failed to put config")
		}
	}

	if c.totals != nil {
		data, err := rlp.EncodeToBytes(c.totals)
		if err != nil {
			return errors.Wrap(err, "failed to encode totals")
		}
		if err := batch.Put(totalsKey, data); err != nil {
			return errors.Wrap(err, "failed to put totals")
		}
	}

	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "failed to commit change")
	}

	// refresh the cache only after the batch landed
	for addr, entry := range c.entries {
		if entry == nil || entry.IsEmpty() {
			s.cache.Remove(addr)
		} else {
			s.cache.Add(addr, entry.Copy())
		}
	}
	return nil
}
