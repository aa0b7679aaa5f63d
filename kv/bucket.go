// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"sync"

	"github.com/syndtr/goleveldb/leveldb/util"
)

// Bucket provides a logical bucket for a kv store.
type Bucket string

// NewGetter creates a bucket getter from the source getter.
func (b Bucket) NewGetter(src Getter) Getter {
	return &struct {
		GetFunc
		HasFunc
		IsNotFoundFunc
	}{
		func(key []byte) ([]byte, error) {
			buf := bufPool.Get().(*buf)
			defer bufPool.Put(buf)
			buf.k = append(append(buf.k[:0], b...), key...)

			return src.Get(buf.k)
		},
		func(key []byte) (bool, error) {
			buf := bufPool.Get().(*buf)
			defer bufPool.Put(buf)
			buf.k = append(append(buf.k[:0], b...), key...)

			return src.Has(buf.k)
		},
		src.IsNotFound,
	}
}

// NewPutter creates a bucket putter from the source putter.
// A Batch is a Putter too, so writes into the bucket can join a batch.
func (b Bucket) NewPutter(src Putter) Putter {
	return &struct {
		PutFunc
		DeleteFunc
	}{
		func(key, val []byte) error {
			buf := bufPool.Get().(*buf)
			defer bufPool.Put(buf)
			buf.k = append(append(buf.k[:0], b...), key...)

			return src.Put(buf.k, val)
		},
		func(key []byte) error {
			buf := bufPool.Get().(*buf)
			defer bufPool.Put(buf)
			buf.k = append(append(buf.k[:0], b...), key...)

			return src.Delete(buf.k)
		},
	}
}

// NewStore creates a full store whose keys all live inside the bucket,
// so several components can share one engine without colliding.
// Closing the derived store is a no-op; the source store owns the engine.
func (b Bucket) NewStore(src Store) Store {
	return &struct {
		Getter
		Putter
		NewIteratorFunc
		NewBatchFunc
		CloseFunc
	}{
		b.NewGetter(src),
		b.NewPutter(src),
		func(r Range) Iterator {
			return b.NewIterator(src, r)
		},
		func() Batch {
			batch := src.NewBatch()
			return &struct {
				Putter
				LenFunc
				WriteFunc
			}{
				b.NewPutter(batch),
				batch.Len,
				batch.Write,
			}
		},
		func() error { return nil },
	}
}

// NewIterator creates an iterator over the keys of the bucket,
// with the bucket prefix stripped from reported keys.
func (b Bucket) NewIterator(src Iterable, r Range) Iterator {
	start := append([]byte(b), r.Start...)

	var limit []byte
	if len(r.Limit) == 0 {
		limit = util.BytesPrefix([]byte(b)).Limit
	} else {
		limit = append([]byte(b), r.Limit...)
	}

	iter := src.NewIterator(Range{Start: start, Limit: limit})
	return &struct {
		NextFunc
		ReleaseFunc
		ErrorFunc
		KeyFunc
		ValueFunc
	}{
		iter.Next,
		iter.Release,
		iter.Error,
		// strip the bucket
		func() []byte { return iter.Key()[len(b):] },
		iter.Value,
	}
}

type buf struct {
	k []byte
}

var bufPool = sync.Pool{
	New: func() interface{} {
		return &buf{}
	},
}
