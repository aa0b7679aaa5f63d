// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package kv defines a key-value store abstraction and its LevelDB implementation.
package kv

// Getter wraps methods to read key-value pairs.
type Getter interface {
	// Get retrieves the value for the given key.
	// An error is returned if the key is not found. It can be checked via IsNotFound.
	Get(key []byte) (value []byte, err error)
	Has(key []byte) (bool, error)
	IsNotFound(err error) bool
}

// Putter wraps methods to write key-value pairs.
type Putter interface {
	Put(key, val []byte) error
	Delete(key []byte) error
}

// GetPutter groups Getter and Putter.
type GetPutter interface {
	Getter
	Putter
}

// Batch collects writes and commits them atomically.
type Batch interface {
	Putter

	Len() int
	Write() error
}

// Iterator iterates key-value pairs in ascending key order.
type Iterator interface {
	Next() bool
	Release()
	Error() error

	Key() []byte
	Value() []byte
}

// Range describes a key range [Start, Limit).
// A zero-length Limit means no upper bound.
type Range struct {
	Start []byte
	Limit []byte
}

// Iterable wraps the method to create iterators.
type Iterable interface {
	NewIterator(r Range) Iterator
}

// Store is a full-featured key-value store.
type Store interface {
	GetPutter
	Iterable

	NewBatch() Batch
	Close() error
}
