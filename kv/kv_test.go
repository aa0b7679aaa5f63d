// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreGetPut(t *testing.T) {
	store := NewMem()
	defer store.Close()

	key := []byte("key")
	val := []byte("val")

	_, err := store.Get(key)
	assert.True(t, store.IsNotFound(err))

	has, err := store.Has(key)
	assert.Nil(t, err)
	assert.False(t, has)

	assert.Nil(t, store.Put(key, val))

	got, err := store.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, val, got)

	has, err = store.Has(key)
	assert.Nil(t, err)
	assert.True(t, has)

	assert.Nil(t, store.Delete(key))

	has, err = store.Has(key)
	assert.Nil(t, err)
	assert.False(t, has)
}

func TestStoreBatch(t *testing.T) {
	store := NewMem()
	defer store.Close()

	batch := store.NewBatch()
	for i := range 5 {
		assert.Nil(t, batch.Put([]byte{byte(i)}, []byte{byte(i)}))
	}
	assert.Equal(t, 5, batch.Len())

	// not visible until written
	has, err := store.Has([]byte{0})
	assert.Nil(t, err)
	assert.False(t, has)

	assert.Nil(t, batch.Write())

	for i := range 5 {
		val, err := store.Get([]byte{byte(i)})
		assert.Nil(t, err)
		assert.Equal(t, []byte{byte(i)}, val)
	}
}

func TestStoreIterator(t *testing.T) {
	store := NewMem()
	defer store.Close()

	for i := range 10 {
		assert.Nil(t, store.Put([]byte{byte(i)}, []byte{byte(i)}))
	}

	iter := store.NewIterator(Range{Start: []byte{2}, Limit: []byte{5}})
	defer iter.Release()

	var keys []byte
	for iter.Next() {
		keys = append(keys, iter.Key()...)
	}
	assert.Nil(t, iter.Error())
	assert.Equal(t, []byte{2, 3, 4}, keys)
}
