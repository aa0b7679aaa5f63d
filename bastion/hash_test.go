package bastion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/blake2b"
)

func TestBlake2b(t *testing.T) {
	data := []byte("hello world")
	assert.Equal(t, Bytes32(blake2b.Sum256(data)), Blake2b(data))

	// multi-chunk input hashes the concatenation
	assert.Equal(t, Blake2b([]byte("hello world")), Blake2b([]byte("hello "), []byte("world")))
}

func TestBytesToBytes32(t *testing.T) {
	b := BytesToBytes32([]byte{1})
	assert.Equal(t, "0x0000000000000000000000000000000000000000000000000000000000000001", b.String())
	assert.False(t, b.IsZero())
	assert.True(t, Bytes32{}.IsZero())
}
