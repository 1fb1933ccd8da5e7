// Package crypto: authorization-key identity + handshake nonce hashes.
package crypto

import (
	"crypto/sha1"
	"encoding/binary"
	"fmt"
)

// AuthKeySize is the authorization key length in bytes.
const AuthKeySize = 256

// AuthKey is the 256-byte authorization key plus the two 8-byte values
// derived from its SHA-1 at construction. Generating a valid key is the
// key-exchange layer's job; this type only carries one.
type AuthKey struct {
	data    [AuthKeySize]byte
	auxHash [8]byte
	id      [8]byte
}

// AuthKeyFromBytes computes aux_hash and id once from the raw key.
func AuthKeyFromBytes(data [AuthKeySize]byte) AuthKey {
	sum := sha1.Sum(data[:])
	k := AuthKey{data: data}
	copy(k.auxHash[:], sum[0:8])
	copy(k.id[:], sum[12:20])
	return k
}

// Bytes returns the raw key material.
func (k AuthKey) Bytes() [AuthKeySize]byte { return k.data }

// ID is the 64 lower-order bits of the SHA-1 of the key. Servers use it
// to tell which key a message was encrypted with.
func (k AuthKey) ID() [8]byte { return k.id }

// AuxHash is the first 8 bytes of the SHA-1 of the key, used during the
// handshake.
func (k AuthKey) AuxHash() [8]byte { return k.auxHash }

// Equal compares keys by id alone, like the servers do.
func (k AuthKey) Equal(other AuthKey) bool { return k.id == other.id }

// CalcNewNonceHash computes the handshake hash for server answer number
// 1, 2 or 3: the last 16 bytes of SHA-1(new_nonce | number | aux_hash).
func (k AuthKey) CalcNewNonceHash(newNonce [32]byte, number uint8) [16]byte {
	var buf [32 + 1 + 8]byte
	copy(buf[:32], newNonce[:])
	buf[32] = number
	copy(buf[33:], k.auxHash[:])
	sum := sha1.Sum(buf[:])
	var out [16]byte
	copy(out[:], sum[4:])
	return out
}

func (k AuthKey) String() string {
	return fmt.Sprintf("AuthKey{id: 0x%016x}", binary.LittleEndian.Uint64(k.id[:]))
}
