// Package keccak provides the legacy Keccak-256 hash as used by Ethereum
// (original Keccak padding, not the NIST SHA-3 variant).
package keccak

import (
	"golang.org/x/crypto/sha3"
)

// HashLength is the byte length of a Keccak-256 digest.
const HashLength = 32

// Sum256 returns the Keccak-256 digest of data.
func Sum256(data []byte) [HashLength]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var out [HashLength]byte
	h.Sum(out[:0])
	return out
}

// Bytes256 returns the Keccak-256 digest of data as a slice.
func Bytes256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}
