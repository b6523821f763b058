// Package eth holds the typed block, receipt and log model decoded from
// JSON-RPC responses, the deterministic receipt RLP used as trie values, and
// the logs-bloom derivation.
package eth

import (
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// HashHexChars is the number of hex characters in an unprefixed hash.
	HashHexChars = 64
	// AddressHexChars is the number of hex characters in an unprefixed address.
	AddressHexChars = 40
	// BloomByteLength is the byte width of the 2048-bit logs bloom.
	BloomByteLength = 256
)

// Hash is a 32-byte value: block hashes, transaction hashes, trie roots,
// log topics.
type Hash [32]byte

// Address is a 20-byte account address.
type Address [20]byte

// Bloom is the 2048-bit logs bloom filter.
type Bloom [BloomByteLength]byte

// Hex renders h with a 0x prefix.
func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

// Hex renders a with a 0x prefix.
func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

// Hex renders b with a 0x prefix.
func (b Bloom) Hex() string { return "0x" + hex.EncodeToString(b[:]) }

// ParseHash parses a 0x-prefixed 64-character hex string.
func ParseHash(s string) (Hash, error) {
	var h Hash
	b, err := parseFixedHex(s, HashHexChars)
	if err != nil {
		return h, fmt.Errorf("✘ invalid hash %q: %w", s, err)
	}
	copy(h[:], b)
	return h, nil
}

// ParseAddress parses a 0x-prefixed 40-character hex string.
func ParseAddress(s string) (Address, error) {
	var a Address
	b, err := parseFixedHex(s, AddressHexChars)
	if err != nil {
		return a, fmt.Errorf("✘ invalid address %q: %w", s, err)
	}
	copy(a[:], b)
	return a, nil
}

// ParseBloom parses a 0x-prefixed 512-character hex string.
func ParseBloom(s string) (Bloom, error) {
	var bloom Bloom
	b, err := parseFixedHex(s, BloomByteLength*2)
	if err != nil {
		return bloom, fmt.Errorf("✘ invalid logs bloom: %w", err)
	}
	copy(bloom[:], b)
	return bloom, nil
}

func parseFixedHex(s string, hexChars int) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") {
		return nil, fmt.Errorf("missing 0x prefix")
	}
	if len(s) != 2+hexChars {
		return nil, fmt.Errorf("want %d hex chars, got %d", hexChars, len(s)-2)
	}
	return hex.DecodeString(s[2:])
}

// ParseHexBytes parses a 0x-prefixed hex string of any length; odd-length
// strings are zero-padded on the left.
func ParseHexBytes(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s)%2 != 0 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("✘ invalid hex string: %w", err)
	}
	return b, nil
}

// ParseHexUint64 parses a 0x-prefixed hex quantity.
func ParseHexUint64(s string) (uint64, error) {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return 0, nil
	}
	var v uint64
	for _, c := range s {
		var d uint64
		switch {
		case c >= '0' && c <= '9':
			d = uint64(c - '0')
		case c >= 'a' && c <= 'f':
			d = uint64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = uint64(c-'A') + 10
		default:
			return 0, fmt.Errorf("✘ invalid hex quantity character: %c", c)
		}
		v = v<<4 | d
	}
	return v, nil
}

// Block carries the header fields and transaction list the proof pipeline
// consumes, decoded from eth_getBlockByHash / eth_getBlockByNumber.
type Block struct {
	Hash             Hash
	ParentHash       Hash
	Number           uint64
	Miner            Address
	StateRoot        Hash
	TransactionsRoot Hash
	ReceiptsRoot     Hash
	LogsBloom        Bloom
	GasLimit         uint64
	GasUsed          uint64
	Timestamp        uint64
	ExtraData        []byte
	Transactions     []Hash
}

// TransactionIndex returns the position of txHash in the block's transaction
// list.
func (b *Block) TransactionIndex(txHash Hash) (uint64, error) {
	for i, h := range b.Transactions {
		if h == txHash {
			return uint64(i), nil
		}
	}
	return 0, fmt.Errorf("✘ cannot find transaction hash in block: %s", txHash.Hex())
}
