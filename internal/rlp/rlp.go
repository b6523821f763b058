// Package rlp implements the canonical recursive-length-prefix encoding used
// for trie nodes and receipts. The decoder is strict: any encoding that could
// have used a shorter form is rejected.
package rlp

import (
	"errors"
	"fmt"
	"math/big"
)

const (
	shortStringOffset = 0x80
	longStringOffset  = 0xb7
	shortListOffset   = 0xc0
	longListOffset    = 0xf7
	maxShortLength    = 55
)

var (
	// ErrNonCanonical marks encodings that decode but violate the minimal-form rules.
	ErrNonCanonical = errors.New("✘ non-canonical RLP encoding")
	// ErrTruncated marks encodings shorter than their own length prefix claims.
	ErrTruncated = errors.New("✘ truncated RLP input")
)

// EmptyString is the encoding of the empty byte string.
var EmptyString = []byte{shortStringOffset}

// EncodeBytes encodes b as an RLP byte string.
func EncodeBytes(b []byte) []byte {
	if len(b) == 1 && b[0] < shortStringOffset {
		return []byte{b[0]}
	}
	if len(b) <= maxShortLength {
		out := make([]byte, 0, 1+len(b))
		out = append(out, byte(shortStringOffset+len(b)))
		return append(out, b...)
	}
	lenBytes := encodeLength(len(b))
	out := make([]byte, 0, 1+len(lenBytes)+len(b))
	out = append(out, byte(longStringOffset+len(lenBytes)))
	out = append(out, lenBytes...)
	return append(out, b...)
}

// EncodeUint encodes v as its shortest big-endian byte string. Zero encodes
// as the empty string.
func EncodeUint(v uint64) []byte {
	if v == 0 {
		return []byte{shortStringOffset}
	}
	if v < shortStringOffset {
		return []byte{byte(v)}
	}
	return EncodeBytes(new(big.Int).SetUint64(v).Bytes())
}

// EncodeList wraps already-encoded items in a list header. Items are appended
// raw, without re-encoding.
func EncodeList(items ...[]byte) []byte {
	var payload []byte
	for _, item := range items {
		payload = append(payload, item...)
	}
	if len(payload) <= maxShortLength {
		out := make([]byte, 0, 1+len(payload))
		out = append(out, byte(shortListOffset+len(payload)))
		return append(out, payload...)
	}
	lenBytes := encodeLength(len(payload))
	out := make([]byte, 0, 1+len(lenBytes)+len(payload))
	out = append(out, byte(longListOffset+len(lenBytes)))
	out = append(out, lenBytes...)
	return append(out, payload...)
}

func encodeLength(n int) []byte {
	return big.NewInt(int64(n)).Bytes()
}

// IsList reports whether raw begins a list item.
func IsList(raw []byte) bool {
	return len(raw) > 0 && raw[0] >= shortListOffset
}

// splitItem reads one item from the front of data and returns the header
// length, the payload length, and whether the item is a list.
func splitItem(data []byte) (headerLen, payloadLen int, isList bool, err error) {
	if len(data) == 0 {
		return 0, 0, false, ErrTruncated
	}
	prefix := data[0]
	switch {
	case prefix < shortStringOffset:
		// A single byte below 0x80 is its own payload; treat the header as empty.
		return 0, 1, false, nil
	case prefix <= longStringOffset:
		payloadLen = int(prefix - shortStringOffset)
		if payloadLen == 1 && len(data) > 1 && data[1] < shortStringOffset {
			return 0, 0, false, fmt.Errorf("%w: single byte below 0x80 must encode as itself", ErrNonCanonical)
		}
		headerLen = 1
	case prefix < shortListOffset:
		lenOfLen := int(prefix - longStringOffset)
		payloadLen, err = readLength(data, lenOfLen)
		if err != nil {
			return 0, 0, false, err
		}
		headerLen = 1 + lenOfLen
	case prefix <= longListOffset:
		payloadLen = int(prefix - shortListOffset)
		headerLen = 1
		isList = true
	default:
		lenOfLen := int(prefix - longListOffset)
		payloadLen, err = readLength(data, lenOfLen)
		if err != nil {
			return 0, 0, false, err
		}
		headerLen = 1 + lenOfLen
		isList = true
	}
	if headerLen+payloadLen > len(data) {
		return 0, 0, false, ErrTruncated
	}
	return headerLen, payloadLen, isList, nil
}

func readLength(data []byte, lenOfLen int) (int, error) {
	if 1+lenOfLen > len(data) {
		return 0, ErrTruncated
	}
	lenBytes := data[1 : 1+lenOfLen]
	if lenBytes[0] == 0 {
		return 0, fmt.Errorf("%w: length bytes have leading zero", ErrNonCanonical)
	}
	length := 0
	for _, b := range lenBytes {
		if length > (1<<24) {
			return 0, fmt.Errorf("%w: implausible item length", ErrTruncated)
		}
		length = length<<8 | int(b)
	}
	if length <= maxShortLength {
		return 0, fmt.Errorf("%w: long form used for short payload", ErrNonCanonical)
	}
	return length, nil
}

// DecodeBytes decodes a single string item. The whole input must be consumed.
func DecodeBytes(raw []byte) ([]byte, error) {
	headerLen, payloadLen, isList, err := splitItem(raw)
	if err != nil {
		return nil, err
	}
	if isList {
		return nil, fmt.Errorf("%w: expected string, found list", ErrNonCanonical)
	}
	if headerLen+payloadLen != len(raw) {
		return nil, fmt.Errorf("%w: trailing bytes after string item", ErrNonCanonical)
	}
	return raw[headerLen : headerLen+payloadLen], nil
}

// DecodeUint decodes a canonical unsigned integer item.
func DecodeUint(raw []byte) (uint64, error) {
	payload, err := DecodeBytes(raw)
	if err != nil {
		return 0, err
	}
	if len(payload) > 8 {
		return 0, fmt.Errorf("%w: integer exceeds 64 bits", ErrNonCanonical)
	}
	if len(payload) > 0 && payload[0] == 0 {
		return 0, fmt.Errorf("%w: integer has leading zero byte", ErrNonCanonical)
	}
	var v uint64
	for _, b := range payload {
		v = v<<8 | uint64(b)
	}
	return v, nil
}

// SplitList splits a list item into the raw encodings of its elements. The
// whole input must be consumed by the list.
func SplitList(raw []byte) ([][]byte, error) {
	headerLen, payloadLen, isList, err := splitItem(raw)
	if err != nil {
		return nil, err
	}
	if !isList {
		return nil, fmt.Errorf("%w: expected list, found string", ErrNonCanonical)
	}
	if headerLen+payloadLen != len(raw) {
		return nil, fmt.Errorf("%w: trailing bytes after list item", ErrNonCanonical)
	}
	payload := raw[headerLen : headerLen+payloadLen]
	var items [][]byte
	for len(payload) > 0 {
		h, p, _, err := splitItem(payload)
		if err != nil {
			return nil, err
		}
		items = append(items, payload[:h+p])
		payload = payload[h+p:]
	}
	return items, nil
}
