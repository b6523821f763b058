// Package nibbles implements ordered sequences of half-bytes, the unit of
// path matching in a Merkle-Patricia trie.
//
// A sequence is backed by a byte vector plus an offset flag. With the flag
// unset the first nibble is the high half of byte zero; with it set the first
// nibble is the low half of byte zero (the high half is kept at zero), so a
// sequence of odd length never carries a stray leading nibble.
package nibbles

import (
	"fmt"
	"strings"
)

const (
	bitsInNibble  = 4
	nibblesInByte = 2
	lowNibbleMask = 0x0f
)

// Nibbles is an immutable sequence of 4-bit values.
type Nibbles struct {
	Data   []byte
	Offset bool
}

// Empty returns the distinguished empty sequence.
func Empty() Nibbles {
	return Nibbles{}
}

// FromBytes returns the sequence of all nibbles in bs, high halves first.
func FromBytes(bs []byte) Nibbles {
	if len(bs) == 0 {
		return Nibbles{}
	}
	data := make([]byte, len(bs))
	copy(data, bs)
	return Nibbles{Data: data}
}

// FromOffsetBytes returns the sequence whose first nibble is the low half of
// bs[0]. The high half of bs[0] is discarded.
func FromOffsetBytes(bs []byte) Nibbles {
	if len(bs) == 0 {
		return Nibbles{}
	}
	data := make([]byte, len(bs))
	copy(data, bs)
	data[0] &= lowNibbleMask
	return Nibbles{Data: data, Offset: true}
}

// fromValues packs a slice of single-nibble values into canonical form:
// even counts pack without offset, odd counts pack with it.
func fromValues(vals []byte) Nibbles {
	if len(vals) == 0 {
		return Nibbles{}
	}
	if len(vals)%nibblesInByte == 0 {
		data := make([]byte, len(vals)/nibblesInByte)
		for i := range data {
			data[i] = vals[2*i]<<bitsInNibble | vals[2*i+1]&lowNibbleMask
		}
		return Nibbles{Data: data}
	}
	data := make([]byte, len(vals)/nibblesInByte+1)
	data[0] = vals[0] & lowNibbleMask
	for i := 1; i < len(data); i++ {
		data[i] = vals[2*i-1]<<bitsInNibble | vals[2*i]&lowNibbleMask
	}
	return Nibbles{Data: data, Offset: true}
}

// Len returns the length of n in nibbles.
func (n Nibbles) Len() int {
	length := len(n.Data) * nibblesInByte
	if n.Offset {
		length--
	}
	return length
}

// IsEmpty reports whether n has length zero.
func (n Nibbles) IsEmpty() bool {
	return n.Len() == 0
}

// At returns the i-th nibble of n.
func (n Nibbles) At(i int) (byte, error) {
	if i < 0 || i >= n.Len() {
		return 0, fmt.Errorf("✘ nibble index %d out of range for length %d", i, n.Len())
	}
	if n.Offset {
		b := n.Data[(i+1)/nibblesInByte]
		if i%2 == 0 {
			return b & lowNibbleMask, nil
		}
		return b >> bitsInNibble, nil
	}
	b := n.Data[i/nibblesInByte]
	if i%2 == 0 {
		return b >> bitsInNibble, nil
	}
	return b & lowNibbleMask, nil
}

// Values returns the nibbles of n as a slice of single-nibble values.
func (n Nibbles) Values() []byte {
	vals := make([]byte, n.Len())
	for i := range vals {
		vals[i], _ = n.At(i)
	}
	return vals
}

// CommonPrefix splits a and b into their longest shared prefix and the two
// remainders that follow it.
func CommonPrefix(a, b Nibbles) (shared, restA, restB Nibbles) {
	av, bv := a.Values(), b.Values()
	k := 0
	for k < len(av) && k < len(bv) && av[k] == bv[k] {
		k++
	}
	return fromValues(av[:k]), fromValues(av[k:]), fromValues(bv[k:])
}

// SliceFrom returns the nibbles of n after dropping the first i. Slicing at
// or past the end yields the empty sequence.
func (n Nibbles) SliceFrom(i int) Nibbles {
	if i <= 0 {
		return n
	}
	if i >= n.Len() {
		return Nibbles{}
	}
	return fromValues(n.Values()[i:])
}

// RemoveFirst returns n without its first nibble.
func (n Nibbles) RemoveFirst() Nibbles {
	return n.SliceFrom(1)
}

// Append returns n with the single nibble v appended.
func (n Nibbles) Append(v byte) Nibbles {
	vals := n.Values()
	vals = append(vals, v&lowNibbleMask)
	return fromValues(vals)
}

// Replace returns n with the nibble at index i replaced by v.
func (n Nibbles) Replace(i int, v byte) (Nibbles, error) {
	if i < 0 || i >= n.Len() {
		return Nibbles{}, fmt.Errorf("✘ nibble index %d out of range for length %d", i, n.Len())
	}
	vals := n.Values()
	vals[i] = v & lowNibbleMask
	return fromValues(vals), nil
}

// Equal reports whether a and b contain the same nibble sequence.
func (a Nibbles) Equal(b Nibbles) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		x, _ := a.At(i)
		y, _ := b.At(i)
		if x != y {
			return false
		}
	}
	return true
}

// String renders n as a hex digit per nibble, for debugging.
func (n Nibbles) String() string {
	var sb strings.Builder
	for _, v := range n.Values() {
		fmt.Fprintf(&sb, "%x", v)
	}
	return sb.String()
}
