package trie

import (
	"fmt"

	"github.com/erigontech/receipt-prover/internal/nibbles"
)

// Hex-prefix flags, carried in the high nibble of the first path byte.
const (
	pathFlagOdd  = 0x1
	pathFlagLeaf = 0x2
)

// EncodePath produces the hex-prefix encoding of a nibble path. The first
// byte carries the leaf/extension tag and the odd-length flag; an odd path's
// first nibble rides in its low half.
func EncodePath(path nibbles.Nibbles, leaf bool) []byte {
	flag := byte(0)
	if leaf {
		flag = pathFlagLeaf
	}
	vals := path.Values()

	var out []byte
	if len(vals)%2 == 1 {
		out = append(out, (flag|pathFlagOdd)<<4|vals[0])
		vals = vals[1:]
	} else {
		out = append(out, flag<<4)
	}
	for i := 0; i < len(vals); i += 2 {
		out = append(out, vals[i]<<4|vals[i+1])
	}
	return out
}

// DecodePath inverts EncodePath, returning the path and whether the tag was
// leaf. Flag values outside the four defined ones are a format error.
func DecodePath(encoded []byte) (nibbles.Nibbles, bool, error) {
	if len(encoded) == 0 {
		return nibbles.Nibbles{}, false, fmt.Errorf("✘ empty hex-prefix path")
	}
	flag := encoded[0] >> 4
	if flag > pathFlagLeaf|pathFlagOdd {
		return nibbles.Nibbles{}, false, fmt.Errorf("✘ invalid hex-prefix flag nibble: %#x", flag)
	}
	leaf := flag&pathFlagLeaf != 0

	if flag&pathFlagOdd != 0 {
		return nibbles.FromOffsetBytes(encoded), leaf, nil
	}
	if encoded[0]&0x0f != 0 {
		return nibbles.Nibbles{}, false, fmt.Errorf("✘ even-length hex-prefix path has non-zero pad nibble")
	}
	return nibbles.FromBytes(encoded[1:]), leaf, nil
}
