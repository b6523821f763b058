package trie

import (
	"encoding/hex"
	"errors"

	"github.com/erigontech/receipt-prover/internal/nibbles"
	"github.com/erigontech/receipt-prover/internal/rlp"
)

// ErrKeyNotFound is returned when a branch is requested for a key the trie
// does not hold.
var ErrKeyNotFound = errors.New("✘ key not present in trie")

// KeyForIndex derives the trie key of the entry at position i: the nibbles
// of rlp(i).
func KeyForIndex(i uint64) nibbles.Nibbles {
	return nibbles.FromBytes(rlp.EncodeUint(i))
}

// BranchForKey returns the root-to-terminal node sequence proving key's
// membership. The walk must consume the key entirely.
func (t *Trie) BranchForKey(key nibbles.Nibbles) ([]Node, error) {
	stack, remaining, err := t.Find(key)
	if err != nil {
		return nil, err
	}
	if !remaining.IsEmpty() {
		return nil, ErrKeyNotFound
	}
	return stack, nil
}

// HexProof serializes a branch as hex(rlp(list(rlp(node) for node in
// branch))): the node encodings are appended raw inside one outer list.
func HexProof(branch []Node) string {
	items := make([][]byte, len(branch))
	for i, node := range branch {
		items[i] = node.Encode()
	}
	return hex.EncodeToString(rlp.EncodeList(items...))
}
