package trie

import (
	"bytes"
	"fmt"

	"github.com/erigontech/receipt-prover/internal/keccak"
	"github.com/erigontech/receipt-prover/internal/nibbles"
	"github.com/erigontech/receipt-prover/internal/rlp"
)

// Hash is a 32-byte keccak digest identifying a node by its RLP encoding.
type Hash [keccak.HashLength]byte

// BranchWidth is the number of child slots in a branch node; slot 16 holds
// the branch value.
const BranchWidth = 16

// A childRef points at a subtree: 32 bytes when it is the child's hash,
// anything shorter when it is the child's RLP inlined. nil means empty.
type childRef = []byte

// Node is one of the three trie node variants. Equality is structural: two
// nodes are equal iff their encodings are equal.
type Node interface {
	// Encode returns the node's canonical RLP encoding, a 2-item list for
	// leaves and extensions and a 17-item list for branches.
	Encode() []byte

	// KeyNibbles returns how many key nibbles descending through this node
	// consumes: the path length for leaves and extensions, one for branches.
	KeyNibbles() int
}

// HashNode returns keccak(rlp(node)).
func HashNode(n Node) Hash {
	return keccak.Sum256(n.Encode())
}

// NodesEqual reports structural equality.
func NodesEqual(a, b Node) bool {
	return bytes.Equal(a.Encode(), b.Encode())
}

// LeafNode terminates a path and holds the stored payload. Its path may be
// empty only when the leaf is the sole entry of a trie, or when it hangs
// directly off a branch slot that consumed its last nibble.
type LeafNode struct {
	Path  nibbles.Nibbles
	Value []byte
}

// NewLeaf constructs a leaf holding value at the given path.
func NewLeaf(path nibbles.Nibbles, value []byte) *LeafNode {
	return &LeafNode{Path: path, Value: value}
}

func (l *LeafNode) Encode() []byte {
	return rlp.EncodeList(
		rlp.EncodeBytes(EncodePath(l.Path, true)),
		rlp.EncodeBytes(l.Value),
	)
}

func (l *LeafNode) KeyNibbles() int { return l.Path.Len() }

// ExtensionNode shares a path prefix with exactly one descendant subtree.
// Its path is never empty and its child resolves to a branch.
type ExtensionNode struct {
	Path  nibbles.Nibbles
	Child childRef
}

// NewExtension constructs an extension over path pointing at child.
func NewExtension(path nibbles.Nibbles, child childRef) (*ExtensionNode, error) {
	if path.IsEmpty() {
		return nil, fmt.Errorf("✘ extension node path must not be empty")
	}
	return &ExtensionNode{Path: path, Child: child}, nil
}

func (e *ExtensionNode) Encode() []byte {
	return rlp.EncodeList(
		rlp.EncodeBytes(EncodePath(e.Path, false)),
		encodeChildRef(e.Child),
	)
}

func (e *ExtensionNode) KeyNibbles() int { return e.Path.Len() }

// BranchNode fans out over the next key nibble; slot 16 is the value stored
// exactly at this node. A well-formed branch has at least two occupied slots.
type BranchNode struct {
	Children [BranchWidth]childRef
	Value    []byte
}

// NewBranch constructs an empty branch with an optional value.
func NewBranch(value []byte) *BranchNode {
	return &BranchNode{Value: value}
}

// ChildAt returns the reference in slot i, nil if empty.
func (b *BranchNode) ChildAt(i int) childRef {
	return b.Children[i]
}

// SetChild returns a copy of b with slot i replaced.
func (b *BranchNode) SetChild(i int, ref childRef) *BranchNode {
	next := *b
	next.Children[i] = ref
	return &next
}

func (b *BranchNode) Encode() []byte {
	items := make([][]byte, 0, BranchWidth+1)
	for i := 0; i < BranchWidth; i++ {
		if b.Children[i] == nil {
			items = append(items, rlp.EmptyString)
			continue
		}
		items = append(items, encodeChildRef(b.Children[i]))
	}
	if b.Value == nil {
		items = append(items, rlp.EmptyString)
	} else {
		items = append(items, rlp.EncodeBytes(b.Value))
	}
	return rlp.EncodeList(items...)
}

func (b *BranchNode) KeyNibbles() int { return 1 }

// encodeChildRef encodes a subtree reference into a node body: hashes are
// 32-byte strings, inline nodes are appended as their raw RLP.
func encodeChildRef(ref childRef) []byte {
	if len(ref) == keccak.HashLength {
		return rlp.EncodeBytes(ref)
	}
	return ref
}

// DecodeNode parses a node from its RLP encoding.
func DecodeNode(raw []byte) (Node, error) {
	items, err := rlp.SplitList(raw)
	if err != nil {
		return nil, err
	}
	switch len(items) {
	case 2:
		return decodeShortNode(items)
	case BranchWidth + 1:
		return decodeBranchNode(items)
	default:
		return nil, fmt.Errorf("✘ trie node must have 2 or 17 items, found %d", len(items))
	}
}

func decodeShortNode(items [][]byte) (Node, error) {
	encodedPath, err := rlp.DecodeBytes(items[0])
	if err != nil {
		return nil, err
	}
	path, leaf, err := DecodePath(encodedPath)
	if err != nil {
		return nil, err
	}
	if leaf {
		value, err := rlp.DecodeBytes(items[1])
		if err != nil {
			return nil, err
		}
		return &LeafNode{Path: path, Value: value}, nil
	}
	child, err := decodeChildRef(items[1])
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, fmt.Errorf("✘ extension node has empty child reference")
	}
	return &ExtensionNode{Path: path, Child: child}, nil
}

func decodeBranchNode(items [][]byte) (Node, error) {
	branch := &BranchNode{}
	for i := 0; i < BranchWidth; i++ {
		ref, err := decodeChildRef(items[i])
		if err != nil {
			return nil, err
		}
		branch.Children[i] = ref
	}
	value, err := rlp.DecodeBytes(items[BranchWidth])
	if err != nil {
		return nil, err
	}
	if len(value) > 0 {
		branch.Value = value
	}
	return branch, nil
}

// decodeChildRef parses one child slot: an empty string is an empty slot, a
// 32-byte string is a hash, and an inline list is kept as raw RLP.
func decodeChildRef(item []byte) (childRef, error) {
	if rlp.IsList(item) {
		return item, nil
	}
	payload, err := rlp.DecodeBytes(item)
	if err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return nil, nil
	}
	if len(payload) != keccak.HashLength {
		return nil, fmt.Errorf("✘ child reference must be empty, a 32-byte hash or an inline node, found %d bytes", len(payload))
	}
	ref := make([]byte, keccak.HashLength)
	copy(ref, payload)
	return ref, nil
}
