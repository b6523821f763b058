// Package trie implements the Modified Merkle-Patricia Trie over an
// in-memory content-addressed store: insertion, lookup, and extraction of the
// root-to-terminal branch used for membership proofs.
package trie

import (
	"fmt"

	"github.com/erigontech/receipt-prover/internal/keccak"
	"github.com/erigontech/receipt-prover/internal/nibbles"
	"github.com/erigontech/receipt-prover/internal/rlp"
)

// EmptyRoot is keccak(rlp("")), the root of a trie with no entries:
// 0x56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421.
var EmptyRoot = Hash(keccak.Sum256(rlp.EmptyString))

// Trie is a write-only Merkle-Patricia trie. The zero of the structure is
// not usable; construct with New.
type Trie struct {
	root  childRef
	store *Store
}

// New returns an empty trie backed by a fresh store.
func New() *Trie {
	return &Trie{store: NewStore()}
}

// Store exposes the trie's node store.
func (t *Trie) Store() *Store {
	return t.store
}

// Root returns the trie's root hash. Roots whose node encodes below 32 bytes
// hash that encoding directly.
func (t *Trie) Root() Hash {
	if t.root == nil {
		return EmptyRoot
	}
	if len(t.root) == keccak.HashLength {
		var h Hash
		copy(h[:], t.root)
		return h
	}
	return Hash(keccak.Sum256(t.root))
}

// Put inserts value under key, replacing any previous value. Every node on
// the mutated walk is re-encoded, re-hashed and written to the store, so the
// store always resolves the new root.
func (t *Trie) Put(key nibbles.Nibbles, value []byte) error {
	ref, err := t.insert(t.root, key, value)
	if err != nil {
		return err
	}
	t.root = ref
	return nil
}

// insert descends from ref matching key, returning the replacement reference
// for the subtree. The five shapes below cover everything a receipts trie
// can produce.
func (t *Trie) insert(ref childRef, key nibbles.Nibbles, value []byte) (childRef, error) {
	if ref == nil {
		return t.commit(NewLeaf(key, value)), nil
	}

	node, err := t.resolve(ref)
	if err != nil {
		return nil, err
	}

	switch n := node.(type) {
	case *LeafNode:
		return t.insertAtLeaf(n, key, value)
	case *ExtensionNode:
		return t.insertAtExtension(n, key, value)
	case *BranchNode:
		return t.insertAtBranch(n, key, value)
	default:
		return nil, fmt.Errorf("✘ unknown node variant in trie walk")
	}
}

func (t *Trie) insertAtLeaf(leaf *LeafNode, key nibbles.Nibbles, value []byte) (childRef, error) {
	shared, restOld, restNew := nibbles.CommonPrefix(leaf.Path, key)

	if restOld.IsEmpty() && restNew.IsEmpty() {
		// Exact key: replace the value.
		return t.commit(NewLeaf(key, value)), nil
	}

	branch := NewBranch(nil)
	if restOld.IsEmpty() {
		branch.Value = leaf.Value
	} else {
		first, _ := restOld.At(0)
		branch.Children[first] = t.commit(NewLeaf(restOld.RemoveFirst(), leaf.Value))
	}
	if restNew.IsEmpty() {
		branch.Value = value
	} else {
		first, _ := restNew.At(0)
		branch.Children[first] = t.commit(NewLeaf(restNew.RemoveFirst(), value))
	}

	return t.commitUnderPrefix(shared, t.commit(branch))
}

func (t *Trie) insertAtExtension(ext *ExtensionNode, key nibbles.Nibbles, value []byte) (childRef, error) {
	shared, restExt, restKey := nibbles.CommonPrefix(ext.Path, key)

	if restExt.IsEmpty() {
		// Key runs through the whole extension: descend into the child.
		child, err := t.insert(ext.Child, restKey, value)
		if err != nil {
			return nil, err
		}
		next, err := NewExtension(ext.Path, child)
		if err != nil {
			return nil, err
		}
		return t.commit(next), nil
	}

	// Split the extension at the divergence point.
	branch := NewBranch(nil)
	extFirst, _ := restExt.At(0)
	if restExt.Len() == 1 {
		branch.Children[extFirst] = ext.Child
	} else {
		tail, err := NewExtension(restExt.RemoveFirst(), ext.Child)
		if err != nil {
			return nil, err
		}
		branch.Children[extFirst] = t.commit(tail)
	}
	if restKey.IsEmpty() {
		branch.Value = value
	} else {
		keyFirst, _ := restKey.At(0)
		branch.Children[keyFirst] = t.commit(NewLeaf(restKey.RemoveFirst(), value))
	}

	return t.commitUnderPrefix(shared, t.commit(branch))
}

func (t *Trie) insertAtBranch(branch *BranchNode, key nibbles.Nibbles, value []byte) (childRef, error) {
	if key.IsEmpty() {
		next := *branch
		next.Value = value
		return t.commit(&next), nil
	}
	first, _ := key.At(0)
	child, err := t.insert(branch.Children[first], key.RemoveFirst(), value)
	if err != nil {
		return nil, err
	}
	return t.commit(branch.SetChild(int(first), child)), nil
}

// commitUnderPrefix wraps ref in an extension over prefix, or returns it
// unchanged when the prefix is empty.
func (t *Trie) commitUnderPrefix(prefix nibbles.Nibbles, ref childRef) (childRef, error) {
	if prefix.IsEmpty() {
		return ref, nil
	}
	ext, err := NewExtension(prefix, ref)
	if err != nil {
		return nil, err
	}
	return t.commit(ext), nil
}

// commit encodes a node, writes it to the store under its hash, and returns
// the reference a parent embeds: the hash for encodings of 32 bytes or more,
// the raw encoding inlined otherwise.
func (t *Trie) commit(n Node) childRef {
	encoded := n.Encode()
	hash := keccak.Sum256(encoded)
	t.store.Put(hash, encoded)
	if len(encoded) < keccak.HashLength {
		return encoded
	}
	return hash[:]
}

// resolve loads the node a reference points at: by store lookup for hashes,
// by decoding in place for inline references.
func (t *Trie) resolve(ref childRef) (Node, error) {
	raw := ref
	if len(ref) == keccak.HashLength {
		var h Hash
		copy(h[:], ref)
		stored, ok := t.store.Get(h)
		if !ok {
			return nil, fmt.Errorf("✘ node %x referenced but missing from store", h)
		}
		raw = stored
	}
	return DecodeNode(raw)
}

// Find walks the trie from the root towards key. It returns the visited
// nodes root-first and whatever remained of the key at the terminal node: an
// empty remainder means the key is present, a non-empty one identifies the
// closest node on the path.
func (t *Trie) Find(key nibbles.Nibbles) ([]Node, nibbles.Nibbles, error) {
	var stack []Node
	remaining := key
	ref := t.root

	for ref != nil {
		node, err := t.resolve(ref)
		if err != nil {
			return nil, nibbles.Nibbles{}, err
		}
		stack = append(stack, node)

		switch n := node.(type) {
		case *LeafNode:
			if n.Path.Equal(remaining) {
				remaining = nibbles.Empty()
			}
			return stack, remaining, nil
		case *ExtensionNode:
			_, restExt, restKey := nibbles.CommonPrefix(n.Path, remaining)
			if !restExt.IsEmpty() {
				return stack, remaining, nil
			}
			remaining = restKey
			ref = n.Child
		case *BranchNode:
			if remaining.IsEmpty() {
				return stack, remaining, nil
			}
			first, _ := remaining.At(0)
			child := n.Children[first]
			if child == nil {
				return stack, remaining, nil
			}
			remaining = remaining.RemoveFirst()
			ref = child
		}
	}

	return stack, remaining, nil
}
