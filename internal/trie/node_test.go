package trie

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/erigontech/receipt-prover/internal/nibbles"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex in test: %v", err)
	}
	return b
}

func sampleLeaf(t *testing.T) *LeafNode {
	t.Helper()
	return NewLeaf(nibbles.FromBytes([]byte{0x12, 0x34, 0x56}), mustHex(t, "c0ffee"))
}

func sampleExtension(t *testing.T) *ExtensionNode {
	t.Helper()
	child := mustHex(t, "1d237c84432c78d82886cb7d6549c179ca51ebf3b324d2a3fa01af6a563a9377")
	ext, err := NewExtension(nibbles.FromBytes([]byte{0xc0, 0xff, 0xee}), child)
	if err != nil {
		t.Fatalf("NewExtension: %v", err)
	}
	return ext
}

func TestLeafEncoding(t *testing.T) {
	got := hex.EncodeToString(sampleLeaf(t).Encode())
	want := "c9842012345683c0ffee"
	if got != want {
		t.Errorf("leaf encoding: got %s, want %s", got, want)
	}
}

func TestLeafHash(t *testing.T) {
	got := HashNode(sampleLeaf(t))
	want := "c9161ce49c6a3362f5d20db4b6e36c259c9624eac5f99e64a052f45035d14c5d"
	if hex.EncodeToString(got[:]) != want {
		t.Errorf("leaf hash: got %x, want %s", got, want)
	}
}

func TestExtensionEncoding(t *testing.T) {
	got := hex.EncodeToString(sampleExtension(t).Encode())
	want := "e68400c0ffeea01d237c84432c78d82886cb7d6549c179ca51ebf3b324d2a3fa01af6a563a9377"
	if got != want {
		t.Errorf("extension encoding: got %s, want %s", got, want)
	}
}

func TestExtensionHash(t *testing.T) {
	got := HashNode(sampleExtension(t))
	want := "d1425391446456311990cdf61e1dbe92b14cb53caad0539a15564b9efac0f733"
	if hex.EncodeToString(got[:]) != want {
		t.Errorf("extension hash: got %x, want %s", got, want)
	}
}

func TestExtensionRejectsEmptyPath(t *testing.T) {
	if _, err := NewExtension(nibbles.Empty(), make([]byte, 32)); err == nil {
		t.Error("extension with empty path should be rejected")
	}
}

func TestBranchEncodingEmptySlots(t *testing.T) {
	branch := NewBranch(nil)
	// 17 empty strings: payload of 17 * 0x80.
	want := "d1" + "8080808080808080808080808080808080"
	got := hex.EncodeToString(branch.Encode())
	if got != want {
		t.Errorf("empty branch encoding: got %s, want %s", got, want)
	}
}

func TestBranchChildAccess(t *testing.T) {
	branch := NewBranch([]byte{0xbe, 0xef})
	if branch.ChildAt(5) != nil {
		t.Error("fresh branch slot should be empty")
	}
	hash := bytes.Repeat([]byte{0xaa}, 32)
	updated := branch.SetChild(5, hash)
	if !bytes.Equal(updated.ChildAt(5), hash) {
		t.Error("SetChild did not set slot 5")
	}
	if branch.ChildAt(5) != nil {
		t.Error("SetChild must not mutate the receiver")
	}
	if updated.KeyNibbles() != 1 {
		t.Errorf("branch KeyNibbles: got %d, want 1", updated.KeyNibbles())
	}
}

func TestNodeRoundTrip(t *testing.T) {
	hash := bytes.Repeat([]byte{0xcd}, 32)
	branch := NewBranch([]byte{0x01})
	branch = branch.SetChild(3, hash)
	inline := NewLeaf(nibbles.FromOffsetBytes([]byte{0x04}), []byte{0x02}).Encode()
	branch = branch.SetChild(9, inline)

	nodes := []Node{
		sampleLeaf(t),
		sampleExtension(t),
		branch,
		NewLeaf(nibbles.Empty(), []byte{0x99}),
	}
	for _, node := range nodes {
		decoded, err := DecodeNode(node.Encode())
		if err != nil {
			t.Fatalf("DecodeNode: %v", err)
		}
		if !NodesEqual(node, decoded) {
			t.Errorf("round trip changed encoding: %x vs %x", node.Encode(), decoded.Encode())
		}
	}
}

func TestDecodeNodeRejectsBadItemCount(t *testing.T) {
	// A 3-item list is neither a short node nor a branch.
	bad := mustHex(t, "c3010203")
	if _, err := DecodeNode(bad); err == nil {
		t.Error("3-item list should be rejected")
	}
}

func TestDecodeNodeRejectsBadChildRef(t *testing.T) {
	// Branch slot holding a 5-byte string is neither hash nor inline node.
	items := make([][]byte, 0, 17)
	items = append(items, mustHex(t, "8512345678aa"))
	for i := 1; i < 17; i++ {
		items = append(items, []byte{0x80})
	}
	var payload []byte
	for _, item := range items {
		payload = append(payload, item...)
	}
	raw := append([]byte{byte(0xc0 + len(payload))}, payload...)
	if _, err := DecodeNode(raw); err == nil {
		t.Error("5-byte child reference should be rejected")
	}
}

func TestNodesEqualIsStructural(t *testing.T) {
	a := NewLeaf(nibbles.FromBytes([]byte{0x12}), []byte{0x01})
	b := NewLeaf(nibbles.FromBytes([]byte{0x12}), []byte{0x01})
	c := NewLeaf(nibbles.FromBytes([]byte{0x12}), []byte{0x02})
	if !NodesEqual(a, b) {
		t.Error("identical nodes should be equal")
	}
	if NodesEqual(a, c) {
		t.Error("different values should not be equal")
	}
}
