package trie

import (
	"encoding/hex"
	"testing"

	"github.com/erigontech/receipt-prover/internal/nibbles"
)

// Vectors from the Patricia-tree appendix of the yellow-paper wiki.
var pathVectors = []struct {
	name string
	path nibbles.Nibbles
	leaf bool
	want string
}{
	{"odd extension", nibbles.FromOffsetBytes([]byte{0x01, 0x23, 0x45}), false, "112345"},
	{"even extension", nibbles.FromBytes([]byte{0x01, 0x23, 0x45}), false, "00012345"},
	{"even leaf", nibbles.FromBytes([]byte{0x0f, 0x1c, 0xb8}), true, "200f1cb8"},
	{"odd leaf", nibbles.FromOffsetBytes([]byte{0x0f, 0x1c, 0xb8}), true, "3f1cb8"},
	{"empty leaf", nibbles.Empty(), true, "20"},
	{"empty extension", nibbles.Empty(), false, "00"},
}

func TestEncodePath(t *testing.T) {
	for _, tt := range pathVectors {
		got := hex.EncodeToString(EncodePath(tt.path, tt.leaf))
		if got != tt.want {
			t.Errorf("EncodePath(%s): got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestPathRoundTrip(t *testing.T) {
	for _, tt := range pathVectors {
		path, leaf, err := DecodePath(EncodePath(tt.path, tt.leaf))
		if err != nil {
			t.Fatalf("DecodePath(%s): %v", tt.name, err)
		}
		if leaf != tt.leaf {
			t.Errorf("%s: tag got leaf=%v, want %v", tt.name, leaf, tt.leaf)
		}
		if !path.Equal(tt.path) {
			t.Errorf("%s: path got %s, want %s", tt.name, path, tt.path)
		}
	}
}

func TestDecodePathRejectsBadFlag(t *testing.T) {
	for _, first := range []byte{0x40, 0x5a, 0xff} {
		if _, _, err := DecodePath([]byte{first, 0x12}); err == nil {
			t.Errorf("flag %#x should be rejected", first>>4)
		}
	}
}

func TestDecodePathRejectsNonZeroPad(t *testing.T) {
	if _, _, err := DecodePath([]byte{0x21, 0x12}); err == nil {
		t.Error("even-length path with non-zero pad nibble should be rejected")
	}
}

func TestDecodePathRejectsEmpty(t *testing.T) {
	if _, _, err := DecodePath(nil); err == nil {
		t.Error("empty input should be rejected")
	}
}
