package trie

import (
	"bytes"
	"testing"
)

func TestStorePutGet(t *testing.T) {
	s := NewStore()
	var key Hash
	key[0] = 0xaa

	if _, ok := s.Get(key); ok {
		t.Error("fresh store should not contain the key")
	}

	s.Put(key, []byte{0x01, 0x02})
	got, ok := s.Get(key)
	if !ok {
		t.Fatal("stored key should be present")
	}
	if !bytes.Equal(got, []byte{0x01, 0x02}) {
		t.Errorf("Get: got %x, want 0102", got)
	}
	if s.Len() != 1 {
		t.Errorf("Len: got %d, want 1", s.Len())
	}
}

func TestStorePutReplaces(t *testing.T) {
	s := NewStore()
	var key Hash
	s.Put(key, []byte{0x01})
	s.Put(key, []byte{0x02})
	got, _ := s.Get(key)
	if !bytes.Equal(got, []byte{0x02}) {
		t.Errorf("Get after replace: got %x, want 02", got)
	}
	if s.Len() != 1 {
		t.Errorf("Len: got %d, want 1", s.Len())
	}
}

func TestStoreRemove(t *testing.T) {
	s := NewStore()
	var key Hash
	s.Put(key, []byte{0x01})
	s.Remove(key)
	if _, ok := s.Get(key); ok {
		t.Error("removed key should be absent")
	}
	// Removing a missing key is a no-op.
	s.Remove(key)
	if s.Len() != 0 {
		t.Errorf("Len: got %d, want 0", s.Len())
	}
}
