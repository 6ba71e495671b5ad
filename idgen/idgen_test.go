package idgen

import (
	"strings"
	"testing"
)

func TestNewUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestUUIDv7Format(t *testing.T) {
	id := UUIDv7()()
	if len(id) != 36 || strings.Count(id, "-") != 4 {
		t.Errorf("id %q is not a canonical UUID", id)
	}
	if id[14] != '7' {
		t.Errorf("id %q is not version 7", id)
	}
}

func TestNanoID(t *testing.T) {
	gen := NanoID(12)
	id := gen()
	if len(id) != 12 {
		t.Fatalf("len = %d, want 12", len(id))
	}
	for _, c := range id {
		if !strings.ContainsRune("0123456789abcdefghijklmnopqrstuvwxyz", c) {
			t.Fatalf("id %q has character outside alphabet", id)
		}
	}
	if gen() == id {
		t.Error("two draws produced the same id")
	}
}

func TestPrefixed(t *testing.T) {
	gen := Prefixed("aud_", func() string { return "x" })
	if got := gen(); got != "aud_x" {
		t.Errorf("got %q, want aud_x", got)
	}
}
