package utils

import (
	"strings"
	"testing"
)

func TestGenID(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		id := GenID()
		if len(id) != IDLength {
			t.Fatalf("expected %d chars, got %q", IDLength, id)
		}
		for _, c := range id {
			if !strings.ContainsRune(idAlphabet, c) {
				t.Fatalf("unexpected character %q in %q", c, id)
			}
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}
