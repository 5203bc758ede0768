package utils

import (
	"strings"
	"testing"
)

func TestGenerateResourceCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := GenerateResourceCode()
		if len(code) != 11 {
			t.Fatalf("code %q has length %d, want 11", code, len(code))
		}
		for _, c := range code {
			if !strings.ContainsRune(resourceCodeChars, c) {
				t.Fatalf("code %q contains %q outside [A-Z0-9]", code, c)
			}
		}
		seen[code] = true
	}
	// 36^11 possibilities; one hundred draws colliding would mean a broken generator
	if len(seen) < 100 {
		t.Errorf("got %d distinct codes out of 100", len(seen))
	}
}
