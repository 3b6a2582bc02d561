package storage

import (
	"strings"
	"testing"
)

func TestNewInviteCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := NewInviteCode()
		if err != nil {
			t.Fatalf("NewInviteCode: %v", err)
		}
		if len(code) != inviteCodeLen {
			t.Fatalf("len(code) = %d, want %d", len(code), inviteCodeLen)
		}
		for _, r := range code {
			if !strings.ContainsRune(inviteAlphabet, r) {
				t.Fatalf("code %q contains %q, not in alphabet", code, r)
			}
		}
		seen[code] = true
	}
	// 100 draws from 32^6 should not collide.
	if len(seen) != 100 {
		t.Fatalf("got %d distinct codes out of 100", len(seen))
	}
}

func TestInviteAlphabetExcludesAmbiguous(t *testing.T) {
	for _, r := range "0O1Il" {
		if strings.ContainsRune(inviteAlphabet, r) {
			t.Fatalf("alphabet contains ambiguous character %q", r)
		}
	}
}
