package idp

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"testing"
)

func TestGeneratePKCE(t *testing.T) {
	p, err := GeneratePKCE()
	if err != nil {
		t.Fatalf("GeneratePKCE: %v", err)
	}

	// 32 random bytes -> 43 chars of unpadded base64url
	if len(p.Verifier) < 43 {
		t.Fatalf("verifier too short: %d chars", len(p.Verifier))
	}
	if strings.ContainsAny(p.Verifier, "+/=") {
		t.Fatalf("verifier is not unpadded base64url: %q", p.Verifier)
	}

	sum := sha256.Sum256([]byte(p.Verifier))
	want := base64.RawURLEncoding.EncodeToString(sum[:])
	if p.Challenge != want {
		t.Fatalf("challenge mismatch: got %q want %q", p.Challenge, want)
	}
}

func TestGeneratePKCEUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 256; i++ {
		p, err := GeneratePKCE()
		if err != nil {
			t.Fatalf("GeneratePKCE: %v", err)
		}
		if seen[p.Verifier] {
			t.Fatalf("duplicate verifier after %d samples", i)
		}
		seen[p.Verifier] = true
	}
}

func TestGenerateStateIndependentOfVerifier(t *testing.T) {
	p, err := GeneratePKCE()
	if err != nil {
		t.Fatal(err)
	}
	s, err := GenerateState()
	if err != nil {
		t.Fatal(err)
	}
	if s == "" || s == p.Verifier {
		t.Fatalf("state must be a non-empty independent token")
	}
}
