package idp

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// PKCE is a verifier/challenge pair per RFC 7636. The verifier travels in a
// short-lived cookie across the authorize/callback round trip; the challenge
// goes to the provider in the authorize URL.
type PKCE struct {
	Verifier  string
	Challenge string
}

// GeneratePKCE creates a fresh pair: 32 random bytes, base64url without
// padding, challenged with S256.
func GeneratePKCE() (PKCE, error) {
	verifier, err := randomToken(32)
	if err != nil {
		return PKCE{}, fmt.Errorf("idp: generate pkce verifier: %w", err)
	}
	return PKCE{Verifier: verifier, Challenge: ChallengeS256(verifier)}, nil
}

// ChallengeS256 derives the S256 code challenge for a verifier.
func ChallengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// GenerateState creates the anti-forgery state token for one authorization
// attempt. Independent of the PKCE verifier.
func GenerateState() (string, error) {
	s, err := randomToken(32)
	if err != nil {
		return "", fmt.Errorf("idp: generate state: %w", err)
	}
	return s, nil
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
