package idp

import (
	"context"
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every verification failure: bad signature, wrong
// issuer or audience, expiry, wrong token_use. Callers answer 401 without
// distinguishing further.
var ErrInvalidToken = errors.New("idp: invalid token")

// Verifier validates ID tokens against the provider's remote key set.
type Verifier struct {
	keys     *KeySet
	issuer   string
	audience string
}

// NewVerifier creates a Verifier. audience is optional; when empty the aud
// claim is not checked.
func NewVerifier(keys *KeySet, issuer, audience string) *Verifier {
	return &Verifier{keys: keys, issuer: issuer, audience: audience}
}

// Verify checks the token's signature and claims and returns the decoded
// Claims. Only RS256 is accepted; a token_use other than "id" is rejected
// so an access token cannot stand in for an ID token.
func (v *Verifier) Verify(ctx context.Context, raw string) (*Claims, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	keyfunc := func(t *jwtv5.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		return v.keys.Key(ctx, kid)
	}

	parser := jwtv5.NewParser(
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodRS256.Alg()}),
		jwtv5.WithLeeway(30*time.Second),
		jwtv5.WithExpirationRequired(),
	)

	claims := jwtv5.MapClaims{}
	tok, err := parser.ParseWithClaims(raw, claims, keyfunc)
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if iss, _ := claims["iss"].(string); iss != v.issuer {
		return nil, fmt.Errorf("%w: issuer mismatch", ErrInvalidToken)
	}
	if v.audience != "" && !hasAudience(claims, v.audience) {
		return nil, fmt.Errorf("%w: audience mismatch", ErrInvalidToken)
	}
	if use, _ := claims["token_use"].(string); use != "" && use != "id" {
		return nil, fmt.Errorf("%w: token_use %q", ErrInvalidToken, use)
	}

	return claimsFromMap(claims), nil
}

func hasAudience(claims jwtv5.MapClaims, want string) bool {
	switch aud := claims["aud"].(type) {
	case string:
		return aud == want
	case []interface{}:
		for _, a := range aud {
			if s, ok := a.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}
