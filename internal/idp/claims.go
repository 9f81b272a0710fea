package idp

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Claims is the typed, immutable view of an ID token's payload. Every claim
// the gateway reads is an explicit field; the raw untyped payload never
// crosses the verification boundary. All fields are optional on the wire —
// absent claims stay zero.
type Claims struct {
	Sub         string   `json:"sub,omitempty"`
	Name        string   `json:"name,omitempty"`
	Email       string   `json:"email,omitempty"`
	PhoneNumber string   `json:"phone_number,omitempty"`
	Username    string   `json:"username,omitempty"`
	Groups      []string `json:"groups,omitempty"`
	SchoolID    string   `json:"school_id,omitempty"`
	TokenUse    string   `json:"token_use,omitempty"`

	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Provider claim keys. The pool prefixes its own claims; school id is a
// custom attribute.
const (
	claimUsername = "cognito:username"
	claimGroups   = "cognito:groups"
	claimSchoolID = "custom:school_id"
)

// claimsFromMap builds Claims from a decoded payload. Tolerant of absent or
// mistyped values: they are simply dropped.
func claimsFromMap(m jwtv5.MapClaims) *Claims {
	c := &Claims{
		Sub:         stringClaim(m, "sub"),
		Name:        stringClaim(m, "name"),
		Email:       stringClaim(m, "email"),
		PhoneNumber: stringClaim(m, "phone_number"),
		Username:    stringClaim(m, claimUsername),
		SchoolID:    stringClaim(m, claimSchoolID),
		TokenUse:    stringClaim(m, "token_use"),
	}

	if v, ok := m[claimGroups]; ok {
		switch groups := v.(type) {
		case []interface{}:
			for _, g := range groups {
				if s, ok := g.(string); ok {
					c.Groups = append(c.Groups, s)
				}
			}
		case []string:
			c.Groups = append(c.Groups, groups...)
		case string:
			c.Groups = append(c.Groups, groups)
		}
	}

	if exp, ok := m["exp"].(float64); ok {
		c.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}
	return c
}

func stringClaim(m jwtv5.MapClaims, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// DecodeUnverified decodes a token's claim segment without checking the
// signature. Advisory only: used by the callback to pick a landing route
// from role claims, never for a trust decision.
func DecodeUnverified(raw string) (*Claims, error) {
	claims := jwtv5.MapClaims{}
	if _, _, err := jwtv5.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, errors.New("idp: malformed token")
	}
	return claimsFromMap(claims), nil
}
