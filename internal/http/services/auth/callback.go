package auth

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"

	"github.com/classpoint/gateway/internal/idp"
	"github.com/classpoint/gateway/internal/observability/logger"
	"github.com/classpoint/gateway/internal/tenancy"
)

// CallbackInput is the full state of a returning authorize redirect: the
// query parameters plus the transient cookie values stored at login time.
type CallbackInput struct {
	Code        string
	State       string
	StoredState string
	Verifier    string
	PostLogin   string
	RedirectURI string
	OnHQ        bool
}

// LoginResult is a completed authentication: the token set to persist as
// session cookies, the claims they carry and the destination to land on.
type LoginResult struct {
	Tokens       *idp.Tokens
	Claims       *idp.Claims
	SessionValue string
	RedirectTo   string
}

// CompleteLogin runs the callback checks in order and exchanges the code.
// Each check fails the whole flow; the controller clears the transient
// cookies on every branch.
func (s *service) CompleteLogin(ctx context.Context, in CallbackInput) (*LoginResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.callback"),
	)

	if !s.deps.Provider.Configured() {
		return nil, ErrConfigMissing
	}
	if in.Code == "" || in.State == "" {
		return nil, ErrBadRequest
	}
	if in.StoredState == "" || subtle.ConstantTimeCompare([]byte(in.State), []byte(in.StoredState)) != 1 {
		return nil, ErrInvalidState
	}
	if in.Verifier == "" {
		return nil, ErrInvalidState
	}

	tokens, err := s.deps.Provider.Exchange(ctx, in.Code, in.Verifier, in.RedirectURI)
	if err != nil {
		log.Warn("code exchange failed", logger.Err(err))
		return nil, err
	}

	// Decoding here is advisory: the claims pick the landing route, they are
	// not a trust decision. Verification happens when the session is read.
	claims, err := idp.DecodeUnverified(tokens.IDToken)
	if err != nil {
		claims = &idp.Claims{}
	}

	redirectTo := in.PostLogin
	if redirectTo == "" {
		redirectTo = tenancy.DefaultRoute(claims.Groups, in.OnHQ)
	}

	log.Info("login completed",
		logger.Username(claims.Username),
		logger.String("redirect_to", redirectTo),
	)

	return &LoginResult{
		Tokens:       tokens,
		Claims:       claims,
		SessionValue: EncodeSessionValue(claims),
		RedirectTo:   redirectTo,
	}, nil
}

// EncodeSessionValue renders claims as base64url JSON for the client-readable
// session cookie. Display-only; the cookie carries no trust weight.
func EncodeSessionValue(c *idp.Claims) string {
	if c == nil {
		c = &idp.Claims{}
	}
	view := map[string]any{
		"sub":      c.Sub,
		"name":     c.Name,
		"email":    c.Email,
		"username": c.Username,
		"groups":   c.Groups,
	}
	if c.SchoolID != "" {
		view["schoolId"] = c.SchoolID
	}
	if !c.ExpiresAt.IsZero() {
		view["expiresAt"] = c.ExpiresAt.Unix()
	}
	raw, err := json.Marshal(view)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}
