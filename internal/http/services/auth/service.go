// Package auth implements the login flows: hosted-UI authorization code with
// PKCE, direct password grant, session verification and logout.
package auth

import (
	"context"
	"errors"

	"github.com/classpoint/gateway/internal/idp"
)

// Flow failures the controllers map to HTTP statuses. Provider internals are
// never surfaced to the client.
var (
	ErrConfigMissing      = errors.New("auth: identity provider not configured")
	ErrBadRequest         = errors.New("auth: malformed request")
	ErrInvalidState       = errors.New("auth: oauth state mismatch")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrAuthFailed         = errors.New("auth: authentication failed")
)

// Deps contains the dependencies for the auth service.
type Deps struct {
	Provider   *idp.Provider
	Verifier   *idp.Verifier
	RootDomain string
}

// Service exposes the authentication operations used by the controllers.
type Service interface {
	BeginLogin(redirectURI, next string) (*LoginRedirect, error)
	CompleteLogin(ctx context.Context, in CallbackInput) (*LoginResult, error)
	PasswordLogin(ctx context.Context, in PasswordInput) (*LoginResult, error)
	Session(ctx context.Context, idToken string) (*SessionInfo, error)
	LogoutURL(logoutURI string) (string, error)
}

type service struct {
	deps Deps
}

// New creates the auth service.
func New(deps Deps) Service {
	return &service{deps: deps}
}
