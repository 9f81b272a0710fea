package auth

import (
	"strings"

	"github.com/classpoint/gateway/internal/idp"
)

// LoginRedirect carries everything the controller needs to send the browser
// to the hosted UI: the authorize URL plus the flow state that must survive
// the round trip in transient cookies.
type LoginRedirect struct {
	URL       string
	State     string
	Verifier  string
	PostLogin string
}

// BeginLogin generates a fresh PKCE pair and state and builds the authorize
// URL. The next destination is kept only when it is a relative path, so the
// callback can never be steered to a foreign origin.
func (s *service) BeginLogin(redirectURI, next string) (*LoginRedirect, error) {
	if !s.deps.Provider.Configured() {
		return nil, ErrConfigMissing
	}

	pkce, err := idp.GeneratePKCE()
	if err != nil {
		return nil, err
	}
	state, err := idp.GenerateState()
	if err != nil {
		return nil, err
	}

	return &LoginRedirect{
		URL:       s.deps.Provider.AuthorizeURL(redirectURI, state, pkce),
		State:     state,
		Verifier:  pkce.Verifier,
		PostLogin: sanitizeNext(next),
	}, nil
}

// LogoutURL builds the provider's logout redirect for the given return URI.
func (s *service) LogoutURL(logoutURI string) (string, error) {
	if !s.deps.Provider.Configured() {
		return "", ErrConfigMissing
	}
	return s.deps.Provider.LogoutURL(logoutURI), nil
}

// sanitizeNext accepts only same-origin relative paths. Anything with a
// scheme, authority or protocol-relative prefix is dropped.
func sanitizeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	return next
}
