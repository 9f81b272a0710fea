package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/classpoint/gateway/internal/idp"
	"github.com/classpoint/gateway/internal/observability/logger"
	"github.com/classpoint/gateway/internal/tenancy"
)

// PasswordInput is a direct password grant request. SchoolHost, when set,
// asks for the session to land on a different tenant host than the one the
// request arrived on.
type PasswordInput struct {
	Username   string
	Password   string
	Next       string
	SchoolHost string

	RequestHost tenancy.Host
	Scheme      string
	OnHQ        bool
}

// PasswordLogin runs the direct password grant. Credential failures collapse
// into ErrInvalidCredentials so nothing leaks about which part was wrong.
func (s *service) PasswordLogin(ctx context.Context, in PasswordInput) (*LoginResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.password"),
	)

	if strings.TrimSpace(in.Username) == "" || in.Password == "" {
		return nil, ErrBadRequest
	}
	if !s.deps.Provider.Configured() {
		return nil, ErrConfigMissing
	}

	tokens, err := s.deps.Provider.PasswordAuth(ctx, in.Username, in.Password)
	if err != nil {
		if errors.Is(err, idp.ErrNotAuthorized) {
			log.Info("password login rejected", logger.Username(in.Username))
			return nil, ErrInvalidCredentials
		}
		log.Warn("password grant failed", logger.Err(err))
		return nil, ErrAuthFailed
	}

	claims, err := idp.DecodeUnverified(tokens.IDToken)
	if err != nil {
		claims = &idp.Claims{}
	}

	path := sanitizeNext(in.Next)
	if path == "" {
		path = tenancy.DefaultRoute(claims.Groups, in.OnHQ)
	}
	redirectTo := s.crossHostRedirect(in, path)

	log.Info("password login completed",
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

// crossHostRedirect upgrades the landing path to an absolute URL when the
// caller asked for a different school host and that host is a plausible
// sibling under the same root. The shared cookie scope makes the session
// valid there.
func (s *service) crossHostRedirect(in PasswordInput, path string) string {
	target := tenancy.Normalize(in.SchoolHost)
	if target == "" || target == in.RequestHost.Name {
		return path
	}
	if !tenancy.ValidRedirectHost(target, s.deps.RootDomain) {
		return path
	}
	scheme := in.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return scheme + "://" + target + path
}
