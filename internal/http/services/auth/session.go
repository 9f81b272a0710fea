package auth

import (
	"context"
	"time"

	"github.com/classpoint/gateway/internal/idp"
	"github.com/classpoint/gateway/internal/observability/logger"
)

// SessionInfo answers "who is the caller" for the session endpoint.
type SessionInfo struct {
	Authenticated bool
	ExpiresAt     time.Time
	Claims        *idp.Claims
}

// Session verifies the ID token cookie against the provider's key set. An
// absent token is an anonymous caller, not an error; a present but invalid
// token surfaces idp.ErrInvalidToken so the controller can answer 401.
func (s *service) Session(ctx context.Context, idToken string) (*SessionInfo, error) {
	if idToken == "" {
		return &SessionInfo{Authenticated: false}, nil
	}

	claims, err := s.deps.Verifier.Verify(ctx, idToken)
	if err != nil {
		logger.From(ctx).Debug("session verification failed",
			logger.Layer("service"),
			logger.Component("auth.session"),
			logger.Err(err),
		)
		return nil, err
	}

	return &SessionInfo{
		Authenticated: true,
		ExpiresAt:     claims.ExpiresAt,
		Claims:        claims,
	}, nil
}
