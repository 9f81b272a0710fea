package auth

import (
	"net/http"
	"time"

	httperrors "github.com/classpoint/gateway/internal/http/errors"
	"github.com/classpoint/gateway/internal/http/helpers"
	"github.com/classpoint/gateway/internal/idp"
)

type sessionResponse struct {
	Authenticated bool        `json:"authenticated"`
	ExpiresAt     int64       `json:"expiresAt,omitempty"`
	Claims        *idp.Claims `json:"claims,omitempty"`
}

// Session handles GET /api/auth/session. An anonymous caller gets a plain
// 200; a caller presenting an invalid or expired token gets 401.
func (c *Controller) Session(w http.ResponseWriter, r *http.Request) {
	idToken := helpers.CookieValue(r, helpers.CookieIDToken)

	info, err := c.service.Session(r.Context(), idToken)
	if err != nil {
		httperrors.WriteJSON(w, http.StatusUnauthorized, sessionResponse{Authenticated: false})
		return
	}
	if !info.Authenticated {
		httperrors.WriteJSON(w, http.StatusOK, sessionResponse{Authenticated: false})
		return
	}

	resp := sessionResponse{Authenticated: true, Claims: info.Claims}
	if !info.ExpiresAt.IsZero() {
		resp.ExpiresAt = info.ExpiresAt.Truncate(time.Second).Unix()
	}
	httperrors.WriteJSON(w, http.StatusOK, resp)
}
