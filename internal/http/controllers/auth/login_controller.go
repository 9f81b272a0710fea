package auth

import (
	"net/http"

	httperrors "github.com/classpoint/gateway/internal/http/errors"
	"github.com/classpoint/gateway/internal/http/helpers"
	svc "github.com/classpoint/gateway/internal/http/services/auth"
	"github.com/classpoint/gateway/internal/observability/logger"
)

// Login handles GET /auth/login. Stores the flow state in transient cookies
// and sends the browser to the hosted UI.
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Component("auth.login"))

	host := c.requestHost(r)
	red, err := c.service.BeginLogin(c.callbackURI(r, host), r.URL.Query().Get("next"))
	if err != nil {
		log.Error("begin login failed", logger.Err(err))
		c.writeFlowError(w, err)
		return
	}

	scope := c.cookieScope(host)
	http.SetCookie(w, helpers.BuildCookie(helpers.CookieOAuthState, red.State, scope, true, helpers.TransientTTL))
	http.SetCookie(w, helpers.BuildCookie(helpers.CookiePKCEVerifier, red.Verifier, scope, true, helpers.TransientTTL))
	if red.PostLogin != "" {
		http.SetCookie(w, helpers.BuildCookie(helpers.CookiePostLogin, red.PostLogin, scope, true, helpers.TransientTTL))
	}

	http.Redirect(w, r, red.URL, http.StatusFound)
}

// writeFlowError maps service failures on the browser flow to the JSON
// envelope.
func (c *Controller) writeFlowError(w http.ResponseWriter, err error) {
	switch err {
	case svc.ErrConfigMissing:
		httperrors.WriteError(w, http.StatusInternalServerError, httperrors.CodeConfigMissing, "authentication is not configured")
	case svc.ErrBadRequest:
		httperrors.WriteError(w, http.StatusBadRequest, httperrors.CodeBadRequest, "malformed request")
	case svc.ErrInvalidState:
		httperrors.WriteError(w, http.StatusBadRequest, httperrors.CodeInvalidState, "login attempt expired or tampered, retry")
	default:
		httperrors.WriteError(w, http.StatusUnauthorized, httperrors.CodeExchangeFailed, "authentication failed")
	}
}
