package auth

import (
	"net/http"

	httperrors "github.com/classpoint/gateway/internal/http/errors"
	"github.com/classpoint/gateway/internal/http/helpers"
	"github.com/classpoint/gateway/internal/http/middlewares"
	svc "github.com/classpoint/gateway/internal/http/services/auth"
	"github.com/classpoint/gateway/internal/observability/logger"
	"github.com/classpoint/gateway/internal/tenancy"
)

type passwordLoginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Next       string `json:"next,omitempty"`
	SchoolHost string `json:"schoolHost,omitempty"`
}

type passwordLoginResponse struct {
	OK         bool   `json:"ok"`
	RedirectTo string `json:"redirectTo"`
}

type passwordLoginError struct {
	Error string `json:"error"`
}

// PasswordLogin handles POST /api/auth/login. Credential failures always get
// the same generic message.
func (c *Controller) PasswordLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Component("auth.password"))

	var req passwordLoginRequest
	if !httperrors.ReadJSON(w, r, &req) {
		return
	}

	host := c.requestHost(r)
	res, err := c.service.PasswordLogin(ctx, svc.PasswordInput{
		Username:    req.Username,
		Password:    req.Password,
		Next:        req.Next,
		SchoolHost:  req.SchoolHost,
		RequestHost: host,
		Scheme:      scheme(r, host),
		OnHQ:        host.Kind == tenancy.KindHQ,
	})
	if err != nil {
		switch err {
		case svc.ErrBadRequest:
			httperrors.WriteError(w, http.StatusBadRequest, httperrors.CodeBadRequest, "username and password are required")
		case svc.ErrInvalidCredentials:
			middlewares.RecordLogin("password", "invalid_credentials")
			httperrors.WriteJSON(w, http.StatusUnauthorized, passwordLoginError{Error: httperrors.MsgInvalidCredentials})
		case svc.ErrConfigMissing:
			httperrors.WriteError(w, http.StatusInternalServerError, httperrors.CodeConfigMissing, "authentication is not configured")
		default:
			log.Warn("password login failed", logger.Err(err))
			middlewares.RecordLogin("password", "failed")
			httperrors.WriteJSON(w, http.StatusUnauthorized, passwordLoginError{Error: "Authentication failed."})
		}
		return
	}

	middlewares.RecordLogin("password", "success")
	helpers.WriteSessionCookies(w, c.cookieScope(host), helpers.SessionTokens{
		IDToken:      res.Tokens.IDToken,
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
		SessionValue: res.SessionValue,
		TokenTTL:     res.Tokens.ExpiresIn,
	})
	httperrors.WriteJSON(w, http.StatusOK, passwordLoginResponse{OK: true, RedirectTo: res.RedirectTo})
}
