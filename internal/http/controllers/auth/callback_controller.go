package auth

import (
	"net/http"

	"github.com/classpoint/gateway/internal/http/helpers"
	"github.com/classpoint/gateway/internal/http/middlewares"
	svc "github.com/classpoint/gateway/internal/http/services/auth"
	"github.com/classpoint/gateway/internal/observability/logger"
	"github.com/classpoint/gateway/internal/tenancy"
)

// Callback handles GET /auth/callback. The transient cookies are cleared on
// every branch; a failed callback must not leave a half-open flow behind.
func (c *Controller) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Component("auth.callback"))

	host := c.requestHost(r)
	scope := c.cookieScope(host)
	helpers.ClearTransientCookies(w, scope)

	q := r.URL.Query()
	res, err := c.service.CompleteLogin(ctx, svc.CallbackInput{
		Code:        q.Get("code"),
		State:       q.Get("state"),
		StoredState: helpers.CookieValue(r, helpers.CookieOAuthState),
		Verifier:    helpers.CookieValue(r, helpers.CookiePKCEVerifier),
		PostLogin:   helpers.CookieValue(r, helpers.CookiePostLogin),
		RedirectURI: c.callbackURI(r, host),
		OnHQ:        host.Kind == tenancy.KindHQ,
	})
	if err != nil {
		log.Warn("callback failed", logger.Err(err), logger.Host(host.Name))
		middlewares.RecordLogin("code", "failed")
		c.writeFlowError(w, err)
		return
	}

	middlewares.RecordLogin("code", "success")
	helpers.WriteSessionCookies(w, scope, helpers.SessionTokens{
		IDToken:      res.Tokens.IDToken,
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
		SessionValue: res.SessionValue,
		TokenTTL:     res.Tokens.ExpiresIn,
	})
	http.Redirect(w, r, res.RedirectTo, http.StatusFound)
}
