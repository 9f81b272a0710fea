package auth

import (
	"net/http"

	"github.com/classpoint/gateway/internal/http/helpers"
	"github.com/classpoint/gateway/internal/observability/logger"
)

// Logout handles GET /auth/logout. The session group is always cleared, even
// when no session existed or the provider logout cannot be built.
func (c *Controller) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	host := c.requestHost(r)
	scope := c.cookieScope(host)

	helpers.ClearSessionCookies(w, scope)

	logoutURI := scheme(r, host) + "://" + host.Name + "/"
	target, err := c.service.LogoutURL(logoutURI)
	if err != nil {
		// Unconfigured provider: local teardown only.
		logger.From(ctx).Warn("provider logout unavailable",
			logger.Layer("controller"),
			logger.Component("auth.logout"),
			logger.Err(err),
		)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
