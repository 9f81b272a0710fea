// Package auth wires the authentication endpoints: hosted-UI login and
// callback, logout, the session probe and the JSON password login.
package auth

import (
	"net/http"
	"strings"

	"github.com/classpoint/gateway/internal/http/helpers"
	"github.com/classpoint/gateway/internal/http/middlewares"
	svc "github.com/classpoint/gateway/internal/http/services/auth"
	"github.com/classpoint/gateway/internal/tenancy"
)

// Controller handles the auth surface. One instance serves every host; the
// per-request host decides cookie scope and redirect targets.
type Controller struct {
	service    svc.Service
	rootDomain string
}

// New creates the controller.
func New(s svc.Service, rootDomain string) *Controller {
	return &Controller{service: s, rootDomain: rootDomain}
}

// requestHost returns the classified host, falling back to classifying the
// raw request when the routing middleware did not run (direct mounting in
// tests).
func (c *Controller) requestHost(r *http.Request) tenancy.Host {
	h := middlewares.GetHost(r.Context())
	if h.Name == "" {
		h = tenancy.FromRequest(r, c.rootDomain)
	}
	return h
}

// scheme picks the external scheme for absolute URLs built from the request.
func scheme(r *http.Request, h tenancy.Host) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		if i := strings.IndexByte(proto, ','); i >= 0 {
			proto = proto[:i]
		}
		return strings.TrimSpace(proto)
	}
	if h.Kind.IsLocal() {
		return "http"
	}
	return "https"
}

func (c *Controller) callbackURI(r *http.Request, h tenancy.Host) string {
	return scheme(r, h) + "://" + h.Name + "/auth/callback"
}

func (c *Controller) cookieScope(h tenancy.Host) helpers.CookieScope {
	return helpers.ScopeForHost(h, c.rootDomain)
}
