// Package http assembles the gateway's HTTP surface: middleware chain,
// routes and server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/classpoint/gateway/internal/cache"
	authctrl "github.com/classpoint/gateway/internal/http/controllers/auth"
	healthctrl "github.com/classpoint/gateway/internal/http/controllers/health"
	"github.com/classpoint/gateway/internal/http/middlewares"
)

// RouterDeps carries everything the route tree needs.
type RouterDeps struct {
	Auth   *authctrl.Controller
	Health *healthctrl.Controller

	Cache      cache.Client
	RootDomain string

	LoginRate middlewares.RateLimitConfig

	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
}

// NewRouter builds the route tree with the gateway middleware chain:
// request id, host routing, access logging, metrics.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middlewares.WithRequestID())
	r.Use(middlewares.WithHostRouting(deps.RootDomain))
	r.Use(middlewares.WithLogging())
	r.Use(middlewares.WithMetrics())

	r.Get("/healthz", deps.Health.Live)
	r.Get("/readyz", deps.Health.Ready)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", deps.Auth.Login)
		r.Get("/callback", deps.Auth.Callback)
		r.Get("/logout", deps.Auth.Logout)
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Get("/session", deps.Auth.Session)
		r.With(middlewares.WithRateLimit(deps.Cache, "rl:login", deps.LoginRate)).
			Post("/login", deps.Auth.PasswordLogin)
	})

	return r
}
