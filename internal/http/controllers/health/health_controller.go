// Package health exposes the liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/classpoint/gateway/internal/cache"
	httperrors "github.com/classpoint/gateway/internal/http/errors"
)

// Controller answers the probe endpoints.
type Controller struct {
	cache cache.Client
}

// New creates the controller.
func New(c cache.Client) *Controller {
	return &Controller{cache: c}
}

// Live handles GET /healthz. Process-up only.
func (c *Controller) Live(w http.ResponseWriter, r *http.Request) {
	httperrors.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /readyz. Ready means the shared cache answers; the
// identity provider is probed lazily on first login, not here.
func (c *Controller) Ready(w http.ResponseWriter, r *http.Request) {
	if c.cache != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := c.cache.Ping(ctx); err != nil {
			httperrors.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "cache": "down"})
			return
		}
	}
	httperrors.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
