package middlewares

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/classpoint/gateway/internal/cache"
	httperrors "github.com/classpoint/gateway/internal/http/errors"
	"github.com/classpoint/gateway/internal/observability/logger"
)

// RateLimitConfig is a fixed-window limit keyed by client IP.
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

// WithRateLimit throttles the wrapped handler per client IP using the shared
// cache. The limiter fails open: a broken cache must not lock everyone out
// of login.
func WithRateLimit(c cache.Client, keyPrefix string, cfg RateLimitConfig) Middleware {
	if cfg.Limit <= 0 {
		cfg.Limit = 10
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			key := keyPrefix + ":" + ip

			count, err := c.Incr(r.Context(), key, cfg.Window)
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter unavailable",
					logger.Component("ratelimit"),
					logger.Err(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			remaining := cfg.Limit - int(count)
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", cfg.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

			if count > int64(cfg.Limit) {
				logger.From(r.Context()).Warn("rate limit exceeded",
					logger.Component("ratelimit"),
					logger.ClientIP(ip),
				)
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(cfg.Window.Seconds())))
				httperrors.WriteError(w, http.StatusTooManyRequests, httperrors.CodeRateLimited, "too many attempts, retry later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		return strings.TrimSpace(parts[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
