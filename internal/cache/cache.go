// Package cache provides a small multi-backend cache abstraction.
//
// Two backends are supported:
//   - memory (in-process, development and tests)
//   - redis (shared, production deployments with more than one replica)
//
// The gateway uses it for the identity provider's JWKS document and for the
// login rate-limit counters. Nothing stored here is authoritative: every
// entry can be re-fetched or recomputed.
package cache

import (
	"context"
	"time"
)

// Client defines the cache operations the gateway needs.
type Client interface {
	// Get returns a value. ErrNotFound when the key does not exist.
	Get(ctx context.Context, key string) (string, error)

	// Set stores a value with a TTL. ttl == 0 means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// Incr atomically increments a counter, creating it with the given TTL
	// on first use, and returns the new value.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Driver   string // "memory" | "redis"
	Addr     string // host:port, redis only
	Password string
	DB       int
	Prefix   string // prepended to every key
}

// ErrNotFound is returned by Get for missing keys.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "cache: key not found" }

// IsNotFound reports whether err is a cache miss.
func IsNotFound(err error) bool {
	_, ok := err.(errNotFound)
	return ok
}

// New builds a Client from config. Unknown drivers fall back to memory.
func New(cfg Config) (Client, error) {
	switch cfg.Driver {
	case "redis":
		return NewRedis(cfg)
	default:
		return NewMemory(cfg.Prefix), nil
	}
}
