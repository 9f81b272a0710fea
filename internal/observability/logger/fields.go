package logger

import (
	"time"

	"go.uber.org/zap"
)

// Standard fields: HTTP.

// RequestID is the per-request correlation id.
func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

// Method is the HTTP method.
func Method(v string) zap.Field {
	return zap.String("method", v)
}

// Path is the request path.
func Path(v string) zap.Field {
	return zap.String("path", v)
}

// Status is the HTTP response status code.
func Status(v int) zap.Field {
	return zap.Int("status", v)
}

// Duration is the elapsed time for an operation.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// DurationMs is the elapsed time in milliseconds.
func DurationMs(v int64) zap.Field {
	return zap.Int64("duration_ms", v)
}

// Bytes is the number of response bytes written.
func Bytes(v int) zap.Field {
	return zap.Int("bytes", v)
}

// ClientIP is the remote client address.
func ClientIP(v string) zap.Field {
	return zap.String("client_ip", v)
}

// Standard fields: tenancy / identity.

// Host is the normalized request host.
func Host(v string) zap.Field {
	return zap.String("host", v)
}

// HostKind is the classified host kind (root, hq, tenant, ...).
func HostKind(v string) zap.Field {
	return zap.String("host_kind", v)
}

// TenantSlug is the tenant subdomain slug.
func TenantSlug(v string) zap.Field {
	return zap.String("tenant_slug", v)
}

// UserID is the authenticated subject id.
func UserID(v string) zap.Field {
	return zap.String("user_id", v)
}

// Username is the identity-provider username. Avoid at info level in prod.
func Username(v string) zap.Field {
	return zap.String("username", v)
}

// Standard fields: system.

// Component tags the emitting component/module.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Layer tags the architectural layer (middleware, controller, service, idp).
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

// Err wraps an error value.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// String is a generic string field.
func String(key, v string) zap.Field {
	return zap.String(key, v)
}

// Int is a generic int field.
func Int(key string, v int) zap.Field {
	return zap.Int(key, v)
}

// Bool is a generic bool field.
func Bool(key string, v bool) zap.Field {
	return zap.Bool(key, v)
}
