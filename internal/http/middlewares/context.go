package middlewares

import (
	"context"

	"github.com/classpoint/gateway/internal/tenancy"
)

type requestIDKey struct{}
type hostKey struct{}

func setRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, rid)
}

// GetRequestID returns the request id injected by WithRequestID, or "".
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

func setHost(ctx context.Context, h tenancy.Host) context.Context {
	return context.WithValue(ctx, hostKey{}, h)
}

// GetHost returns the classified host injected by WithHostRouting. The zero
// Host (KindUnknown) comes back when the middleware did not run.
func GetHost(ctx context.Context) tenancy.Host {
	if v, ok := ctx.Value(hostKey{}).(tenancy.Host); ok {
		return v
	}
	return tenancy.Host{}
}
