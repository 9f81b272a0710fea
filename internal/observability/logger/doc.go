// Package logger provides a singleton Zap logger with context-based scoping.
//
// The gateway runs one logger for the whole process, initialized once with
// Init(). Middlewares derive a request-scoped logger (request_id, method,
// path, tenant) and inject it into the request context; everything below the
// middleware layer pulls it back out with From(ctx), so handlers and services
// never thread a *zap.Logger through their signatures.
//
// "dev" uses a colored console encoder, "prod" emits JSON. The level is
// configurable through LOG_LEVEL.
package logger
