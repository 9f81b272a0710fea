package middlewares

import "net/http"

// Middleware decorates an http.Handler. The signature matches chi's Use, so
// everything here can be mounted on the router or chained by hand in tests.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares left to right: Chain(h, A, B) runs A first.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
