package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/classpoint/gateway/internal/cache"
	authctrl "github.com/classpoint/gateway/internal/http/controllers/auth"
	healthctrl "github.com/classpoint/gateway/internal/http/controllers/health"
	"github.com/classpoint/gateway/internal/http/middlewares"
	authsvc "github.com/classpoint/gateway/internal/http/services/auth"
	"github.com/classpoint/gateway/internal/idp"
)

const testRoot = "classpoint.ng"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	mem, err := cache.New(cache.Config{Driver: "memory"})
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	provider := idp.New(idp.Config{})
	keys := idp.NewKeySet(provider, mem, time.Minute)
	service := authsvc.New(authsvc.Deps{
		Provider:   provider,
		Verifier:   idp.NewVerifier(keys, "https://issuer.test", ""),
		RootDomain: testRoot,
	})
	return NewRouter(RouterDeps{
		Auth:       authctrl.New(service, testRoot),
		Health:     healthctrl.New(mem),
		Cache:      mem,
		RootDomain: testRoot,
		LoginRate:  middlewares.RateLimitConfig{Limit: 100, Window: time.Minute},
	})
}

func get(h http.Handler, host, path string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	r.Host = host
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestRouterHealthEndpoints(t *testing.T) {
	h := newTestRouter(t)
	if rec := get(h, "school1.classpoint.ng", "/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rec.Code)
	}
	if rec := get(h, "school1.classpoint.ng", "/readyz"); rec.Code != http.StatusOK {
		t.Fatalf("readyz = %d", rec.Code)
	}
}

func TestRouterRootHostRedirect(t *testing.T) {
	h := newTestRouter(t)
	rec := get(h, "classpoint.ng", "/admin")
	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "https://app.classpoint.ng/admin" {
		t.Fatalf("location = %q", got)
	}
}

func TestRouterUnknownHost404(t *testing.T) {
	h := newTestRouter(t)
	rec := get(h, "other.example.com", "/portal")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRouterSessionAnonymous(t *testing.T) {
	h := newTestRouter(t)
	rec := get(h, "school1.classpoint.ng", "/api/auth/session")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"authenticated":false`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestRouterLoginUnconfiguredProvider(t *testing.T) {
	h := newTestRouter(t)
	rec := get(h, "school1.classpoint.ng", "/auth/login")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "config_missing") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestRouterRequestIDPropagated(t *testing.T) {
	h := newTestRouter(t)
	rec := get(h, "school1.classpoint.ng", "/healthz")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID on response")
	}
}
