package middlewares

import (
	"net/http"
	"strings"

	httperrors "github.com/classpoint/gateway/internal/http/errors"
	"github.com/classpoint/gateway/internal/observability/logger"
	"github.com/classpoint/gateway/internal/tenancy"
)

// Request headers attached on pass-through so downstream consumers read
// tenant context without re-deriving it.
const (
	HeaderTenantSlug = "X-Tenant-Slug"
	HeaderHostType   = "X-Host-Type"
)

// Path prefixes only reachable from a tenant host.
var tenantOnlyPrefixes = []string{"/admin", "/teacher", "/portal", "/invoices"}

// Path prefix only reachable from the HQ host.
const hqPrefix = "/platform"

// Paths the middleware never touches.
var staticPrefixes = []string{"/assets/", "/static/", "/_next/", "/favicon.ico", "/robots.txt"}

// Auth paths stay reachable even from an unknown host, so an identity
// provider callback to a misconfigured host still produces a real error
// instead of a blank 404.
var authPrefixes = []string{"/auth/", "/api/auth/"}

// WithHostRouting classifies the request host and enforces which path
// namespaces are reachable from which host class:
//
//	root/www         -> 307 to the same path on the HQ host
//	HQ + tenant path -> 307 to /platform on the HQ host
//	tenant + HQ path -> 307 to / on the tenant host
//	unknown host     -> 404 unless it is an auth path
//
// On pass-through the classified host lands in the request context and the
// tenant headers are attached for downstream consumers.
func WithHostRouting(rootDomain string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isStaticPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			host := tenancy.FromRequest(r, rootDomain)
			log := logger.From(r.Context()).With(
				logger.Component("hostrouting"),
				logger.Host(host.Name),
				logger.HostKind(host.Kind.String()),
			)

			switch host.Kind {
			case tenancy.KindRoot:
				target := "https://" + tenancy.HQSubdomain + "." + tenancy.Normalize(rootDomain) + r.URL.RequestURI()
				log.Debug("redirecting root host to hq", logger.Path(r.URL.Path))
				RecordHostAction(host.Kind.String(), "redirect")
				http.Redirect(w, r, target, http.StatusTemporaryRedirect)
				return

			case tenancy.KindHQ:
				if hasPrefixIn(r.URL.Path, tenantOnlyPrefixes) {
					log.Debug("tenant path on hq host", logger.Path(r.URL.Path))
					RecordHostAction(host.Kind.String(), "redirect")
					http.Redirect(w, r, "https://"+host.Name+hqPrefix, http.StatusTemporaryRedirect)
					return
				}

			case tenancy.KindTenant:
				if strings.HasPrefix(r.URL.Path, hqPrefix) {
					log.Debug("hq path on tenant host", logger.Path(r.URL.Path))
					RecordHostAction(host.Kind.String(), "redirect")
					http.Redirect(w, r, "https://"+host.Name+"/", http.StatusTemporaryRedirect)
					return
				}

			case tenancy.KindLocalhostTenant:
				// Normalize drops the dev server port, so stay relative here.
				if strings.HasPrefix(r.URL.Path, hqPrefix) {
					log.Debug("hq path on tenant host", logger.Path(r.URL.Path))
					RecordHostAction(host.Kind.String(), "redirect")
					http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
					return
				}

			case tenancy.KindLocalhostRoot:
				// Local development sees everything.

			default:
				if !hasPrefixIn(r.URL.Path, authPrefixes) {
					log.Warn("unrecognized host", logger.Path(r.URL.Path))
					RecordHostAction(host.Kind.String(), "not_found")
					httperrors.WriteError(w, http.StatusNotFound, httperrors.CodeUnknownHost, "unknown host")
					return
				}
			}

			r.Header.Set(HeaderHostType, host.Kind.String())
			if host.Slug != "" {
				r.Header.Set(HeaderTenantSlug, host.Slug)
			} else {
				r.Header.Del(HeaderTenantSlug)
			}

			next.ServeHTTP(w, r.WithContext(setHost(r.Context(), host)))
		})
	}
}

func isStaticPath(path string) bool {
	return hasPrefixIn(path, staticPrefixes)
}

func hasPrefixIn(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
