package helpers

import (
	"net/http"
	"strings"
	"time"

	"github.com/classpoint/gateway/internal/tenancy"
)

// Session cookie group, written together on login and cleared together on
// logout. cp.session is readable by the frontend and carries no trust weight.
const (
	CookieIDToken      = "cp.id_token"
	CookieAccessToken  = "cp.access_token"
	CookieRefreshToken = "cp.refresh_token"
	CookieSession      = "cp.session"
)

// Transient cookies carrying OAuth flow state across the redirect round trip.
const (
	CookieOAuthState   = "cp.oauth_state"
	CookiePKCEVerifier = "cp.pkce_verifier"
	CookiePostLogin    = "cp.post_login"
)

const (
	RefreshTokenTTL = 30 * 24 * time.Hour
	SessionTTL      = RefreshTokenTTL
	TransientTTL    = 10 * time.Minute
)

// CookieScope is the domain/secure pair derived from the request host. Shared
// scope (Domain set) lets a session established on one tenant host survive a
// redirect to another subdomain of the same root.
type CookieScope struct {
	Domain string
	Secure bool
}

// ScopeForHost derives the cookie scope from a classified host. Localhost
// variants get host-only insecure cookies, anything under the root domain
// gets a shared .{root} scope, everything else stays host-only.
func ScopeForHost(h tenancy.Host, rootDomain string) CookieScope {
	if h.Kind.IsLocal() {
		return CookieScope{Secure: false}
	}
	root := strings.TrimSpace(strings.ToLower(rootDomain))
	if root != "" && (h.Name == root || strings.HasSuffix(h.Name, "."+root)) {
		return CookieScope{Domain: "." + root, Secure: true}
	}
	return CookieScope{Secure: true}
}

func BuildCookie(name, value string, scope CookieScope, httpOnly bool, ttl time.Duration) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: httpOnly,
		Secure:   scope.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if scope.Domain != "" {
		ck.Domain = scope.Domain
	}
	if ttl > 0 {
		ck.Expires = time.Now().Add(ttl).UTC()
		ck.MaxAge = int(ttl.Seconds())
	}
	return ck
}

func BuildDeletionCookie(name string, scope CookieScope, httpOnly bool) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: httpOnly,
		Secure:   scope.Secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
	}
	if scope.Domain != "" {
		ck.Domain = scope.Domain
	}
	return ck
}

// SessionTokens is what gets persisted into the session cookie group.
type SessionTokens struct {
	IDToken      string
	AccessToken  string
	RefreshToken string
	// SessionValue is the base64url claims blob for cp.session.
	SessionValue string
	// TokenTTL bounds cp.id_token and cp.access_token.
	TokenTTL time.Duration
}

// WriteSessionCookies sets the four session cookies as a group. Optional
// tokens that the provider did not return are skipped rather than written
// empty.
func WriteSessionCookies(w http.ResponseWriter, scope CookieScope, t SessionTokens) {
	ttl := t.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	http.SetCookie(w, BuildCookie(CookieIDToken, t.IDToken, scope, true, ttl))
	if t.AccessToken != "" {
		http.SetCookie(w, BuildCookie(CookieAccessToken, t.AccessToken, scope, true, ttl))
	}
	if t.RefreshToken != "" {
		http.SetCookie(w, BuildCookie(CookieRefreshToken, t.RefreshToken, scope, true, RefreshTokenTTL))
	}
	http.SetCookie(w, BuildCookie(CookieSession, t.SessionValue, scope, false, SessionTTL))
}

// ClearSessionCookies expires the full session group. All four are always
// cleared, whether or not a session existed.
func ClearSessionCookies(w http.ResponseWriter, scope CookieScope) {
	http.SetCookie(w, BuildDeletionCookie(CookieIDToken, scope, true))
	http.SetCookie(w, BuildDeletionCookie(CookieAccessToken, scope, true))
	http.SetCookie(w, BuildDeletionCookie(CookieRefreshToken, scope, true))
	http.SetCookie(w, BuildDeletionCookie(CookieSession, scope, false))
}

// ClearTransientCookies expires the OAuth flow cookies. Called on both the
// success and the failure branch of the callback.
func ClearTransientCookies(w http.ResponseWriter, scope CookieScope) {
	http.SetCookie(w, BuildDeletionCookie(CookieOAuthState, scope, true))
	http.SetCookie(w, BuildDeletionCookie(CookiePKCEVerifier, scope, true))
	http.SetCookie(w, BuildDeletionCookie(CookiePostLogin, scope, true))
}

// CookieValue reads a cookie by name, empty string when absent.
func CookieValue(r *http.Request, name string) string {
	ck, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}
