// Package idp is the gateway's client for the external identity provider.
//
// The provider is Cognito-shaped: a hosted UI exposes /oauth2/authorize,
// /oauth2/token and /logout on a dedicated auth domain, token signatures are
// published as a JWKS under the pool issuer, and a direct JSON API carries
// the resource-owner-password flow (InitiateAuth). The package covers both
// halves: the browser-facing authorization-code-with-PKCE flow and the
// synchronous password grant used by the API login endpoint.
package idp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// defaultTimeout bounds every call to the identity provider. The upstream
// behavior left this unspecified; 10s matches the rest of our outbound
// clients.
const defaultTimeout = 10 * time.Second

// Config configures the provider client. Region, UserPoolID and ClientID
// are required for any flow; ClientSecret marks the client as confidential
// and switches on the secret hash for the password grant.
type Config struct {
	Region       string
	UserPoolID   string
	ClientID     string
	ClientSecret string

	// Domain is the hosted-UI base URL, e.g. https://auth.classpoint.ng.
	Domain string

	// Issuer overrides the pool issuer URL. Used for tests and for
	// deployments that front the provider with their own issuer.
	Issuer string

	// Endpoint overrides the direct-API base URL (password grant).
	Endpoint string

	// Scopes requested in the authorization-code flow.
	Scopes []string

	HTTPClient *http.Client
}

// Provider is a configured identity-provider client. Safe for concurrent
// use; all mutable state lives in the KeySet.
type Provider struct {
	cfg  Config
	http *http.Client
}

// New creates a Provider. Scope defaults to the OIDC basics.
func New(cfg Config) *Provider {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"openid", "email", "profile"}
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &Provider{cfg: cfg, http: hc}
}

// ClientID returns the configured OAuth client id.
func (p *Provider) ClientID() string { return p.cfg.ClientID }

// Confidential reports whether a client secret is configured.
func (p *Provider) Confidential() bool { return p.cfg.ClientSecret != "" }

// Configured reports whether the provider has the minimum configuration for
// any authentication flow.
func (p *Provider) Configured() bool {
	return p.cfg.ClientID != "" && (p.cfg.Issuer != "" || (p.cfg.Region != "" && p.cfg.UserPoolID != ""))
}

// Issuer returns the token issuer URL for the configured user pool.
func (p *Provider) Issuer() string {
	if p.cfg.Issuer != "" {
		return strings.TrimRight(p.cfg.Issuer, "/")
	}
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", p.cfg.Region, p.cfg.UserPoolID)
}

// JWKSURL returns the published key-set URL.
func (p *Provider) JWKSURL() string {
	return p.Issuer() + "/.well-known/jwks.json"
}

func (p *Provider) domain() string {
	return strings.TrimRight(p.cfg.Domain, "/")
}

// apiEndpoint is the direct-API base for the password grant.
func (p *Provider) apiEndpoint() string {
	if p.cfg.Endpoint != "" {
		return strings.TrimRight(p.cfg.Endpoint, "/") + "/"
	}
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/", p.cfg.Region)
}

// oauthConfig builds the x/oauth2 config for a host-specific callback URL.
func (p *Provider) oauthConfig(redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.cfg.ClientID,
		ClientSecret: p.cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       p.cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  p.domain() + "/oauth2/authorize",
			TokenURL: p.domain() + "/oauth2/token",
		},
	}
}

// AuthorizeURL composes the hosted-UI authorization URL for the
// code-with-PKCE flow.
func (p *Provider) AuthorizeURL(redirectURI, state string, pkce PKCE) string {
	conf := p.oauthConfig(redirectURI)
	return conf.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", pkce.Challenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

// LogoutURL composes the hosted-UI logout URL that clears the provider-side
// session and returns the browser to logoutURI.
func (p *Provider) LogoutURL(logoutURI string) string {
	q := url.Values{}
	q.Set("client_id", p.cfg.ClientID)
	q.Set("logout_uri", logoutURI)
	return p.domain() + "/logout?" + q.Encode()
}

// SecretHash computes the HMAC the provider requires from confidential
// clients on the password grant: base64(HMAC-SHA256(secret, username+clientID)).
// Empty when no client secret is configured.
func (p *Provider) SecretHash(username string) string {
	if p.cfg.ClientSecret == "" {
		return ""
	}
	mac := hmac.New(sha256.New, []byte(p.cfg.ClientSecret))
	mac.Write([]byte(username + p.cfg.ClientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
