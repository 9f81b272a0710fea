// Package tenancy classifies request hosts into tenant context.
//
// Every school is addressed by its own subdomain of the platform root domain
// (school1.classpoint.ng), platform operators use the app subdomain, and
// local development runs on localhost variants. Classification is pure and
// total: any input string maps to exactly one Kind, with Unknown as the
// catch-all. It runs on every request, so it must never touch the network
// or storage.
package tenancy

import (
	"net"
	"net/http"
	"strings"
)

// Kind is the closed set of host classes the gateway routes on.
type Kind int

const (
	KindUnknown Kind = iota
	KindRoot
	KindHQ
	KindTenant
	KindLocalhostRoot
	KindLocalhostTenant
)

// HQSubdomain is the operator-facing subdomain of the root domain.
const HQSubdomain = "app"

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindHQ:
		return "hq"
	case KindTenant:
		return "tenant"
	case KindLocalhostRoot:
		return "localhost_root"
	case KindLocalhostTenant:
		return "localhost_tenant"
	default:
		return "unknown"
	}
}

// IsLocal reports whether the host is a localhost variant.
func (k Kind) IsLocal() bool {
	return k == KindLocalhostRoot || k == KindLocalhostTenant
}

// Host is a normalized request host plus its classification.
type Host struct {
	// Name is the normalized host: lower-cased, port stripped.
	Name string
	Kind Kind
	// Slug is the tenant subdomain prefix. Empty unless Kind is
	// KindTenant or KindLocalhostTenant.
	Slug string
}

// Normalize lower-cases a raw host value and strips any port.
func Normalize(raw string) string {
	h := strings.ToLower(strings.TrimSpace(raw))
	if h == "" {
		return ""
	}
	if strings.Contains(h, ":") {
		if host, _, err := net.SplitHostPort(h); err == nil {
			h = host
		}
	}
	return strings.TrimSuffix(h, ".")
}

// Classify maps a raw host value to its Kind given the configured root
// domain. The rules are ordered; the first match wins.
func Classify(raw, rootDomain string) Host {
	name := Normalize(raw)
	root := Normalize(rootDomain)

	switch {
	case name == "":
		return Host{Name: name, Kind: KindUnknown}
	case name == "localhost":
		return Host{Name: name, Kind: KindLocalhostRoot}
	case strings.HasSuffix(name, ".localhost"):
		return Host{
			Name: name,
			Kind: KindLocalhostTenant,
			Slug: strings.TrimSuffix(name, ".localhost"),
		}
	case root == "":
		return Host{Name: name, Kind: KindUnknown}
	case name == root, name == "www."+root:
		return Host{Name: name, Kind: KindRoot}
	case name == HQSubdomain+"."+root:
		return Host{Name: name, Kind: KindHQ}
	case strings.HasSuffix(name, "."+root):
		return Host{
			Name: name,
			Kind: KindTenant,
			Slug: strings.TrimSuffix(name, "."+root),
		}
	default:
		return Host{Name: name, Kind: KindUnknown}
	}
}

// FromRequest classifies the effective host of an inbound request,
// preferring the X-Forwarded-Host set by the edge proxy over Host.
func FromRequest(r *http.Request, rootDomain string) Host {
	raw := r.Header.Get("X-Forwarded-Host")
	if raw != "" {
		// Proxies may append hops; the first entry is the client-facing one.
		if i := strings.IndexByte(raw, ','); i >= 0 {
			raw = raw[:i]
		}
	} else {
		raw = r.Host
	}
	return Classify(raw, rootDomain)
}

// ValidRedirectHost reports whether target is an acceptable cross-host
// redirect destination for the given root domain: any syntactic subdomain
// of the root, or a localhost variant for development. The bare root is
// not a login destination, so it is rejected like an unknown host.
// It deliberately does not check that the tenant exists.
func ValidRedirectHost(target, rootDomain string) bool {
	switch Classify(target, rootDomain).Kind {
	case KindHQ, KindTenant, KindLocalhostRoot, KindLocalhostTenant:
		return true
	default:
		return false
	}
}
