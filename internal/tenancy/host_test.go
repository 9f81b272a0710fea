package tenancy

import (
	"net/http/httptest"
	"testing"
)

const root = "classpoint.ng"

func TestClassify(t *testing.T) {
	cases := []struct {
		in   string
		kind Kind
		slug string
	}{
		{"", KindUnknown, ""},
		{"classpoint.ng", KindRoot, ""},
		{"www.classpoint.ng", KindRoot, ""},
		{"app.classpoint.ng", KindHQ, ""},
		{"school1.classpoint.ng", KindTenant, "school1"},
		{"harbor.classpoint.ng", KindTenant, "harbor"},
		{"localhost", KindLocalhostRoot, ""},
		{"school1.localhost", KindLocalhostTenant, "school1"},
		{"localhost:3000", KindLocalhostRoot, ""},
		{"school1.localhost:3000", KindLocalhostTenant, "school1"},
		{"example.com", KindUnknown, ""},
		{"classpoint.ng.evil.com", KindUnknown, ""},
		{"notclasspoint.ng", KindUnknown, ""},
	}

	for _, tc := range cases {
		got := Classify(tc.in, root)
		if got.Kind != tc.kind {
			t.Errorf("Classify(%q) kind = %v, want %v", tc.in, got.Kind, tc.kind)
		}
		if got.Slug != tc.slug {
			t.Errorf("Classify(%q) slug = %q, want %q", tc.in, got.Slug, tc.slug)
		}
	}
}

func TestClassifyCaseAndPortInsensitive(t *testing.T) {
	a := Classify("School1.Classpoint.NG:443", root)
	b := Classify("school1.classpoint.ng", root)
	if a != b {
		t.Fatalf("expected identical classification, got %+v vs %+v", a, b)
	}
	if a.Kind != KindTenant || a.Slug != "school1" {
		t.Fatalf("unexpected classification: %+v", a)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	first := Classify("WWW.Classpoint.NG:8080", root)
	second := Classify(first.Name, root)
	if first.Kind != second.Kind || first.Name != second.Name {
		t.Fatalf("classification not idempotent: %+v vs %+v", first, second)
	}
}

func TestClassifyEmptyRootDomain(t *testing.T) {
	if got := Classify("school1.classpoint.ng", ""); got.Kind != KindUnknown {
		t.Fatalf("expected unknown with empty root, got %v", got.Kind)
	}
	// localhost variants do not depend on the root domain
	if got := Classify("localhost", ""); got.Kind != KindLocalhostRoot {
		t.Fatalf("expected localhost_root, got %v", got.Kind)
	}
}

func TestFromRequestPrefersForwardedHost(t *testing.T) {
	r := httptest.NewRequest("GET", "http://internal-lb:8080/", nil)
	r.Header.Set("X-Forwarded-Host", "school1.classpoint.ng, edge-1.internal")

	h := FromRequest(r, root)
	if h.Kind != KindTenant || h.Slug != "school1" {
		t.Fatalf("unexpected classification: %+v", h)
	}
}

func TestFromRequestFallsBackToHost(t *testing.T) {
	r := httptest.NewRequest("GET", "http://app.classpoint.ng/", nil)
	h := FromRequest(r, root)
	if h.Kind != KindHQ {
		t.Fatalf("expected hq, got %v", h.Kind)
	}
}

func TestValidRedirectHost(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"school2.classpoint.ng", true},
		{"app.classpoint.ng", true},
		{"classpoint.ng", false},
		{"www.classpoint.ng", false},
		{"school2.localhost:3000", true},
		{"localhost", true},
		{"evil.example.com", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ValidRedirectHost(tc.in, root); got != tc.ok {
			t.Errorf("ValidRedirectHost(%q) = %v, want %v", tc.in, got, tc.ok)
		}
	}
}
