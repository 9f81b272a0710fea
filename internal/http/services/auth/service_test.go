package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	jose "github.com/go-jose/go-jose/v3"

	"github.com/classpoint/gateway/internal/cache"
	"github.com/classpoint/gateway/internal/idp"
	"github.com/classpoint/gateway/internal/tenancy"
)

const (
	testRoot = "classpoint.ng"
	testKid  = "svc-key-1"
)

// fakeIdP serves the token endpoint, the InitiateAuth API and the JWKS
// document from one httptest server.
type fakeIdP struct {
	server *httptest.Server
	key    *rsa.PrivateKey

	rejectPassword bool
	lastTokenForm  url.Values
}

func newFakeIdP(t *testing.T) *fakeIdP {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	f := &fakeIdP{key: key}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/jwks.json", func(w http.ResponseWriter, r *http.Request) {
		set := jose.JSONWebKeySet{Keys: []jose.JSONWebKey{{
			Key: &key.PublicKey, KeyID: testKid, Algorithm: "RS256", Use: "sig",
		}}}
		_ = json.NewEncoder(w).Encode(set)
	})
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		f.lastTokenForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-tok",
			"id_token":      f.signIDToken(t, []string{"TEACHER"}),
			"refresh_token": "refresh-tok",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("X-Amz-Target"), "InitiateAuth") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/x-amz-json-1.1")
		if f.rejectPassword {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"__type": "NotAuthorizedException", "message": "Incorrect username or password.",
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"AuthenticationResult": map[string]any{
				"AccessToken":  "access-tok",
				"IdToken":      f.signIDToken(t, []string{"PARENT"}),
				"RefreshToken": "refresh-tok",
				"ExpiresIn":    3600,
			},
		})
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeIdP) signIDToken(t *testing.T, groups []string) string {
	t.Helper()
	claims := jwtv5.MapClaims{
		"sub":              "user-1",
		"cognito:username": "john@school.test",
		"cognito:groups":   groups,
		"token_use":        "id",
		"iss":              f.server.URL,
		"aud":              "client-id",
		"exp":              time.Now().Add(time.Hour).Unix(),
		"iat":              time.Now().Unix(),
	}
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, claims)
	tok.Header["kid"] = testKid
	signed, err := tok.SignedString(f.key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newTestService(t *testing.T, f *fakeIdP) Service {
	t.Helper()
	provider := idp.New(idp.Config{
		ClientID:     "client-id",
		ClientSecret: "top-secret",
		Domain:       f.server.URL,
		Issuer:       f.server.URL,
		Endpoint:     f.server.URL,
	})
	mem, err := cache.New(cache.Config{Driver: "memory"})
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	keys := idp.NewKeySet(provider, mem, time.Minute)
	return New(Deps{
		Provider:   provider,
		Verifier:   idp.NewVerifier(keys, f.server.URL, "client-id"),
		RootDomain: testRoot,
	})
}

func TestBeginLogin(t *testing.T) {
	svc := newTestService(t, newFakeIdP(t))
	red, err := svc.BeginLogin("https://app.classpoint.ng/auth/callback", "/teacher")
	if err != nil {
		t.Fatalf("BeginLogin: %v", err)
	}
	if red.State == "" || red.Verifier == "" {
		t.Fatal("expected state and verifier")
	}
	u, err := url.Parse(red.URL)
	if err != nil {
		t.Fatalf("parse authorize url: %v", err)
	}
	q := u.Query()
	if q.Get("state") != red.State {
		t.Errorf("state = %q", q.Get("state"))
	}
	if q.Get("code_challenge_method") != "S256" || q.Get("code_challenge") == "" {
		t.Error("expected S256 challenge")
	}
	if red.PostLogin != "/teacher" {
		t.Errorf("postLogin = %q", red.PostLogin)
	}
}

func TestBeginLoginRejectsForeignNext(t *testing.T) {
	svc := newTestService(t, newFakeIdP(t))
	for _, next := range []string{"https://evil.example", "//evil.example/x", "javascript:alert(1)"} {
		red, err := svc.BeginLogin("https://x/auth/callback", next)
		if err != nil {
			t.Fatalf("BeginLogin: %v", err)
		}
		if red.PostLogin != "" {
			t.Errorf("next %q kept as %q", next, red.PostLogin)
		}
	}
}

func TestBeginLoginUnconfigured(t *testing.T) {
	svc := New(Deps{Provider: idp.New(idp.Config{}), RootDomain: testRoot})
	if _, err := svc.BeginLogin("https://x/cb", ""); err != ErrConfigMissing {
		t.Fatalf("err = %v, want ErrConfigMissing", err)
	}
}

func TestCompleteLogin(t *testing.T) {
	f := newFakeIdP(t)
	svc := newTestService(t, f)
	res, err := svc.CompleteLogin(context.Background(), CallbackInput{
		Code:        "auth-code",
		State:       "st",
		StoredState: "st",
		Verifier:    "ver-ifier",
		RedirectURI: "https://app.classpoint.ng/auth/callback",
	})
	if err != nil {
		t.Fatalf("CompleteLogin: %v", err)
	}
	if res.Tokens.IDToken == "" || res.Tokens.RefreshToken != "refresh-tok" {
		t.Fatal("unexpected tokens")
	}
	if res.RedirectTo != "/teacher" {
		t.Errorf("redirectTo = %q, want /teacher", res.RedirectTo)
	}
	if got := f.lastTokenForm.Get("code_verifier"); got != "ver-ifier" {
		t.Errorf("code_verifier = %q", got)
	}
	if res.SessionValue == "" {
		t.Error("expected session value")
	}
}

func TestCompleteLoginPostLoginWins(t *testing.T) {
	svc := newTestService(t, newFakeIdP(t))
	res, err := svc.CompleteLogin(context.Background(), CallbackInput{
		Code: "c", State: "st", StoredState: "st", Verifier: "v",
		PostLogin: "/invoices", RedirectURI: "https://x/cb",
	})
	if err != nil {
		t.Fatalf("CompleteLogin: %v", err)
	}
	if res.RedirectTo != "/invoices" {
		t.Errorf("redirectTo = %q", res.RedirectTo)
	}
}

func TestCompleteLoginFailures(t *testing.T) {
	svc := newTestService(t, newFakeIdP(t))
	cases := []struct {
		name string
		in   CallbackInput
		want error
	}{
		{"missing code", CallbackInput{State: "st", StoredState: "st", Verifier: "v"}, ErrBadRequest},
		{"missing state", CallbackInput{Code: "c", StoredState: "st", Verifier: "v"}, ErrBadRequest},
		{"state mismatch", CallbackInput{Code: "c", State: "a", StoredState: "b", Verifier: "v"}, ErrInvalidState},
		{"no stored state", CallbackInput{Code: "c", State: "a", Verifier: "v"}, ErrInvalidState},
		{"no verifier", CallbackInput{Code: "c", State: "st", StoredState: "st"}, ErrInvalidState},
	}
	for _, tc := range cases {
		if _, err := svc.CompleteLogin(context.Background(), tc.in); err != tc.want {
			t.Errorf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestPasswordLogin(t *testing.T) {
	svc := newTestService(t, newFakeIdP(t))
	res, err := svc.PasswordLogin(context.Background(), PasswordInput{
		Username:    "john@school.test",
		Password:    "pw",
		RequestHost: tenancy.Classify("school1.classpoint.ng", testRoot),
		Scheme:      "https",
	})
	if err != nil {
		t.Fatalf("PasswordLogin: %v", err)
	}
	if res.RedirectTo != "/portal" {
		t.Errorf("redirectTo = %q, want /portal", res.RedirectTo)
	}
}

func TestPasswordLoginInvalidCredentials(t *testing.T) {
	f := newFakeIdP(t)
	f.rejectPassword = true
	svc := newTestService(t, f)
	_, err := svc.PasswordLogin(context.Background(), PasswordInput{
		Username: "john@school.test", Password: "bad",
		RequestHost: tenancy.Classify("school1.classpoint.ng", testRoot),
	})
	if err != ErrInvalidCredentials {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestPasswordLoginEmptyFields(t *testing.T) {
	svc := newTestService(t, newFakeIdP(t))
	for _, in := range []PasswordInput{{Password: "pw"}, {Username: "u"}, {Username: "  ", Password: "pw"}} {
		if _, err := svc.PasswordLogin(context.Background(), in); err != ErrBadRequest {
			t.Errorf("err = %v, want ErrBadRequest", err)
		}
	}
}

func TestPasswordLoginCrossHostRedirect(t *testing.T) {
	svc := newTestService(t, newFakeIdP(t))
	res, err := svc.PasswordLogin(context.Background(), PasswordInput{
		Username:    "john@school.test",
		Password:    "pw",
		SchoolHost:  "school2.classpoint.ng",
		RequestHost: tenancy.Classify("app.classpoint.ng", testRoot),
		Scheme:      "https",
	})
	if err != nil {
		t.Fatalf("PasswordLogin: %v", err)
	}
	if res.RedirectTo != "https://school2.classpoint.ng/portal" {
		t.Errorf("redirectTo = %q", res.RedirectTo)
	}
}

func TestPasswordLoginForeignSchoolHostStaysRelative(t *testing.T) {
	svc := newTestService(t, newFakeIdP(t))
	res, err := svc.PasswordLogin(context.Background(), PasswordInput{
		Username:    "john@school.test",
		Password:    "pw",
		SchoolHost:  "evil.example.com",
		RequestHost: tenancy.Classify("app.classpoint.ng", testRoot),
		Scheme:      "https",
	})
	if err != nil {
		t.Fatalf("PasswordLogin: %v", err)
	}
	if strings.Contains(res.RedirectTo, "evil") {
		t.Errorf("redirectTo = %q", res.RedirectTo)
	}
}

func TestSession(t *testing.T) {
	f := newFakeIdP(t)
	svc := newTestService(t, f)

	info, err := svc.Session(context.Background(), "")
	if err != nil || info.Authenticated {
		t.Fatalf("empty token: info=%+v err=%v", info, err)
	}

	info, err = svc.Session(context.Background(), f.signIDToken(t, []string{"TEACHER"}))
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if !info.Authenticated || info.Claims.Username != "john@school.test" {
		t.Fatalf("info = %+v", info)
	}
	if info.ExpiresAt.IsZero() {
		t.Error("expected expiry")
	}

	if _, err = svc.Session(context.Background(), "not-a-jwt"); err == nil {
		t.Fatal("expected error for garbage token")
	}
}

func TestLogoutURL(t *testing.T) {
	f := newFakeIdP(t)
	svc := newTestService(t, f)
	u, err := svc.LogoutURL("https://school1.classpoint.ng/")
	if err != nil {
		t.Fatalf("LogoutURL: %v", err)
	}
	parsed, _ := url.Parse(u)
	if parsed.Query().Get("client_id") != "client-id" {
		t.Errorf("client_id missing in %q", u)
	}
	if parsed.Query().Get("logout_uri") != "https://school1.classpoint.ng/" {
		t.Errorf("logout_uri = %q", parsed.Query().Get("logout_uri"))
	}
}

func TestEncodeSessionValueRoundTrip(t *testing.T) {
	val := EncodeSessionValue(&idp.Claims{
		Sub: "user-1", Username: "john@school.test", Groups: []string{"TEACHER"},
		SchoolID: "sch-1", ExpiresAt: time.Unix(1900000000, 0),
	})
	raw, err := base64.RawURLEncoding.DecodeString(val)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var view map[string]any
	if err := json.Unmarshal(raw, &view); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if view["username"] != "john@school.test" || view["schoolId"] != "sch-1" {
		t.Fatalf("view = %v", view)
	}
}
