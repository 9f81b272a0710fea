package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Server.Addr != ":8080" {
		t.Errorf("addr = %q", c.Server.Addr)
	}
	if c.Cache.Driver != "memory" {
		t.Errorf("cache driver = %q", c.Cache.Driver)
	}
	if c.App.Env != "dev" {
		t.Errorf("env = %q", c.App.Env)
	}
	if c.Rate.Login.Limit != 10 || c.Rate.Login.Window != "1m" {
		t.Errorf("login rate = %d/%s", c.Rate.Login.Limit, c.Rate.Login.Window)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	body := `
app:
  env: staging
tenancy:
  root_domain: classpoint.ng
idp:
  region: eu-west-1
  user_pool_id: eu-west-1_abc123
  client_id: client-id
  domain: https://auth.classpoint.ng
cache:
  driver: redis
  redis:
    addr: 127.0.0.1:6379
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Tenancy.RootDomain != "classpoint.ng" {
		t.Errorf("root = %q", c.Tenancy.RootDomain)
	}
	if c.IDP.Region != "eu-west-1" || c.IDP.ClientID != "client-id" {
		t.Errorf("idp = %+v", c.IDP)
	}
	if c.Cache.Driver != "redis" || c.Cache.Redis.Addr != "127.0.0.1:6379" {
		t.Errorf("cache = %+v", c.Cache)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ROOT_DOMAIN", "other.example")
	t.Setenv("IDP_CLIENT_ID", "env-client")
	t.Setenv("RATE_LOGIN_LIMIT", "3")
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Tenancy.RootDomain != "other.example" {
		t.Errorf("root = %q", c.Tenancy.RootDomain)
	}
	if c.IDP.ClientID != "env-client" {
		t.Errorf("client id = %q", c.IDP.ClientID)
	}
	if c.Rate.Login.Limit != 3 {
		t.Errorf("limit = %d", c.Rate.Login.Limit)
	}
}

func TestValidateProd(t *testing.T) {
	c, _ := Load("")
	c.App.Env = "prod"
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for empty prod config")
	}
	c.Tenancy.RootDomain = "classpoint.ng"
	c.IDP.ClientID = "client-id"
	c.IDP.Region = "eu-west-1"
	c.IDP.UserPoolID = "eu-west-1_abc"
	c.IDP.Domain = "https://auth.classpoint.ng"
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestVerifyAudience(t *testing.T) {
	c, _ := Load("")
	c.IDP.ClientID = "client-id"
	if got := c.VerifyAudience(); got != "client-id" {
		t.Errorf("default audience = %q", got)
	}
	c.IDP.Audience = "-"
	if got := c.VerifyAudience(); got != "" {
		t.Errorf("disabled audience = %q", got)
	}
	c.IDP.Audience = "other"
	if got := c.VerifyAudience(); got != "other" {
		t.Errorf("explicit audience = %q", got)
	}
}

func TestDuration(t *testing.T) {
	if d := Duration("90s", time.Minute); d != 90*time.Second {
		t.Errorf("got %v", d)
	}
	if d := Duration("bogus", time.Minute); d != time.Minute {
		t.Errorf("got %v", d)
	}
	if d := Duration("", 5*time.Second); d != 5*time.Second {
		t.Errorf("got %v", d)
	}
}
