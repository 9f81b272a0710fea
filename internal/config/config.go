// Package config loads the gateway configuration: an optional YAML file with
// environment-variable overrides on top. Every value has a usable default
// except the identity provider block, which must be configured for login to
// work.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr            string `yaml:"addr"`
		ReadTimeout     string `yaml:"read_timeout"`
		WriteTimeout    string `yaml:"write_timeout"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Tenancy struct {
		// RootDomain is the platform root, e.g. classpoint.ng. Empty limits
		// classification to localhost variants.
		RootDomain string `yaml:"root_domain"`
	} `yaml:"tenancy"`

	IDP struct {
		Region       string   `yaml:"region"`
		UserPoolID   string   `yaml:"user_pool_id"`
		ClientID     string   `yaml:"client_id"`
		ClientSecret string   `yaml:"client_secret"`
		Domain       string   `yaml:"domain"`
		Issuer       string   `yaml:"issuer"`
		Endpoint     string   `yaml:"endpoint"`
		Scopes       []string `yaml:"scopes"`
		// Audience enables the aud check on session verification. Defaults
		// to the client id; set to "-" to disable.
		Audience string `yaml:"audience"`
		JWKSTTL  string `yaml:"jwks_ttl"`
	} `yaml:"idp"`

	Cache struct {
		Driver string `yaml:"driver"`
		Redis  struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Rate struct {
		Login struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"login"`
	} `yaml:"rate"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads the YAML file when it exists, fills defaults and applies env
// overrides. A missing file is not an error; env-only deployments are the
// norm in containers.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "30s"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "15s"
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "memory"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "gw"
	}
	if c.IDP.JWKSTTL == "" {
		c.IDP.JWKSTTL = "15m"
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Login.Window == "" {
		c.Rate.Login.Window = "1m"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	c.applyEnvOverrides()

	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	return &c, nil
}

func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}

	if v, ok := getEnvStr("ROOT_DOMAIN"); ok {
		c.Tenancy.RootDomain = v
	}

	if v, ok := getEnvStr("IDP_REGION"); ok {
		c.IDP.Region = v
	}
	if v, ok := getEnvStr("IDP_USER_POOL_ID"); ok {
		c.IDP.UserPoolID = v
	}
	if v, ok := getEnvStr("IDP_CLIENT_ID"); ok {
		c.IDP.ClientID = v
	}
	if v, ok := getEnvStr("IDP_CLIENT_SECRET"); ok {
		c.IDP.ClientSecret = v
	}
	if v, ok := getEnvStr("IDP_DOMAIN"); ok {
		c.IDP.Domain = v
	}
	if v, ok := getEnvStr("IDP_ISSUER"); ok {
		c.IDP.Issuer = v
	}
	if v, ok := getEnvStr("IDP_ENDPOINT"); ok {
		c.IDP.Endpoint = v
	}
	if v, ok := getEnvCSV("IDP_SCOPES"); ok {
		c.IDP.Scopes = v
	}
	if v, ok := getEnvStr("IDP_AUDIENCE"); ok {
		c.IDP.Audience = v
	}

	if v, ok := getEnvStr("CACHE_DRIVER"); ok {
		c.Cache.Driver = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}

	if v, ok := getEnvInt("RATE_LOGIN_LIMIT"); ok {
		c.Rate.Login.Limit = v
	}
	if v, ok := getEnvStr("RATE_LOGIN_WINDOW"); ok {
		c.Rate.Login.Window = v
	}

	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}
}

// Validate rejects configurations that cannot serve production traffic.
// Dev stays permissive so the gateway can boot without a provider.
func (c *Config) Validate() error {
	if c.App.Env != "prod" {
		return nil
	}
	if c.Tenancy.RootDomain == "" {
		return errors.New("config: tenancy.root_domain is required in prod")
	}
	if c.IDP.ClientID == "" {
		return errors.New("config: idp.client_id is required in prod")
	}
	if c.IDP.Issuer == "" && (c.IDP.Region == "" || c.IDP.UserPoolID == "") {
		return errors.New("config: idp issuer or region+user_pool_id is required in prod")
	}
	if c.IDP.Domain == "" {
		return errors.New("config: idp.domain is required in prod")
	}
	return nil
}

// VerifyAudience resolves the audience for session verification.
func (c *Config) VerifyAudience() string {
	switch c.IDP.Audience {
	case "":
		return c.IDP.ClientID
	case "-":
		return ""
	default:
		return c.IDP.Audience
	}
}

// Duration parses a config duration string, falling back when unset or
// malformed.
func Duration(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil && d > 0 {
		return d
	}
	return fallback
}

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvCSV(key string) ([]string, bool) {
	s, ok := getEnvStr(key)
	if !ok {
		return nil, false
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, true
}
