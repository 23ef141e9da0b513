// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds the full configuration surface of the server. All values
// come from environment variables; defaults match a local development
// setup against the Salesforce production login endpoint.
type Config struct {
	// Salesforce connected-app credentials. ClientSecret is optional:
	// when empty, the OAuth proxy runs as a public client (PKCE only).
	SalesforceClientID     string `env:"SALESFORCE_CLIENT_ID"`
	SalesforceClientSecret string `env:"SALESFORCE_CLIENT_SECRET"`

	// SalesforceLoginURL is the authorization host used for the OAuth
	// endpoints. SalesforceInstanceURL is the default API/userinfo host;
	// callers may override it per request.
	SalesforceLoginURL    string `env:"SALESFORCE_LOGIN_URL" envDefault:"https://login.salesforce.com"`
	SalesforceInstanceURL string `env:"SALESFORCE_INSTANCE_URL" envDefault:"https://login.salesforce.com"`

	// BaseURL is the externally reachable URL of this server, used as the
	// OAuth issuer and to build the redirect URI.
	BaseURL           string   `env:"BASE_URL" envDefault:"http://localhost:8000"`
	OAuthRedirectPath string   `env:"OAUTH_REDIRECT_PATH" envDefault:"/auth/callback"`
	OAuthScopes       []string `env:"OAUTH_REQUIRED_SCOPES" envSeparator:"," envDefault:"api,refresh_token"`

	// OAuthMode selects the authentication strategy: "bearer" verifies
	// caller-supplied Salesforce tokens, "proxy" runs a full OAuth
	// authorization-code flow in front of Salesforce.
	OAuthMode string `env:"OAUTH_MODE" envDefault:"bearer"`

	// Token storage for proxy mode.
	StorageType          string `env:"OAUTH_STORAGE_TYPE" envDefault:"memory"`
	ValkeyURL            string `env:"VALKEY_URL"`
	StorageEncryptionKey string `env:"STORAGE_ENCRYPTION_KEY"`

	Port     int    `env:"PORT" envDefault:"8000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.SalesforceLoginURL = strings.TrimRight(strings.TrimSpace(c.SalesforceLoginURL), "/")
	c.SalesforceInstanceURL = strings.TrimRight(strings.TrimSpace(c.SalesforceInstanceURL), "/")
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.OAuthRedirectPath != "" && !strings.HasPrefix(c.OAuthRedirectPath, "/") {
		c.OAuthRedirectPath = "/" + c.OAuthRedirectPath
	}

	scopes := make([]string, 0, len(c.OAuthScopes))
	for _, s := range c.OAuthScopes {
		s = strings.TrimSpace(s)
		if s != "" {
			scopes = append(scopes, s)
		}
	}
	c.OAuthScopes = scopes
}

// Validate checks for configuration combinations that cannot work. These
// are fatal at startup.
func (c *Config) Validate() error {
	if c.SalesforceLoginURL == "" {
		return fmt.Errorf("SALESFORCE_LOGIN_URL must not be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT %d is out of range", c.Port)
	}
	switch strings.ToLower(strings.TrimSpace(c.StorageType)) {
	case "memory":
	case "valkey":
		if c.ValkeyURL == "" {
			return fmt.Errorf("OAUTH_STORAGE_TYPE=valkey requires VALKEY_URL")
		}
	default:
		return fmt.Errorf("unknown OAUTH_STORAGE_TYPE %q (expected \"memory\" or \"valkey\")", c.StorageType)
	}
	return nil
}

// RedirectURI returns the full OAuth callback URL for this server.
func (c *Config) RedirectURI() string {
	return c.BaseURL + c.OAuthRedirectPath
}

// HasClientID reports whether a Salesforce connected app is configured.
func (c *Config) HasClientID() bool {
	return strings.TrimSpace(c.SalesforceClientID) != ""
}

// MaskSecret returns a log-safe rendering of a secret value.
func MaskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
