package server

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hypn4/salesforce-mcp-server/internal/config"
)

func TestAuthenticatorConfig(t *testing.T) {
	cfg := &config.Config{
		SalesforceClientID:     "consumer-key",
		SalesforceClientSecret: "consumer-secret",
		SalesforceLoginURL:     "https://login.salesforce.com",
		SalesforceInstanceURL:  "https://example.my.salesforce.com",
		BaseURL:                "https://mcp.example.com",
		OAuthRedirectPath:      "/auth/callback",
		OAuthScopes:            []string{"api", "refresh_token"},
		OAuthMode:              "proxy",
		StorageType:            "memory",
		Port:                   8000,
	}

	got := New(cfg).authenticatorConfig()

	assert.Equal(t, "proxy", got.Mode)
	assert.Equal(t, "https://example.my.salesforce.com", got.InstanceURL)
	assert.Equal(t, "https://mcp.example.com", got.Proxy.BaseURL)
	assert.Equal(t, "/auth/callback", got.Proxy.RedirectPath)
	assert.Equal(t, "https://mcp.example.com/auth/callback", got.Proxy.Provider.RedirectURL)
	assert.Equal(t, "consumer-key", got.Proxy.Provider.ClientID)
	assert.Equal(t, []string{"api", "refresh_token"}, got.Proxy.Provider.Scopes)
	assert.Equal(t, "memory", got.Proxy.Storage.Type)
}
