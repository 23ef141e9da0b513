package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://login.salesforce.com", cfg.SalesforceLoginURL)
	assert.Equal(t, "https://login.salesforce.com", cfg.SalesforceInstanceURL)
	assert.Equal(t, "http://localhost:8000", cfg.BaseURL)
	assert.Equal(t, "/auth/callback", cfg.OAuthRedirectPath)
	assert.Equal(t, []string{"api", "refresh_token"}, cfg.OAuthScopes)
	assert.Equal(t, "bearer", cfg.OAuthMode)
	assert.Equal(t, "memory", cfg.StorageType)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.HasClientID())
}

func TestLoadTrimsTrailingSlashes(t *testing.T) {
	t.Setenv("SALESFORCE_LOGIN_URL", "https://test.salesforce.com/")
	t.Setenv("BASE_URL", "https://mcp.example.com/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://test.salesforce.com", cfg.SalesforceLoginURL)
	assert.Equal(t, "https://mcp.example.com", cfg.BaseURL)
	assert.Equal(t, "https://mcp.example.com/auth/callback", cfg.RedirectURI())
}

func TestLoadScopeSplitting(t *testing.T) {
	t.Setenv("OAUTH_REQUIRED_SCOPES", "api, refresh_token ,openid,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"api", "refresh_token", "openid"}, cfg.OAuthScopes)
}

func TestLoadUnknownStorageType(t *testing.T) {
	t.Setenv("OAUTH_STORAGE_TYPE", "redis")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
}

func TestLoadValkeyRequiresURL(t *testing.T) {
	t.Setenv("OAUTH_STORAGE_TYPE", "valkey")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("VALKEY_URL", "localhost:6379")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "valkey", cfg.StorageType)
}

func TestLoadPortOverride(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "(not set)", MaskSecret(""))
	assert.Equal(t, "****", MaskSecret("short"))
	assert.Equal(t, "3MVG...abcd", MaskSecret("3MVG9zeKbAVObYjPaQazxZkyabcd"))
}
