package auth

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeBearer, ParseMode(""))
	assert.Equal(t, ModeBearer, ParseMode("bearer"))
	assert.Equal(t, ModeBearer, ParseMode("BEARER"))
	assert.Equal(t, ModeBearer, ParseMode("something-else"))
	assert.Equal(t, ModeProxy, ParseMode("proxy"))
	assert.Equal(t, ModeProxy, ParseMode("Proxy"))
	assert.Equal(t, ModeProxy, ParseMode("  PROXY  "))
}

func TestNewAuthenticatorBearer(t *testing.T) {
	a, err := NewAuthenticator(AuthenticatorConfig{
		Mode:        "bearer",
		InstanceURL: "https://login.salesforce.com",
	}, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, ModeBearer, a.Mode())
	require.NoError(t, a.Close(context.Background()))
}

func TestNewAuthenticatorProxyRequiresClientID(t *testing.T) {
	_, err := NewAuthenticator(AuthenticatorConfig{Mode: "proxy"}, slog.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SALESFORCE_CLIENT_ID")
}

func TestNewAuthenticatorProxy(t *testing.T) {
	a, err := NewAuthenticator(AuthenticatorConfig{
		Mode: "proxy",
		Proxy: ProxyConfig{
			BaseURL:      "http://localhost:8000",
			RedirectPath: "/auth/callback",
			Provider: &ProviderConfig{
				ClientID:    "consumer-key",
				LoginURL:    "https://login.salesforce.com",
				RedirectURL: "http://localhost:8000/auth/callback",
			},
			Storage: StorageConfig{Type: "memory"},
		},
	}, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, ModeProxy, a.Mode())
	require.NoError(t, a.Close(context.Background()))
}
