package auth

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProxy(t *testing.T, secret string) *Proxy {
	t.Helper()
	p, err := NewProxy(ProxyConfig{
		BaseURL:      "http://localhost:8000",
		RedirectPath: "/auth/callback",
		Provider: &ProviderConfig{
			ClientID:     "consumer-key",
			ClientSecret: secret,
			LoginURL:     "https://login.salesforce.com",
			InstanceURL:  "https://example.my.salesforce.com",
			RedirectURL:  "http://localhost:8000/auth/callback",
		},
		Storage: StorageConfig{Type: "memory"},
	}, slog.Default())
	require.NoError(t, err)
	require.NotNil(t, p)
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return p
}

func TestNewProxyDisabledWithoutClientID(t *testing.T) {
	p, err := NewProxy(ProxyConfig{}, slog.Default())
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = NewProxy(ProxyConfig{Provider: &ProviderConfig{}}, slog.Default())
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestNewProxyClientMode(t *testing.T) {
	assert.False(t, newTestProxy(t, "consumer-secret").IsPublicClient())
	assert.True(t, newTestProxy(t, "").IsPublicClient())
}

func TestProxyRegisterRoutesServesMetadata(t *testing.T) {
	p := newTestProxy(t, "consumer-secret")

	mux := http.NewServeMux()
	p.RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.well-known/oauth-authorization-server", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "authorization_endpoint")
}

func TestAllowedRedirectURI(t *testing.T) {
	allowed := []string{
		"http://localhost:33418/callback",
		"http://localhost/callback",
		"http://127.0.0.1:8080/cb",
		"https://localhost:8443/cb",
		"http://[::1]:9000/cb",
		"vscode-webview://auth",
		"cursor://anysegment/callback",
	}
	for _, uri := range allowed {
		assert.True(t, allowedRedirectURI(uri), uri)
	}

	rejected := []string{
		"evil://callback",
		"https://evil.example/cb",
		"http://attacker.com/cb",
		"https://localhost.evil.com/cb",
		"javascript://localhost/cb",
		"",
		"://bad",
	}
	for _, uri := range rejected {
		assert.False(t, allowedRedirectURI(uri), uri)
	}
}

// Registrations carrying redirect URIs outside the fixed allow-list are
// rejected before the engine sees them.
func TestClientRegistrationRejectsDisallowedRedirects(t *testing.T) {
	p := newTestProxy(t, "consumer-secret")

	mux := http.NewServeMux()
	p.RegisterRoutes(mux)

	bodies := []string{
		`{"redirect_uris": ["evil://callback"], "client_name": "test"}`,
		`{"redirect_uris": ["https://evil.example/cb"], "client_name": "test"}`,
		`{"redirect_uris": ["http://localhost:33418/cb", "evil://callback"], "client_name": "test"}`,
	}
	for _, body := range bodies {
		req := httptest.NewRequest(http.MethodPost, "/oauth/register", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
		assert.Contains(t, rec.Body.String(), "invalid_redirect_uri", "body %s", body)
	}
}

// Allow-listed redirect URIs pass through to the wrapped handler with
// the request body intact.
func TestRequireAllowedRedirectsPassesLoopback(t *testing.T) {
	bodies := []string{
		`{"redirect_uris": ["http://localhost:33418/cb"], "client_name": "test"}`,
		`{"redirect_uris": ["vscode-webview://auth", "http://127.0.0.1:8080/cb"]}`,
	}
	for _, body := range bodies {
		called := false
		handler := requireAllowedRedirects(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			got := make([]byte, len(body))
			n, _ := r.Body.Read(got)
			assert.Equal(t, body, string(got[:n]), "body must be restored for the next handler")
		}))

		req := httptest.NewRequest(http.MethodPost, "/oauth/register", strings.NewReader(body))
		handler.ServeHTTP(httptest.NewRecorder(), req)
		assert.True(t, called, "body %s", body)
	}
}

func TestProxyCloseReleasesProvider(t *testing.T) {
	p := newTestProxy(t, "consumer-secret")
	require.NotNil(t, p.Provider())

	// Close is idempotent, including the provider release.
	require.NoError(t, p.Close(context.Background()))
	require.NoError(t, p.Close(context.Background()))
	p.Provider().Close()
}

// Without engine-validated user info in the context the injector must
// fall back to a guest identity rather than fail.
func TestInjectSalesforceTokenGuestFallback(t *testing.T) {
	p := newTestProxy(t, "consumer-secret")

	var got *Identity
	handler := p.injectSalesforceToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		require.True(t, ok)
		got = identity
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/mcp", nil))
	require.NotNil(t, got)
	assert.True(t, got.IsGuest())
	assert.Equal(t, "https://example.my.salesforce.com", got.Claims.InstanceURL)
}
