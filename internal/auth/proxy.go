package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	oauth "github.com/giantswarm/mcp-oauth"
	"github.com/giantswarm/mcp-oauth/security"
	oauthserver "github.com/giantswarm/mcp-oauth/server"

	"github.com/hypn4/salesforce-mcp-server/pkg/logging"
)

const (
	// Refresh tokens live 90 days, matching the Salesforce session
	// policy default.
	defaultRefreshTokenTTL = 90 * 24 * time.Hour

	defaultIPRateLimit     = 10
	defaultIPBurst         = 20
	defaultUserRateLimit   = 100
	defaultUserBurst       = 200
	defaultMaxClientsPerIP = 10
)

// trustedRedirectSchemes are the custom URI schemes accepted for public
// client registration, covering the editor-embedded MCP clients.
// allowedCustomSchemePatterns is the same list as anchored regexes for
// the engine's redirect URI scheme validation.
var (
	trustedRedirectSchemes      = []string{"vscode-webview", "cursor"}
	allowedCustomSchemePatterns = []string{"^vscode-webview$", "^cursor$"}
)

// allowedRedirectURI reports whether a client redirect URI is on the
// fixed allow-list: loopback HTTP(S) on any port, or one of the
// editor-embedded schemes. Everything else is rejected.
func allowedRedirectURI(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https":
		host := u.Hostname()
		return host == "localhost" || host == "127.0.0.1" || host == "::1"
	case "vscode-webview", "cursor":
		return true
	}
	return false
}

// ProxyConfig parameterizes the OAuth proxy in front of Salesforce.
type ProxyConfig struct {
	// BaseURL is the externally reachable URL of this server; it becomes
	// the OAuth issuer.
	BaseURL string

	// RedirectPath is where Salesforce sends the provider callback
	// (default /auth/callback).
	RedirectPath string

	Provider *ProviderConfig
	Storage  StorageConfig
}

// Proxy is a fully assembled OAuth 2.1 authorization server proxying to
// Salesforce. Clients register dynamically, authorize with PKCE, and
// receive proxy-issued tokens; the Salesforce tokens obtained upstream
// stay in storage and are resolved back per request.
type Proxy struct {
	provider     *SalesforceProvider
	storage      *Storage
	server       *oauth.Server
	handler      *oauth.Handler
	redirectPath string
	instanceURL  string

	closeOnce sync.Once
}

// NewProxy assembles provider, storage and engine. It returns (nil, nil)
// when no client ID is configured, so callers can treat the proxy as
// disabled rather than failing.
func NewProxy(cfg ProxyConfig, logger *slog.Logger) (*Proxy, error) {
	if cfg.Provider == nil || cfg.Provider.ClientID == "" {
		return nil, nil
	}

	provider, err := NewSalesforceProvider(cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create Salesforce provider: %w", err)
	}

	store, err := NewStorage(cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create token storage: %w", err)
	}

	serverConfig := &oauthserver.Config{
		Issuer:                           cfg.BaseURL,
		RefreshTokenTTL:                  int64(defaultRefreshTokenTTL.Seconds()),
		AllowRefreshTokenRotation:        true,
		RequirePKCE:                      true,
		AllowPKCEPlain:                   false,
		AllowPublicClientRegistration:    true,
		MaxClientsPerIP:                  defaultMaxClientsPerIP,
		TrustedPublicRegistrationSchemes: trustedRedirectSchemes,
		AllowedCustomSchemes:             allowedCustomSchemePatterns,
		AllowLocalhostRedirectURIs:       true,
	}

	oauthSrv, err := oauth.NewServer(
		provider,
		store.Tokens,
		store.Clients,
		store.Flows,
		serverConfig,
		logger,
	)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create OAuth server: %w", err)
	}

	if store.Encryptor != nil {
		oauthSrv.SetEncryptor(store.Encryptor)
		logging.Info("OAuth", "Token encryption at rest enabled (AES-256-GCM)")
	}

	oauthSrv.SetAuditor(security.NewAuditor(logger, true))

	oauthSrv.SetRateLimiter(security.NewRateLimiter(defaultIPRateLimit, defaultIPBurst, logger))
	oauthSrv.SetUserRateLimiter(security.NewRateLimiter(defaultUserRateLimit, defaultUserBurst, logger))
	oauthSrv.SetClientRegistrationRateLimiter(security.NewClientRegistrationRateLimiterWithConfig(
		defaultMaxClientsPerIP,
		security.DefaultRegistrationWindow,
		security.DefaultMaxRegistrationEntries,
		logger,
	))

	redirectPath := cfg.RedirectPath
	if redirectPath == "" {
		redirectPath = "/auth/callback"
	}

	mode := "confidential client (client_secret_post)"
	if provider.IsPublicClient() {
		mode = "public client (PKCE only)"
	}
	logging.Info("OAuth", "OAuth proxy configured as %s, issuer %s", mode, cfg.BaseURL)

	return &Proxy{
		provider:     provider,
		storage:      store,
		server:       oauthSrv,
		handler:      oauth.NewHandler(oauthSrv, logger),
		redirectPath: redirectPath,
		instanceURL:  cfg.Provider.InstanceURL,
	}, nil
}

// IsPublicClient reports whether the upstream client runs without a
// secret.
func (p *Proxy) IsPublicClient() bool {
	return p.provider.IsPublicClient()
}

// RegisterRoutes mounts the OAuth 2.1 endpoints on mux. The provider
// callback lands on the configured redirect path.
func (p *Proxy) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/.well-known/oauth-protected-resource", p.handler.ServeProtectedResourceMetadata)
	mux.HandleFunc("/.well-known/oauth-authorization-server", p.handler.ServeAuthorizationServerMetadata)
	mux.Handle("/oauth/register", requireAllowedRedirects(http.HandlerFunc(p.handler.ServeClientRegistration)))
	mux.HandleFunc("/oauth/authorize", p.handler.ServeAuthorization)
	mux.HandleFunc("/oauth/token", p.handler.ServeToken)
	mux.HandleFunc("/oauth/revoke", p.handler.ServeTokenRevocation)
	mux.HandleFunc("/oauth/introspect", p.handler.ServeTokenIntrospection)
	mux.HandleFunc(p.redirectPath, p.handler.ServeCallback)

	logging.Info("OAuth", "Registered OAuth 2.1 endpoints (callback at %s)", p.redirectPath)
}

const maxRegistrationBody = 1 << 20

// requireAllowedRedirects rejects client registrations whose redirect
// URIs fall outside the fixed allow-list before the engine sees them.
// Malformed bodies pass through so the engine produces its usual
// protocol errors.
func requireAllowedRedirects(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Body == nil {
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxRegistrationBody))
		r.Body.Close()
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		var req struct {
			RedirectURIs []string `json:"redirect_uris"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			next.ServeHTTP(w, r)
			return
		}

		for _, uri := range req.RedirectURIs {
			if !allowedRedirectURI(uri) {
				logging.Warn("OAuth", "Rejected client registration with disallowed redirect URI %s", uri)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{
					"error":             "invalid_redirect_uri",
					"error_description": "redirect URIs must be loopback HTTP(S) or a trusted editor scheme",
				})
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// Middleware protects an MCP handler: the engine validates the
// proxy-issued token, then the stored upstream Salesforce token is
// resolved into the request identity for the tool handlers.
func (p *Proxy) Middleware(next http.Handler) http.Handler {
	return p.handler.ValidateToken(p.injectSalesforceToken(next))
}

func (p *Proxy) injectSalesforceToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userInfo, ok := oauth.UserInfoFromContext(ctx)
		if !ok || userInfo == nil || userInfo.ID == "" {
			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(ctx, GuestIdentity(p.instanceURL))))
			return
		}

		token, err := p.storage.Tokens.GetToken(ctx, userInfo.ID)
		if err != nil || token == nil {
			logging.Debug("OAuth", "No stored Salesforce token for user %s: %v", userInfo.ID, err)
			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(ctx, GuestIdentity(p.instanceURL))))
			return
		}

		identity := &Identity{
			Token:         token.AccessToken,
			ClientID:      "salesforce",
			Authenticated: true,
			ExpiresAt:     token.Expiry,
			Claims: Claims{
				UserID:          userInfo.ID,
				Username:        userInfo.Email,
				InstanceURL:     p.instanceURL,
				SalesforceToken: token.AccessToken,
			},
		}
		if override := r.Header.Get(InstanceURLHeader); override != "" {
			identity.Claims.InstanceURL = override
		}

		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(ctx, identity)))
	})
}

// Provider exposes the upstream Salesforce provider, e.g. for health
// checks.
func (p *Proxy) Provider() *SalesforceProvider {
	return p.provider
}

// Close shuts down the engine, releases the provider's HTTP resources
// and closes storage. Safe to call more than once.
func (p *Proxy) Close(ctx context.Context) error {
	var err error
	p.closeOnce.Do(func() {
		if p.server != nil {
			err = p.server.Shutdown(ctx)
		}
		if p.provider != nil {
			p.provider.Close()
		}
		p.storage.Close()
	})
	return err
}
