package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/giantswarm/mcp-oauth/providers"
)

const (
	authorizePath = "/services/oauth2/authorize"
	tokenPath     = "/services/oauth2/token"
	revokePath    = "/services/oauth2/revoke"
	userinfoPath  = "/services/oauth2/userinfo"
	discoveryPath = "/.well-known/openid-configuration"

	defaultRequestTimeout = 30 * time.Second
)

// ProviderConfig holds Salesforce OAuth provider configuration.
type ProviderConfig struct {
	// ClientID is the connected app's consumer key.
	ClientID string

	// ClientSecret is the connected app's consumer secret. When empty the
	// provider operates as a public client and relies on PKCE alone.
	ClientSecret string

	// LoginURL is the authorization host (e.g. https://login.salesforce.com
	// or a My Domain URL). Trailing slashes are ignored.
	LoginURL string

	// InstanceURL is the host used for userinfo validation. Defaults to
	// LoginURL when empty.
	InstanceURL string

	// RedirectURL is the OAuth callback URL of this server.
	RedirectURL string

	// Scopes requested from Salesforce (default: api, refresh_token).
	Scopes []string

	// HTTPClient is an optional custom HTTP client.
	HTTPClient *http.Client

	// RequestTimeout bounds provider API calls (default: 30s).
	RequestTimeout time.Duration
}

// SalesforceProvider implements the providers.Provider interface against
// the Salesforce OAuth 2.0 endpoints. Whether it authenticates as a
// confidential or a public client is fixed at construction from the
// presence of a client secret.
type SalesforceProvider struct {
	*oauth2.Config
	loginURL       string
	instanceURL    string
	public         bool
	httpClient     *http.Client
	requestTimeout time.Duration
}

var _ providers.Provider = (*SalesforceProvider)(nil)

// NewSalesforceProvider creates a Salesforce OAuth provider. The endpoint
// URLs are derived from the login URL.
func NewSalesforceProvider(cfg *ProviderConfig) (*SalesforceProvider, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("client ID is required")
	}
	loginURL := strings.TrimRight(strings.TrimSpace(cfg.LoginURL), "/")
	if loginURL == "" {
		return nil, fmt.Errorf("login URL is required")
	}
	instanceURL := strings.TrimRight(strings.TrimSpace(cfg.InstanceURL), "/")
	if instanceURL == "" {
		instanceURL = loginURL
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"api", "refresh_token"}
	}

	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}

	return &SalesforceProvider{
		Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  loginURL + authorizePath,
				TokenURL: loginURL + tokenPath,
				// Salesforce expects client credentials in the request
				// body (client_secret_post).
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		loginURL:       loginURL,
		instanceURL:    instanceURL,
		public:         cfg.ClientSecret == "",
		httpClient:     httpClient,
		requestTimeout: requestTimeout,
	}, nil
}

// Name returns the provider identifier.
func (p *SalesforceProvider) Name() string {
	return "salesforce"
}

// DefaultScopes returns the scopes requested when a client asks for none.
func (p *SalesforceProvider) DefaultScopes() []string {
	scopes := make([]string, len(p.Scopes))
	copy(scopes, p.Scopes)
	return scopes
}

// IsPublicClient reports whether the provider runs without a client
// secret (PKCE-only).
func (p *SalesforceProvider) IsPublicClient() bool {
	return p.public
}

// TokenEndpointAuthMethod returns the RFC 8414 auth method matching the
// client mode.
func (p *SalesforceProvider) TokenEndpointAuthMethod() string {
	if p.public {
		return "none"
	}
	return "client_secret_post"
}

// AuthorizationURL builds the Salesforce authorize URL, carrying the PKCE
// challenge supplied by the engine.
func (p *SalesforceProvider) AuthorizationURL(state string, codeChallenge string, codeChallengeMethod string, scopes []string) string {
	var opts []oauth2.AuthCodeOption

	if codeChallenge != "" && codeChallengeMethod != "" {
		opts = append(opts,
			oauth2.SetAuthURLParam("code_challenge", codeChallenge),
			oauth2.SetAuthURLParam("code_challenge_method", codeChallengeMethod),
		)
	}

	var scopesToUse []string
	if len(scopes) > 0 {
		scopesToUse = make([]string, len(scopes))
		copy(scopesToUse, scopes)
	} else {
		scopesToUse = p.DefaultScopes()
	}

	config := *p.Config
	config.Scopes = scopesToUse
	return config.AuthCodeURL(state, opts...)
}

func (p *SalesforceProvider) ensureContextTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.requestTimeout)
}

// ExchangeCode exchanges an authorization code for tokens, forwarding the
// PKCE verifier when one was used.
func (p *SalesforceProvider) ExchangeCode(ctx context.Context, code string, verifier string) (*oauth2.Token, error) {
	ctx, cancel := p.ensureContextTimeout(ctx)
	defer cancel()

	var opts []oauth2.AuthCodeOption
	if verifier != "" {
		opts = append(opts, oauth2.VerifierOption(verifier))
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	token, err := p.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	return token, nil
}

// salesforceUserInfo is the Salesforce userinfo response shape.
type salesforceUserInfo struct {
	Sub               string `json:"sub"`
	UserID            string `json:"user_id"`
	OrganizationID    string `json:"organization_id"`
	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
	EmailVerified     bool   `json:"email_verified"`
	Name              string `json:"name"`
	GivenName         string `json:"given_name"`
	FamilyName        string `json:"family_name"`
	Locale            string `json:"locale"`
}

// ValidateToken validates an access token by calling the Salesforce
// userinfo endpoint.
func (p *SalesforceProvider) ValidateToken(ctx context.Context, accessToken string) (*providers.UserInfo, error) {
	ctx, cancel := p.ensureContextTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.instanceURL+userinfoPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed with status %d", resp.StatusCode)
	}

	var info salesforceUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	id := info.UserID
	if id == "" {
		id = info.Sub
	}
	name := info.Name
	if name == "" {
		name = info.PreferredUsername
	}

	return &providers.UserInfo{
		ID:            id,
		Email:         info.Email,
		EmailVerified: info.EmailVerified,
		Name:          name,
		GivenName:     info.GivenName,
		FamilyName:    info.FamilyName,
		Locale:        info.Locale,
	}, nil
}

// RefreshToken refreshes an expired token using a refresh token.
func (p *SalesforceProvider) RefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	ctx, cancel := p.ensureContextTimeout(ctx)
	defer cancel()

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	token := &oauth2.Token{RefreshToken: refreshToken}
	newToken, err := p.TokenSource(ctx, token).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	return newToken, nil
}

// RevokeToken revokes a token at the Salesforce revocation endpoint.
func (p *SalesforceProvider) RevokeToken(ctx context.Context, token string) error {
	ctx, cancel := p.ensureContextTimeout(ctx)
	defer cancel()

	data := url.Values{}
	data.Set("token", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.loginURL+revokePath, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Salesforce returns 200 on success and 400 for already-invalid
	// tokens; both leave the token unusable.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		return fmt.Errorf("token revocation failed with status %d", resp.StatusCode)
	}
	return nil
}

// Close releases the provider's idle HTTP connections. Safe to call
// more than once.
func (p *SalesforceProvider) Close() {
	if p.httpClient != nil {
		p.httpClient.CloseIdleConnections()
	}
}

// HealthCheck verifies that the Salesforce OIDC discovery document is
// reachable.
func (p *SalesforceProvider) HealthCheck(ctx context.Context) error {
	ctx, cancel := p.ensureContextTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.loginURL+discoveryPath, nil)
	if err != nil {
		return fmt.Errorf("failed to create discovery request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("salesforce provider unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("salesforce discovery returned status %d", resp.StatusCode)
	}
	return nil
}
