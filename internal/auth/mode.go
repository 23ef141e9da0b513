package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hypn4/salesforce-mcp-server/pkg/logging"
)

// Mode selects the authentication strategy for the HTTP transport.
type Mode string

const (
	// ModeBearer verifies caller-supplied Salesforce tokens per request.
	ModeBearer Mode = "bearer"
	// ModeProxy runs the full OAuth authorization-code flow in front of
	// Salesforce.
	ModeProxy Mode = "proxy"
)

// ParseMode interprets a configured mode string. Matching is
// case-insensitive; anything unrecognized (including empty) selects
// bearer.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeProxy)) {
		return ModeProxy
	}
	return ModeBearer
}

// AuthenticatorConfig parameterizes the authenticator for either mode.
type AuthenticatorConfig struct {
	Mode        string
	InstanceURL string
	Proxy       ProxyConfig
}

// Authenticator is the mode-selected authentication strategy, fixed at
// startup.
type Authenticator struct {
	mode     Mode
	verifier *Verifier
	proxy    *Proxy
}

// NewAuthenticator builds the authenticator for the configured mode.
// Proxy mode without a configured client ID is a configuration error.
func NewAuthenticator(cfg AuthenticatorConfig, logger *slog.Logger) (*Authenticator, error) {
	mode := ParseMode(cfg.Mode)

	switch mode {
	case ModeProxy:
		proxy, err := NewProxy(cfg.Proxy, logger)
		if err != nil {
			return nil, err
		}
		if proxy == nil {
			return nil, fmt.Errorf("OAUTH_MODE=proxy requires SALESFORCE_CLIENT_ID")
		}
		logging.Info("Auth", "Authentication mode: proxy")
		return &Authenticator{mode: ModeProxy, proxy: proxy}, nil

	default:
		logging.Info("Auth", "Authentication mode: bearer")
		return &Authenticator{
			mode:     ModeBearer,
			verifier: NewVerifier(cfg.InstanceURL),
		}, nil
	}
}

// Mode returns the selected mode.
func (a *Authenticator) Mode() Mode {
	return a.mode
}

// Middleware wraps an MCP handler with the mode's authentication.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	if a.mode == ModeProxy {
		return a.proxy.Middleware(next)
	}
	return a.verifier.Middleware(next)
}

// RegisterRoutes mounts mode-specific endpoints. Bearer mode has none.
func (a *Authenticator) RegisterRoutes(mux *http.ServeMux) {
	if a.mode == ModeProxy {
		a.proxy.RegisterRoutes(mux)
	}
}

// Close releases the authenticator's resources.
func (a *Authenticator) Close(ctx context.Context) error {
	if a.verifier != nil {
		a.verifier.Close()
	}
	if a.proxy != nil {
		return a.proxy.Close(ctx)
	}
	return nil
}
