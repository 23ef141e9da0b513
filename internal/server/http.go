package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/hypn4/salesforce-mcp-server/internal/auth"
	"github.com/hypn4/salesforce-mcp-server/pkg/logging"
)

const (
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 120 * time.Second
	idleTimeout       = 120 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// ServeHTTP runs the streamable HTTP transport behind the configured
// authentication mode until ctx is canceled, then shuts down gracefully.
func (s *Server) ServeHTTP(ctx context.Context) error {
	s.logConfig()

	authenticator, err := auth.NewAuthenticator(s.authenticatorConfig(), logging.Slog())
	if err != nil {
		return fmt.Errorf("failed to configure authentication: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	authenticator.RegisterRoutes(mux)

	mcpHandler := mcpserver.NewStreamableHTTPServer(s.mcp)
	mux.Handle("/mcp", authenticator.Middleware(mcpHandler))

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("Server", "Listening on %s (MCP endpoint at /mcp)", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
	}

	logging.Info("Server", "Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error("Server", err, "HTTP server shutdown failed")
	}
	if err := mcpHandler.Shutdown(shutdownCtx); err != nil {
		logging.Error("Server", err, "MCP transport shutdown failed")
	}
	if err := authenticator.Close(shutdownCtx); err != nil {
		logging.Error("Server", err, "Authenticator shutdown failed")
	}
	s.manager.ClearAll()

	return nil
}

func (s *Server) authenticatorConfig() auth.AuthenticatorConfig {
	cfg := s.cfg
	return auth.AuthenticatorConfig{
		Mode:        cfg.OAuthMode,
		InstanceURL: cfg.SalesforceInstanceURL,
		Proxy: auth.ProxyConfig{
			BaseURL:      cfg.BaseURL,
			RedirectPath: cfg.OAuthRedirectPath,
			Provider: &auth.ProviderConfig{
				ClientID:     cfg.SalesforceClientID,
				ClientSecret: cfg.SalesforceClientSecret,
				LoginURL:     cfg.SalesforceLoginURL,
				InstanceURL:  cfg.SalesforceInstanceURL,
				RedirectURL:  cfg.RedirectURI(),
				Scopes:       cfg.OAuthScopes,
			},
			Storage: auth.StorageConfig{
				Type:          cfg.StorageType,
				ValkeyURL:     cfg.ValkeyURL,
				EncryptionKey: cfg.StorageEncryptionKey,
			},
		},
	}
}
