// Package server assembles the MCP server, its transports, and the
// authentication gateway in front of the HTTP transport.
package server

import (
	"context"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/hypn4/salesforce-mcp-server/internal/config"
	"github.com/hypn4/salesforce-mcp-server/internal/salesforce"
	"github.com/hypn4/salesforce-mcp-server/internal/tools"
	"github.com/hypn4/salesforce-mcp-server/pkg/logging"
)

// Name and Version identify this server to MCP clients.
const (
	Name    = "salesforce-mcp-server"
	Version = "1.0.0"
)

// Server owns the MCP server and the Salesforce client manager shared by
// both transports.
type Server struct {
	cfg     *config.Config
	mcp     *mcpserver.MCPServer
	manager *salesforce.Manager
}

// New builds the MCP server and registers the Salesforce tools.
func New(cfg *config.Config) *Server {
	manager := salesforce.NewManager()

	mcp := mcpserver.NewMCPServer(Name, Version,
		mcpserver.WithToolCapabilities(true),
	)
	tools.New(manager).Register(mcp)

	return &Server{
		cfg:     cfg,
		mcp:     mcp,
		manager: manager,
	}
}

// ServeStdio runs the stdio transport until ctx is canceled. No
// authentication layer is installed: tools reject requests without an
// identity.
func (s *Server) ServeStdio(ctx context.Context) error {
	logging.Info("Server", "Starting %s %s on stdio", Name, Version)
	defer s.manager.ClearAll()

	stdio := mcpserver.NewStdioServer(s.mcp)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// logConfig prints the startup configuration banner with secrets masked.
func (s *Server) logConfig() {
	cfg := s.cfg
	logging.Info("Server", "%s %s", Name, Version)
	logging.Info("Server", "  base URL:        %s", cfg.BaseURL)
	logging.Info("Server", "  login URL:       %s", cfg.SalesforceLoginURL)
	logging.Info("Server", "  instance URL:    %s", cfg.SalesforceInstanceURL)
	logging.Info("Server", "  auth mode:       %s", cfg.OAuthMode)
	logging.Info("Server", "  storage:         %s", cfg.StorageType)
	logging.Info("Server", "  client ID:       %s", config.MaskSecret(cfg.SalesforceClientID))
	logging.Info("Server", "  client secret:   %s", config.MaskSecret(cfg.SalesforceClientSecret))
	logging.Info("Server", "  encryption key:  %s", config.MaskSecret(cfg.StorageEncryptionKey))
}
