package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hypn4/salesforce-mcp-server/internal/config"
	"github.com/hypn4/salesforce-mcp-server/internal/server"
	"github.com/hypn4/salesforce-mcp-server/pkg/logging"
)

var (
	serveTransport string
	servePort      int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the MCP server on the selected transport.

With --transport stdio the server speaks MCP over stdin/stdout and no
authentication layer is installed. With --transport http (the default)
the server listens on PORT and protects the /mcp endpoint according to
OAUTH_MODE.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveTransport, "transport", "http", "Transport to use: stdio or http")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port for the HTTP transport (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if servePort > 0 {
		cfg.Port = servePort
	}

	logging.Init(logging.ParseLevel(cfg.LogLevel), os.Stderr)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg)

	switch serveTransport {
	case "stdio":
		return srv.ServeStdio(ctx)
	case "http":
		return srv.ServeHTTP(ctx)
	default:
		return fmt.Errorf("unknown transport %q (expected \"stdio\" or \"http\")", serveTransport)
	}
}
