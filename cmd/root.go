// Package cmd implements the CLI commands.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command for the application.
var rootCmd = &cobra.Command{
	Use:   "salesforce-mcp-server",
	Short: "MCP server exposing Salesforce data tools",
	Long: `salesforce-mcp-server is a Model Context Protocol server that exposes
Salesforce query, record and bulk tools. In HTTP mode it authenticates
callers either by verifying Salesforce bearer tokens directly or by
running a full OAuth 2.1 authorization-code proxy in front of
Salesforce.`,
	SilenceUsage: true,
}

// SetVersion sets the version for the root command, injected at build
// time from main.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the CLI.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "salesforce-mcp-server version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
