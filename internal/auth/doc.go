// Package auth implements the authentication gateway in front of the
// MCP HTTP transport: bearer-token verification against Salesforce with
// guest degradation, and a full OAuth 2.1 authorization-code + PKCE
// proxy built on the mcp-oauth engine. The mode is selected once at
// startup.
package auth
