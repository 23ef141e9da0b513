// Package tools registers the Salesforce MCP tools and their handlers.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hypn4/salesforce-mcp-server/internal/auth"
	"github.com/hypn4/salesforce-mcp-server/internal/salesforce"
)

// Toolset holds the dependencies shared by every tool handler.
type Toolset struct {
	manager *salesforce.Manager
}

// New creates a toolset backed by the given client manager.
func New(manager *salesforce.Manager) *Toolset {
	return &Toolset{manager: manager}
}

// Register adds every Salesforce tool to the MCP server.
func (t *Toolset) Register(s *server.MCPServer) {
	t.registerQueryTools(s)
	t.registerRecordTools(s)
	t.registerMetadataTools(s)
	t.registerBulkTools(s)
}

// client resolves the Salesforce client for the request identity.
func (t *Toolset) client(ctx context.Context) (*salesforce.Client, error) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, salesforce.ErrAuthenticationRequired
	}
	return t.manager.GetClient(identity)
}

// jsonResult marshals v as an indented JSON tool result.
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// errorResult renders an error as a tool result, keeping the
// authentication error message stable for clients that branch on it.
func errorResult(err error) *mcp.CallToolResult {
	if errors.Is(err, salesforce.ErrAuthenticationRequired) {
		return mcp.NewToolResultError("Authentication required: provide a Salesforce access token")
	}
	return mcp.NewToolResultError(err.Error())
}

// objectArgument extracts a JSON-object argument by name.
func objectArgument(request mcp.CallToolRequest, name string) (map[string]interface{}, error) {
	raw, ok := request.GetArguments()[name]
	if !ok {
		return nil, fmt.Errorf("missing required argument %q", name)
	}
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("argument %q must be an object", name)
	}
	return obj, nil
}

// objectArrayArgument extracts an array-of-objects argument by name.
func objectArrayArgument(request mcp.CallToolRequest, name string) ([]map[string]interface{}, error) {
	raw, ok := request.GetArguments()[name]
	if !ok {
		return nil, fmt.Errorf("missing required argument %q", name)
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("argument %q must be an array", name)
	}
	records := make([]map[string]interface{}, len(items))
	for i, item := range items {
		record, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("argument %q element %d must be an object", name, i)
		}
		records[i] = record
	}
	return records, nil
}

// stringArrayArgument extracts an optional array-of-strings argument by
// name, returning nil when absent.
func stringArrayArgument(request mcp.CallToolRequest, name string) ([]string, error) {
	raw, ok := request.GetArguments()[name]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("argument %q must be an array of strings", name)
	}
	values := make([]string, len(items))
	for i, item := range items {
		value, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("argument %q element %d must be a string", name, i)
		}
		values[i] = value
	}
	return values, nil
}
