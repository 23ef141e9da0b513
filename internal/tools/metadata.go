package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (t *Toolset) registerMetadataTools(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("salesforce_describe_sobject",
		mcp.WithDescription("Describe an sObject type: fields, relationships and permissions"),
		mcp.WithString("sobject",
			mcp.Required(),
			mcp.Description("sObject API name, e.g. Opportunity"),
		),
	), t.handleDescribeSObject)

	s.AddTool(mcp.NewTool("salesforce_list_sobjects",
		mcp.WithDescription("List all sObject types available in the org"),
	), t.handleListSObjects)
}

func (t *Toolset) handleDescribeSObject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sobject, err := request.RequireString("sobject")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := t.client(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	describe, err := client.DescribeSObject(ctx, sobject)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(describe)
}

func (t *Toolset) handleListSObjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, err := t.client(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	sobjects, err := client.ListSObjects(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(sobjects)
}
