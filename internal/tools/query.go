package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (t *Toolset) registerQueryTools(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("salesforce_query",
		mcp.WithDescription("Execute a SOQL query and return the first page of results"),
		mcp.WithString("soql",
			mcp.Required(),
			mcp.Description("SOQL query, e.g. SELECT Id, Name FROM Account LIMIT 10"),
		),
	), t.handleQuery)

	s.AddTool(mcp.NewTool("salesforce_query_all",
		mcp.WithDescription("Execute a SOQL query including soft-deleted and archived records"),
		mcp.WithString("soql",
			mcp.Required(),
			mcp.Description("SOQL query to run through queryAll"),
		),
	), t.handleQueryAll)

	s.AddTool(mcp.NewTool("salesforce_query_more",
		mcp.WithDescription("Fetch the next page of a previous query result"),
		mcp.WithString("next_records_url",
			mcp.Required(),
			mcp.Description("The nextRecordsUrl value from a previous query result"),
		),
	), t.handleQueryMore)

	s.AddTool(mcp.NewTool("salesforce_search",
		mcp.WithDescription("Execute a SOSL full-text search across objects"),
		mcp.WithString("sosl",
			mcp.Required(),
			mcp.Description("SOSL search, e.g. FIND {Acme} IN NAME FIELDS RETURNING Account(Id, Name)"),
		),
	), t.handleSearch)
}

func (t *Toolset) handleQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	soql, err := request.RequireString("soql")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := t.client(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := client.Query(ctx, soql, false)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(result)
}

func (t *Toolset) handleQueryAll(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	soql, err := request.RequireString("soql")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := t.client(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := client.Query(ctx, soql, true)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(result)
}

func (t *Toolset) handleQueryMore(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nextRecordsURL, err := request.RequireString("next_records_url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := t.client(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := client.QueryMore(ctx, nextRecordsURL)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(result)
}

func (t *Toolset) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sosl, err := request.RequireString("sosl")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := t.client(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := client.Search(ctx, sosl)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(result)
}
