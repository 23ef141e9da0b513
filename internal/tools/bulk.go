package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (t *Toolset) registerBulkTools(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("salesforce_bulk_query",
		mcp.WithDescription("Execute a SOQL query and collect every page of results"),
		mcp.WithString("soql",
			mcp.Required(),
			mcp.Description("SOQL query to run to completion"),
		),
		mcp.WithBoolean("include_deleted",
			mcp.Description("Include soft-deleted and archived records (default false)"),
		),
	), t.handleBulkQuery)

	s.AddTool(mcp.NewTool("salesforce_bulk_insert",
		mcp.WithDescription("Insert many records in batches of 200"),
		mcp.WithString("sobject",
			mcp.Required(),
			mcp.Description("sObject API name for every record"),
		),
		mcp.WithArray("records",
			mcp.Required(),
			mcp.Description("Array of record objects to insert"),
		),
	), t.handleBulkInsert)

	s.AddTool(mcp.NewTool("salesforce_bulk_update",
		mcp.WithDescription("Update many records in batches of 200; each record must include its Id"),
		mcp.WithString("sobject",
			mcp.Required(),
			mcp.Description("sObject API name for every record"),
		),
		mcp.WithArray("records",
			mcp.Required(),
			mcp.Description("Array of record objects, each carrying an Id field"),
		),
	), t.handleBulkUpdate)

	s.AddTool(mcp.NewTool("salesforce_bulk_delete",
		mcp.WithDescription("Delete many records by ID in batches of 200"),
		mcp.WithArray("record_ids",
			mcp.Required(),
			mcp.Description("Array of record IDs to delete"),
		),
	), t.handleBulkDelete)
}

func (t *Toolset) handleBulkQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	soql, err := request.RequireString("soql")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	includeDeleted := request.GetBool("include_deleted", false)

	client, err := t.client(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := client.QueryAllPages(ctx, soql, includeDeleted)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(result)
}

func (t *Toolset) handleBulkInsert(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sobject, err := request.RequireString("sobject")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	records, err := objectArrayArgument(request, "records")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := t.client(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	results, err := client.BulkInsert(ctx, sobject, records)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(results)
}

func (t *Toolset) handleBulkUpdate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sobject, err := request.RequireString("sobject")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	records, err := objectArrayArgument(request, "records")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := t.client(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	results, err := client.BulkUpdate(ctx, sobject, records)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(results)
}

func (t *Toolset) handleBulkDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := stringArrayArgument(request, "record_ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(ids) == 0 {
		return mcp.NewToolResultError("record_ids must not be empty"), nil
	}

	client, err := t.client(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	results, err := client.BulkDelete(ctx, ids)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(results)
}
