package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (t *Toolset) registerRecordTools(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("salesforce_get_record",
		mcp.WithDescription("Retrieve a single record by ID"),
		mcp.WithString("sobject",
			mcp.Required(),
			mcp.Description("sObject API name, e.g. Account"),
		),
		mcp.WithString("record_id",
			mcp.Required(),
			mcp.Description("The 15- or 18-character record ID"),
		),
		mcp.WithArray("fields",
			mcp.Description("Optional list of fields to return (default: all)"),
		),
	), t.handleGetRecord)

	s.AddTool(mcp.NewTool("salesforce_create_record",
		mcp.WithDescription("Create a new record"),
		mcp.WithString("sobject",
			mcp.Required(),
			mcp.Description("sObject API name, e.g. Contact"),
		),
		mcp.WithObject("data",
			mcp.Required(),
			mcp.Description("Field values for the new record"),
		),
	), t.handleCreateRecord)

	s.AddTool(mcp.NewTool("salesforce_update_record",
		mcp.WithDescription("Update fields on an existing record"),
		mcp.WithString("sobject",
			mcp.Required(),
			mcp.Description("sObject API name"),
		),
		mcp.WithString("record_id",
			mcp.Required(),
			mcp.Description("The record ID to update"),
		),
		mcp.WithObject("data",
			mcp.Required(),
			mcp.Description("Field values to change"),
		),
	), t.handleUpdateRecord)

	s.AddTool(mcp.NewTool("salesforce_delete_record",
		mcp.WithDescription("Delete a record by ID"),
		mcp.WithString("sobject",
			mcp.Required(),
			mcp.Description("sObject API name"),
		),
		mcp.WithString("record_id",
			mcp.Required(),
			mcp.Description("The record ID to delete"),
		),
	), t.handleDeleteRecord)

	s.AddTool(mcp.NewTool("salesforce_upsert_record",
		mcp.WithDescription("Create or update a record addressed by an external ID field"),
		mcp.WithString("sobject",
			mcp.Required(),
			mcp.Description("sObject API name"),
		),
		mcp.WithString("external_id_field",
			mcp.Required(),
			mcp.Description("The external ID field API name, e.g. ExternalId__c"),
		),
		mcp.WithString("external_id",
			mcp.Required(),
			mcp.Description("The external ID value identifying the record"),
		),
		mcp.WithObject("data",
			mcp.Required(),
			mcp.Description("Field values for the record"),
		),
	), t.handleUpsertRecord)
}

func (t *Toolset) handleGetRecord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sobject, err := request.RequireString("sobject")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	recordID, err := request.RequireString("record_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fields, err := stringArrayArgument(request, "fields")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := t.client(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	record, err := client.GetRecord(ctx, sobject, recordID, fields)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(record)
}

func (t *Toolset) handleCreateRecord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sobject, err := request.RequireString("sobject")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := objectArgument(request, "data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := t.client(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := client.CreateRecord(ctx, sobject, data)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(result)
}

func (t *Toolset) handleUpdateRecord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sobject, err := request.RequireString("sobject")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	recordID, err := request.RequireString("record_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := objectArgument(request, "data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := t.client(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	if err := client.UpdateRecord(ctx, sobject, recordID, data); err != nil {
		return errorResult(err), nil
	}
	return jsonResult(map[string]interface{}{"id": recordID, "success": true})
}

func (t *Toolset) handleDeleteRecord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sobject, err := request.RequireString("sobject")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	recordID, err := request.RequireString("record_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := t.client(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	if err := client.DeleteRecord(ctx, sobject, recordID); err != nil {
		return errorResult(err), nil
	}
	return jsonResult(map[string]interface{}{"id": recordID, "success": true})
}

func (t *Toolset) handleUpsertRecord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sobject, err := request.RequireString("sobject")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	externalIDField, err := request.RequireString("external_id_field")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	externalID, err := request.RequireString("external_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := objectArgument(request, "data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := t.client(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := client.UpsertRecord(ctx, sobject, externalIDField, externalID, data)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(result)
}
