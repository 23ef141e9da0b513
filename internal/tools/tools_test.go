package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypn4/salesforce-mcp-server/internal/auth"
	"github.com/hypn4/salesforce-mcp-server/internal/salesforce"
)

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	return text.Text
}

func authedContext(instanceURL string) context.Context {
	return auth.ContextWithIdentity(context.Background(), &auth.Identity{
		Authenticated: true,
		ClientID:      "salesforce",
		Claims: auth.Claims{
			UserID:          "005xx000001X8Uz",
			InstanceURL:     instanceURL,
			SalesforceToken: "test-token",
		},
	})
}

func TestHandlersRejectGuests(t *testing.T) {
	ts := New(salesforce.NewManager())
	guestCtx := auth.ContextWithIdentity(context.Background(), auth.GuestIdentity("https://login.salesforce.com"))

	result, err := ts.handleQuery(guestCtx, callRequest(map[string]interface{}{"soql": "SELECT Id FROM Account"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Authentication required")

	// Same outcome when no middleware ran at all.
	result, err = ts.handleListSObjects(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Authentication required")
}

func TestHandleQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(salesforce.QueryResult{
			TotalSize: 1,
			Done:      true,
			Records:   []map[string]interface{}{{"Id": "001xx000003DGb0", "Name": "Acme"}},
		})
	}))
	defer srv.Close()

	ts := New(salesforce.NewManager())
	result, err := ts.handleQuery(authedContext(srv.URL), callRequest(map[string]interface{}{
		"soql": "SELECT Id, Name FROM Account",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var decoded salesforce.QueryResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &decoded))
	assert.Equal(t, 1, decoded.TotalSize)
	assert.Equal(t, "Acme", decoded.Records[0]["Name"])
}

func TestHandleQueryMissingArgument(t *testing.T) {
	ts := New(salesforce.NewManager())

	result, err := ts.handleQuery(context.Background(), callRequest(map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleCreateRecordValidatesData(t *testing.T) {
	ts := New(salesforce.NewManager())

	result, err := ts.handleCreateRecord(authedContext("http://127.0.0.1:1"), callRequest(map[string]interface{}{
		"sobject": "Account",
		"data":    "not-an-object",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "must be an object")
}

func TestHandleBulkInsert(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]salesforce.SaveResult{
			{ID: "003xx000001", Success: true},
			{ID: "003xx000002", Success: true},
		})
	}))
	defer srv.Close()

	ts := New(salesforce.NewManager())
	result, err := ts.handleBulkInsert(authedContext(srv.URL), callRequest(map[string]interface{}{
		"sobject": "Contact",
		"records": []interface{}{
			map[string]interface{}{"LastName": "One"},
			map[string]interface{}{"LastName": "Two"},
		},
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var decoded []salesforce.SaveResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &decoded))
	assert.Len(t, decoded, 2)
}

func TestHandleBulkDeleteRejectsEmpty(t *testing.T) {
	ts := New(salesforce.NewManager())

	result, err := ts.handleBulkDelete(authedContext("http://127.0.0.1:1"), callRequest(map[string]interface{}{
		"record_ids": []interface{}{},
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
