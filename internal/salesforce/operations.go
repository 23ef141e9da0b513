package salesforce

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// compositeBatchSize is the record limit per composite sObject
// collections request.
const compositeBatchSize = 200

// QueryResult is one page of SOQL results.
type QueryResult struct {
	TotalSize      int                      `json:"totalSize"`
	Done           bool                     `json:"done"`
	NextRecordsURL string                   `json:"nextRecordsUrl,omitempty"`
	Records        []map[string]interface{} `json:"records"`
}

// SearchResult holds SOSL search hits.
type SearchResult struct {
	SearchRecords []map[string]interface{} `json:"searchRecords"`
}

// SaveError is a per-record failure inside a save result.
type SaveError struct {
	StatusCode string   `json:"statusCode"`
	Message    string   `json:"message"`
	Fields     []string `json:"fields"`
}

// SaveResult reports the outcome of a create/update/delete on one
// record.
type SaveResult struct {
	ID      string      `json:"id,omitempty"`
	Success bool        `json:"success"`
	Created bool        `json:"created,omitempty"`
	Errors  []SaveError `json:"errors,omitempty"`
}

// Query runs a SOQL query. includeDeleted routes through queryAll so
// soft-deleted and archived records are returned too.
func (c *Client) Query(ctx context.Context, soql string, includeDeleted bool) (*QueryResult, error) {
	resource := "/query"
	if includeDeleted {
		resource = "/queryAll"
	}

	var result QueryResult
	path := restPath(resource) + "?q=" + url.QueryEscape(soql)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return &result, nil
}

// QueryMore fetches the next page identified by a nextRecordsUrl value.
func (c *Client) QueryMore(ctx context.Context, nextRecordsURL string) (*QueryResult, error) {
	if nextRecordsURL == "" {
		return nil, fmt.Errorf("nextRecordsUrl is required")
	}
	if !strings.HasPrefix(nextRecordsURL, "/") {
		nextRecordsURL = "/" + nextRecordsURL
	}

	var result QueryResult
	if err := c.do(ctx, http.MethodGet, nextRecordsURL, nil, &result); err != nil {
		return nil, fmt.Errorf("queryMore failed: %w", err)
	}
	return &result, nil
}

// QueryAllPages runs a SOQL query and follows nextRecordsUrl until every
// page has been collected.
func (c *Client) QueryAllPages(ctx context.Context, soql string, includeDeleted bool) (*QueryResult, error) {
	result, err := c.Query(ctx, soql, includeDeleted)
	if err != nil {
		return nil, err
	}

	for !result.Done && result.NextRecordsURL != "" {
		page, err := c.QueryMore(ctx, result.NextRecordsURL)
		if err != nil {
			return nil, err
		}
		result.Records = append(result.Records, page.Records...)
		result.Done = page.Done
		result.NextRecordsURL = page.NextRecordsURL
	}
	result.Done = true
	result.NextRecordsURL = ""
	return result, nil
}

// Search runs a SOSL search.
func (c *Client) Search(ctx context.Context, sosl string) (*SearchResult, error) {
	var result SearchResult
	path := restPath("/search") + "?q=" + url.QueryEscape(sosl)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	return &result, nil
}

// GetRecord fetches a record by ID, optionally limited to fields.
func (c *Client) GetRecord(ctx context.Context, sobject, id string, fields []string) (map[string]interface{}, error) {
	path := restPath("/sobjects/" + url.PathEscape(sobject) + "/" + url.PathEscape(id))
	if len(fields) > 0 {
		path += "?fields=" + url.QueryEscape(strings.Join(fields, ","))
	}

	var record map[string]interface{}
	if err := c.do(ctx, http.MethodGet, path, nil, &record); err != nil {
		return nil, fmt.Errorf("failed to get %s record %s: %w", sobject, id, err)
	}
	return record, nil
}

// CreateRecord inserts a record and returns its new ID.
func (c *Client) CreateRecord(ctx context.Context, sobject string, data map[string]interface{}) (*SaveResult, error) {
	var result SaveResult
	path := restPath("/sobjects/" + url.PathEscape(sobject))
	if err := c.do(ctx, http.MethodPost, path, data, &result); err != nil {
		return nil, fmt.Errorf("failed to create %s record: %w", sobject, err)
	}
	return &result, nil
}

// UpdateRecord applies a partial update to a record.
func (c *Client) UpdateRecord(ctx context.Context, sobject, id string, data map[string]interface{}) error {
	path := restPath("/sobjects/" + url.PathEscape(sobject) + "/" + url.PathEscape(id))
	if err := c.do(ctx, http.MethodPatch, path, data, nil); err != nil {
		return fmt.Errorf("failed to update %s record %s: %w", sobject, id, err)
	}
	return nil
}

// DeleteRecord deletes a record by ID.
func (c *Client) DeleteRecord(ctx context.Context, sobject, id string) error {
	path := restPath("/sobjects/" + url.PathEscape(sobject) + "/" + url.PathEscape(id))
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("failed to delete %s record %s: %w", sobject, id, err)
	}
	return nil
}

// UpsertRecord creates or updates a record addressed by an external ID
// field. Salesforce answers 201 with a body on create and 204 without
// one on update.
func (c *Client) UpsertRecord(ctx context.Context, sobject, externalIDField, externalID string, data map[string]interface{}) (*SaveResult, error) {
	path := restPath("/sobjects/" + url.PathEscape(sobject) + "/" + url.PathEscape(externalIDField) + "/" + url.PathEscape(externalID))

	var result SaveResult
	if err := c.do(ctx, http.MethodPatch, path, data, &result); err != nil {
		return nil, fmt.Errorf("failed to upsert %s record: %w", sobject, err)
	}
	if result.ID == "" {
		// Updated in place.
		result.Success = true
	}
	return &result, nil
}

// DescribeSObject returns the full metadata description of an object
// type.
func (c *Client) DescribeSObject(ctx context.Context, sobject string) (map[string]interface{}, error) {
	var describe map[string]interface{}
	path := restPath("/sobjects/" + url.PathEscape(sobject) + "/describe")
	if err := c.do(ctx, http.MethodGet, path, nil, &describe); err != nil {
		return nil, fmt.Errorf("failed to describe %s: %w", sobject, err)
	}
	return describe, nil
}

// globalDescribe is the /sobjects listing response.
type globalDescribe struct {
	SObjects []map[string]interface{} `json:"sobjects"`
}

// ListSObjects returns summary metadata for every object type in the
// org.
func (c *Client) ListSObjects(ctx context.Context) ([]map[string]interface{}, error) {
	var describe globalDescribe
	if err := c.do(ctx, http.MethodGet, restPath("/sobjects"), nil, &describe); err != nil {
		return nil, fmt.Errorf("failed to list sobjects: %w", err)
	}
	return describe.SObjects, nil
}

// compositeRequest is the composite sObject collections payload.
type compositeRequest struct {
	AllOrNone bool                     `json:"allOrNone"`
	Records   []map[string]interface{} `json:"records"`
}

// withAttributes copies records, stamping the sObject type attribute the
// collections API requires.
func withAttributes(sobject string, records []map[string]interface{}) []map[string]interface{} {
	out := make([]map[string]interface{}, len(records))
	for i, record := range records {
		copied := make(map[string]interface{}, len(record)+1)
		for k, v := range record {
			copied[k] = v
		}
		copied["attributes"] = map[string]interface{}{"type": sobject}
		out[i] = copied
	}
	return out
}

// BulkInsert inserts records through the composite collections API in
// batches of 200.
func (c *Client) BulkInsert(ctx context.Context, sobject string, records []map[string]interface{}) ([]SaveResult, error) {
	return c.bulkWrite(ctx, http.MethodPost, sobject, records)
}

// BulkUpdate updates records through the composite collections API in
// batches of 200. Every record must carry its Id field.
func (c *Client) BulkUpdate(ctx context.Context, sobject string, records []map[string]interface{}) ([]SaveResult, error) {
	for i, record := range records {
		if !hasID(record) {
			return nil, fmt.Errorf("bulk update record %d is missing an Id field", i)
		}
	}
	return c.bulkWrite(ctx, http.MethodPatch, sobject, records)
}

func (c *Client) bulkWrite(ctx context.Context, method, sobject string, records []map[string]interface{}) ([]SaveResult, error) {
	stamped := withAttributes(sobject, records)
	results := make([]SaveResult, 0, len(records))

	for start := 0; start < len(stamped); start += compositeBatchSize {
		end := start + compositeBatchSize
		if end > len(stamped) {
			end = len(stamped)
		}

		var batch []SaveResult
		body := compositeRequest{Records: stamped[start:end]}
		if err := c.do(ctx, method, restPath("/composite/sobjects"), body, &batch); err != nil {
			return results, fmt.Errorf("bulk operation failed at record %d: %w", start, err)
		}
		results = append(results, batch...)
	}
	return results, nil
}

// BulkDelete deletes records by ID through the composite collections
// API in batches of 200.
func (c *Client) BulkDelete(ctx context.Context, ids []string) ([]SaveResult, error) {
	results := make([]SaveResult, 0, len(ids))

	for start := 0; start < len(ids); start += compositeBatchSize {
		end := start + compositeBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		var batch []SaveResult
		path := restPath("/composite/sobjects") + "?ids=" + url.QueryEscape(strings.Join(ids[start:end], ",")) + "&allOrNone=false"
		if err := c.do(ctx, http.MethodDelete, path, nil, &batch); err != nil {
			return results, fmt.Errorf("bulk delete failed at record %d: %w", start, err)
		}
		results = append(results, batch...)
	}
	return results, nil
}

func hasID(record map[string]interface{}) bool {
	for _, key := range []string{"Id", "id", "ID"} {
		if v, ok := record[key].(string); ok && v != "" {
			return true
		}
	}
	return false
}
