// Package salesforce implements a per-user Salesforce REST API client,
// the manager that caches clients across requests, and the data
// operations exposed through the MCP tools.
package salesforce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIVersion is the Salesforce REST API version all requests target.
const APIVersion = "v59.0"

const requestTimeout = 30 * time.Second

// ErrAuthenticationRequired is returned when an operation needs a
// Salesforce token but the request carries a guest identity.
var ErrAuthenticationRequired = errors.New("authentication required: no Salesforce access token")

// APIError is a Salesforce REST error response. Salesforce returns an
// array of these; the first entry carries the primary error.
type APIError struct {
	StatusCode int
	ErrorCode  string   `json:"errorCode"`
	Message    string   `json:"message"`
	Fields     []string `json:"fields"`
}

func (e *APIError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("salesforce API error %s (status %d): %s", e.ErrorCode, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("salesforce API error (status %d): %s", e.StatusCode, e.Message)
}

// Client talks to a single Salesforce instance on behalf of a single
// user. It is safe for concurrent use.
type Client struct {
	instanceURL string
	accessToken string
	httpClient  *http.Client
}

// NewClient creates a REST client for an instance/token pair.
func NewClient(instanceURL, accessToken string) *Client {
	return &Client{
		instanceURL: strings.TrimRight(instanceURL, "/"),
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: requestTimeout},
	}
}

// InstanceURL returns the instance this client targets.
func (c *Client) InstanceURL() string {
	return c.instanceURL
}

// restPath prefixes a resource path with the versioned REST root.
func restPath(resource string) string {
	return "/services/data/" + APIVersion + resource
}

// do performs an authenticated JSON request. path is relative to the
// instance URL. When out is non-nil the response body is decoded into it.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.instanceURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("salesforce request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var apiErrors []APIError
	if err := json.Unmarshal(data, &apiErrors); err == nil && len(apiErrors) > 0 {
		apiErr := apiErrors[0]
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(data)),
	}
}
