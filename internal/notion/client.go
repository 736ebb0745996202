// Package notion is a minimal client for the Notion HTTP API, covering the
// operations this application needs: retrieving a database, querying it with
// filters and cursor pagination, and creating/updating pages.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const apiVersion = "2022-06-28"

// Client talks to the Notion API on behalf of one integration token.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (used in tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a Client for the given integration token.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://api.notion.com",
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx response from the Notion API.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("notion: %s (%d %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("notion: request failed with status %d", e.Status)
}

// Database describes a Notion database.
type Database struct {
	ID    string           `json:"id"`
	Title []RichTextObject `json:"title"`
}

// PlainTitle returns the database title as plain text, or "Untitled".
func (d *Database) PlainTitle() string {
	var sb strings.Builder
	for _, rt := range d.Title {
		sb.WriteString(rt.Plain())
	}
	if sb.Len() == 0 {
		return "Untitled"
	}
	return sb.String()
}

// Page is a record in a Notion database.
type Page struct {
	ID         string     `json:"id"`
	Properties Properties `json:"properties"`
}

// QueryRequest is the body of a database query call.
type QueryRequest struct {
	Filter      *Filter `json:"filter,omitempty"`
	StartCursor string  `json:"start_cursor,omitempty"`
	PageSize    int     `json:"page_size,omitempty"`
}

// QueryResponse is one page of query results plus pagination continuation.
type QueryResponse struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// RetrieveDatabase fetches database metadata; used for connection tests.
func (c *Client) RetrieveDatabase(ctx context.Context, databaseID string) (*Database, error) {
	var db Database
	if err := c.do(ctx, http.MethodGet, "/v1/databases/"+databaseID, nil, &db); err != nil {
		return nil, err
	}
	return &db, nil
}

// QueryDatabase runs a filtered query returning one page of results.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, req *QueryRequest) (*QueryResponse, error) {
	if req == nil {
		req = &QueryRequest{}
	}
	var resp QueryResponse
	if err := c.do(ctx, http.MethodPost, "/v1/databases/"+databaseID+"/query", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type createPageRequest struct {
	Parent     pageParent `json:"parent"`
	Properties Properties `json:"properties"`
}

type pageParent struct {
	DatabaseID string `json:"database_id"`
}

// CreatePage creates a record in the given database and returns it,
// including the opaque ID the datastore assigned.
func (c *Client) CreatePage(ctx context.Context, databaseID string, props Properties) (*Page, error) {
	body := createPageRequest{
		Parent:     pageParent{DatabaseID: databaseID},
		Properties: props,
	}
	var page Page
	if err := c.do(ctx, http.MethodPost, "/v1/pages", body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

type updatePageRequest struct {
	Properties Properties `json:"properties"`
}

// UpdatePage mutates properties of an existing record and returns the
// updated page.
func (c *Client) UpdatePage(ctx context.Context, pageID string, props Properties) (*Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodPatch, "/v1/pages/"+pageID, updatePageRequest{Properties: props}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("notion: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Notion-Version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
