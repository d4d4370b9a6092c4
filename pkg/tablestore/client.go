// Package tablestore provides a client for the hosted table API that stores AI
// query executions and their citation sources. The API exposes soft-deleted,
// id-ordered tables behind a POST get-by endpoint with cursor pagination.
package tablestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	defaultBaseURL  = "https://chat-rank-api.amionai.com"
	defaultTimeout  = 30 * time.Second
	defaultPageSize = 500
	// maxPageSize is the upstream per-page ceiling; larger requests are clamped
	// rather than rejected.
	maxPageSize = 1000
)

// ClientOptions configures the table API client
type ClientOptions struct {
	// BaseURL is the table API host (default: https://chat-rank-api.amionai.com)
	BaseURL string
	// APIKey is sent on every request via the x-api-key header
	APIKey string
	// RetryMax is the number of transport-level retries (default: 0)
	RetryMax int
	// Timeout is the per-attempt request timeout (default: 30 seconds)
	Timeout time.Duration
}

// Client is the table API client
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *retryablehttp.Client
}

// NewClient creates a new table API client with default options
func NewClient(baseURL, apiKey string) *Client {
	return NewClientWithOptions(ClientOptions{
		BaseURL: baseURL,
		APIKey:  apiKey,
	})
}

// NewClientWithOptions creates a new table API client with custom options
func NewClientWithOptions(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.RetryMax
	retryClient.HTTPClient.Timeout = opts.Timeout
	retryClient.Logger = nil // Disable debug logging; requests carry the API key
	retryClient.CheckRetry = retryTransportErrors

	return &Client{
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		httpClient: retryClient,
	}
}

// retryTransportErrors retries connection-level failures only. Responses with a
// status code are never retried, so a rejection always surfaces immediately with
// its body intact.
func retryTransportErrors(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	return err != nil, nil
}

// FetchPage fetches one page from an upstream table. Records come back newest id
// first together with the cursor for the next page. Transport failures map to
// UpstreamUnavailableError and non-2xx responses to UpstreamRejectedError.
func (c *Client) FetchPage(ctx context.Context, q Query) (*Page, error) {
	if q.Table != TableExecutions && q.Table != TableSources {
		return nil, fmt.Errorf("unknown table: %q", q.Table)
	}

	size := q.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	payload, err := json.Marshal(queryBody{
		IsDeleted:    0,
		Limit:        size,
		OrderBy:      "id",
		Order:        "desc",
		Cursor:       q.Cursor,
		ExecutionIDs: q.ExecutionIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	url := fmt.Sprintf("%s/tables/%s/get-by/", c.baseURL, q.Table)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamUnavailableError{Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamUnavailableError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamRejectedError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed pageResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode page: %w", err)
	}

	return &Page{
		Records:    parsed.Data,
		NextCursor: parsed.Pagination.NextCursor,
	}, nil
}
