package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const (
	// DefaultBaseURL is the Notion REST API root.
	DefaultBaseURL = "https://api.notion.com/v1"
	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 30 * time.Second
	// apiVersion pins the Notion API revision.
	apiVersion = "2022-06-28"
	// maxPageSize is the largest page size the API accepts.
	maxPageSize = 100
)

// Document is a raw Notion page with its content flattened to text.
type Document struct {
	ID             string
	Title          string
	Content        string
	URL            string
	CreatedTime    time.Time
	LastEditedTime time.Time
}

// Page is one page of a database query.
type Page struct {
	Documents  []Document
	NextCursor string
	HasMore    bool
}

// Client talks to the Notion REST API for a single workspace database.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	databaseID string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root, used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient creates a client for the given integration token and database.
func NewClient(token, databaseID string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("notion token is required")
	}
	if databaseID == "" {
		return nil, fmt.Errorf("notion database ID is required")
	}

	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    DefaultBaseURL,
		token:      token,
		databaseID: databaseID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// queryRequest is the database query body.
type queryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size"`
}

// queryResponse mirrors the fields of a database query response we consume.
type queryResponse struct {
	Results []struct {
		ID             string                     `json:"id"`
		URL            string                     `json:"url"`
		CreatedTime    time.Time                  `json:"created_time"`
		LastEditedTime time.Time                  `json:"last_edited_time"`
		Properties     map[string]json.RawMessage `json:"properties"`
	} `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// FetchPage retrieves one page of documents from the database, starting at
// the given cursor. Each returned document includes its block content
// flattened to text. An empty cursor starts from the beginning.
func (c *Client) FetchPage(ctx context.Context, cursor string, pageSize int) (*Page, error) {
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	body, err := json.Marshal(queryRequest{StartCursor: cursor, PageSize: pageSize})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query request: %w", err)
	}

	var resp queryResponse
	url := fmt.Sprintf("%s/databases/%s/query", c.baseURL, c.databaseID)
	if err := c.do(ctx, http.MethodPost, url, body, &resp); err != nil {
		return nil, err
	}

	page := &Page{HasMore: resp.HasMore, NextCursor: resp.NextCursor}
	for _, result := range resp.Results {
		content, err := c.fetchPageContent(ctx, result.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch content for page %s: %w", result.ID, err)
		}

		page.Documents = append(page.Documents, Document{
			ID:             result.ID,
			Title:          extractTitle(result.ID, result.Properties),
			Content:        content,
			URL:            result.URL,
			CreatedTime:    result.CreatedTime,
			LastEditedTime: result.LastEditedTime,
		})
	}

	return page, nil
}

// blockListResponse mirrors a block children listing.
type blockListResponse struct {
	Results    []block `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor string  `json:"next_cursor"`
}

// fetchPageContent retrieves all child blocks of a page and renders them to
// text, following block pagination.
func (c *Client) fetchPageContent(ctx context.Context, pageID string) (string, error) {
	var blocks []block
	cursor := ""

	for {
		url := fmt.Sprintf("%s/blocks/%s/children?page_size=%d", c.baseURL, pageID, maxPageSize)
		if cursor != "" {
			url += "&start_cursor=" + cursor
		}

		var resp blockListResponse
		if err := c.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
			return "", err
		}

		blocks = append(blocks, resp.Results...)
		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}

	return renderBlocks(blocks), nil
}

// do executes one API request and decodes the response into out.
func (c *Client) do(ctx context.Context, method, url string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return &APIError{Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{StatusCode: resp.StatusCode, Message: string(msg)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// parseRetryAfter reads a Retry-After header in seconds.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
