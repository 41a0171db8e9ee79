package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient("secret-token", "db-123", WithBaseURL(server.URL))
	require.NoError(t, err)
	return server, client
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient("", "db")
	assert.Error(t, err)

	_, err = NewClient("token", "")
	assert.Error(t, err)
}

func TestFetchPage_ReturnsDocumentsAndCursor(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("Notion-Version"))

		switch {
		case strings.HasSuffix(r.URL.Path, "/databases/db-123/query"):
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			fmt.Fprint(w, `{
				"results": [{
					"id": "page-1",
					"url": "https://notion.so/page-1",
					"created_time": "2024-01-01T10:00:00Z",
					"last_edited_time": "2024-01-02T10:00:00Z",
					"properties": {"Name": {"type": "title", "title": [{"plain_text": "Doc One"}]}}
				}],
				"has_more": true,
				"next_cursor": "cursor-2"
			}`)
		case strings.Contains(r.URL.Path, "/blocks/page-1/children"):
			fmt.Fprint(w, `{
				"results": [{"type": "paragraph", "paragraph": {"rich_text": [{"plain_text": "Hello"}]}}],
				"has_more": false,
				"next_cursor": null
			}`)
		default:
			t.Fatalf("unexpected request: %s", r.URL.Path)
		}
	})

	page, err := client.FetchPage(context.Background(), "", 10)
	require.NoError(t, err)
	require.Len(t, page.Documents, 1)

	doc := page.Documents[0]
	assert.Equal(t, "page-1", doc.ID)
	assert.Equal(t, "Doc One", doc.Title)
	assert.Equal(t, "Hello", doc.Content)
	assert.Equal(t, "https://notion.so/page-1", doc.URL)
	assert.True(t, page.HasMore)
	assert.Equal(t, "cursor-2", page.NextCursor)
}

func TestFetchPage_PassesCursor(t *testing.T) {
	var gotCursor string
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/query") {
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			gotCursor, _ = body["start_cursor"].(string)
			fmt.Fprint(w, `{"results": [], "has_more": false, "next_cursor": null}`)
			return
		}
		t.Fatalf("unexpected request: %s", r.URL.Path)
	})

	page, err := client.FetchPage(context.Background(), "cursor-xyz", 5)
	require.NoError(t, err)
	assert.Empty(t, page.Documents)
	assert.Equal(t, "cursor-xyz", gotCursor)
}

func TestFetchPage_RateLimited(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "2")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.FetchPage(context.Background(), "", 10)
	require.Error(t, err)
	assert.True(t, IsRateLimit(err))

	var rl *RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, "2s", rl.RetryAfter.String())
}

func TestFetchPage_HardAPIError(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "upstream exploded")
	})

	_, err := client.FetchPage(context.Background(), "", 10)
	require.Error(t, err)
	assert.False(t, IsRateLimit(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestFetchPage_BlockPagination(t *testing.T) {
	blockCalls := 0
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/query"):
			fmt.Fprint(w, `{
				"results": [{
					"id": "page-1",
					"url": "https://notion.so/page-1",
					"created_time": "2024-01-01T10:00:00Z",
					"last_edited_time": "2024-01-01T10:00:00Z",
					"properties": {}
				}],
				"has_more": false,
				"next_cursor": null
			}`)
		case strings.Contains(r.URL.Path, "/blocks/page-1/children"):
			blockCalls++
			if blockCalls == 1 {
				assert.Empty(t, r.URL.Query().Get("start_cursor"))
				fmt.Fprint(w, `{
					"results": [{"type": "paragraph", "paragraph": {"rich_text": [{"plain_text": "part one"}]}}],
					"has_more": true,
					"next_cursor": "blk-2"
				}`)
			} else {
				assert.Equal(t, "blk-2", r.URL.Query().Get("start_cursor"))
				fmt.Fprint(w, `{
					"results": [{"type": "paragraph", "paragraph": {"rich_text": [{"plain_text": "part two"}]}}],
					"has_more": false,
					"next_cursor": null
				}`)
			}
		}
	})

	page, err := client.FetchPage(context.Background(), "", 10)
	require.NoError(t, err)
	require.Len(t, page.Documents, 1)
	assert.Equal(t, 2, blockCalls)
	assert.Equal(t, "part one\n\npart two", page.Documents[0].Content)
}
