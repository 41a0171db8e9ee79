// Package extract walks the workspace database and mirrors its documents
// into local storage with idempotent bookkeeping.
package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/notion-insights/internal/db"
	"github.com/jonathan/notion-insights/internal/notion"
)

// defaultRetryAfter is the wait before retrying a rate-limited page fetch
// when the provider sends no Retry-After hint.
const defaultRetryAfter = time.Second

// Provider fetches pages of source documents, following a cursor.
type Provider interface {
	FetchPage(ctx context.Context, cursor string, pageSize int) (*notion.Page, error)
}

// Store persists extracted documents and their processing records.
type Store interface {
	UpsertDocument(ctx context.Context, doc *db.SourceDocument) (bool, error)
	EnsureRecord(ctx context.Context, documentID string) error
}

// Limiter gates outbound API calls.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Result reports what one extraction run did.
type Result struct {
	Created int
	Updated int
	Pages   int
}

// Coordinator runs the extraction stage.
type Coordinator struct {
	provider Provider
	store    Store
	limiter  Limiter
	pageSize int
}

// NewCoordinator wires an extraction run. pageSize is passed through to the
// provider; zero lets the provider choose.
func NewCoordinator(provider Provider, store Store, limiter Limiter, pageSize int) *Coordinator {
	return &Coordinator{provider: provider, store: store, limiter: limiter, pageSize: pageSize}
}

// Run extracts documents until the source is exhausted or limit documents
// have been seen (zero means no limit). Each document is committed
// individually, so an error mid-run loses nothing already stored; the next
// run re-walks the source and converges on the same state.
func (c *Coordinator) Run(ctx context.Context, limit int) (*Result, error) {
	result := &Result{}
	cursor := ""
	seen := 0

	for {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return result, fmt.Errorf("rate limiter interrupted: %w", err)
			}
		}

		page, err := c.provider.FetchPage(ctx, cursor, c.pageSize)
		if err != nil {
			// Rate-limit rejections wait and retry the same page instead of
			// failing the run.
			var rl *notion.RateLimitError
			if errors.As(err, &rl) {
				if waitErr := waitRetry(ctx, rl.RetryAfter); waitErr != nil {
					return result, fmt.Errorf("rate limit wait interrupted: %w", waitErr)
				}
				continue
			}
			return result, fmt.Errorf("failed to fetch page: %w", err)
		}
		result.Pages++

		for i := range page.Documents {
			doc := &page.Documents[i]
			created, err := c.store.UpsertDocument(ctx, &db.SourceDocument{
				ID:        doc.ID,
				Title:     doc.Title,
				Content:   doc.Content,
				URL:       doc.URL,
				CreatedAt: doc.CreatedTime,
				EditedAt:  doc.LastEditedTime,
			})
			if err != nil {
				return result, fmt.Errorf("failed to store document %s: %w", doc.ID, err)
			}
			if err := c.store.EnsureRecord(ctx, doc.ID); err != nil {
				return result, fmt.Errorf("failed to record document %s: %w", doc.ID, err)
			}

			if created {
				result.Created++
			} else {
				result.Updated++
			}

			seen++
			if limit > 0 && seen >= limit {
				return result, nil
			}
		}

		if !page.HasMore || page.NextCursor == "" {
			return result, nil
		}
		cursor = page.NextCursor
	}
}

// waitRetry sleeps for the provider's Retry-After hint, or a default when
// none was sent, honoring context cancellation.
func waitRetry(ctx context.Context, retryAfter time.Duration) error {
	if retryAfter <= 0 {
		retryAfter = defaultRetryAfter
	}
	timer := time.NewTimer(retryAfter)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
