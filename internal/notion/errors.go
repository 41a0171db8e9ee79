// Package notion provides the Notion API client used by the extraction stage:
// cursor-paged database queries, block content retrieval, and title
// extraction.
package notion

import (
	"errors"
	"fmt"
	"time"
)

// RateLimitError indicates the API rejected a call with HTTP 429. It is
// distinguishable from hard API errors so callers can back off instead of
// failing the record.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("notion rate limit exceeded, retry after %s", e.RetryAfter)
	}
	return "notion rate limit exceeded"
}

// APIError indicates a non-429 failure response from the Notion API.
type APIError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("notion API error (status %d): %s: %v", e.StatusCode, e.Message, e.Cause)
	}
	return fmt.Sprintf("notion API error (status %d): %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// IsRateLimit reports whether err is (or wraps) a rate-limit rejection.
func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}
