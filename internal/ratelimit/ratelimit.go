// Package ratelimit provides a token bucket rate limiter for upstream API
// calls. Callers block in Wait until a token is available rather than
// receiving a rejection, so provider quotas throttle the pipeline instead of
// failing it.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter is a token bucket limiter. Tokens refill at a steady rate up to a
// burst capacity.
type Limiter struct {
	capacity   int       // Maximum tokens (burst capacity)
	refillRate float64   // Tokens per second
	tokens     float64   // Current tokens available
	lastRefill time.Time // Last time tokens were refilled
	mu         sync.Mutex
}

// New creates a limiter allowing ratePerSecond sustained calls with the
// given burst capacity. A non-positive rate or burst yields a limiter that
// never blocks.
func New(ratePerSecond float64, burst int) *Limiter {
	if ratePerSecond <= 0 || burst <= 0 {
		return &Limiter{}
	}
	return &Limiter{
		capacity:   burst,
		refillRate: ratePerSecond,
		tokens:     float64(burst), // Start with full bucket
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available or the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		ok, retryAfter := l.take()
		if ok {
			return nil
		}

		timer := time.NewTimer(retryAfter)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Allow reports whether a token is available and consumes it if so.
func (l *Limiter) Allow() bool {
	ok, _ := l.take()
	return ok
}

// take consumes a token if available; otherwise it reports how long to wait
// before the next token arrives.
func (l *Limiter) take() (bool, time.Duration) {
	if l.capacity == 0 {
		return true, 0 // unlimited
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Refill tokens based on time elapsed
	now := time.Now()
	elapsed := now.Sub(l.lastRefill)
	l.tokens = min(float64(l.capacity), l.tokens+elapsed.Seconds()*l.refillRate)
	l.lastRefill = now

	if l.tokens >= 1.0 {
		l.tokens -= 1.0
		return true, 0
	}

	needed := 1.0 - l.tokens
	wait := time.Duration(needed / l.refillRate * float64(time.Second))
	if wait <= 0 {
		wait = time.Millisecond
	}
	return false, wait
}
