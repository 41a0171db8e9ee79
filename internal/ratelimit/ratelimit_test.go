package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_AllowsBurst(t *testing.T) {
	l := New(1, 3)

	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
}

func TestLimiter_RefillsOverTime(t *testing.T) {
	l := New(100, 1) // 100 tokens/sec, burst 1

	require.True(t, l.Allow())
	require.False(t, l.Allow())

	time.Sleep(30 * time.Millisecond)
	assert.True(t, l.Allow())
}

func TestLimiter_WaitBlocksThenSucceeds(t *testing.T) {
	l := New(50, 1)

	require.True(t, l.Allow())

	start := time.Now()
	err := l.Wait(context.Background())
	require.NoError(t, err)
	assert.Greater(t, time.Since(start), time.Duration(0))
}

func TestLimiter_WaitHonorsCancellation(t *testing.T) {
	l := New(0.001, 1) // effectively never refills
	require.True(t, l.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLimiter_ZeroRateNeverBlocks(t *testing.T) {
	l := New(0, 0)
	for i := 0; i < 100; i++ {
		require.True(t, l.Allow())
	}
	require.NoError(t, l.Wait(context.Background()))
}
