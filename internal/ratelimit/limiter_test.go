package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterSlidingWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(2, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "alice")
	assert.False(t, ok, "third call inside the window")

	ok, _ = l.Allow(ctx, "bob")
	assert.True(t, ok, "keys are independent")

	now = now.Add(61 * time.Second)
	ok, _ = l.Allow(ctx, "alice")
	assert.True(t, ok, "window slid past the first events")
}

func TestMemoryLimiterRejectionsDoNotExtendWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(1, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "k")
	require.True(t, ok)

	now = now.Add(30 * time.Second)
	ok, _ = l.Allow(ctx, "k")
	require.False(t, ok)

	now = now.Add(31 * time.Second)
	ok, _ = l.Allow(ctx, "k")
	assert.True(t, ok)
}

func TestMemoryLimiterForgetsIdleKeys(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(1, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		ok, _ := l.Allow(ctx, key)
		require.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "a")
	require.False(t, ok)
	assert.Len(t, l.requests, 3)

	now = now.Add(2 * time.Minute)
	ok, _ = l.Allow(ctx, "d")
	require.True(t, ok)
	assert.Len(t, l.requests, 1)
	assert.Contains(t, l.requests, "d")
}

func TestMemoryLimiterZeroLimitKeepsNoState(t *testing.T) {
	l := NewMemoryLimiter(0, time.Minute)

	ok, err := l.Allow(context.Background(), "ip:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, l.requests)
}

func TestRedisLimiterReportsConnectionErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	l := NewRedisLimiter(client, "rl:test:", 5, time.Minute)
	ok, err := l.Allow(context.Background(), "alice")

	assert.Error(t, err)
	assert.False(t, ok)
}
