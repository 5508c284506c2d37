// Package ratelimit implements sliding-window limits keyed by an arbitrary identifier.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Limiter decides whether another event for key fits in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter keeps one sorted set per key, scored by event time, so every
// service instance shares the same window.
type RedisLimiter struct {
	client redis.Cmdable
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRedisLimiter constructs a limiter allowing limit events per window.
func NewRedisLimiter(client redis.Cmdable, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, limit: limit, window: window, now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := l.now()
	redisKey := l.prefix + key
	member := strconv.FormatInt(now.UnixNano(), 10) + "-" + uuid.NewString()
	cutoff := strconv.FormatInt(now.Add(-l.window).UnixNano(), 10)

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", "("+cutoff)
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: member})
	count := pipe.ZCard(ctx, redisKey)
	pipe.PExpire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}

	if count.Val() > int64(l.limit) {
		// Rejected attempts do not consume the window.
		if err := l.client.ZRem(ctx, redisKey, member).Err(); err != nil {
			return false, fmt.Errorf("rate limit %s: %w", key, err)
		}
		return false, nil
	}
	return true, nil
}

// MemoryLimiter is the single-process variant used when Redis is not configured.
type MemoryLimiter struct {
	mu        sync.Mutex
	requests  map[string][]time.Time
	limit     int
	window    time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	if now.Sub(l.lastSweep) >= l.window {
		l.sweep(cutoff)
		l.lastSweep = now
	}

	requests := l.requests[key]
	i := 0
	for ; i < len(requests); i++ {
		if !requests[i].Before(cutoff) {
			break
		}
	}
	requests = requests[i:]

	if len(requests) >= l.limit {
		if len(requests) == 0 {
			delete(l.requests, key)
		} else {
			l.requests[key] = requests
		}
		return false, nil
	}

	l.requests[key] = append(requests, now)
	return true, nil
}

// sweep drops keys whose newest event is older than cutoff.
func (l *MemoryLimiter) sweep(cutoff time.Time) {
	for key, requests := range l.requests {
		if len(requests) == 0 || requests[len(requests)-1].Before(cutoff) {
			delete(l.requests, key)
		}
	}
}
