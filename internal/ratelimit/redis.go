// Package ratelimit provides a Redis-backed sliding window rate limiter.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit:"

// Limiter answers whether a keyed caller may proceed.
type Limiter interface {
	// Allow consumes one slot for key; false means the caller is over the limit.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	// Remaining reports how many slots are left in the current window.
	Remaining(ctx context.Context, key string, limit int, window time.Duration) (int, error)
}

// redisLimiter implements Limiter with a sliding window counter held in a
// Redis sorted set: entries are timestamped members, old ones trimmed by
// score on every check.
type redisLimiter struct {
	client *redis.Client
}

// NewRedisLimiter creates a new Redis-backed limiter.
func NewRedisLimiter(client *redis.Client) Limiter {
	return &redisLimiter{client: client}
}

var _ Limiter = (*redisLimiter)(nil)

func (r *redisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	fullKey := keyPrefix + key
	now := time.Now().UnixNano()
	windowStart := now - window.Nanoseconds()

	// Trim old entries and count what is left
	pipe := r.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, fullKey, "0", fmt.Sprintf("%d", windowStart))
	countCmd := pipe.ZCard(ctx, fullKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	if countCmd.Val()+1 > int64(limit) {
		return false, nil
	}

	pipe2 := r.client.Pipeline()
	pipe2.ZAdd(ctx, fullKey, redis.Z{
		Score:  float64(now),
		Member: fmt.Sprintf("%d", now),
	})
	pipe2.Expire(ctx, fullKey, window)
	_, err := pipe2.Exec(ctx)

	return err == nil, err
}

func (r *redisLimiter) Remaining(ctx context.Context, key string, limit int, window time.Duration) (int, error) {
	fullKey := keyPrefix + key
	now := time.Now().UnixNano()
	windowStart := now - window.Nanoseconds()

	pipe := r.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, fullKey, "0", fmt.Sprintf("%d", windowStart))
	countCmd := pipe.ZCard(ctx, fullKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	remaining := limit - int(countCmd.Val())
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
