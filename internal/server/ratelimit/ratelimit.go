// Package ratelimit implements fixed-window request counting in Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// now is a seam for tests.
var now = time.Now

type RateLimiter struct {
	redis redis.Cmdable
	close func() error
}

// New connects to redisURL and verifies the connection.
func New(ctx context.Context, redisURL string) (*RateLimiter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return &RateLimiter{redis: client, close: client.Close}, nil
}

// NewWithClient wraps an existing client. Closing the limiter closes it.
func NewWithClient(client *redis.Client) *RateLimiter {
	return &RateLimiter{redis: client, close: client.Close}
}

func windowKey(key string, window time.Duration, t time.Time) string {
	return fmt.Sprintf("%s:%d", key, t.Unix()/int64(window.Seconds()))
}

// Allow counts one hit for key in the current window and reports whether the
// count is still within limit.
func (rl *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, int, error) {
	wk := windowKey(key, window, now())

	pipe := rl.redis.Pipeline()
	incr := pipe.Incr(ctx, wk)
	pipe.Expire(ctx, wk, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}

	count := int(incr.Val())
	return count <= limit, count, nil
}

func (rl *RateLimiter) Close() error {
	return rl.close()
}
