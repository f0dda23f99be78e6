package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"jobboard-api/internal/storage"
)

const rateLimitPrefix = "ratelimit:"

// FixedWindowLimiter counts hits per key in windows aligned to the epoch.
type FixedWindowLimiter struct {
	rdb redis.Cmdable
	now func() time.Time
}

func NewFixedWindowLimiter(rdb redis.Cmdable) *FixedWindowLimiter {
	return &FixedWindowLimiter{rdb: rdb, now: time.Now}
}

var _ storage.RateLimiter = (*FixedWindowLimiter)(nil)

// Allow increments the counter of the current window and reports whether it is still within limit.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	windowStart := l.now().UnixNano() / int64(window)
	redisKey := fmt.Sprintf("%s%s:%d", rateLimitPrefix, key, windowStart)

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to count request: %w", err)
	}

	count := incr.Val()
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= limit, remaining, nil
}
