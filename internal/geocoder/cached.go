package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "geocode:"

// Cached wraps a Geocoder with a Redis read-through cache. Misses are not cached.
type Cached struct {
	next   Geocoder
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

// NewCached creates a caching decorator around next.
func NewCached(next Geocoder, rdb redis.Cmdable, ttl time.Duration, logger *zap.Logger) *Cached {
	return &Cached{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

// Geocode serves from the cache when possible. Cache errors are logged and bypassed.
func (c *Cached) Geocode(ctx context.Context, address string) (*Result, error) {
	key := cacheKeyPrefix + normalize(address)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var res Result
		if jsonErr := json.Unmarshal(raw, &res); jsonErr == nil {
			return &res, nil
		}
		c.logger.Warn("Discarding unreadable geocode cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("Geocode cache lookup failed", zap.String("key", key), zap.Error(err))
	}

	res, err := c.next.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	if payload, jsonErr := json.Marshal(res); jsonErr == nil {
		if setErr := c.rdb.Set(ctx, key, payload, c.ttl).Err(); setErr != nil {
			c.logger.Warn("Geocode cache write failed", zap.String("key", key), zap.Error(setErr))
		}
	}
	return res, nil
}
