// Package redisstore holds the Redis-backed stores: revoked tokens and rate-limit counters.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"jobboard-api/internal/storage"
)

const denylistPrefix = "denylist:"

// TokenDenylist implements storage.TokenDenylist.
type TokenDenylist struct {
	rdb redis.Cmdable
}

func NewTokenDenylist(rdb redis.Cmdable) *TokenDenylist {
	return &TokenDenylist{rdb: rdb}
}

var _ storage.TokenDenylist = (*TokenDenylist)(nil)

// Revoke marks tokenID revoked for ttl. Tokens already past expiry need no entry.
func (d *TokenDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := d.rdb.Set(ctx, denylistPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (d *TokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.rdb.Exists(ctx, denylistPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token denylist: %w", err)
	}
	return n > 0, nil
}
