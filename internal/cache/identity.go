package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chatvault/chatvault/internal/model"
)

const (
	// identityCachePrefix is the Redis key prefix for resolved identities.
	identityCachePrefix = "auth:identity:"
	// identityCacheTTL is the default time-to-live for cached identities.
	identityCacheTTL = 5 * time.Minute
)

// cachedIdentity is the Redis representation of a resolved identity.
type cachedIdentity struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// GetIdentity retrieves a cached resolved identity by token digest.
// Returns nil on a miss; a miss is not an error.
func (c *Cache) GetIdentity(ctx context.Context, tokenDigest string) (*model.AuthContext, error) {
	key := identityCachePrefix + tokenDigest

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached cachedIdentity
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &model.AuthContext{
		UserID:   cached.UserID,
		Username: cached.Username,
	}, nil
}

// SetIdentity caches a resolved identity keyed by token digest.
// The entry never outlives the token: ttl is capped at the token's
// remaining lifetime so an expired token can't resolve from cache.
func (c *Cache) SetIdentity(ctx context.Context, tokenDigest string, authCtx *model.AuthContext, tokenRemaining time.Duration) error {
	ttl := identityCacheTTL
	if tokenRemaining < ttl {
		ttl = tokenRemaining
	}
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(cachedIdentity{
		UserID:   authCtx.UserID,
		Username: authCtx.Username,
	})
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	return c.client.Set(ctx, identityCachePrefix+tokenDigest, data, ttl).Err()
}
