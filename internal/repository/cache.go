package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/campusmarket/backend/internal/domain"
	"github.com/redis/go-redis/v9"
)

// entitlementCacheTTL bounds how stale a cached tier resolution may get.
const entitlementCacheTTL = 60 * time.Second

// EntitlementCache is an optional Redis read-through cache for resolved
// entitlement statuses. A nil *EntitlementCache is valid and disables caching.
type EntitlementCache struct {
	client *redis.Client
}

// NewEntitlementCache connects to Redis and verifies the connection.
func NewEntitlementCache(ctx context.Context, redisURL string) (*EntitlementCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &EntitlementCache{client: client}, nil
}

func entitlementKey(sellerID string) string {
	return "entitlement:" + sellerID
}

// Get returns the cached status for a seller, or false on miss or any error.
// Cache trouble must never fail an entitlement read.
func (c *EntitlementCache) Get(ctx context.Context, sellerID string) (*domain.EntitlementStatus, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, entitlementKey(sellerID)).Result()
	if err != nil {
		return nil, false
	}
	var status domain.EntitlementStatus
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		return nil, false
	}
	return &status, true
}

// Set caches a resolved status. The TTL is capped by the subscription's own
// expiry so a cached paid tier can never outlive its entitlement.
func (c *EntitlementCache) Set(ctx context.Context, sellerID string, status domain.EntitlementStatus, now time.Time) {
	if c == nil {
		return
	}
	ttl := entitlementCacheTTL
	if status.ExpiresAt != nil {
		if until := status.ExpiresAt.Sub(now); until < ttl {
			ttl = until
		}
	}
	if ttl <= 0 {
		return
	}
	raw, err := json.Marshal(status)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, entitlementKey(sellerID), raw, ttl).Err()
}

// Invalidate drops a seller's cached status after an activation.
func (c *EntitlementCache) Invalidate(ctx context.Context, sellerID string) {
	if c == nil {
		return
	}
	_ = c.client.Del(ctx, entitlementKey(sellerID)).Err()
}

// Ping reports Redis health for the health endpoint.
func (c *EntitlementCache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (c *EntitlementCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
