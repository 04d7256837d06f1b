package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func rateLimitKey(userID uuid.UUID, action string) string {
	return fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), action)
}

// CheckAndSetRateLimit claims the (user, action) slot for limit. It returns
// false while a previous claim is still live. Without redis every call passes.
func (c *Cache) CheckAndSetRateLimit(ctx context.Context, userID uuid.UUID, action string, limit time.Duration) (bool, error) {
	if !c.Enabled() {
		return true, nil
	}

	wasSet, err := c.rdb.SetNX(ctx, rateLimitKey(userID, action), "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	return wasSet, nil
}

// RateLimitTTL is how long until the (user, action) slot frees up.
func (c *Cache) RateLimitTTL(ctx context.Context, userID uuid.UUID, action string) (time.Duration, error) {
	if !c.Enabled() {
		return 0, nil
	}
	return c.rdb.TTL(ctx, rateLimitKey(userID, action)).Result()
}

func (c *Cache) ClearRateLimit(ctx context.Context, userID uuid.UUID, action string) error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Del(ctx, rateLimitKey(userID, action)).Err()
}
