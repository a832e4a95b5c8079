// Package cache puts a Redis read-through cache in front of the identity
// store. Redis failures degrade to the backing store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"rollcall/internal/directory/models"
)

const keyPrefix = "rollcall:identity:"

// Store is the backing identity store.
type Store interface {
	Find(ctx context.Context, userID string) (models.Identity, error)
	Save(ctx context.Context, identity models.Identity) error
	Count(ctx context.Context) (int, error)
}

// CachedStore caches hits for ttl. Misses are not cached so a newly added
// identity is visible on its next lookup.
type CachedStore struct {
	next   Store
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

func New(next Store, client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *CachedStore {
	return &CachedStore{next: next, client: client, ttl: ttl, logger: logger}
}

func (c *CachedStore) Find(ctx context.Context, userID string) (models.Identity, error) {
	key := keyPrefix + userID
	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var identity models.Identity
		if err := json.Unmarshal(raw, &identity); err == nil {
			return identity, nil
		}
		c.logger.WarnContext(ctx, "discarding corrupt identity cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "identity cache read failed", "key", key, "error", err)
	}

	identity, err := c.next.Find(ctx, userID)
	if err != nil {
		return models.Identity{}, err
	}
	c.fill(ctx, key, identity)
	return identity, nil
}

// Save writes through and evicts the cached copy.
func (c *CachedStore) Save(ctx context.Context, identity models.Identity) error {
	if err := c.next.Save(ctx, identity); err != nil {
		return err
	}
	if err := c.client.Del(ctx, keyPrefix+identity.UserID).Err(); err != nil {
		c.logger.WarnContext(ctx, "identity cache evict failed", "user_id", identity.UserID, "error", err)
	}
	return nil
}

func (c *CachedStore) Count(ctx context.Context) (int, error) {
	return c.next.Count(ctx)
}

func (c *CachedStore) fill(ctx context.Context, key string, identity models.Identity) {
	raw, err := json.Marshal(identity)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "identity cache write failed", "key", key, "error", err)
	}
}
