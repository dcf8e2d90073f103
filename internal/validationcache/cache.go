// Package validationcache implements the Validation Cache (C6): a
// read-through, TTL'd mapping from userId to "valid-for-orders" boolean
// (§4.6). Grounded directly on common/mredis/redis.go for the Redis
// plumbing; the read-through logic itself has no teacher analogue (midaz
// has no cache of this shape) and is authored fresh from §4.6.
package validationcache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/coreflux/idorder/common/apperrors"
	"github.com/coreflux/idorder/common/config"
	"github.com/coreflux/idorder/common/mlog"
	"github.com/coreflux/idorder/common/mmodel"
	"github.com/redis/go-redis/v9"
)

// UserLookup is the authoritative source consulted on a cache miss.
type UserLookup interface {
	FindByID(ctx context.Context, userID string) (mmodel.User, error)
}

// redisClient is the narrow slice of *redis.Client this package depends on,
// so tests can substitute a fake without a live Redis instance.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd
}

const keyPrefix = "validfororder:"

// Cache is the C6 read-through cache.
type Cache struct {
	client redisClient
	lookup UserLookup
	ttl    config.ValidationCache
	logger mlog.Logger
	now    func() time.Time
}

// New builds a Cache backed by a Redis client and a directory for misses.
func New(client *redis.Client, lookup UserLookup, ttl config.ValidationCache, logger mlog.Logger) *Cache {
	return &Cache{client: client, lookup: lookup, ttl: ttl, logger: logger, now: time.Now}
}

// IsValidForOrder implements §4.6's interface: return the cached answer on a
// fresh hit; on miss or expiry, perform one authoritative lookup, cache the
// result with the post-lookup TTL, and return it. Cache unavailability is
// non-fatal (KindCacheUnavailable is logged, never returned): the caller
// always falls through to the authoritative lookup.
func (c *Cache) IsValidForOrder(ctx context.Context, userID string) (bool, error) {
	if entry, hit := c.read(ctx, userID); hit {
		return entry.ValidForOrder, nil
	}

	return c.lookupAndStore(ctx, userID, c.ttl.TTLPostLookup)
}

// WarmOnCreate seeds the cache immediately after a user is created, using
// the longer post-create TTL (§4.6: "Post-creation warm entry: 24 h").
func (c *Cache) WarmOnCreate(ctx context.Context, user mmodel.User) {
	c.store(ctx, user.ID, user.IsValidForOrder(), c.ttl.TTLPostCreate)
}

func (c *Cache) read(ctx context.Context, userID string) (mmodel.CacheEntry, bool) {
	raw, err := c.client.Get(ctx, keyPrefix+userID).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warnf("validation cache unavailable on read: %v", apperrors.Wrap(apperrors.KindCacheUnavailable, "redis get failed", err))
		}

		return mmodel.CacheEntry{}, false
	}

	var entry mmodel.CacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return mmodel.CacheEntry{}, false
	}

	if entry.Expired(c.now()) {
		return mmodel.CacheEntry{}, false
	}

	return entry, true
}

func (c *Cache) lookupAndStore(ctx context.Context, userID string, ttl time.Duration) (bool, error) {
	user, err := c.lookup.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}

	valid := user.IsValidForOrder()
	c.store(ctx, userID, valid, ttl)

	return valid, nil
}

func (c *Cache) store(ctx context.Context, userID string, valid bool, ttl time.Duration) {
	entry := mmodel.CacheEntry{UserID: userID, ValidForOrder: valid, Deadline: c.now().Add(ttl)}

	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, keyPrefix+userID, raw, ttl).Err(); err != nil {
		c.logger.Warnf("validation cache unavailable on write: %v", apperrors.Wrap(apperrors.KindCacheUnavailable, "redis set failed", err))
	}
}
