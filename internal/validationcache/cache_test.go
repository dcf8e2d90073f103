package validationcache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/coreflux/idorder/common/apperrors"
	"github.com/coreflux/idorder/common/config"
	"github.com/coreflux/idorder/common/mlog"
	"github.com/coreflux/idorder/common/mmodel"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	store map[string]string
	err   error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{store: map[string]string{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}

	v, ok := f.store[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}

	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}

	switch v := value.(type) {
	case []byte:
		f.store[key] = string(v)
	case string:
		f.store[key] = v
	}

	return redis.NewStatusResult("OK", nil)
}

type fakeLookup struct {
	users map[string]mmodel.User
	calls int
}

func (f *fakeLookup) FindByID(_ context.Context, userID string) (mmodel.User, error) {
	f.calls++

	u, ok := f.users[userID]
	if !ok {
		return mmodel.User{}, apperrors.NewNotFound("user", "not found")
	}

	return u, nil
}

func newTestCache(client *fakeRedis, lookup *fakeLookup) *Cache {
	c := New(nil, lookup, config.DefaultValidationCache(), mlog.FromContext(context.Background()))
	c.client = client
	return c
}

func TestCache_IsValidForOrder_MissThenLookup(t *testing.T) {
	client := newFakeRedis()
	lookup := &fakeLookup{users: map[string]mmodel.User{
		"user-1": {ID: "user-1", IsActive: true, IsEmailVerified: true},
	}}
	c := newTestCache(client, lookup)

	valid, err := c.IsValidForOrder(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Equal(t, 1, lookup.calls)
}

func TestCache_IsValidForOrder_HitAvoidsLookup(t *testing.T) {
	client := newFakeRedis()
	lookup := &fakeLookup{users: map[string]mmodel.User{
		"user-1": {ID: "user-1", IsActive: true, IsEmailVerified: true},
	}}
	c := newTestCache(client, lookup)

	_, err := c.IsValidForOrder(context.Background(), "user-1")
	require.NoError(t, err)

	valid, err := c.IsValidForOrder(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Equal(t, 1, lookup.calls, "second call must be served from cache")
}

func TestCache_IsValidForOrder_ExpiredEntryFallsThrough(t *testing.T) {
	client := newFakeRedis()
	lookup := &fakeLookup{users: map[string]mmodel.User{
		"user-1": {ID: "user-1", IsActive: true, IsEmailVerified: true},
	}}
	c := newTestCache(client, lookup)

	base := time.Now()
	c.now = func() time.Time { return base }

	_, err := c.IsValidForOrder(context.Background(), "user-1")
	require.NoError(t, err)

	c.now = func() time.Time { return base.Add(time.Hour) }

	valid, err := c.IsValidForOrder(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Equal(t, 2, lookup.calls, "expired entry must re-trigger the authoritative lookup")
}

func TestCache_IsValidForOrder_CacheFailureFallsThroughNonFatally(t *testing.T) {
	client := newFakeRedis()
	client.err = assert.AnError
	lookup := &fakeLookup{users: map[string]mmodel.User{
		"user-1": {ID: "user-1", IsActive: true, IsEmailVerified: true},
	}}
	c := newTestCache(client, lookup)

	valid, err := c.IsValidForOrder(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestCache_WarmOnCreate_SeedsWithPostCreateTTL(t *testing.T) {
	client := newFakeRedis()
	lookup := &fakeLookup{}
	c := newTestCache(client, lookup)

	user := mmodel.User{ID: "user-2", IsActive: true, IsEmailVerified: true}
	c.WarmOnCreate(context.Background(), user)

	valid, err := c.IsValidForOrder(context.Background(), "user-2")
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Equal(t, 0, lookup.calls, "warmed entry must be served without touching the directory")

	var entry mmodel.CacheEntry
	require.NoError(t, json.Unmarshal([]byte(client.store[keyPrefix+"user-2"]), &entry))
	assert.WithinDuration(t, time.Now().Add(config.DefaultValidationCache().TTLPostCreate), entry.Deadline, time.Minute)
}
