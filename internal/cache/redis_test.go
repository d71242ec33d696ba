package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-dating/internal/cache"
	"github.com/oggyb/muzz-dating/internal/config"
)

func setupCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	return cache.NewRedisCache(cfg), mr
}

type profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestJSONFillAndMiss(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)
	key := c.KeyForUser("u1")

	var got profile
	assert.ErrorIs(t, c.GetJSON(ctx, key, &got), cache.ErrMiss)

	ok, err := c.FillJSON(ctx, key, 0, profile{ID: "u1", Name: "Ann"}, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, c.GetJSON(ctx, key, &got))
	assert.Equal(t, "Ann", got.Name)

	// hits do not extend the entry
	mr.FastForward(30 * time.Second)
	require.NoError(t, c.GetJSON(ctx, key, &got))
	assert.Equal(t, 30*time.Second, mr.TTL(key))
	mr.FastForward(31 * time.Second)
	assert.ErrorIs(t, c.GetJSON(ctx, key, &got), cache.ErrMiss)
}

func TestFillLosesToInvalidate(t *testing.T) {
	ctx := context.Background()
	c, _ := setupCache(t)
	key := c.KeyForUser("u1")

	version, err := c.Version(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)

	// a write lands between the reader's version read and its fill
	require.NoError(t, c.Invalidate(ctx, key))

	ok, err := c.FillJSON(ctx, key, version, profile{ID: "u1", Name: "Old"}, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	var got profile
	assert.ErrorIs(t, c.GetJSON(ctx, key, &got), cache.ErrMiss)

	// a reader that started after the write fills normally
	version, err = c.Version(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
	ok, err = c.FillJSON(ctx, key, version, profile{ID: "u1", Name: "New"}, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCorruptJSONIsAMiss(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	require.NoError(t, mr.Set(c.KeyForUser("u2"), "{not json"))
	var got profile
	assert.ErrorIs(t, c.GetJSON(ctx, c.KeyForUser("u2"), &got), cache.ErrMiss)
	assert.False(t, mr.Exists(c.KeyForUser("u2")))
}

func TestLikeCount(t *testing.T) {
	ctx := context.Background()
	c, _ := setupCache(t)

	_, err := c.GetLikeCount(ctx, "u1")
	assert.ErrorIs(t, err, cache.ErrMiss)

	ok, err := c.FillLikeCount(ctx, "u1", 0, 7)
	require.NoError(t, err)
	assert.True(t, ok)
	n, err := c.GetLikeCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	require.NoError(t, c.Invalidate(ctx, c.KeyForLikeCount("u1")))
	_, err = c.GetLikeCount(ctx, "u1")
	assert.ErrorIs(t, err, cache.ErrMiss)

	ok, err = c.FillLikeCount(ctx, "u1", 0, 7)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRevokedTokens(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	revoked, err := c.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, c.RevokeToken(ctx, "jti-1", time.Minute))
	revoked, err = c.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = c.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	_, err := c.FillLikeCount(ctx, "u1", 0, 3)
	require.NoError(t, err)
	_, err = c.FillJSON(ctx, c.KeyForUser("u1"), 0, profile{ID: "u1"}, time.Minute)
	require.NoError(t, err)
	require.NoError(t, c.Reset(ctx))

	assert.Empty(t, mr.Keys())
}
