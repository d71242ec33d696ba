package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/oggyb/muzz-dating/internal/config"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by typed getters on a cache miss.
var ErrMiss = errors.New("cache miss")

// versionTTL outlives every cached entry, so a version never resets while a
// fill based on it could still land.
const versionTTL = 24 * time.Hour

var errStaleFill = errors.New("cache: entry invalidated during fill")

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

// Reset drops every key of the selected Redis DB. Used after reseeding,
// when cached profiles and counters point at rows that no longer exist.
func (c *RedisCache) Reset(ctx context.Context) error {
	return c.Client.FlushDB(ctx).Err()
}

func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.Client.Exists(ctx, key).Result()
	return n > 0, err
}

// --- invalidation ---
//
// Cached entries are filled from the DB and invalidated after writes. Each
// key has a version bumped by Invalidate; a fill only lands if the version is
// still the one read before the DB query, so a read that raced a write never
// caches the old row.

func versionKey(key string) string { return key + ":version" }

// Version returns the current invalidation version of key (0 if never invalidated).
func (c *RedisCache) Version(ctx context.Context, key string) (int64, error) {
	n, err := c.Client.Get(ctx, versionKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Invalidate drops key and bumps its version.
func (c *RedisCache) Invalidate(ctx context.Context, key string) error {
	vk := versionKey(key)
	_, err := c.Client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, vk)
		p.Expire(ctx, vk, versionTTL)
		p.Del(ctx, key)
		return nil
	})
	return err
}

// fill sets key to value iff its version still equals version.
// It reports false, without error, when an invalidation got in first.
func (c *RedisCache) fill(ctx context.Context, key string, version int64, value any, ttl time.Duration) (bool, error) {
	vk := versionKey(key)
	err := c.Client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, vk).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != version {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, value, ttl)
			return nil
		})
		return err
	}, vk)
	if errors.Is(err, errStaleFill) || errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	return err == nil, err
}

// --- profile cache ---

// KeyForUser generates Redis key for a cached directory record
func (c *RedisCache) KeyForUser(userID string) string {
	return fmt.Sprintf("users:%s", userID)
}

// FillJSON caches v as JSON with a TTL unless key was invalidated after
// version was read.
func (c *RedisCache) FillJSON(ctx context.Context, key string, version int64, v any, ttl time.Duration) (bool, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return false, err
	}
	return c.fill(ctx, key, version, b, ttl)
}

// GetJSON decodes a cached JSON value into v. Hits do not extend the TTL.
func (c *RedisCache) GetJSON(ctx context.Context, key string, v any) error {
	raw, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	} else if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		// corrupt entry → drop it and treat as miss
		_ = c.Client.Del(ctx, key).Err()
		return ErrMiss
	}
	return nil
}

// --- likes-received counter ---

// KeyForLikeCount generates Redis key for a user's received-likes count
func (c *RedisCache) KeyForLikeCount(userID string) string {
	return fmt.Sprintf("likes:count:%s", userID)
}

// FillLikeCount caches count for an hour unless the counter was invalidated
// after version was read.
func (c *RedisCache) FillLikeCount(ctx context.Context, userID string, version, count int64) (bool, error) {
	return c.fill(ctx, c.KeyForLikeCount(userID), version, count, time.Hour)
}

// GetLikeCount returns ErrMiss when no counter is cached.
func (c *RedisCache) GetLikeCount(ctx context.Context, userID string) (int64, error) {
	key := c.KeyForLikeCount(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrMiss
	} else if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

// --- revoked tokens ---

func (c *RedisCache) KeyForRevokedToken(tokenID string) string {
	return fmt.Sprintf("auth:revoked:%s", tokenID)
}

// RevokeToken remembers tokenID until the token would have expired anyway.
func (c *RedisCache) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.Client.Set(ctx, c.KeyForRevokedToken(tokenID), 1, ttl).Err()
}

func (c *RedisCache) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	return c.Exists(ctx, c.KeyForRevokedToken(tokenID))
}
