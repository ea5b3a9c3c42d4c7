package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to the Redis deployment described by url. Comma
// separated addresses select a cluster client.
func NewRedisClient(url string) (redis.UniversalClient, error) {
	if strings.Contains(url, ",") {
		return redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:           strings.Split(url, ","),
			DialTimeout:     5 * time.Second,
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			MaxRetries:      3,
			MinRetryBackoff: 50 * time.Millisecond,
			MaxRetryBackoff: 500 * time.Millisecond,
		}), nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	return redis.NewClient(opts), nil
}

// readShared loads key from Redis into dst. Redis failures are logged and
// reported as misses so the backend still serves the request.
func (c *Cache) readShared(ctx context.Context, key string, dst any) bool {
	if c.redis == nil {
		return false
	}

	data, err := c.redis.HGet(ctx, key, "data").Result()
	if errors.Is(err, redis.Nil) {
		return false
	}

	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("redis cache read failed")
		return false
	}

	if err := json.Unmarshal([]byte(data), dst); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("discarding undecodable cache entry")
		return false
	}

	return true
}

// writeShared stores value under key and records key in the owner's registry
// so Invalidate can find every key derived from that node.
func (c *Cache) writeShared(ctx context.Context, key string, value any, owner string) {
	if c.redis == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("encoding cache entry failed")
		return
	}

	pipe := c.redis.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"data":      string(data),
		"cached_at": time.Now().Unix(),
	})
	pipe.Expire(ctx, key, c.ttl)
	pipe.SAdd(ctx, registryKey(owner), key)
	pipe.Expire(ctx, registryKey(owner), c.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("redis cache write failed")
	}
}

func (c *Cache) invalidateShared(ctx context.Context, ids []string) error {
	var failed []string

	for _, id := range ids {
		reg := registryKey(id)

		keys, err := c.redis.SMembers(ctx, reg).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			failed = append(failed, fmt.Sprintf("registry %s: %v", reg, err))
			continue
		}

		keys = append(keys, nodeKey(id), reg)

		if err := c.redis.Del(ctx, keys...).Err(); err != nil {
			failed = append(failed, fmt.Sprintf("node %s: %v", id, err))
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("invalidation errors: %s", strings.Join(failed, "; "))
	}

	return nil
}
