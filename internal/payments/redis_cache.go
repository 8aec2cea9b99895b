package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLinkCache stores issued links in Redis so every API replica reuses them.
type RedisLinkCache struct {
	client *redis.Client
	prefix string
}

// NewRedisLinkCache creates a cache on client. Keys are stored under
// "gatherly:".
func NewRedisLinkCache(client *redis.Client) *RedisLinkCache {
	return &RedisLinkCache{client: client, prefix: "gatherly:"}
}

// Get implements LinkCache.
func (c *RedisLinkCache) Get(ctx context.Context, key string) (*Link, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var link Link
	if err := json.Unmarshal(val, &link); err != nil {
		return nil, fmt.Errorf("decode cached payment link: %w", err)
	}
	return &link, nil
}

// Put implements LinkCache.
func (c *RedisLinkCache) Put(ctx context.Context, key string, link *Link, ttl time.Duration) error {
	val, err := json.Marshal(link)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+key, val, ttl).Err()
}
