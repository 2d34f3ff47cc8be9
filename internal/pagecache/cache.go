package pagecache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const indexPrefix = "pagecache:index:"

// Cache is a keyed whole-page cache. A nil redis client disables it, in
// which case Get always misses and Set/Clear do nothing.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if c.client == nil {
		return "", false
	}
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (c *Cache) Set(ctx context.Context, key, value string) {
	if c.client == nil {
		return
	}
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		log.Printf("pagecache set %s: %v", key, err)
	}
}

// Clear drops every cached page under the prefix. Writes never invalidate
// the cache; this explicit call is the only way besides expiry.
func (c *Cache) Clear(ctx context.Context, prefix string) error {
	if c.client == nil {
		return nil
	}
	iter := c.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (c *Cache) ClearIndex(ctx context.Context) error {
	return c.Clear(ctx, indexPrefix)
}

// IndexKey builds the cache key for one page of the index. The raw query
// parameter is the key so each requested page caches separately, the same
// way a URL-keyed page cache would.
func IndexKey(rawPage string) string {
	if rawPage == "" {
		rawPage = "1"
	}
	return indexPrefix + rawPage
}
