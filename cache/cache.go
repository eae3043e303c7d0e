package cache

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

const listTTL = 5 * time.Minute

// ListCache holds rendered public list responses in Redis so the storefront
// does not hit the database on every page load. All methods are safe on a
// nil receiver, which is how the cache is disabled when REDIS_URL is unset.
// Cache failures are logged and treated as misses; Redis being down must
// never take the catalog down with it.
type ListCache struct {
	client *redis.Client
}

// New connects to the Redis instance named by REDIS_URL.
// Returns nil (a disabled cache) when the variable is unset or malformed.
func New() *ListCache {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("WARNING: invalid REDIS_URL, list cache disabled: %v", err)
		return nil
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Printf("WARNING: Redis unreachable, list cache disabled: %v", err)
		return nil
	}

	return &ListCache{client: client}
}

// Get unmarshals the cached value for key into dest. Returns false on miss,
// on any Redis error, or when the cache is disabled.
func (c *ListCache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		log.Printf("WARNING: Redis GET %s failed: %v", key, err)
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("WARNING: corrupt cache entry %s, dropping: %v", key, err)
		c.client.Del(ctx, key)
		return false
	}
	return true
}

// Set stores value under key with the list TTL. Errors are logged, not returned.
func (c *ListCache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("WARNING: failed to marshal cache entry %s: %v", key, err)
		return
	}

	if err := c.client.Set(ctx, key, data, listTTL).Err(); err != nil {
		log.Printf("WARNING: Redis SET %s failed: %v", key, err)
	}
}

// Invalidate drops the given keys after a catalog mutation.
func (c *ListCache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("WARNING: Redis DEL failed: %v", err)
	}
}

// Cache keys for the public list endpoints.
const (
	KeyCategories = "catalog:categories"
	KeyProducts   = "catalog:products"
)
