package rdx

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	UsersKey = "cache:users"
	PostsKey = "cache:posts"

	defaultTTL = 30 * time.Second
)

// Cache is a best-effort read-through cache for the two unbounded list
// endpoints. A nil Cache (no Redis configured) is valid and turns every
// method into a no-op; a Redis failure is logged and otherwise ignored so
// the request still goes to Mongo.
type Cache struct {
	conn *redis.Client
	ttl  time.Duration
}

// New returns a cache backed by the Redis at addr, or nil when addr is
// empty.
func New(addr string) *Cache {
	if addr == "" {
		return nil
	}
	return &Cache{
		conn: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:  defaultTTL,
	}
}

// GetJSON loads key into dest, reporting whether it was a hit.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}
	raw, err := c.conn.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("redis get %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		log.Printf("redis unmarshal %s: %v", key, err)
		return false
	}
	return true
}

func (c *Cache) SetJSON(ctx context.Context, key string, v interface{}) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		log.Printf("redis marshal %s: %v", key, err)
		return
	}
	if err := c.conn.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		log.Printf("redis set %s: %v", key, err)
	}
}

// Invalidate drops the given keys after a write to the underlying data.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	if err := c.conn.Del(ctx, keys...).Err(); err != nil {
		log.Printf("redis del %v: %v", keys, err)
	}
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.conn.Close()
}
