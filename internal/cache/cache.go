// Package cache provides the read-through cache in front of note listing.
// Redis errors never fail a request: a broken cache behaves like an empty
// one.
package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// NotesCache caches serialized note-list snapshots keyed per owner and
// query shape. When addr is empty an embedded Redis runs in-process, which
// keeps local development and tests free of external services.
type NotesCache struct {
	client   *redis.Client
	ttl      time.Duration
	embedded *miniredis.Miniredis
}

func New(addr string, ttl time.Duration) (*NotesCache, error) {
	c := &NotesCache{ttl: ttl}

	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("start embedded redis: %w", err)
		}
		c.embedded = mr
		addr = mr.Addr()
		log.Printf("embedded redis listening on %s", addr)
	}

	c.client = redis.NewClient(&redis.Options{Addr: addr})
	if err := c.client.Ping(context.Background()).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return c, nil
}

// Client exposes the underlying connection for collaborators that share the
// same Redis (the task queue).
func (c *NotesCache) Client() *redis.Client {
	return c.client
}

func (c *NotesCache) Close() error {
	var err error
	if c.client != nil {
		err = c.client.Close()
	}
	if c.embedded != nil {
		c.embedded.Close()
	}
	return err
}

// Key builds the deterministic cache key for one owner's list query.
// The trailing separators keep owner prefixes exact: owner 1 never matches
// owner 12's keys.
func Key(ownerID int64, search string, skip, limit int) string {
	return fmt.Sprintf("notes:%d:%s:%d:%d", ownerID, search, skip, limit)
}

// Lookup returns the cached snapshot and whether it was present. A cache
// error is reported as a miss.
func (c *NotesCache) Lookup(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Printf("cache lookup failed, treating as miss: %v", err)
		return nil, false
	}
	return val, true
}

// Store is best-effort; failures are logged and dropped.
func (c *NotesCache) Store(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		log.Printf("cache store failed: %v", err)
	}
}

// InvalidateOwner deletes every cached entry for the owner, whatever query
// produced it. Coarse on purpose: correctness over cache efficiency.
// Idempotent; errors are logged and dropped.
func (c *NotesCache) InvalidateOwner(ctx context.Context, ownerID int64) {
	pattern := fmt.Sprintf("notes:%d:*", ownerID)

	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("cache invalidation scan failed: %v", err)
		return
	}

	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			log.Printf("cache invalidation delete failed: %v", err)
		}
	}
}
