// Package cache stores rendered JSON responses in Redis. A nil *Cache is a
// valid, always-missing cache, which is what you get when no address is
// configured.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanCount = 100

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis. It returns nil, nil when addr is empty.
func New(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Cache, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Printf("Connected to Redis at %s", addr)
	return &Cache{client: client, ttl: ttl}, nil
}

// Key derives a stable key from prefix and the query parameters: order of
// parameters and of repeated values does not matter.
func Key(prefix string, query url.Values) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, key := range keys {
		values := append([]string(nil), query[key]...)
		sort.Strings(values)
		for _, val := range values {
			sb.WriteString(key)
			sb.WriteString("=")
			sb.WriteString(val)
			sb.WriteString("&")
		}
	}
	rawKey := strings.TrimSuffix(sb.String(), "&")

	sum := sha256.Sum256([]byte(rawKey))
	return prefix + ":" + hex.EncodeToString(sum[:])
}

// Get returns the cached bytes and whether there was a hit. Redis errors are
// logged and reported as a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("Redis GET error for key %s: %v", key, err)
		}
		return nil, false
	}
	return data, true
}

func (c *Cache) Set(ctx context.Context, key string, data []byte) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("Failed to cache response for key %s: %v", key, err)
	}
}

// Invalidate removes every key starting with prefix.
func (c *Cache) Invalidate(ctx context.Context, prefix string) error {
	if c == nil {
		return nil
	}
	pattern := prefix + ":*"

	var keys []string
	var cursor uint64
	for {
		batch, next, err := c.client.Scan(ctx, cursor, pattern, scanCount).Result()
		if err != nil {
			return fmt.Errorf("redis scan %q: %w", pattern, err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if len(keys) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	for _, key := range keys {
		pipe.Del(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("deleting %d cache keys: %w", len(keys), err)
	}
	log.Printf("Cache invalidated: %d keys matching %q", len(keys), pattern)
	return nil
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
