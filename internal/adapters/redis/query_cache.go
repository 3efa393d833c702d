package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultQueryCachePrefix namespaces cached query results.
const DefaultQueryCachePrefix = "hrdesk:query:"

const scanBatch = 256

// QueryCache implements ports.QueryCache on Redis. Entries expire after TTL;
// Clear removes every key under the prefix.
type QueryCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// QueryCacheOptions configures a QueryCache.
type QueryCacheOptions struct {
	Client redis.UniversalClient
	Prefix string
	TTL    time.Duration
}

// NewQueryCache creates a Redis-backed query cache.
func NewQueryCache(opts QueryCacheOptions) (*QueryCache, error) {
	if opts.Client == nil {
		return nil, errors.New("redis client is required")
	}
	prefix := strings.TrimSpace(opts.Prefix)
	if prefix == "" {
		prefix = DefaultQueryCachePrefix
	}
	return &QueryCache{client: opts.Client, prefix: prefix, ttl: opts.TTL}, nil
}

// Get retrieves a cached value.
func (c *QueryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, errors.New("key cannot be empty")
	}
	b, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return b, true, nil
}

// Set stores a value with the configured TTL.
func (c *QueryCache) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	if err := c.client.Set(ctx, c.prefix+key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Clear deletes all cached entries using SCAN so large keyspaces don't block the server.
// A cluster client is scanned master by master since SCAN only walks one node.
func (c *QueryCache) Clear(ctx context.Context) error {
	if cluster, ok := c.client.(*redis.ClusterClient); ok {
		return cluster.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
			return c.clearNode(ctx, node)
		})
	}
	return c.clearNode(ctx, c.client)
}

// clearNode scans one node and unlinks matches key by key, so keys from
// different hash slots never share a command.
func (c *QueryCache) clearNode(ctx context.Context, node redis.Cmdable) error {
	var cursor uint64
	for {
		keys, next, err := node.Scan(ctx, cursor, c.prefix+"*", scanBatch).Result()
		if err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}
		if len(keys) > 0 {
			pipe := node.Pipeline()
			for _, k := range keys {
				pipe.Unlink(ctx, k)
			}
			if _, err := pipe.Exec(ctx); err != nil {
				return fmt.Errorf("redis unlink: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
