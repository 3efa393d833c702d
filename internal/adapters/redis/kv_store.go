// Package redis provides Redis-backed persistence for the desk's session state and query cache.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces every key this package writes.
const DefaultKeyPrefix = "hrdesk:kv:"

// KVStore implements ports.KeyValueStore on a Redis client.
type KVStore struct {
	client redis.UniversalClient
	prefix string
}

// KVStoreOptions configures a KVStore.
type KVStoreOptions struct {
	Client redis.UniversalClient
	Prefix string
}

// NewKVStore creates a Redis-backed key value store.
func NewKVStore(opts KVStoreOptions) (*KVStore, error) {
	if opts.Client == nil {
		return nil, errors.New("redis client is required")
	}
	prefix := strings.TrimSpace(opts.Prefix)
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &KVStore{client: opts.Client, prefix: prefix}, nil
}

func (s *KVStore) key(k string) string { return s.prefix + k }

// Get returns the stored value; ok is false when the key does not exist.
func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, errors.New("key cannot be empty")
	}
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return v, true, nil
}

// Set stores value under key without expiry.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Health pings the server.
func (s *KVStore) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Check satisfies ports.HealthProbe.
func (s *KVStore) Check(ctx context.Context) error { return s.Health(ctx) }
