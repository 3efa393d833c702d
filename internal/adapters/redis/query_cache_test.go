package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/hrdesk/internal/testutil"
)

func TestQueryCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	client := setupTestRedis(t)
	defer client.Close()

	cache, err := NewQueryCache(QueryCacheOptions{Client: client, TTL: time.Minute})
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("set and get with ttl", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "employees?page=1", []byte(`[1,2]`)))
		got, ok, err := cache.Get(ctx, "employees?page=1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte(`[1,2]`), got)

		ttl := client.TTL(ctx, DefaultQueryCachePrefix+"employees?page=1").Val()
		assert.True(t, ttl > 0 && ttl <= time.Minute)
	})

	t.Run("clear removes only prefixed keys", func(t *testing.T) {
		for i := range 600 {
			require.NoError(t, cache.Set(ctx, fmt.Sprintf("leave:%d", i), []byte("x")))
		}
		require.NoError(t, client.Set(ctx, "unrelated", "keep", 0).Err())

		require.NoError(t, cache.Clear(ctx))

		_, ok, err := cache.Get(ctx, "leave:5")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, "keep", client.Get(ctx, "unrelated").Val())
	})

	t.Run("clear on empty cache", func(t *testing.T) {
		require.NoError(t, cache.Clear(ctx))
	})
}

func TestQueryCache_ClearAcrossClusterShards(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	client := testutil.SetupTestRedisCluster(t)
	defer client.Close()

	ctx := context.Background()
	prefix := "hrdesk:test:" + uuid.NewString() + ":"
	cache, err := NewQueryCache(QueryCacheOptions{Client: client, Prefix: prefix, TTL: time.Minute})
	require.NoError(t, err)

	// Distinct suffixes land in different hash slots and, with more than one master, on different nodes.
	const n = 300
	for i := range n {
		require.NoError(t, cache.Set(ctx, fmt.Sprintf("payroll:%d", i), []byte("x")))
	}
	other := "hrdesk:test:other:" + uuid.NewString()
	require.NoError(t, client.Set(ctx, other, "keep", time.Minute).Err())
	t.Cleanup(func() { client.Del(context.Background(), other) })

	require.NoError(t, cache.Clear(ctx))

	for i := range n {
		_, ok, err := cache.Get(ctx, fmt.Sprintf("payroll:%d", i))
		require.NoError(t, err)
		assert.False(t, ok, "payroll:%d survived clear", i)
	}
	assert.Equal(t, "keep", client.Get(ctx, other).Val())
}
