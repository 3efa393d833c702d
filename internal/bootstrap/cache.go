package bootstrap

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/target/hrdesk/config"
	"github.com/target/hrdesk/internal/adapters/querycache"
	redisadapter "github.com/target/hrdesk/internal/adapters/redis"
	"github.com/target/hrdesk/internal/ports"
)

// BuildQueryCache creates the query cache for the configured driver.
//
//nolint:ireturn // cache implementation is selected at runtime.
func BuildQueryCache(cfg config.CacheConfig, client redis.UniversalClient) (ports.QueryCache, error) {
	switch cfg.Driver {
	case config.CacheDriverRedis:
		if client == nil {
			return nil, errors.New("redis query cache requires a redis client")
		}
		c, err := redisadapter.NewQueryCache(redisadapter.QueryCacheOptions{
			Client: client,
			Prefix: cfg.RedisPrefix,
			TTL:    cfg.TTL,
		})
		if err != nil {
			return nil, fmt.Errorf("redis query cache: %w", err)
		}
		return c, nil
	case config.CacheDriverMemory, "":
		return querycache.NewLRU(querycache.Config{Capacity: cfg.Capacity, TTL: cfg.TTL}), nil
	default:
		return nil, fmt.Errorf("unsupported cache driver %q", cfg.Driver)
	}
}
