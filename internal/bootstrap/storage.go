package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/target/hrdesk/config"
	"github.com/target/hrdesk/internal/adapters/postgres"
	redisadapter "github.com/target/hrdesk/internal/adapters/redis"
	"github.com/target/hrdesk/internal/adapters/sqlite"
	"github.com/target/hrdesk/internal/ports"
)

// StorageOptions contains configuration for the durable key value store.
type StorageOptions struct {
	Config      config.StorageConfig
	RedisClient redis.UniversalClient // required when Config.Driver is redis
	Logger      *slog.Logger
}

// DurableStore is a KeyValueStore that can also serve as the local storage probe.
type DurableStore interface {
	ports.KeyValueStore
	ports.HealthProbe
}

// BuildKVStore opens the configured store. The returned close function releases
// resources owned by the store (never the shared Redis client).
func BuildKVStore(ctx context.Context, opts StorageOptions) (DurableStore, func() error, error) {
	noop := func() error { return nil }

	switch opts.Config.Driver {
	case config.StorageDriverRedis:
		if opts.RedisClient == nil {
			return nil, nil, errors.New("redis storage requires a redis client")
		}
		kv, err := redisadapter.NewKVStore(redisadapter.KVStoreOptions{
			Client: opts.RedisClient,
			Prefix: opts.Config.RedisPrefix,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("redis kv store: %w", err)
		}
		return kv, noop, nil

	case config.StorageDriverMemory:
		kv, err := sqlite.NewKVStore(ctx, sqlite.Options{Path: ":memory:"})
		if err != nil {
			return nil, nil, fmt.Errorf("in-memory kv store: %w", err)
		}
		return kv, kv.Close, nil

	case config.StorageDriverSQLite, "":
		kv, err := sqlite.NewKVStore(ctx, sqlite.Options{Path: opts.Config.SQLitePath})
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite kv store: %w", err)
		}
		if opts.Logger != nil {
			opts.Logger.InfoContext(ctx, "sqlite storage opened", "path", opts.Config.SQLitePath)
		}
		return kv, kv.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", opts.Config.Driver)
	}
}

// BuildStorageProbe returns the startup storage readiness check. The local probe
// checks the key value store itself; the postgres probe pings the backend database.
//
//nolint:ireturn // probes are selected at runtime.
func BuildStorageProbe(cfg config.HealthConfig, local ports.HealthProbe) (ports.HealthProbe, error) {
	switch cfg.StorageProbe {
	case config.StorageProbePostgres:
		p, err := postgres.NewProbe(postgres.ProbeOptions{DB: cfg.Postgres, Timeout: cfg.ProbeTimeout})
		if err != nil {
			return nil, fmt.Errorf("postgres probe: %w", err)
		}
		return p, nil
	case config.StorageProbeLocal, "":
		return local, nil
	default:
		return nil, fmt.Errorf("unsupported storage probe %q", cfg.StorageProbe)
	}
}
