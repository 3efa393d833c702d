package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/hrdesk/config"
)

const redisClientName = "hrdesk"

// redisTopology names the deployment shape a RedisConfig resolves to.
type redisTopology string

const (
	redisDirect   redisTopology = "direct"
	redisSentinel redisTopology = "sentinel"
	redisCluster  redisTopology = "cluster"
)

// RedisOptions contains configuration for the Redis connection.
type RedisOptions struct {
	Config config.RedisConfig
	Logger *slog.Logger
}

// ConnectRedis builds the client shared by the redis session store and query cache
// and verifies it with a ping.
//
//nolint:ireturn // the topology decides between single, failover and cluster clients.
func ConnectRedis(ctx context.Context, cfg RedisOptions) (redis.UniversalClient, error) {
	opts, topology, err := redisUniversalOptions(cfg.Config)
	if err != nil {
		return nil, err
	}
	client := redis.NewUniversalClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if pingErr := client.Ping(ctx).Err(); pingErr != nil {
		if closeErr := client.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis (%s): %w", topology, pingErr)
	}

	if cfg.Logger != nil {
		// Addrs never carry credentials; applyRedisURI strips them.
		cfg.Logger.InfoContext(ctx, "redis connected",
			"topology", string(topology),
			"addrs", strings.Join(opts.Addrs, ","),
			"master", opts.MasterName,
			"db", opts.DB,
		)
	}
	return client, nil
}

// redisUniversalOptions maps the desk's Redis settings onto go-redis universal options.
// NewUniversalClient then picks the client: MasterName set means sentinel failover,
// IsClusterMode means cluster, anything else a single-node client.
func redisUniversalOptions(cfg config.RedisConfig) (*redis.UniversalOptions, redisTopology, error) {
	if cfg.DB < 0 {
		return nil, "", fmt.Errorf("redis DB must not be negative, got %d", cfg.DB)
	}
	opts := &redis.UniversalOptions{
		ClientName: redisClientName,
		Password:   cfg.Password,
		DB:         cfg.DB,
	}

	switch {
	case cfg.UseCluster:
		opts.Addrs = trimAddrs(cfg.ClusterNodes)
		if len(opts.Addrs) == 0 {
			if err := applyRedisURI(opts, cfg.URI); err != nil {
				return nil, "", err
			}
		}
		if len(opts.Addrs) == 0 {
			return nil, "", errors.New("redis cluster requires REDIS_CLUSTER_NODES or REDIS_URI")
		}
		if opts.DB != 0 {
			return nil, "", errors.New("redis cluster only supports DB 0")
		}
		opts.IsClusterMode = true
		return opts, redisCluster, nil

	case cfg.UseSentinel:
		opts.Addrs = trimAddrs(cfg.SentinelNodes)
		opts.MasterName = strings.TrimSpace(cfg.SentinelMasterName)
		opts.SentinelPassword = cfg.SentinelPassword
		if len(opts.Addrs) == 0 {
			return nil, "", errors.New("redis sentinel requires at least one sentinel node")
		}
		if opts.MasterName == "" {
			return nil, "", errors.New("redis sentinel requires a master name")
		}
		return opts, redisSentinel, nil

	default:
		if err := applyRedisURI(opts, cfg.URI); err != nil {
			return nil, "", err
		}
		if len(opts.Addrs) == 0 {
			return nil, "", errors.New("redis direct configuration requires a URI")
		}
		return opts, redisDirect, nil
	}
}

// applyRedisURI sets the address from host:port or a redis URL. URL credentials,
// DB and TLS override the env values.
func applyRedisURI(opts *redis.UniversalOptions, uri string) error {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil
	}
	if !strings.HasPrefix(uri, "redis://") && !strings.HasPrefix(uri, "rediss://") {
		opts.Addrs = []string{uri}
		return nil
	}

	parsed, err := redis.ParseURL(uri)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	opts.Addrs = []string{parsed.Addr}
	opts.Username = parsed.Username
	if parsed.Password != "" {
		opts.Password = parsed.Password
	}
	if parsed.DB != 0 {
		opts.DB = parsed.DB
	}
	opts.TLSConfig = parsed.TLSConfig
	return nil
}

func trimAddrs(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, addr := range raw {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
