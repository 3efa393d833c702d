package config

import (
	"fmt"
	"strings"
)

// StorageDriver selects the durable key value store.
type StorageDriver string

const (
	// StorageDriverSQLite stores state in a local SQLite file.
	StorageDriverSQLite StorageDriver = "sqlite"
	// StorageDriverRedis stores state in Redis.
	StorageDriverRedis StorageDriver = "redis"
	// StorageDriverMemory keeps state in process memory (tests and demos only).
	StorageDriverMemory StorageDriver = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for StorageDriver.
func (d *StorageDriver) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch StorageDriver(v) {
	case StorageDriverSQLite, StorageDriverRedis, StorageDriverMemory:
		*d = StorageDriver(v)
		return nil
	default:
		return fmt.Errorf("invalid StorageDriver: %q (valid options: sqlite, redis, memory)", v)
	}
}

// StorageConfig controls where the session and auth notice are persisted.
type StorageConfig struct {
	Driver      StorageDriver `env:"STORAGE_DRIVER"       envDefault:"sqlite"`
	SQLitePath  string        `env:"STORAGE_SQLITE_PATH"  envDefault:"data/hrdesk.db"`
	RedisPrefix string        `env:"STORAGE_REDIS_PREFIX" envDefault:"hrdesk:kv:"`
	SessionKey  string        `env:"STORAGE_SESSION_KEY"  envDefault:"hrdesk.session"`
	NoticeKey   string        `env:"STORAGE_NOTICE_KEY"   envDefault:"hrdesk.auth_notice"`
}

// Sanitize fills blank keys and paths with defaults.
func (c *StorageConfig) Sanitize() {
	if c.Driver == "" {
		c.Driver = StorageDriverSQLite
	}
	c.SQLitePath = strings.TrimSpace(c.SQLitePath)
	if c.SQLitePath == "" {
		c.SQLitePath = "data/hrdesk.db"
	}
	c.SessionKey = strings.TrimSpace(c.SessionKey)
	if c.SessionKey == "" {
		c.SessionKey = "hrdesk.session"
	}
	c.NoticeKey = strings.TrimSpace(c.NoticeKey)
	if c.NoticeKey == "" {
		c.NoticeKey = "hrdesk.auth_notice"
	}
}

// RedisConfig contains Redis configuration shared by the redis session store and query cache.
// URI may be host:port or a redis:// or rediss:// URL; URL credentials and DB take precedence.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	DB                 int      `env:"DB"                   envDefault:"0"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}
