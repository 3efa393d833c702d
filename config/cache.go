package config

import (
	"fmt"
	"strings"
	"time"
)

// CacheDriver selects the query cache implementation.
type CacheDriver string

const (
	CacheDriverMemory CacheDriver = "memory"
	CacheDriverRedis  CacheDriver = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for CacheDriver.
func (d *CacheDriver) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch CacheDriver(v) {
	case CacheDriverMemory, CacheDriverRedis:
		*d = CacheDriver(v)
		return nil
	default:
		return fmt.Errorf("invalid CacheDriver: %q (valid options: memory, redis)", v)
	}
}

// CacheConfig contains query cache configuration.
type CacheConfig struct {
	Driver      CacheDriver   `env:"CACHE_DRIVER"       envDefault:"memory"`
	Capacity    int           `env:"CACHE_CAPACITY"     envDefault:"512"`
	TTL         time.Duration `env:"CACHE_TTL"          envDefault:"5m"`
	RedisPrefix string        `env:"CACHE_REDIS_PREFIX" envDefault:"hrdesk:query:"`
}

// Sanitize applies guardrails.
func (c *CacheConfig) Sanitize() {
	if c.Driver == "" {
		c.Driver = CacheDriverMemory
	}
	if c.Capacity <= 0 {
		c.Capacity = 512
	}
	if c.TTL < 0 {
		c.TTL = 0
	}
}
