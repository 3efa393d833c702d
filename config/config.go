package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - storage.go: durable session storage and Redis
//   - backend.go: backend gateway selection (rpc, oidc, dev)
//   - health.go: startup health probes
//   - routes.go: navigation targets
//   - cache.go: query cache
//   - observability.go: StatsD metrics
type AppConfig struct {
	// IsDev controls development mode behavior.
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Storage StorageConfig
	Redis   RedisConfig `envPrefix:"REDIS_"`

	Backend BackendConfig

	Health HealthConfig

	Routes RoutesConfig

	Cache CacheConfig

	Metrics MetricsConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	c.Storage.Sanitize()
	c.Backend.Sanitize()
	c.Health.Sanitize()
	c.Routes.Sanitize()
	c.Cache.Sanitize()
	c.Metrics.Sanitize()

	c.detectDevMode()

	// Dev mode without a backend URL falls back to the in-process gateway.
	if c.IsDev && c.Backend.Mode == BackendModeRPC && c.Backend.URL == "" {
		c.Backend.Mode = BackendModeDev
	}
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// NeedsRedis reports whether any configured component talks to Redis.
func (c *AppConfig) NeedsRedis() bool {
	return c.Storage.Driver == StorageDriverRedis || c.Cache.Driver == CacheDriverRedis
}
