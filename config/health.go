package config

import (
	"fmt"
	"strings"
	"time"
)

// StorageProbe selects how storage readiness is checked at startup.
type StorageProbe string

const (
	// StorageProbeLocal checks the configured key value store.
	StorageProbeLocal StorageProbe = "local"
	// StorageProbePostgres pings the backend's PostgreSQL database.
	StorageProbePostgres StorageProbe = "postgres"
)

// UnmarshalText implements encoding.TextUnmarshaler for StorageProbe.
func (p *StorageProbe) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch StorageProbe(v) {
	case StorageProbeLocal, StorageProbePostgres:
		*p = StorageProbe(v)
		return nil
	default:
		return fmt.Errorf("invalid StorageProbe: %q (valid options: local, postgres)", v)
	}
}

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"hrdesk"`
	Password string `env:"PASSWORD" envDefault:"hrdesk"`
	Name     string `env:"NAME"     envDefault:"hrdesk"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
}

// HealthConfig controls startup health probing.
type HealthConfig struct {
	StorageProbe StorageProbe  `env:"HEALTH_STORAGE_PROBE" envDefault:"local"`
	ProbeTimeout time.Duration `env:"HEALTH_PROBE_TIMEOUT" envDefault:"5s"`
	Postgres     DBConfig      `                                              envPrefix:"DB_"`
}

// Sanitize applies defaults.
func (c *HealthConfig) Sanitize() {
	if c.StorageProbe == "" {
		c.StorageProbe = StorageProbeLocal
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = 5 * time.Second
	}
	if c.Postgres.SSLMode == "" {
		c.Postgres.SSLMode = "disable"
	}
}
