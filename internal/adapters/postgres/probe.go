// Package postgres checks that the backend's PostgreSQL database is reachable.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	// Import pgx driver for database/sql compatibility.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/target/hrdesk/config"
)

// Probe implements ports.HealthProbe by opening a short-lived connection and pinging.
type Probe struct {
	dsn     string
	timeout time.Duration
	open    func(driver, dsn string) (*sql.DB, error)
}

// ProbeOptions configures a Probe.
type ProbeOptions struct {
	DB      config.DBConfig
	Timeout time.Duration
}

// NewProbe builds a probe for the configured database.
func NewProbe(opts ProbeOptions) (*Probe, error) {
	if opts.DB.Host == "" {
		return nil, errors.New("database host is required")
	}
	if opts.DB.Name == "" {
		return nil, errors.New("database name is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Probe{dsn: BuildDSN(opts.DB), timeout: timeout, open: sql.Open}, nil
}

// BuildDSN builds a postgres URL using url.URL to safely handle special characters in credentials.
func BuildDSN(cfg config.DBConfig) string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Name,
	}
	q := u.Query()
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	q.Set("sslmode", sslMode)
	q.Set("connect_timeout", "5")
	u.RawQuery = q.Encode()
	return u.String()
}

// Check opens a connection, pings within the probe timeout, and closes it.
// Errors keep the underlying pgconn error so callers can describe it.
func (p *Probe) Check(ctx context.Context) error {
	db, err := p.open("pgx", p.dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	pingErr := db.PingContext(ctx)
	if closeErr := db.Close(); closeErr != nil && pingErr == nil {
		return fmt.Errorf("close database connection: %w", closeErr)
	}
	if pingErr != nil {
		return fmt.Errorf("ping database: %w", pingErr)
	}
	return nil
}
