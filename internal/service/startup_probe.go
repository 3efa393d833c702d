package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/target/hrdesk/internal/domain/health"
	apperrors "github.com/target/hrdesk/internal/errors"
	"github.com/target/hrdesk/internal/observability/metrics"
	"github.com/target/hrdesk/internal/observability/statsd"
	"github.com/target/hrdesk/internal/ports"
	"golang.org/x/sync/errgroup"
)

const defaultProbeTimeout = 5 * time.Second

// StartupProberOptions groups dependencies for NewStartupProber.
type StartupProberOptions struct {
	Health   *StartupHealthStore
	Storage  ports.HealthProbe
	Security ports.HealthProbe
	Timeout  time.Duration
	Logger   *slog.Logger
	Metrics  statsd.Sink // optional
}

// StartupProber checks storage and runtime security readiness and publishes the
// result to the StartupHealthStore.
type StartupProber struct {
	health   *StartupHealthStore
	storage  ports.HealthProbe
	security ports.HealthProbe
	timeout  time.Duration
	logger   *slog.Logger
	metrics  statsd.Sink
}

// NewStartupProber constructs a StartupProber.
func NewStartupProber(opts StartupProberOptions) (*StartupProber, error) {
	if opts.Health == nil {
		return nil, errors.New("Health is required")
	}
	if opts.Storage == nil {
		return nil, errors.New("Storage probe is required")
	}
	if opts.Security == nil {
		return nil, errors.New("Security probe is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &StartupProber{
		health:   opts.Health,
		storage:  opts.Storage,
		security: opts.Security,
		timeout:  timeout,
		logger:   logger,
		metrics:  opts.Metrics,
	}, nil
}

// Probe runs both checks concurrently and replaces the stored health wholesale.
// Probe failures are reported through the health state, not as errors.
func (p *StartupProber) Probe(ctx context.Context) health.StartupHealth {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var storageErr, securityErr error
	// Checks report through their own variables so one failure does not cancel the other.
	var g errgroup.Group
	g.Go(func() error {
		storageErr = p.check(ctx, "storage", p.storage)
		return nil
	})
	g.Go(func() error {
		securityErr = p.check(ctx, "runtime_security", p.security)
		return nil
	})
	_ = g.Wait()

	result := health.StartupHealth{
		StorageReady:         storageErr == nil,
		RuntimeSecurityReady: securityErr == nil,
	}
	if storageErr != nil {
		result.StorageError = apperrors.DescribeStorageError(storageErr)
		p.logger.WarnContext(ctx, "storage not ready", "error", storageErr)
	}
	if securityErr != nil {
		result.RuntimeError = securityErr.Error()
		p.logger.WarnContext(ctx, "runtime security config not ready", "error", securityErr)
	}

	p.health.SetHealth(result)
	return result
}

func (p *StartupProber) check(ctx context.Context, component string, probe ports.HealthProbe) error {
	start := time.Now()
	err := probe.Check(ctx)
	metrics.EmitProbe(p.metrics, component, err, time.Since(start))
	return err
}
