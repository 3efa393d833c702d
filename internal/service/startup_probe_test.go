package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/hrdesk/internal/domain/health"
	authmocks "github.com/target/hrdesk/internal/mocks/auth"
	metricsmocks "github.com/target/hrdesk/internal/mocks/metrics"
)

type probeFunc func(ctx context.Context) error

func (f probeFunc) Check(ctx context.Context) error { return f(ctx) }

func okProbe() probeFunc { return func(context.Context) error { return nil } }

func TestNewStartupProber_Validation(t *testing.T) {
	store := NewStartupHealthStore()

	_, err := NewStartupProber(StartupProberOptions{Storage: okProbe(), Security: okProbe()})
	require.Error(t, err)
	_, err = NewStartupProber(StartupProberOptions{Health: store, Security: okProbe()})
	require.Error(t, err)
	_, err = NewStartupProber(StartupProberOptions{Health: store, Storage: okProbe()})
	require.Error(t, err)

	p, err := NewStartupProber(StartupProberOptions{Health: store, Storage: okProbe(), Security: okProbe()})
	require.NoError(t, err)
	assert.Equal(t, defaultProbeTimeout, p.timeout)
}

func TestStartupProber_AllReady(t *testing.T) {
	store := NewStartupHealthStore()
	kv := authmocks.NewMemoryKV(nil)
	p, err := NewStartupProber(StartupProberOptions{
		Health: store, Storage: kv, Security: okProbe(), Logger: discardLogger(),
	})
	require.NoError(t, err)

	var notified int
	store.Subscribe(func() { notified++ })

	got := p.Probe(context.Background())

	assert.True(t, got.Ready())
	assert.Empty(t, got.StorageError)
	assert.Empty(t, got.RuntimeError)
	assert.Equal(t, got, store.Snapshot())
	assert.Equal(t, 1, notified)
}

func TestStartupProber_Failures(t *testing.T) {
	tests := []struct {
		name     string
		storage  probeFunc
		security probeFunc
		want     health.StartupHealth
	}{
		{
			name:     "storage auth failure",
			storage:  func(context.Context) error { return &pgconn.PgError{Code: pgerrcode.InvalidPassword} },
			security: okProbe(),
			want: health.StartupHealth{
				RuntimeSecurityReady: true,
				StorageError:         "Database authentication failed. Check the configured user and password.",
			},
		},
		{
			name:     "storage unreachable",
			storage:  func(context.Context) error { return errors.New("open data/hrdesk.db: permission denied") },
			security: okProbe(),
			want: health.StartupHealth{
				RuntimeSecurityReady: true,
				StorageError:         "Storage is not reachable.",
			},
		},
		{
			name:     "runtime security not ready",
			storage:  okProbe(),
			security: func(context.Context) error { return errors.New("JWT signing key is not configured") },
			want: health.StartupHealth{
				StorageReady: true,
				RuntimeError: "JWT signing key is not configured",
			},
		},
		{
			name:     "both down",
			storage:  func(context.Context) error { return errors.New("disk gone") },
			security: func(context.Context) error { return errors.New("backend offline") },
			want: health.StartupHealth{
				StorageError: "Storage is not reachable.",
				RuntimeError: "backend offline",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStartupHealthStore()
			p, err := NewStartupProber(StartupProberOptions{
				Health: store, Storage: tt.storage, Security: tt.security, Logger: discardLogger(),
			})
			require.NoError(t, err)

			got := p.Probe(context.Background())

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, store.Snapshot())
		})
	}
}

func TestStartupProber_Timeout(t *testing.T) {
	store := NewStartupHealthStore()
	hang := probeFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	p, err := NewStartupProber(StartupProberOptions{
		Health: store, Storage: hang, Security: okProbe(), Timeout: 20 * time.Millisecond, Logger: discardLogger(),
	})
	require.NoError(t, err)

	got := p.Probe(context.Background())

	assert.False(t, got.StorageReady)
	assert.True(t, got.RuntimeSecurityReady, "one slow check does not fail the other")
	assert.Equal(t, "Timed out connecting to the database.", got.StorageError)
}

func TestStartupProber_EmitsMetrics(t *testing.T) {
	sink := &metricsmocks.RecordingSink{}
	p, err := NewStartupProber(StartupProberOptions{
		Health:   NewStartupHealthStore(),
		Storage:  okProbe(),
		Security: probeFunc(func(context.Context) error { return errors.New("not configured") }),
		Logger:   discardLogger(),
		Metrics:  sink,
	})
	require.NoError(t, err)

	p.Probe(context.Background())

	ready := map[string]float64{}
	for _, pt := range sink.Named("startup.ready") {
		ready[pt.Tags["component"]] = pt.Value
	}
	assert.Equal(t, map[string]float64{"storage": 1, "runtime_security": 0}, ready)
}
