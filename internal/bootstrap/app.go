package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/target/hrdesk/config"
	"github.com/target/hrdesk/internal/domain/health"
	"github.com/target/hrdesk/internal/observability/statsd"
	"github.com/target/hrdesk/internal/ports"
	"github.com/target/hrdesk/internal/routing"
	"github.com/target/hrdesk/internal/service"
)

// AppOptions configures NewApp.
type AppOptions struct {
	Config    config.AppConfig
	Navigator ports.Navigator
	Logger    *slog.Logger

	// Gateway replaces the configured backend when set.
	Gateway *Gateway
}

// App is the per-process container for the session lifecycle components.
type App struct {
	Config config.AppConfig
	Logger *slog.Logger

	Sessions *service.SessionStore
	Health   *service.StartupHealthStore
	Notices  *service.NoticeBoard
	Cache    ports.QueryCache
	Gateway  ports.BackendGateway

	Auth     *service.AuthService
	Expiry   *service.AuthExpiryHandler
	Recovery *service.SessionRecovery
	Prober   *service.StartupProber
	Policy   routing.Policy
	Metrics  *statsd.Client

	closers []func() error
}

// BootResult summarizes the startup sequence.
type BootResult struct {
	Health   health.StartupHealth
	Recovery service.RecoveryOutcome
	Landing  string
}

// NewApp wires every component from configuration.
func NewApp(ctx context.Context, opts AppOptions) (_ *App, err error) {
	if opts.Navigator == nil {
		return nil, errors.New("Navigator is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config

	app := &App{Config: cfg, Logger: logger}
	defer func() {
		if err == nil {
			return
		}
		if closeErr := app.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	app.Metrics, err = statsd.NewClient(ctx, statsd.Config{
		Enabled:    cfg.Metrics.IsEnabled(),
		Address:    cfg.Metrics.StatsdAddress,
		Prefix:     cfg.Metrics.Prefix,
		GlobalTags: map[string]string{"backend_mode": string(cfg.Backend.Mode)},
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("metrics client: %w", err)
	}
	app.closers = append(app.closers, app.Metrics.Close)

	var redisClient redis.UniversalClient
	if cfg.NeedsRedis() {
		redisClient, err = ConnectRedis(ctx, RedisOptions{Config: cfg.Redis, Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		app.closers = append(app.closers, redisClient.Close)
	}

	kv, closeKV, err := BuildKVStore(ctx, StorageOptions{Config: cfg.Storage, RedisClient: redisClient, Logger: logger})
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, closeKV)

	storageProbe, err := BuildStorageProbe(cfg.Health, kv)
	if err != nil {
		return nil, err
	}

	gw := opts.Gateway
	if gw == nil {
		built, buildErr := BuildGateway(ctx, GatewayOptions{Config: cfg.Backend, Logger: logger})
		if buildErr != nil {
			return nil, buildErr
		}
		gw = &built
	}
	app.Gateway = gw.Auth

	if app.Cache, err = BuildQueryCache(cfg.Cache, redisClient); err != nil {
		return nil, err
	}

	app.Sessions = service.NewSessionStore(ctx, service.SessionStoreOptions{
		Storage: kv,
		Key:     cfg.Storage.SessionKey,
		Logger:  logger.With("component", "session_store"),
	})
	app.Notices = service.NewNoticeBoard(service.NoticeBoardOptions{
		Storage: kv,
		Key:     cfg.Storage.NoticeKey,
		Logger:  logger.With("component", "auth_notice"),
	})
	app.Health = service.NewStartupHealthStore()
	app.Policy = routing.NewPolicy(routing.Paths{
		Setup:        cfg.Routes.Setup,
		Login:        cfg.Routes.Login,
		Dashboard:    cfg.Routes.Dashboard,
		AccessDenied: cfg.Routes.AccessDenied,
	})

	if err = app.wireServices(gw, storageProbe, opts.Navigator); err != nil {
		return nil, err
	}
	return app, nil
}

func (a *App) wireServices(gw *Gateway, storageProbe ports.HealthProbe, nav ports.Navigator) error {
	var err error
	a.Auth, err = service.NewAuthService(service.AuthServiceOptions{
		Gateway:  gw.Auth,
		Sessions: a.Sessions,
		Cache:    a.Cache,
		Notices:  a.Notices,
		Logger:   a.Logger.With("component", "auth"),
		Metrics:  a.Metrics,
	})
	if err != nil {
		return fmt.Errorf("auth service: %w", err)
	}

	a.Expiry, err = service.NewAuthExpiryHandler(service.AuthExpiryOptions{
		Sessions:  a.Sessions,
		Cache:     a.Cache,
		Navigator: nav,
		Notices:   a.Notices,
		Logger:    a.Logger.With("component", "auth_expiry"),
		Metrics:   a.Metrics,
	})
	if err != nil {
		return fmt.Errorf("auth expiry handler: %w", err)
	}

	a.Recovery, err = service.NewSessionRecovery(service.SessionRecoveryOptions{
		Gateway:   gw.Auth,
		Sessions:  a.Sessions,
		Cache:     a.Cache,
		Notices:   a.Notices,
		Navigator: nav,
		Logger:    a.Logger.With("component", "session_recovery"),
		Metrics:   a.Metrics,
	})
	if err != nil {
		return fmt.Errorf("session recovery: %w", err)
	}

	a.Prober, err = service.NewStartupProber(service.StartupProberOptions{
		Health:   a.Health,
		Storage:  storageProbe,
		Security: gw.Security,
		Timeout:  a.Config.Health.ProbeTimeout,
		Logger:   a.Logger.With("component", "startup_probe"),
		Metrics:  a.Metrics,
	})
	if err != nil {
		return fmt.Errorf("startup prober: %w", err)
	}
	return nil
}

// Boot probes infrastructure, recovers a persisted session when the app is ready
// and resolves the landing route.
func (a *App) Boot(ctx context.Context) BootResult {
	res := BootResult{
		Health:   a.Prober.Probe(ctx),
		Recovery: service.RecoverySkipped,
	}
	// Recovery runs only once storage and the backend are both ready.
	if res.Health.Ready() && a.Sessions.IsAuthenticated() {
		res.Recovery = a.Recovery.Run(ctx)
	}
	res.Landing, _ = a.Guard(routing.ClassRoot)
	a.Logger.InfoContext(ctx, "boot complete",
		"storage_ready", res.Health.StorageReady,
		"runtime_security_ready", res.Health.RuntimeSecurityReady,
		"recovery", res.Recovery.String(),
		"landing", res.Landing)
	return res
}

// Guard returns the redirect target for a route class given the current state,
// or ok=false when navigation may proceed.
func (a *App) Guard(class routing.RouteClass) (string, bool) {
	return a.Policy.Redirect(class, routing.CurrentState(a.Sessions, a.Health))
}

// WatchGuard re-evaluates the guard for the current route whenever the session
// or startup health changes and calls onRedirect with any new target.
func (a *App) WatchGuard(current func() routing.RouteClass, onRedirect func(target string)) func() {
	check := func() {
		if target, ok := a.Guard(current()); ok {
			onRedirect(target)
		}
	}
	unsubSessions := a.Sessions.Subscribe(check)
	unsubHealth := a.Health.Subscribe(check)
	return func() {
		unsubSessions()
		unsubHealth()
	}
}

// HandleFailure routes an operation failure through the expiry handler.
func (a *App) HandleFailure(ctx context.Context, failure any) bool {
	return a.Expiry.Handle(ctx, failure)
}

// Close releases storage and connections in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
