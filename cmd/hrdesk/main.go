package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/target/hrdesk/config"
	"github.com/target/hrdesk/internal/bootstrap"
	"github.com/target/hrdesk/internal/routing"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := bootstrap.InitLogger("info")
	if err := run(ctx, logger, os.Args[1:]); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		stop()
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger, args []string) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	logger = bootstrap.InitLogger(cfg.LogLevel)
	logStartupInfo(ctx, logger, &cfg)

	nav := &logNavigator{logger: logger}
	app, err := bootstrap.NewApp(ctx, bootstrap.AppOptions{Config: cfg, Navigator: nav, Logger: logger})
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	nav.login = app.Policy.Paths.Login
	defer func() {
		if cerr := app.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close app failed", "error", cerr)
		}
	}()

	route := routing.ClassRoot
	unwatch := app.WatchGuard(func() routing.RouteClass { return route }, func(target string) {
		logger.InfoContext(ctx, "route guard redirect", "class", string(route), "target", target)
	})
	defer unwatch()

	res := app.Boot(ctx)
	if notice := app.Auth.ConsumeNotice(ctx); notice != "" {
		logger.InfoContext(ctx, "auth notice", "message", notice)
	}
	route = routing.ClassAuthenticated

	return runCommand(ctx, app, logger, res, args)
}

func runCommand(ctx context.Context, app *bootstrap.App, logger *slog.Logger, res bootstrap.BootResult, args []string) error {
	cmd := "status"
	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "status":
		user, ok := app.Auth.CurrentUser()
		logger.InfoContext(ctx, "session status",
			"authenticated", ok,
			"user_id", user.ID,
			"username", user.Username,
			"role", string(user.Role),
			"landing", res.Landing)
		return nil

	case "login":
		username := os.Getenv("HRDESK_USERNAME")
		password := os.Getenv("HRDESK_PASSWORD")
		sess, err := app.Auth.Login(ctx, username, password)
		if err != nil {
			if app.HandleFailure(ctx, err) {
				return nil
			}
			return err
		}
		landing, _ := app.Guard(routing.ClassRoot)
		logger.InfoContext(ctx, "logged in", "username", sess.User.Username, "landing", landing)
		return nil

	case "logout":
		return app.Auth.Logout(ctx)

	case "guard":
		if len(args) < 2 {
			return errors.New("usage: hrdesk guard <root|public|login|setup|authenticated|admin|reports>")
		}
		var class routing.RouteClass
		if err := class.UnmarshalText([]byte(args[1])); err != nil {
			return err
		}
		target, redirect := app.Guard(class)
		logger.InfoContext(ctx, "guard", "class", string(class), "redirect", redirect, "target", target)
		return nil

	default:
		return fmt.Errorf("unknown command %q (valid: status, login, logout, guard)", cmd)
	}
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting hrdesk",
		"backend_mode", string(cfg.Backend.Mode),
		"backend_url", cfg.Backend.URL,
		"storage_driver", string(cfg.Storage.Driver),
		"cache_driver", string(cfg.Cache.Driver),
		"storage_probe", string(cfg.Health.StorageProbe),
		"dev", cfg.IsDev)
}

// logNavigator stands in for the UI router in the headless shell.
type logNavigator struct {
	logger *slog.Logger
	login  string
}

func (n *logNavigator) NavigateToLogin(ctx context.Context) error {
	n.logger.InfoContext(ctx, "navigate", "target", n.login)
	return nil
}
