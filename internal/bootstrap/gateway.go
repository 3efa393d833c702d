package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/hrdesk/config"
	"github.com/target/hrdesk/internal/adapters/authroles"
	"github.com/target/hrdesk/internal/adapters/devauth"
	"github.com/target/hrdesk/internal/adapters/oidc"
	"github.com/target/hrdesk/internal/adapters/rpc"
	"github.com/target/hrdesk/internal/ports"
)

// GatewayOptions contains configuration for the backend gateway.
type GatewayOptions struct {
	Config config.BackendConfig
	Logger *slog.Logger
}

// Gateway pairs the auth gateway with the runtime security probe for the same backend.
type Gateway struct {
	Auth     ports.BackendGateway
	Security ports.HealthProbe
}

// securityProbe adapts a SecurityStatusChecker to a HealthProbe.
type securityProbe struct {
	checker ports.SecurityStatusChecker
}

func (p securityProbe) Check(ctx context.Context) error { return p.checker.SecurityStatus(ctx) }

// BuildGateway creates the gateway for the configured backend mode.
func BuildGateway(ctx context.Context, opts GatewayOptions) (Gateway, error) {
	cfg := opts.Config
	switch cfg.Mode {
	case config.BackendModeRPC:
		gw, err := rpc.NewGateway(rpc.Options{
			BaseURL: cfg.URL,
			Timeout: cfg.Timeout,
			Logger:  opts.Logger,
		})
		if err != nil {
			return Gateway{}, fmt.Errorf("rpc gateway: %w", err)
		}
		return Gateway{Auth: gw, Security: gw}, nil

	case config.BackendModeOIDC:
		return buildOIDCGateway(ctx, cfg)

	case config.BackendModeDev:
		if opts.Logger != nil {
			opts.Logger.WarnContext(ctx, "using in-process dev backend; do not use in production",
				"username", cfg.DevAuth.Username, "role", cfg.DevAuth.Role)
		}
		gw, err := devauth.NewGateway(devauth.Config{
			UserID:   cfg.DevAuth.UserID,
			Username: cfg.DevAuth.Username,
			Password: cfg.DevAuth.Password,
			Role:     cfg.DevAuth.Role,
		})
		if err != nil {
			return Gateway{}, fmt.Errorf("dev gateway: %w", err)
		}
		return Gateway{Auth: gw, Security: securityProbe{checker: gw}}, nil

	default:
		return Gateway{}, fmt.Errorf("unsupported backend mode %q", cfg.Mode)
	}
}

func buildOIDCGateway(ctx context.Context, cfg config.BackendConfig) (Gateway, error) {
	if cfg.OIDC.ClientID == "" || cfg.OIDC.DiscoveryURL == "" {
		return Gateway{}, errors.New("oidc backend requires OIDC_CLIENT_ID and OIDC_DISCOVERY_URL")
	}
	gw, err := oidc.NewGateway(ctx, oidc.Config{
		ClientID:      cfg.OIDC.ClientID,
		ClientSecret:  cfg.OIDC.ClientSecret,
		Scope:         cfg.OIDC.Scope,
		DiscoveryURL:  cfg.OIDC.DiscoveryURL,
		IDClaim:       cfg.OIDC.IDClaim,
		UsernameClaim: cfg.OIDC.UsernameClaim,
		RoleClaim:     cfg.OIDC.RoleClaim,
		GroupsClaim:   cfg.OIDC.GroupsClaim,
		Roles: authroles.GroupRoleMapper{
			AdminGroup:             cfg.OIDC.AdminGroup,
			HRGroup:                cfg.OIDC.HRGroup,
			FinanceGroup:           cfg.OIDC.FinanceGroup,
			AttendanceManagerGroup: cfg.OIDC.AttendanceManagerGroup,
			AuditorGroup:           cfg.OIDC.AuditorGroup,
			StaffGroup:             cfg.OIDC.StaffGroup,
		},
	})
	if err != nil {
		return Gateway{}, fmt.Errorf("oidc gateway: %w", err)
	}
	// The provider has no runtime security endpoint; successful discovery is readiness.
	return Gateway{Auth: gw, Security: securityProbe{checker: alwaysReady{}}}, nil
}

type alwaysReady struct{}

func (alwaysReady) SecurityStatus(context.Context) error { return nil }
