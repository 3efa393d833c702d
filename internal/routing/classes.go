package routing

import (
	"fmt"
	"strings"

	domainauth "github.com/target/hrdesk/internal/domain/auth"
	"github.com/target/hrdesk/internal/domain/health"
)

// RouteClass groups pages that share one redirect rule.
type RouteClass string

const (
	ClassRoot          RouteClass = "root"
	ClassPublic        RouteClass = "public"
	ClassLogin         RouteClass = "login"
	ClassSetup         RouteClass = "setup"
	ClassAuthenticated RouteClass = "authenticated"
	ClassAdmin         RouteClass = "admin"
	ClassReports       RouteClass = "reports"
)

// UnmarshalText implements encoding.TextUnmarshaler for RouteClass.
func (c *RouteClass) UnmarshalText(text []byte) error {
	v := RouteClass(strings.ToLower(strings.TrimSpace(string(text))))
	switch v {
	case ClassRoot, ClassPublic, ClassLogin, ClassSetup, ClassAuthenticated, ClassAdmin, ClassReports:
		*c = v
		return nil
	default:
		return fmt.Errorf("invalid RouteClass: %q", v)
	}
}

// SessionSnapshotter is the read side of the session store.
type SessionSnapshotter interface {
	Snapshot() (domainauth.Session, bool)
}

// HealthSnapshotter is the read side of the startup health store.
type HealthSnapshotter interface {
	Snapshot() health.StartupHealth
}

// CurrentState reads both stores into a State.
func CurrentState(sessions SessionSnapshotter, h HealthSnapshotter) State {
	sess, ok := sessions.Snapshot()
	state := State{
		Health:        h.Snapshot(),
		Authenticated: ok,
	}
	if ok {
		state.Role = sess.User.Role
	}
	return state
}

// Policy applies the route rules with a fixed set of paths.
type Policy struct {
	Paths Paths
}

// NewPolicy returns a Policy, filling empty paths from DefaultPaths.
func NewPolicy(p Paths) Policy {
	def := DefaultPaths()
	if p.Setup == "" {
		p.Setup = def.Setup
	}
	if p.Login == "" {
		p.Login = def.Login
	}
	if p.Dashboard == "" {
		p.Dashboard = def.Dashboard
	}
	if p.AccessDenied == "" {
		p.AccessDenied = def.AccessDenied
	}
	return Policy{Paths: p}
}

// Redirect returns the redirect target for class, or ok=false when access is granted.
// Public pages are never redirected.
func (p Policy) Redirect(class RouteClass, s State) (string, bool) {
	switch class {
	case ClassRoot:
		return RootRedirect(p.Paths, s)
	case ClassLogin:
		return LoginRouteRedirect(p.Paths, s)
	case ClassSetup:
		return SetupRouteRedirect(p.Paths, s)
	case ClassAuthenticated:
		return AuthenticatedRouteRedirect(p.Paths, s)
	case ClassAdmin:
		return AdminRouteRedirect(p.Paths, s)
	case ClassReports:
		return ReportsRouteRedirect(p.Paths, s)
	default:
		return "", false
	}
}
