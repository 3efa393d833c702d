// Package routing decides where navigation must be redirected for each route class.
//
// Every rule checks infrastructure readiness first, then authentication, then role,
// so a role-based redirect is never revealed to an unauthenticated caller.
package routing

import (
	domainauth "github.com/target/hrdesk/internal/domain/auth"
	"github.com/target/hrdesk/internal/domain/health"
)

// Paths are the redirect targets used by the policy.
type Paths struct {
	Setup        string
	Login        string
	Dashboard    string
	AccessDenied string
}

// DefaultPaths returns the client's standard route paths.
func DefaultPaths() Paths {
	return Paths{
		Setup:        "/setup-db",
		Login:        "/login",
		Dashboard:    "/dashboard",
		AccessDenied: "/access-denied",
	}
}

// State is the read-only input to every rule.
type State struct {
	Health        health.StartupHealth
	Authenticated bool
	Role          domainauth.Role
}

// RootRedirect picks the landing page for "/". It always redirects.
func RootRedirect(p Paths, s State) (string, bool) {
	switch {
	case !s.Health.StorageReady:
		return p.Setup, true
	case s.Authenticated:
		return p.Dashboard, true
	default:
		return p.Login, true
	}
}

// AuthenticatedRouteRedirect guards pages that need any signed-in user.
func AuthenticatedRouteRedirect(p Paths, s State) (string, bool) {
	switch {
	case !s.Health.StorageReady:
		return p.Setup, true
	case !s.Authenticated:
		return p.Login, true
	default:
		return "", false
	}
}

// LoginRouteRedirect keeps signed-in users away from the login page.
func LoginRouteRedirect(p Paths, s State) (string, bool) {
	switch {
	case !s.Health.StorageReady:
		return p.Setup, true
	case s.Authenticated:
		return p.Dashboard, true
	default:
		return "", false
	}
}

// SetupRouteRedirect leaves the setup page once storage is ready.
func SetupRouteRedirect(p Paths, s State) (string, bool) {
	if !s.Health.StorageReady {
		return "", false
	}
	if s.Authenticated {
		return p.Dashboard, true
	}
	return p.Login, true
}

// AdminRouteRedirect guards admin-only pages.
func AdminRouteRedirect(p Paths, s State) (string, bool) {
	return capabilityRedirect(p, s, domainauth.IsAdmin)
}

// ReportsRouteRedirect guards report pages; any report capability grants access.
func ReportsRouteRedirect(p Paths, s State) (string, bool) {
	return capabilityRedirect(p, s, domainauth.HasReportAccess)
}

func capabilityRedirect(p Paths, s State, allowed func(domainauth.Role) bool) (string, bool) {
	if target, ok := AuthenticatedRouteRedirect(p, s); ok {
		return target, true
	}
	if !allowed(s.Role) {
		return p.AccessDenied, true
	}
	return "", false
}
