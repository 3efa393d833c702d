package ports

// Package ports defines interfaces (hexagonal ports) for session-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/target/hrdesk/internal/domain/auth"
)

// BackendGateway is the RPC binding to the backend process for auth operations.
// Errors carry the backend's message text; callers classify on it.
type BackendGateway interface {
	// WhoAmI returns the identity bound to an access token.
	WhoAmI(ctx context.Context, accessToken string) (domainauth.User, error)

	// Refresh exchanges a refresh token for a rotated session.
	Refresh(ctx context.Context, refreshToken string) (domainauth.Session, error)

	// Login exchanges credentials for a new session.
	Login(ctx context.Context, username, password string) (domainauth.Session, error)

	// Logout revokes a refresh token on the backend.
	Logout(ctx context.Context, refreshToken string) error
}

// SecurityStatusChecker reports whether the backend's runtime security configuration is usable.
type SecurityStatusChecker interface {
	SecurityStatus(ctx context.Context) error
}

// KeyValueStore is durable local storage for small string entries.
type KeyValueStore interface {
	// Get returns the value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Health(ctx context.Context) error
}

// QueryCache holds server-derived query/request state cached by the UI.
type QueryCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	// Clear drops every cached entry.
	Clear(ctx context.Context) error
}

// Navigator performs UI navigation side effects.
type Navigator interface {
	NavigateToLogin(ctx context.Context) error
}

// NoticeStore holds the single pending auth notice. Take consumes it.
type NoticeStore interface {
	Set(ctx context.Context, message string) error
	Take(ctx context.Context) string
}

// HealthProbe checks one piece of startup infrastructure.
type HealthProbe interface {
	Check(ctx context.Context) error
}
