package devauth

// Package devauth provides an in-process backend gateway for local development.
// It issues opaque tokens, rotates refresh tokens and detects refresh token reuse.

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/target/hrdesk/internal/domain/auth"
	apperrors "github.com/target/hrdesk/internal/errors"
)

// Config controls the dev gateway identity and token lifetimes.
type Config struct {
	UserID    int64
	Username  string
	Password  string
	Role      string
	AccessTTL time.Duration // default 15m when zero
	Now       func() time.Time
}

// Gateway implements ports.BackendGateway and ports.SecurityStatusChecker in memory.
type Gateway struct {
	mu        sync.Mutex
	user      domainauth.User
	password  string
	accessTTL time.Duration
	now       func() time.Time

	access  map[string]time.Time // access token -> expiry
	refresh map[string]struct{}  // live refresh tokens
	spent   map[string]struct{}  // rotated refresh tokens
}

// NewGateway constructs a dev gateway from Config.
func NewGateway(cfg Config) (*Gateway, error) {
	if cfg.UserID < 1 {
		return nil, errors.New("dev auth: UserID must be >= 1")
	}
	if strings.TrimSpace(cfg.Username) == "" {
		return nil, errors.New("dev auth: Username is required")
	}
	ttl := cfg.AccessTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Gateway{
		user:      domainauth.User{ID: cfg.UserID, Username: cfg.Username, Role: domainauth.Role(cfg.Role)},
		password:  cfg.Password,
		accessTTL: ttl,
		now:       now,
		access:    make(map[string]time.Time),
		refresh:   make(map[string]struct{}),
		spent:     make(map[string]struct{}),
	}, nil
}

// Login checks the configured credentials and issues a new session.
func (g *Gateway) Login(_ context.Context, username, password string) (domainauth.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if username != g.user.Username || password != g.password {
		return domainauth.Session{}, apperrors.Validation("invalid username or password")
	}
	return g.issueLocked(), nil
}

// WhoAmI returns the configured user for a live access token.
func (g *Gateway) WhoAmI(_ context.Context, accessToken string) (domainauth.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if accessToken == "" {
		return domainauth.User{}, apperrors.Unauthorized("access token is required")
	}
	exp, ok := g.access[accessToken]
	if !ok {
		return domainauth.User{}, apperrors.New("auth.token_invalid", "invalid token")
	}
	if !g.now().Before(exp) {
		delete(g.access, accessToken)
		return domainauth.User{}, apperrors.New("auth.token_expired", "token is expired")
	}
	return g.user, nil
}

// Refresh rotates a refresh token. Presenting a rotated token revokes every
// outstanding token and fails with auth.refresh_reused.
func (g *Gateway) Refresh(_ context.Context, refreshToken string) (domainauth.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, reused := g.spent[refreshToken]; reused {
		g.revokeAllLocked()
		return domainauth.Session{}, apperrors.New(apperrors.ErrCodeRefreshReused, string(apperrors.ErrCodeRefreshReused))
	}
	if _, ok := g.refresh[refreshToken]; !ok {
		return domainauth.Session{}, apperrors.New("auth.token_invalid", "invalid token")
	}
	delete(g.refresh, refreshToken)
	g.spent[refreshToken] = struct{}{}
	return g.issueLocked(), nil
}

// Logout revokes a refresh token. Unknown tokens are ignored.
func (g *Gateway) Logout(_ context.Context, refreshToken string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.refresh, refreshToken)
	return nil
}

// SecurityStatus always reports ready.
func (g *Gateway) SecurityStatus(context.Context) error { return nil }

// SetRole changes the role reported for the dev user.
func (g *Gateway) SetRole(role string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.user.Role = domainauth.Role(role)
}

// ExpireAccessTokens invalidates every issued access token while keeping refresh tokens.
func (g *Gateway) ExpireAccessTokens() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for tok := range g.access {
		g.access[tok] = time.Time{}
	}
}

func (g *Gateway) issueLocked() domainauth.Session {
	access := "dev-at-" + uuid.NewString()
	refresh := "dev-rt-" + uuid.NewString()
	g.access[access] = g.now().Add(g.accessTTL)
	g.refresh[refresh] = struct{}{}
	return domainauth.Session{AccessToken: access, RefreshToken: refresh, User: g.user}
}

func (g *Gateway) revokeAllLocked() {
	clear(g.access)
	clear(g.refresh)
}
