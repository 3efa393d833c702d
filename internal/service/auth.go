package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainauth "github.com/target/hrdesk/internal/domain/auth"
	apperrors "github.com/target/hrdesk/internal/errors"
	"github.com/target/hrdesk/internal/observability/metrics"
	"github.com/target/hrdesk/internal/observability/statsd"
	"github.com/target/hrdesk/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Gateway  ports.BackendGateway
	Sessions *SessionStore
	Cache    ports.QueryCache
	Notices  ports.NoticeStore
	Logger   *slog.Logger
	Metrics  statsd.Sink // optional
}

// AuthService orchestrates user-initiated sign-in and sign-out by coordinating
// the backend gateway, the session store and cached server state.
type AuthService struct {
	gateway  ports.BackendGateway
	sessions *SessionStore
	cache    ports.QueryCache
	notices  ports.NoticeStore
	logger   *slog.Logger
	metrics  statsd.Sink
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	if opts.Gateway == nil {
		return nil, errors.New("Gateway is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("Sessions is required")
	}
	if opts.Cache == nil {
		return nil, errors.New("Cache is required")
	}
	if opts.Notices == nil {
		return nil, errors.New("Notices is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		gateway:  opts.Gateway,
		sessions: opts.Sessions,
		cache:    opts.Cache,
		notices:  opts.Notices,
		logger:   logger,
		metrics:  opts.Metrics,
	}, nil
}

// Login exchanges credentials for a session and stores it.
// Blank input is rejected with a validation error before the backend is called.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domainauth.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperrors.ValidationField("username", "username is required")
	}
	if password == "" {
		return nil, apperrors.ValidationField("password", "password is required")
	}

	start := time.Now()
	sess, err := s.gateway.Login(ctx, username, password)
	metrics.EmitLogin(s.metrics, err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := s.sessions.SetSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	// Query results cached for a previous user must not leak into this session.
	if err := s.cache.Clear(ctx); err != nil {
		s.logger.WarnContext(ctx, "clear query cache after login failed", "error", err)
	}

	s.logger.InfoContext(ctx, "signed in", "user_id", sess.User.ID, "role", string(sess.User.Role))
	return &sess, nil
}

// Logout ends the current session. Backend revocation is best effort; local state
// is always cleared. Logging out without a session is a no-op.
func (s *AuthService) Logout(ctx context.Context) error {
	sess, ok := s.sessions.Snapshot()
	if !ok {
		return nil
	}

	if err := s.gateway.Logout(ctx, sess.RefreshToken); err != nil {
		s.logger.WarnContext(ctx, "backend logout failed", "error", err)
	}

	clearErr := s.sessions.Clear(ctx)
	if err := s.cache.Clear(ctx); err != nil {
		clearErr = errors.Join(clearErr, fmt.Errorf("clear query cache: %w", err))
	}
	if clearErr != nil {
		return fmt.Errorf("logout: %w", clearErr)
	}
	return nil
}

// ConsumeNotice returns the pending auth notice once; subsequent calls return "".
func (s *AuthService) ConsumeNotice(ctx context.Context) string {
	return s.notices.Take(ctx)
}

// CurrentUser returns the signed-in user, if any.
func (s *AuthService) CurrentUser() (domainauth.User, bool) {
	sess, ok := s.sessions.Snapshot()
	if !ok {
		return domainauth.User{}, false
	}
	return sess.User, true
}
