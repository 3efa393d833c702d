package service

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	domainauth "github.com/target/hrdesk/internal/domain/auth"
	apperrors "github.com/target/hrdesk/internal/errors"
	"github.com/target/hrdesk/internal/observability/metrics"
	"github.com/target/hrdesk/internal/observability/statsd"
	"github.com/target/hrdesk/internal/ports"
)

// AuthExpiryOptions groups dependencies for NewAuthExpiryHandler.
type AuthExpiryOptions struct {
	Sessions  *SessionStore
	Cache     ports.QueryCache
	Navigator ports.Navigator
	Notices   ports.NoticeStore
	Logger    *slog.Logger
	Metrics   statsd.Sink // optional
}

// AuthExpiryHandler turns credential-expiry failures from any UI operation into
// at most one forced logout at a time.
type AuthExpiryHandler struct {
	sessions  *SessionStore
	cache     ports.QueryCache
	navigator ports.Navigator
	notices   ports.NoticeStore
	logger    *slog.Logger
	metrics   statsd.Sink

	inProgress atomic.Bool
}

// NewAuthExpiryHandler builds the single reusable handler for one session store.
func NewAuthExpiryHandler(opts AuthExpiryOptions) (*AuthExpiryHandler, error) {
	if opts.Sessions == nil {
		return nil, errors.New("Sessions is required")
	}
	if opts.Cache == nil {
		return nil, errors.New("Cache is required")
	}
	if opts.Navigator == nil {
		return nil, errors.New("Navigator is required")
	}
	if opts.Notices == nil {
		return nil, errors.New("Notices is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthExpiryHandler{
		sessions:  opts.Sessions,
		cache:     opts.Cache,
		navigator: opts.Navigator,
		notices:   opts.Notices,
		logger:    logger,
		metrics:   opts.Metrics,
	}, nil
}

// Handle inspects an operation failure. It returns true when the failure was a
// credential expiry and this call performed the forced logout; callers should then
// suppress their own error display. Concurrent calls while a logout is running, and
// calls without an active session, return false without side effects.
func (h *AuthExpiryHandler) Handle(ctx context.Context, failure any) bool {
	if !apperrors.IsCredentialExpiry(failure) {
		return false
	}
	if !h.inProgress.CompareAndSwap(false, true) {
		return false
	}
	defer h.inProgress.Store(false)

	if !h.sessions.IsAuthenticated() {
		return false
	}

	h.logger.InfoContext(ctx, "credential expired, forcing logout")
	metrics.EmitForcedLogout(h.metrics, metrics.TriggerExpiry, metrics.ReasonExpired)

	if err := h.notices.Set(ctx, domainauth.NoticeSessionExpired); err != nil {
		h.logger.WarnContext(ctx, "record auth notice failed", "error", err)
	}
	if err := h.sessions.Clear(ctx); err != nil {
		h.logger.WarnContext(ctx, "clear session failed", "error", err)
	}
	if err := h.cache.Clear(ctx); err != nil {
		h.logger.WarnContext(ctx, "clear query cache failed", "error", err)
	}
	if err := h.navigator.NavigateToLogin(ctx); err != nil {
		h.logger.ErrorContext(ctx, "navigate to login failed", "error", err)
	}
	return true
}

// InProgress reports whether a forced logout is currently running.
func (h *AuthExpiryHandler) InProgress() bool {
	return h.inProgress.Load()
}
