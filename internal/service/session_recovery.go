package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainauth "github.com/target/hrdesk/internal/domain/auth"
	apperrors "github.com/target/hrdesk/internal/errors"
	obserrors "github.com/target/hrdesk/internal/observability/errors"
	"github.com/target/hrdesk/internal/observability/metrics"
	"github.com/target/hrdesk/internal/observability/statsd"
	"github.com/target/hrdesk/internal/ports"
)

// RecoveryOutcome describes how startup session recovery ended.
type RecoveryOutcome int

const (
	// RecoverySkipped means no session was present.
	RecoverySkipped RecoveryOutcome = iota
	// RecoveryValidated means the backend confirmed the cached session unchanged.
	RecoveryValidated
	// RecoveryIdentityUpdated means the session kept its credentials but took new user fields.
	RecoveryIdentityUpdated
	// RecoveryRefreshed means the session was replaced by a refresh exchange.
	RecoveryRefreshed
	// RecoveryLoggedOut means the session was cleared and a notice recorded.
	RecoveryLoggedOut
)

func (o RecoveryOutcome) String() string {
	switch o {
	case RecoverySkipped:
		return "skipped"
	case RecoveryValidated:
		return "validated"
	case RecoveryIdentityUpdated:
		return "identity_updated"
	case RecoveryRefreshed:
		return "refreshed"
	case RecoveryLoggedOut:
		return "logged_out"
	default:
		return "unknown"
	}
}

// SessionRecoveryOptions groups dependencies for NewSessionRecovery.
type SessionRecoveryOptions struct {
	Gateway   ports.BackendGateway
	Sessions  *SessionStore
	Cache     ports.QueryCache
	Notices   ports.NoticeStore
	Navigator ports.Navigator
	Logger    *slog.Logger
	Metrics   statsd.Sink // optional
}

// SessionRecovery validates the persisted session once per process start,
// refreshing it silently or forcing a logout with a notice.
type SessionRecovery struct {
	gateway   ports.BackendGateway
	sessions  *SessionStore
	cache     ports.QueryCache
	notices   ports.NoticeStore
	navigator ports.Navigator
	logger    *slog.Logger
	metrics   statsd.Sink

	once    sync.Once
	outcome RecoveryOutcome
}

// NewSessionRecovery constructs a SessionRecovery. All dependencies except Logger are required.
func NewSessionRecovery(opts SessionRecoveryOptions) (*SessionRecovery, error) {
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
	if opts.Navigator == nil {
		return nil, errors.New("Navigator is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionRecovery{
		gateway:   opts.Gateway,
		sessions:  opts.Sessions,
		cache:     opts.Cache,
		notices:   opts.Notices,
		navigator: opts.Navigator,
		logger:    logger,
		metrics:   opts.Metrics,
	}, nil
}

// Run executes recovery the first time it is called; later calls return the first outcome.
// Backend errors are never returned: every path ends authenticated with a confirmed
// session or unauthenticated with a pending notice.
func (r *SessionRecovery) Run(ctx context.Context) RecoveryOutcome {
	r.once.Do(func() {
		start := time.Now()
		r.outcome = r.recover(ctx)
		metrics.EmitRecovery(r.metrics, r.outcome.String(), time.Since(start))
		r.logger.InfoContext(ctx, "session recovery finished", "outcome", r.outcome.String())
	})
	return r.outcome
}

func (r *SessionRecovery) recover(ctx context.Context) RecoveryOutcome {
	sess, ok := r.sessions.Snapshot()
	if !ok {
		return RecoverySkipped
	}

	if outcome, ok := r.validate(ctx, sess); ok {
		return outcome
	}

	refreshErr := r.refresh(ctx, sess)
	if refreshErr == nil {
		return RecoveryRefreshed
	}

	notice, reason := domainauth.NoticeSessionExpired, metrics.ReasonExpired
	if apperrors.IsRefreshReused(refreshErr) {
		notice, reason = domainauth.NoticeSecurityIssue, metrics.ReasonRefreshReuse
		r.logger.WarnContext(ctx, "refresh token reuse detected", "user_id", sess.User.ID)
	}
	r.forceLogout(ctx, notice)
	metrics.EmitForcedLogout(r.metrics, metrics.TriggerRecovery, reason)
	return RecoveryLoggedOut
}

func (r *SessionRecovery) validate(ctx context.Context, sess domainauth.Session) (RecoveryOutcome, bool) {
	user, err := r.gateway.WhoAmI(ctx, sess.AccessToken)
	if err != nil {
		r.logger.InfoContext(ctx, "cached session rejected, trying refresh",
			"error", err,
			"error_type", obserrors.Classify(err))
		return 0, false
	}

	if user.SameIdentity(sess.User) {
		return RecoveryValidated, true
	}

	if setErr := r.sessions.SetSession(ctx, sess.WithUser(user)); setErr != nil {
		r.logger.WarnContext(ctx, "store updated identity failed", "error", setErr)
		return 0, false
	}
	return RecoveryIdentityUpdated, true
}

func (r *SessionRecovery) refresh(ctx context.Context, sess domainauth.Session) error {
	refreshed, err := r.gateway.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		r.logger.InfoContext(ctx, "session refresh failed",
			"error", err,
			"error_type", obserrors.Classify(err))
		return err
	}
	if setErr := r.sessions.SetSession(ctx, refreshed); setErr != nil {
		r.logger.WarnContext(ctx, "store refreshed session failed", "error", setErr)
		return setErr
	}
	return nil
}

// forceLogout records the notice and tears down client-side auth state.
// Each side effect is attempted even if an earlier one fails.
func (r *SessionRecovery) forceLogout(ctx context.Context, notice string) {
	if err := r.notices.Set(ctx, notice); err != nil {
		r.logger.WarnContext(ctx, "record auth notice failed", "error", err)
	}
	if err := r.sessions.Clear(ctx); err != nil {
		r.logger.WarnContext(ctx, "clear session failed", "error", err)
	}
	if err := r.cache.Clear(ctx); err != nil {
		r.logger.WarnContext(ctx, "clear query cache failed", "error", err)
	}
	if err := r.navigator.NavigateToLogin(ctx); err != nil {
		r.logger.ErrorContext(ctx, "navigate to login failed", "error", err)
	}
}
