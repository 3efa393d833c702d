package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	domainauth "github.com/target/hrdesk/internal/domain/auth"
	apperrors "github.com/target/hrdesk/internal/errors"
	obserrors "github.com/target/hrdesk/internal/observability/errors"
	"github.com/target/hrdesk/internal/ports"
)

// SessionStoreOptions groups dependencies for NewSessionStore.
type SessionStoreOptions struct {
	Storage ports.KeyValueStore
	Key     string // defaults to domainauth.DefaultSessionKey
	Logger  *slog.Logger
}

// SessionStore owns the current authenticated session, mirrors it to durable
// local storage and notifies subscribers on every change.
type SessionStore struct {
	storage ports.KeyValueStore
	key     string
	logger  *slog.Logger

	mu      sync.RWMutex
	current *domainauth.Session

	listeners *listenerSet
}

// NewSessionStore constructs a store and adopts the persisted session if it is well-formed.
// A malformed entry is deleted and the store starts unauthenticated. Construction never fails.
func NewSessionStore(ctx context.Context, opts SessionStoreOptions) *SessionStore {
	key := opts.Key
	if key == "" {
		key = domainauth.DefaultSessionKey
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &SessionStore{
		storage:   opts.Storage,
		key:       key,
		logger:    logger,
		listeners: newListenerSet(),
	}
	s.current = s.load(ctx)
	return s
}

func (s *SessionStore) load(ctx context.Context) *domainauth.Session {
	raw, ok, err := s.storage.Get(ctx, s.key)
	if err != nil {
		s.logger.WarnContext(ctx, "read persisted session failed",
			"key", s.key,
			"error", err,
			"error_type", obserrors.Classify(err))
		return nil
	}
	if !ok {
		return nil
	}
	if raw == "" {
		if delErr := s.storage.Delete(ctx, s.key); delErr != nil {
			s.logger.WarnContext(ctx, "delete session tombstone failed", "key", s.key, "error", delErr)
		}
		return nil
	}

	var sess domainauth.Session
	decodeErr := json.Unmarshal([]byte(raw), &sess)
	if decodeErr == nil {
		decodeErr = sess.Validate()
	}
	if decodeErr != nil {
		s.logger.WarnContext(ctx, "discarding malformed persisted session", "key", s.key, "error", decodeErr)
		if delErr := s.storage.Delete(ctx, s.key); delErr != nil {
			s.logger.WarnContext(ctx, "delete malformed session failed", "key", s.key, "error", delErr)
		}
		return nil
	}
	return &sess
}

// Snapshot returns a copy of the current session and whether one is present.
func (s *SessionStore) Snapshot() (domainauth.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return domainauth.Session{}, false
	}
	return *s.current, true
}

// IsAuthenticated reports whether a session is present.
func (s *SessionStore) IsAuthenticated() bool {
	_, ok := s.Snapshot()
	return ok
}

// SetSession replaces the current session. The session is persisted first; when
// persistence fails the in-memory value is left untouched and the error returned.
func (s *SessionStore) SetSession(ctx context.Context, sess domainauth.Session) error {
	if err := sess.Validate(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid session")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	s.mu.Lock()
	if persistErr := s.storage.Set(ctx, s.key, string(data)); persistErr != nil {
		s.mu.Unlock()
		return fmt.Errorf("persist session: %w", persistErr)
	}
	s.current = &sess
	s.mu.Unlock()

	s.listeners.notify()
	return nil
}

// Clear removes the session from memory and durable storage and notifies subscribers.
// Memory is always cleared. When the durable delete fails the entry is overwritten
// with an empty tombstone, which load discards, so a stale session cannot come back
// on the next start. An error is returned only when neither write succeeds.
func (s *SessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	delErr := s.storage.Delete(ctx, s.key)
	var tombErr error
	if delErr != nil {
		tombErr = s.storage.Set(ctx, s.key, "")
	}
	s.current = nil
	s.mu.Unlock()

	s.listeners.notify()

	if delErr == nil {
		return nil
	}
	if tombErr == nil {
		s.logger.WarnContext(ctx, "delete persisted session failed, wrote tombstone",
			"key", s.key,
			"error", delErr,
			"error_type", obserrors.Classify(delErr))
		return nil
	}
	s.logger.ErrorContext(ctx, "delete persisted session failed",
		"key", s.key,
		"error", delErr,
		"tombstone_error", tombErr,
		"error_type", obserrors.Classify(delErr))
	return errors.Join(errSessionNotCleared, delErr, tombErr)
}

var errSessionNotCleared = errors.New("persisted session not cleared")

// Subscribe registers fn to be called after every SetSession or Clear.
// The returned function unsubscribes and is safe to call more than once.
func (s *SessionStore) Subscribe(fn func()) func() {
	return s.listeners.add(fn)
}
