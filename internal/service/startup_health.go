package service

import (
	"sync"

	"github.com/target/hrdesk/internal/domain/health"
)

// StartupHealthStore holds process-wide infrastructure readiness. It is not persisted.
type StartupHealthStore struct {
	mu        sync.RWMutex
	current   health.StartupHealth
	listeners *listenerSet
}

// NewStartupHealthStore returns a store in the "not loaded" state.
func NewStartupHealthStore() *StartupHealthStore {
	return &StartupHealthStore{
		current:   health.NotLoaded(),
		listeners: newListenerSet(),
	}
}

// Snapshot returns the current readiness.
func (s *StartupHealthStore) Snapshot() health.StartupHealth {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetHealth replaces the readiness state wholesale and notifies subscribers.
func (s *StartupHealthStore) SetHealth(h health.StartupHealth) {
	s.mu.Lock()
	s.current = h
	s.mu.Unlock()

	s.listeners.notify()
}

// Subscribe registers fn to be called after every SetHealth.
func (s *StartupHealthStore) Subscribe(fn func()) func() {
	return s.listeners.add(fn)
}
