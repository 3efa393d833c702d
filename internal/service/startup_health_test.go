package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/target/hrdesk/internal/domain/health"
)

func TestStartupHealthStore(t *testing.T) {
	s := NewStartupHealthStore()

	initial := s.Snapshot()
	assert.False(t, initial.StorageReady)
	assert.False(t, initial.RuntimeSecurityReady)
	assert.Equal(t, health.StorageNotLoaded, initial.StorageError)
	assert.Equal(t, health.RuntimeNotLoaded, initial.RuntimeError)

	notified := 0
	unsub := s.Subscribe(func() { notified++ })

	ready := health.StartupHealth{StorageReady: true, RuntimeSecurityReady: true}
	s.SetHealth(ready)
	assert.Equal(t, ready, s.Snapshot())
	assert.Equal(t, 1, notified)

	unsub()
	s.SetHealth(health.StartupHealth{StorageError: "Could not connect to the database server."})
	assert.Equal(t, 1, notified)
	assert.Equal(t, "Could not connect to the database server.", s.Snapshot().StorageError)
	assert.False(t, s.Snapshot().StorageReady)
}
