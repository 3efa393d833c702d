package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/target/hrdesk/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.KeyValueStore = (*MemoryKV)(nil)
	_ ports.QueryCache    = (*RecordingCache)(nil)
	_ ports.Navigator     = (*RecordingNavigator)(nil)
)

// MemoryKV is an in-memory KeyValueStore with failure injection.
type MemoryKV struct {
	mu      sync.Mutex
	entries map[string]string

	// Injected failures; nil means success.
	GetErr    error
	SetErr    error
	DeleteErr error
	HealthErr error

	sets    int
	deletes int
}

// NewMemoryKV creates a MemoryKV seeded with entries (copied).
func NewMemoryKV(seed map[string]string) *MemoryKV {
	m := &MemoryKV{entries: make(map[string]string, len(seed))}
	maps.Copy(m.entries, seed)
	return m
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	if m.entries == nil {
		m.entries = make(map[string]string)
	}
	m.entries[key] = value
	m.sets++
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.entries, key)
	m.deletes++
	return nil
}

func (m *MemoryKV) Health(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.HealthErr
}

// Check satisfies ports.HealthProbe.
func (m *MemoryKV) Check(ctx context.Context) error { return m.Health(ctx) }

// SetFailures replaces the injected errors under the lock.
func (m *MemoryKV) SetFailures(get, set, del error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetErr, m.SetErr, m.DeleteErr = get, set, del
}

// Raw returns the stored value without error injection.
func (m *MemoryKV) Raw(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	return v, ok
}

// Sets returns the number of successful writes.
func (m *MemoryKV) Sets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}

// Deletes returns the number of successful deletes.
func (m *MemoryKV) Deletes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deletes
}

// RecordingCache counts Clear calls and stores nothing.
type RecordingCache struct {
	ClearErr error
	clears   atomic.Int32
}

func (*RecordingCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (*RecordingCache) Set(context.Context, string, []byte) error         { return nil }

func (c *RecordingCache) Clear(context.Context) error {
	c.clears.Add(1)
	return c.ClearErr
}

// Clears returns how many times Clear was called.
func (c *RecordingCache) Clears() int { return int(c.clears.Load()) }

// RecordingNavigator counts navigations. When Block is non-nil each call waits
// on it (or ctx) before returning, which lets tests hold a logout in flight.
type RecordingNavigator struct {
	Err     error
	Block   chan struct{}
	Entered chan struct{}
	calls   atomic.Int32
}

func (n *RecordingNavigator) NavigateToLogin(ctx context.Context) error {
	n.calls.Add(1)
	if n.Entered != nil {
		select {
		case n.Entered <- struct{}{}:
		default:
		}
	}
	if n.Block != nil {
		select {
		case <-n.Block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return n.Err
}

// Calls returns how many times NavigateToLogin was called.
func (n *RecordingNavigator) Calls() int { return int(n.calls.Load()) }
