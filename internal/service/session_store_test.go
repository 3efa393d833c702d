package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/hrdesk/internal/domain/auth"
	apperrors "github.com/target/hrdesk/internal/errors"
	authmocks "github.com/target/hrdesk/internal/mocks/auth"
)

func TestNewSessionStore_AdoptsPersistedSession(t *testing.T) {
	sess := testSession("at", "rt", 4, "ana", "hr")
	kv := authmocks.NewMemoryKV(map[string]string{domainauth.DefaultSessionKey: encodeSession(t, sess)})

	store := newSessionStoreWith(t, kv)

	got, ok := store.Snapshot()
	require.True(t, ok)
	assert.Equal(t, sess, got)
	assert.True(t, store.IsAuthenticated())
}

func TestNewSessionStore_DiscardsMalformedEntries(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "{oops"},
		{"empty object", "{}"},
		{"zero user id", `{"access_token":"at","refresh_token":"rt","user":{"id":0,"username":"ana","role":"hr"}}`},
		{"blank username", `{"access_token":"at","refresh_token":"rt","user":{"id":1,"username":"  ","role":"hr"}}`},
		{"missing access token", `{"refresh_token":"rt","user":{"id":1,"username":"ana","role":"hr"}}`},
		{"wrong types", `{"access_token":1,"user":"ana"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := authmocks.NewMemoryKV(map[string]string{domainauth.DefaultSessionKey: tt.raw})

			store := newSessionStoreWith(t, kv)

			assert.False(t, store.IsAuthenticated())
			_, present := kv.Raw(domainauth.DefaultSessionKey)
			assert.False(t, present, "malformed entry should be removed")
		})
	}
}

func TestNewSessionStore_ReadFailureStartsUnauthenticated(t *testing.T) {
	kv := authmocks.NewMemoryKV(map[string]string{domainauth.DefaultSessionKey: "{}"})
	kv.GetErr = errors.New("locked")

	store := newSessionStoreWith(t, kv)
	assert.False(t, store.IsAuthenticated())
}

func TestSessionStore_SetSession(t *testing.T) {
	ctx := context.Background()
	kv := authmocks.NewMemoryKV(nil)
	store := newSessionStoreWith(t, kv)

	notified := 0
	store.Subscribe(func() { notified++ })

	sess := testSession("at", "rt", 1, "ana", "admin")
	require.NoError(t, store.SetSession(ctx, sess))

	got, ok := store.Snapshot()
	require.True(t, ok)
	assert.Equal(t, sess, got)
	assert.Equal(t, 1, notified)

	raw, ok := kv.Raw(domainauth.DefaultSessionKey)
	require.True(t, ok)
	assert.JSONEq(t, `{"access_token":"at","refresh_token":"rt","user":{"id":1,"username":"ana","role":"admin"}}`, raw)

	reloaded := newSessionStoreWith(t, kv)
	again, ok := reloaded.Snapshot()
	require.True(t, ok)
	assert.Equal(t, sess, again)
}

func TestSessionStore_SetSessionRejectsInvalid(t *testing.T) {
	kv := authmocks.NewMemoryKV(nil)
	store := newSessionStoreWith(t, kv)

	err := store.SetSession(context.Background(), testSession("", "rt", 1, "ana", "hr"))
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.False(t, store.IsAuthenticated())
	assert.Equal(t, 0, kv.Sets())
}

func TestSessionStore_PersistFailureLeavesMemoryUntouched(t *testing.T) {
	ctx := context.Background()
	original := testSession("at-1", "rt-1", 1, "ana", "hr")
	kv := authmocks.NewMemoryKV(map[string]string{domainauth.DefaultSessionKey: encodeSession(t, original)})
	store := newSessionStoreWith(t, kv)

	notified := 0
	store.Subscribe(func() { notified++ })

	boom := errors.New("disk full")
	kv.SetFailures(nil, boom, nil)

	err := store.SetSession(ctx, testSession("at-2", "rt-2", 1, "ana", "hr"))
	require.ErrorIs(t, err, boom)

	got, ok := store.Snapshot()
	require.True(t, ok)
	assert.Equal(t, original, got, "memory must match durable storage")
	assert.Equal(t, 0, notified)
}

func TestSessionStore_Clear(t *testing.T) {
	ctx := context.Background()
	sess := testSession("at", "rt", 1, "ana", "hr")
	kv := authmocks.NewMemoryKV(map[string]string{domainauth.DefaultSessionKey: encodeSession(t, sess)})
	store := newSessionStoreWith(t, kv)

	notified := 0
	store.Subscribe(func() { notified++ })

	require.NoError(t, store.Clear(ctx))
	assert.False(t, store.IsAuthenticated())
	_, present := kv.Raw(domainauth.DefaultSessionKey)
	assert.False(t, present)
	assert.Equal(t, 1, notified)

	// Clearing an absent session is harmless.
	require.NoError(t, store.Clear(ctx))
	assert.Equal(t, 2, notified)
}

func TestSessionStore_ClearDeleteFailureWritesTombstone(t *testing.T) {
	ctx := context.Background()
	kv := authmocks.NewMemoryKV(nil)
	store := newSessionStoreWith(t, kv)
	require.NoError(t, store.SetSession(ctx, testSession("at", "rt", 1, "ana", "hr")))

	kv.SetFailures(nil, nil, errors.New("read-only"))

	require.NoError(t, store.Clear(ctx))
	assert.False(t, store.IsAuthenticated(), "memory is always cleared")
	raw, present := kv.Raw(domainauth.DefaultSessionKey)
	require.True(t, present)
	assert.Empty(t, raw)

	// The next start must not resurrect the session.
	kv.SetFailures(nil, nil, nil)
	restarted := newSessionStoreWith(t, kv)
	assert.False(t, restarted.IsAuthenticated())
	_, present = kv.Raw(domainauth.DefaultSessionKey)
	assert.False(t, present, "tombstone is removed on load")
}

func TestSessionStore_ClearFailsWhenStorageRejectsAllWrites(t *testing.T) {
	ctx := context.Background()
	kv := authmocks.NewMemoryKV(nil)
	store := newSessionStoreWith(t, kv)
	require.NoError(t, store.SetSession(ctx, testSession("at", "rt", 1, "ana", "hr")))

	delErr := errors.New("read-only")
	setErr := errors.New("disk full")
	kv.SetFailures(nil, setErr, delErr)

	err := store.Clear(ctx)
	require.ErrorIs(t, err, delErr)
	require.ErrorIs(t, err, setErr)
	require.ErrorIs(t, err, errSessionNotCleared)
	assert.False(t, store.IsAuthenticated(), "memory is always cleared")
}

func TestSessionStore_SnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	store := newSessionStoreWith(t, authmocks.NewMemoryKV(nil))
	require.NoError(t, store.SetSession(ctx, testSession("at", "rt", 1, "ana", "hr")))

	snap, _ := store.Snapshot()
	snap.User.Username = "mallory"

	again, _ := store.Snapshot()
	assert.Equal(t, "ana", again.User.Username)
}

func TestSessionStore_SubscribeAndUnsubscribe(t *testing.T) {
	ctx := context.Background()
	store := newSessionStoreWith(t, authmocks.NewMemoryKV(nil))

	var calls []string
	unsubA := store.Subscribe(func() { calls = append(calls, "a") })
	store.Subscribe(func() { calls = append(calls, "b") })

	require.NoError(t, store.SetSession(ctx, testSession("at", "rt", 1, "ana", "hr")))
	assert.Equal(t, []string{"a", "b"}, calls)

	unsubA()
	unsubA()
	require.NoError(t, store.Clear(ctx))
	assert.Equal(t, []string{"a", "b", "b"}, calls)
	assert.Equal(t, 1, store.listeners.count())

	assert.NotPanics(t, func() { store.Subscribe(nil)() })
}

func TestSessionStore_UnsubscribeDuringNotification(t *testing.T) {
	ctx := context.Background()
	store := newSessionStoreWith(t, authmocks.NewMemoryKV(nil))

	var calls []string
	var unsubB func()
	store.Subscribe(func() {
		calls = append(calls, "a")
		unsubB()
	})
	unsubB = store.Subscribe(func() { calls = append(calls, "b") })
	store.Subscribe(func() { calls = append(calls, "c") })

	require.NoError(t, store.SetSession(ctx, testSession("at", "rt", 1, "ana", "hr")))
	assert.Equal(t, []string{"a", "c"}, calls)
}

func TestSessionStore_ListenerMayMutateStore(t *testing.T) {
	ctx := context.Background()
	store := newSessionStoreWith(t, authmocks.NewMemoryKV(nil))

	cleared := false
	store.Subscribe(func() {
		if store.IsAuthenticated() && !cleared {
			cleared = true
			assert.NoError(t, store.Clear(ctx))
		}
	})

	require.NoError(t, store.SetSession(ctx, testSession("at", "rt", 1, "ana", "hr")))
	assert.True(t, cleared)
	assert.False(t, store.IsAuthenticated())
}

func TestSessionStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := newSessionStoreWith(t, authmocks.NewMemoryKV(nil))

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = store.SetSession(ctx, testSession("at", "rt", int64(i+1), "ana", "hr"))
			} else {
				_ = store.Clear(ctx)
			}
			_, _ = store.Snapshot()
		}(i)
	}
	wg.Wait()

	// Whatever won, memory and storage agree.
	snap, ok := store.Snapshot()
	reloaded := newSessionStoreWith(t, store.storage.(*authmocks.MemoryKV))
	again, ok2 := reloaded.Snapshot()
	assert.Equal(t, ok, ok2)
	assert.Equal(t, snap, again)
}
