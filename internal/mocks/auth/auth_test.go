package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryKV(t *testing.T) {
	ctx := context.Background()
	seed := map[string]string{"a": "1"}
	kv := NewMemoryKV(seed)
	seed["a"] = "mutated"

	v, ok, err := kv.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	require.NoError(t, kv.Set(ctx, "b", "2"))
	require.NoError(t, kv.Delete(ctx, "a"))
	assert.Equal(t, 1, kv.Sets())
	assert.Equal(t, 1, kv.Deletes())

	_, ok = kv.Raw("a")
	assert.False(t, ok)

	boom := errors.New("disk full")
	kv.SetFailures(nil, boom, boom)
	require.ErrorIs(t, kv.Set(ctx, "c", "3"), boom)
	require.ErrorIs(t, kv.Delete(ctx, "b"), boom)
	v, _ = kv.Raw("b")
	assert.Equal(t, "2", v)
}

func TestMemoryKV_ZeroValue(t *testing.T) {
	var kv MemoryKV
	require.NoError(t, kv.Set(context.Background(), "k", "v"))
	require.NoError(t, kv.Check(context.Background()))
}

func TestRecordingCache(t *testing.T) {
	c := &RecordingCache{}
	require.NoError(t, c.Clear(context.Background()))
	c.ClearErr = errors.New("x")
	require.Error(t, c.Clear(context.Background()))
	assert.Equal(t, 2, c.Clears())
}

func TestRecordingNavigator_Block(t *testing.T) {
	n := &RecordingNavigator{Block: make(chan struct{}), Entered: make(chan struct{}, 1)}
	done := make(chan error, 1)
	go func() { done <- n.NavigateToLogin(context.Background()) }()

	select {
	case <-n.Entered:
	case <-time.After(time.Second):
		t.Fatal("navigator not entered")
	}
	close(n.Block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, n.Calls())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	blocked := &RecordingNavigator{Block: make(chan struct{})}
	assert.ErrorIs(t, blocked.NavigateToLogin(ctx), context.Canceled)
}
