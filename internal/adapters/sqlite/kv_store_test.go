package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/hrdesk/internal/testutil"
)

func newStore(t *testing.T, path string) *KVStore {
	t.Helper()
	s, err := NewKVStore(context.Background(), Options{Path: path, Now: testutil.FixedTimeFunc(testutil.TestTime())})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewKVStore_RequiresPath(t *testing.T) {
	_, err := NewKVStore(context.Background(), Options{Path: "  "})
	require.Error(t, err)
}

func TestKVStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, testutil.TempSQLitePath(t.TempDir()))

	_, ok, err := s.Get(ctx, "hrdesk.session")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "hrdesk.session", "v1"))
	require.NoError(t, s.Set(ctx, "hrdesk.session", "v2"))

	v, ok, err := s.Get(ctx, "hrdesk.session")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)

	at, ok, err := s.UpdatedAt(ctx, "hrdesk.session")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, at.Equal(testutil.TestTime().Truncate(time.Millisecond)))

	require.NoError(t, s.Delete(ctx, "hrdesk.session"))
	require.NoError(t, s.Delete(ctx, "hrdesk.session"))
	_, ok, err = s.Get(ctx, "hrdesk.session")
	require.NoError(t, err)
	assert.False(t, ok)

	require.Error(t, s.Set(ctx, "", "x"))
}

func TestKVStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := testutil.TempSQLitePath(t.TempDir())

	first, err := NewKVStore(ctx, Options{Path: path})
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "hrdesk.auth_notice", "Session expired. Please log in again."))
	require.NoError(t, first.Close())
	require.NoError(t, first.Close())

	second := newStore(t, path)
	v, ok, err := second.Get(ctx, "hrdesk.auth_notice")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Session expired. Please log in again.", v)
}

func TestKVStore_HealthAfterClose(t *testing.T) {
	ctx := context.Background()
	s, err := NewKVStore(ctx, Options{Path: testutil.TempSQLitePath(t.TempDir())})
	require.NoError(t, err)

	require.NoError(t, s.Health(ctx))
	require.NoError(t, s.Close())
	assert.Error(t, s.Check(ctx))
}
