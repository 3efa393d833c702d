package devauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/hrdesk/internal/domain/auth"
	apperrors "github.com/target/hrdesk/internal/errors"
)

func newGateway(t *testing.T, now *time.Time) *Gateway {
	t.Helper()
	g, err := NewGateway(Config{
		UserID: 3, Username: "ana", Password: "pw", Role: "hr",
		AccessTTL: time.Minute,
		Now:       func() time.Time { return *now },
	})
	require.NoError(t, err)
	return g
}

func TestNewGateway_Validation(t *testing.T) {
	_, err := NewGateway(Config{Username: "x"})
	require.Error(t, err)
	_, err = NewGateway(Config{UserID: 1, Username: " "})
	require.Error(t, err)
}

func TestGateway_LoginAndWhoAmI(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	g := newGateway(t, &now)

	_, err := g.Login(ctx, "ana", "wrong")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.False(t, apperrors.IsCredentialExpiry(err))

	sess, err := g.Login(ctx, "ana", "pw")
	require.NoError(t, err)
	require.NoError(t, sess.Validate())
	assert.Equal(t, domainauth.User{ID: 3, Username: "ana", Role: "hr"}, sess.User)

	u, err := g.WhoAmI(ctx, sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, sess.User, u)

	g.SetRole("admin")
	u, err = g.WhoAmI(ctx, sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domainauth.Role("admin"), u.Role)

	now = now.Add(2 * time.Minute)
	_, err = g.WhoAmI(ctx, sess.AccessToken)
	require.Error(t, err)
	assert.True(t, apperrors.IsCredentialExpiry(err))
}

func TestGateway_UnknownTokens(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	g := newGateway(t, &now)

	_, err := g.WhoAmI(ctx, "")
	assert.True(t, apperrors.IsCredentialExpiry(err))
	_, err = g.WhoAmI(ctx, "nope")
	assert.True(t, apperrors.IsCredentialExpiry(err))
	_, err = g.Refresh(ctx, "nope")
	require.Error(t, err)
	assert.False(t, apperrors.IsRefreshReused(err))
}

func TestGateway_RefreshRotationAndReuse(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	g := newGateway(t, &now)

	first, err := g.Login(ctx, "ana", "pw")
	require.NoError(t, err)

	second, err := g.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)

	_, err = g.Refresh(ctx, first.RefreshToken)
	require.Error(t, err)
	assert.True(t, apperrors.IsRefreshReused(err))
	assert.Equal(t, "auth.refresh_reused", err.Error())

	// Reuse revokes the whole family.
	_, err = g.Refresh(ctx, second.RefreshToken)
	require.Error(t, err)
	_, err = g.WhoAmI(ctx, second.AccessToken)
	require.Error(t, err)
}

func TestGateway_ExpireAccessTokensKeepsRefresh(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	g := newGateway(t, &now)

	sess, err := g.Login(ctx, "ana", "pw")
	require.NoError(t, err)
	g.ExpireAccessTokens()

	_, err = g.WhoAmI(ctx, sess.AccessToken)
	require.Error(t, err)
	_, err = g.Refresh(ctx, sess.RefreshToken)
	require.NoError(t, err)
}

func TestGateway_Logout(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	g := newGateway(t, &now)

	sess, err := g.Login(ctx, "ana", "pw")
	require.NoError(t, err)
	require.NoError(t, g.Logout(ctx, sess.RefreshToken))
	require.NoError(t, g.Logout(ctx, "unknown"))

	_, err = g.Refresh(ctx, sess.RefreshToken)
	require.Error(t, err)
	require.NoError(t, g.SecurityStatus(ctx))
}
