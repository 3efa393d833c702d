package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/hrdesk/internal/domain/auth"
	apperrors "github.com/target/hrdesk/internal/errors"
	"github.com/target/hrdesk/internal/mocks"
	"go.uber.org/mock/gomock"
)

func newAuthService(t *testing.T, f *authFixture, gw *mocks.MockBackendGateway) *AuthService {
	t.Helper()
	svc, err := NewAuthService(AuthServiceOptions{
		Gateway:  gw,
		Sessions: f.sessions,
		Cache:    f.cache,
		Notices:  f.notices,
		Logger:   discardLogger(),
	})
	require.NoError(t, err)
	return svc
}

func TestNewAuthService(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newAuthFixture(t, nil)

	_, err := NewAuthService(AuthServiceOptions{Sessions: f.sessions, Cache: f.cache, Notices: f.notices})
	require.Error(t, err)
	_, err = NewAuthService(AuthServiceOptions{Gateway: mocks.NewMockBackendGateway(ctrl), Cache: f.cache, Notices: f.notices})
	require.Error(t, err)

	svc, err := NewAuthService(AuthServiceOptions{
		Gateway: mocks.NewMockBackendGateway(ctrl), Sessions: f.sessions, Cache: f.cache, Notices: f.notices,
	})
	require.NoError(t, err)
	assert.NotNil(t, svc.logger)
}

func TestAuthService_LoginValidation(t *testing.T) {
	tests := []struct {
		name, username, password, field string
	}{
		{"blank username", "   ", "secret", "username"},
		{"empty password", "ana", "", "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			gw := mocks.NewMockBackendGateway(ctrl)
			f := newAuthFixture(t, nil)

			_, err := newAuthService(t, f, gw).Login(context.Background(), tt.username, tt.password)

			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, tt.field, apperrors.GetField(err))
			assert.False(t, f.sessions.IsAuthenticated())
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockBackendGateway(ctrl)
	f := newAuthFixture(t, nil)

	want := testSession("at", "rt", 9, "ana", "hr")
	gw.EXPECT().Login(gomock.Any(), "ana", "secret").Return(want, nil)

	got, err := newAuthService(t, f, gw).Login(context.Background(), " ana ", "secret")

	require.NoError(t, err)
	assert.Equal(t, want, *got)
	stored, ok := f.sessions.Snapshot()
	require.True(t, ok)
	assert.Equal(t, want, stored)
	assert.Equal(t, 1, f.cache.Clears(), "previous user's query results are dropped")
}

func TestAuthService_LoginGatewayError(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockBackendGateway(ctrl)
	f := newAuthFixture(t, nil)

	gw.EXPECT().Login(gomock.Any(), "ana", "wrong").Return(domainauth.Session{}, apperrors.Validation("invalid username or password"))

	_, err := newAuthService(t, f, gw).Login(context.Background(), "ana", "wrong")

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.False(t, f.sessions.IsAuthenticated())
	assert.Equal(t, 0, f.cache.Clears())
}

func TestAuthService_LoginStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockBackendGateway(ctrl)
	f := newAuthFixture(t, nil)
	f.kv.SetErr = errors.New("read-only filesystem")

	gw.EXPECT().Login(gomock.Any(), "ana", "secret").Return(testSession("at", "rt", 9, "ana", "hr"), nil)

	_, err := newAuthService(t, f, gw).Login(context.Background(), "ana", "secret")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "store session")
	assert.False(t, f.sessions.IsAuthenticated())
}

func TestAuthService_Logout(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockBackendGateway(ctrl)
	sess := testSession("at", "rt", 9, "ana", "hr")
	f := newAuthFixture(t, &sess)

	gw.EXPECT().Logout(gomock.Any(), "rt").Return(errors.New("backend unreachable"))

	err := newAuthService(t, f, gw).Logout(context.Background())

	require.NoError(t, err, "backend revocation is best effort")
	assert.False(t, f.sessions.IsAuthenticated())
	_, present := f.kv.Raw(domainauth.DefaultSessionKey)
	assert.False(t, present)
	assert.Equal(t, 1, f.cache.Clears())
}

func TestAuthService_LogoutWithoutSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockBackendGateway(ctrl)
	f := newAuthFixture(t, nil)

	require.NoError(t, newAuthService(t, f, gw).Logout(context.Background()))
	assert.Equal(t, 0, f.cache.Clears())
}

func TestAuthService_LogoutLocalFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockBackendGateway(ctrl)
	sess := testSession("at", "rt", 9, "ana", "hr")
	f := newAuthFixture(t, &sess)
	f.kv.DeleteErr = errors.New("locked")
	f.kv.SetErr = errors.New("read-only filesystem")
	f.cache.ClearErr = errors.New("redis down")

	gw.EXPECT().Logout(gomock.Any(), "rt").Return(nil)

	err := newAuthService(t, f, gw).Logout(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked")
	assert.Contains(t, err.Error(), "redis down")
	assert.False(t, f.sessions.IsAuthenticated(), "memory is cleared regardless")
}

func TestAuthService_ConsumeNotice(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newAuthFixture(t, nil)
	svc := newAuthService(t, f, mocks.NewMockBackendGateway(ctrl))
	ctx := context.Background()

	assert.Empty(t, svc.ConsumeNotice(ctx))
	require.NoError(t, f.notices.Set(ctx, domainauth.NoticeSecurityIssue))
	assert.Equal(t, domainauth.NoticeSecurityIssue, svc.ConsumeNotice(ctx))
	assert.Empty(t, svc.ConsumeNotice(ctx))
}

func TestAuthService_CurrentUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	sess := testSession("at", "rt", 9, "ana", "auditor")
	f := newAuthFixture(t, &sess)
	svc := newAuthService(t, f, mocks.NewMockBackendGateway(ctrl))

	u, ok := svc.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, sess.User, u)

	require.NoError(t, f.sessions.Clear(context.Background()))
	_, ok = svc.CurrentUser()
	assert.False(t, ok)
}
