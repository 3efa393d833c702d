package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	domainauth "github.com/target/hrdesk/internal/domain/auth"
	authmocks "github.com/target/hrdesk/internal/mocks/auth"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSession(access, refresh string, id int64, username, role string) domainauth.Session {
	return domainauth.Session{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         domainauth.User{ID: id, Username: username, Role: domainauth.Role(role)},
	}
}

func encodeSession(t *testing.T, s domainauth.Session) string {
	t.Helper()
	b, err := json.Marshal(s)
	require.NoError(t, err)
	return string(b)
}

// newSessionStoreWith builds a store over kv with a silent logger.
func newSessionStoreWith(t *testing.T, kv *authmocks.MemoryKV) *SessionStore {
	t.Helper()
	return NewSessionStore(context.Background(), SessionStoreOptions{Storage: kv, Logger: discardLogger()})
}

// authFixture wires the stores and doubles shared by recovery, expiry and auth service tests.
type authFixture struct {
	kv        *authmocks.MemoryKV
	sessions  *SessionStore
	notices   *NoticeBoard
	cache     *authmocks.RecordingCache
	navigator *authmocks.RecordingNavigator
}

func newAuthFixture(t *testing.T, initial *domainauth.Session) *authFixture {
	t.Helper()
	seed := map[string]string{}
	if initial != nil {
		seed[domainauth.DefaultSessionKey] = encodeSession(t, *initial)
	}
	kv := authmocks.NewMemoryKV(seed)
	return &authFixture{
		kv:        kv,
		sessions:  newSessionStoreWith(t, kv),
		notices:   NewNoticeBoard(NoticeBoardOptions{Storage: kv, Logger: discardLogger()}),
		cache:     &authmocks.RecordingCache{},
		navigator: &authmocks.RecordingNavigator{},
	}
}

// pendingNotice reads the persisted notice without consuming it.
func (f *authFixture) pendingNotice() string {
	v, _ := f.kv.Raw(domainauth.DefaultNoticeKey)
	return v
}
