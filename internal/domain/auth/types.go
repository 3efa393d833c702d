package auth

// Package auth contains domain-level types for the client session lifecycle.
// It is pure and free of framework/adapter concerns.

import (
	"errors"
	"strings"
)

// User is the identity the backend associates with a session.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// SameIdentity reports whether u and other carry the same id, username and role.
// Roles are compared verbatim; a backend-side rename of the role string counts as a change.
func (u User) SameIdentity(other User) bool {
	return u.ID == other.ID && u.Username == other.Username && u.Role == other.Role
}

// Session is the authenticated credential + identity pair held client-side.
// A Session is replaced whole; there are no partial updates.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// WithUser returns a copy of s carrying the same credentials and a new user.
func (s Session) WithUser(u User) Session {
	return Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		User:         u,
	}
}

var (
	errMissingAccessToken = errors.New("access token is empty")
	errInvalidUserID      = errors.New("user id must be >= 1")
	errMissingUsername    = errors.New("username is empty")
)

// Validate checks the structural invariants of a session.
func (s Session) Validate() error {
	if strings.TrimSpace(s.AccessToken) == "" {
		return errMissingAccessToken
	}
	if s.User.ID < 1 {
		return errInvalidUserID
	}
	if strings.TrimSpace(s.User.Username) == "" {
		return errMissingUsername
	}
	return nil
}

// Notice messages shown on the login screen after a forced logout.
const (
	NoticeSessionExpired = "Session expired. Please log in again."
	NoticeSecurityIssue  = "Session security issue detected. Please sign in again."
)

// Durable storage keys.
const (
	DefaultSessionKey = "hrdesk.session"
	DefaultNoticeKey  = "hrdesk.auth_notice"
)
