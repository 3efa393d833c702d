package service

import (
	"context"
	"log/slog"
	"sync"

	domainauth "github.com/target/hrdesk/internal/domain/auth"
	"github.com/target/hrdesk/internal/ports"
)

// NoticeBoardOptions groups dependencies for NewNoticeBoard.
type NoticeBoardOptions struct {
	Storage ports.KeyValueStore
	Key     string // defaults to domainauth.DefaultNoticeKey
	Logger  *slog.Logger
}

// NoticeBoard keeps the single pending auth notice in durable storage so it
// survives the reload that follows a forced logout.
type NoticeBoard struct {
	storage ports.KeyValueStore
	key     string
	logger  *slog.Logger
	mu      sync.Mutex
}

var _ ports.NoticeStore = (*NoticeBoard)(nil)

// NewNoticeBoard constructs a NoticeBoard.
func NewNoticeBoard(opts NoticeBoardOptions) *NoticeBoard {
	key := opts.Key
	if key == "" {
		key = domainauth.DefaultNoticeKey
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &NoticeBoard{storage: opts.Storage, key: key, logger: logger}
}

// Set records message as the pending notice, replacing any earlier one.
func (n *NoticeBoard) Set(ctx context.Context, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.storage.Set(ctx, n.key, message)
}

// Take returns the pending notice and clears it. It returns "" when nothing is pending.
func (n *NoticeBoard) Take(ctx context.Context) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	message, ok, err := n.storage.Get(ctx, n.key)
	if err != nil {
		n.logger.WarnContext(ctx, "read auth notice failed", "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	if delErr := n.storage.Delete(ctx, n.key); delErr != nil {
		n.logger.WarnContext(ctx, "clear auth notice failed", "error", delErr)
	}
	return message
}
