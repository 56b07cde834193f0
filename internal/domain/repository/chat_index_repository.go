package repository

import (
	"context"

	"blazerider/internal/domain/entity"
)

type ChatIndexRepository interface {
	// Ensure creates the entry with unreadCount 0 if it does not exist yet,
	// or merges the chat metadata without touching the unread counter if it
	// does.
	Ensure(ctx context.Context, entry *entity.ChatIndexEntry) error
	Get(ctx context.Context, userID, chatID string) (*entity.ChatIndexEntry, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.ChatIndexEntry, int64, error)
	ResetUnread(ctx context.Context, userID, chatID string) error
	Apply(ctx context.Context, update *entity.ChatIndexUpdate) error
	Remove(ctx context.Context, userID, chatID string) error
}
