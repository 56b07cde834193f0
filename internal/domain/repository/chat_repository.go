package repository

import (
	"context"

	"blazerider/internal/domain/entity"
)

type ChatRepository interface {
	// CreateMerged writes the chat document with merge semantics so a racing
	// creation from the other party converges on the same document instead of
	// overwriting it.
	CreateMerged(ctx context.Context, chat *entity.Chat) error
	GetByID(ctx context.Context, id string) (*entity.Chat, error)

	// AppendMessage atomically writes the message, the chat's last-message
	// snapshot (with the sender's typing flag cleared), and every member's
	// inbox update. Partial application is not possible.
	AppendMessage(ctx context.Context, chat *entity.Chat, message *entity.Message, indexUpdates []*entity.ChatIndexUpdate) error

	GetMessageByID(ctx context.Context, chatID, messageID string) (*entity.Message, error)
	GetMessagesByChat(ctx context.Context, chatID string, limit, offset int) ([]*entity.Message, int64, error)
	UpdateMessage(ctx context.Context, chatID string, message *entity.Message) error
	AddDeletedFor(ctx context.Context, chatID, messageID, userID string) error
	UpdateMessageReadStatus(ctx context.Context, chatID, messageID, userID string) error

	SetTyping(ctx context.Context, chatID, userID string, typing bool) error
}
