package repository

import (
	"context"

	"blazerider/internal/domain/entity"
)

type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) error
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	Update(ctx context.Context, post *entity.Post) error
	Delete(ctx context.Context, id string) error
	ListPublished(ctx context.Context, authorID string, limit, offset int) ([]*entity.Post, int64, error)
	ListPendingPublish(ctx context.Context) ([]*entity.Post, error)
	SetPublished(ctx context.Context, id string) error

	AddComment(ctx context.Context, comment *entity.Comment) error
	ListComments(ctx context.Context, postID string, limit, offset int) ([]*entity.Comment, int64, error)
	SetReaction(ctx context.Context, reaction *entity.Reaction) error
	RemoveReaction(ctx context.Context, postID, userID string) error
	GetReaction(ctx context.Context, postID, userID string) (*entity.Reaction, error)
}
