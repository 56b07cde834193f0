package repository

import (
	"context"
	"time"

	"blazerider/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id string) error
	AddDeviceToken(ctx context.Context, userID, token string) error
	ListByVerificationStatus(ctx context.Context, status string, limit, offset int) ([]*entity.User, int64, error)
	CountByVerificationStatus(ctx context.Context, status string) (int64, error)
	ListCreatedAfter(ctx context.Context, since time.Time) ([]*entity.User, error)
	ListVerifiedRecent(ctx context.Context) ([]*entity.User, error)
	ClearVerifiedRecent(ctx context.Context) error
}
