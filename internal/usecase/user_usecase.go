package usecase

import (
	"context"
	"log"

	"blazerider/internal/domain/entity"
	"blazerider/internal/domain/repository"
	"blazerider/pkg/errors"
)

type UserUseCase struct {
	userRepo repository.UserRepository
}

func NewUserUseCase(userRepo repository.UserRepository) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
	}
}

type UpdateProfileInput struct {
	Username  string
	Phone     string
	Bio       string
	AvatarURL string
}

func (uc *UserUseCase) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, userID)
}

func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NotFound("User not found", err)
	}

	if input.Username != "" {
		user.Username = input.Username
	}
	if input.Phone != "" {
		user.Phone = input.Phone
	}
	if input.Bio != "" {
		user.Bio = input.Bio
	}
	if input.AvatarURL != "" {
		user.AvatarURL = input.AvatarURL
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		log.Printf("UpdateProfile Error: Failed for user %s: %v", userID, err)
		return nil, err
	}

	return user, nil
}

// RegisterDeviceToken stores an FCM token so pushes can reach this device.
func (uc *UserUseCase) RegisterDeviceToken(ctx context.Context, userID, token string) error {
	if token == "" {
		return errors.BadRequest("Device token cannot be empty", nil)
	}
	return uc.userRepo.AddDeviceToken(ctx, userID, token)
}
