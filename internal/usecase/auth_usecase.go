package usecase

import (
	"context"
	"log"
	"time"

	"blazerider/internal/domain/entity"
	"blazerider/internal/domain/repository"
	"blazerider/pkg/errors"
)

type AuthUseCase struct {
	authProvider AuthProvider
	userRepo     repository.UserRepository
}

func NewAuthUseCase(authProvider AuthProvider, userRepo repository.UserRepository) *AuthUseCase {
	return &AuthUseCase{
		authProvider: authProvider,
		userRepo:     userRepo,
	}
}

type RegisterInput struct {
	Email    string
	Password string
	Username string
	Phone    string
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`
}

// Register creates the identity-provider account and the profile document.
// New accounts start unverified and pending admin confirmation.
func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	if _, err := uc.userRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, errors.BadRequest("Email is already registered", nil)
	}

	uid, err := uc.authProvider.CreateUser(ctx, input.Email, input.Password, input.Username)
	if err != nil {
		log.Printf("Register Error: Failed to create auth account for %s: %v", input.Email, err)
		return nil, errors.Internal("Failed to create account", err)
	}

	now := time.Now()
	user := &entity.User{
		ID:                 uid,
		Email:              input.Email,
		Username:           input.Username,
		Phone:              input.Phone,
		Role:               "rider",
		Verified:           false,
		VerifiedRecent:     false,
		VerificationStatus: entity.VerificationPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		log.Printf("Register Error: Failed to store profile for %s: %v", uid, err)
		return nil, errors.Internal("Failed to store user profile", err)
	}

	token, err := uc.authProvider.SignInWithEmailPassword(input.Email, input.Password)
	if err != nil {
		log.Printf("Register Warning: Sign-in after registration failed for %s: %v", input.Email, err)
		// Account exists; the client can log in manually.
		return &AuthResponse{User: user}, nil
	}

	if err := uc.authProvider.SendEmailVerification(ctx, token); err != nil {
		log.Printf("Register Warning: Verification email failed for %s: %v", input.Email, err)
	}

	return &AuthResponse{Token: token, User: user}, nil
}

// RequestEmailVerification re-sends the verification email for the caller's
// current session token.
func (uc *AuthUseCase) RequestEmailVerification(ctx context.Context, idToken string) error {
	if err := uc.authProvider.SendEmailVerification(ctx, idToken); err != nil {
		log.Printf("Email verification request failed: %v", err)
		return errors.Internal("Failed to send verification email", err)
	}
	return nil
}

// Login exchanges email and password for an ID token.
func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	token, err := uc.authProvider.SignInWithEmailPassword(email, password)
	if err != nil {
		log.Printf("Login Error: Invalid credentials for %s: %v", email, err)
		return nil, errors.Unauthorized("Invalid email or password", err)
	}

	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, errors.NotFound("User profile not found", err)
	}

	return &AuthResponse{Token: token, User: user}, nil
}

// VerifyToken resolves an ID token to a user id. Used by middleware.
func (uc *AuthUseCase) VerifyToken(ctx context.Context, token string) (string, error) {
	uid, err := uc.authProvider.VerifyToken(ctx, token)
	if err != nil {
		return "", errors.Unauthorized("Invalid or expired token", err)
	}
	return uid, nil
}

// ChangePassword sets a new password for the caller.
func (uc *AuthUseCase) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return errors.NotFound("User not found", err)
	}

	if _, err := uc.authProvider.SignInWithEmailPassword(user.Email, currentPassword); err != nil {
		return errors.Unauthorized("Current password is incorrect", err)
	}

	if err := uc.authProvider.UpdateUserPassword(ctx, userID, newPassword); err != nil {
		log.Printf("ChangePassword Error: Failed for user %s: %v", userID, err)
		return errors.Internal("Failed to update password", err)
	}

	return nil
}

// RequestPasswordReset triggers the reset email. Always succeeds from the
// caller's perspective so addresses cannot be probed.
func (uc *AuthUseCase) RequestPasswordReset(ctx context.Context, email string) error {
	if err := uc.authProvider.SendPasswordReset(ctx, email); err != nil {
		log.Printf("Password reset request failed for %s: %v", email, err)
	}
	return nil
}
