package usecase

import (
	"context"
	"time"

	"blazerider/internal/infrastructure/geo"
)

// AuthProvider wraps the identity provider operations the usecases need.
type AuthProvider interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	VerifyToken(ctx context.Context, token string) (string, error)
	GenerateToken(ctx context.Context, uid string) (string, error)
	SignInWithEmailPassword(email, password string) (string, error)
	UpdateUserPassword(ctx context.Context, uid, newPassword string) error
	SendPasswordReset(ctx context.Context, email string) error
	SendEmailVerification(ctx context.Context, idToken string) error
}

// PushSender delivers push notifications to device tokens.
type PushSender interface {
	SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}

// Realtime is the socket fan-out surface used for live events.
type Realtime interface {
	SendEvent(userID, eventType string, payload interface{})
	SendToChatRoom(chatID, eventType string, payload interface{}, excludeUserID string)
	IsUserInRoom(chatID, userID string) bool
	IsUserConnected(userID string) bool
}

// JobScheduler runs deferred one-shot jobs, used for timed publishing.
type JobScheduler interface {
	Schedule(id string, delay time.Duration, fn func())
	Cancel(id string)
}

// WeatherService reports current conditions at a coordinate.
type WeatherService interface {
	CurrentWeather(ctx context.Context, lat, lng float64) (*geo.Weather, error)
}

// GeocodeService resolves coordinates to a display address.
type GeocodeService interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}
