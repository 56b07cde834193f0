package entity

import (
	"time"
)

const (
	VerificationPending  = "pending"
	VerificationAccepted = "accepted"
	VerificationRejected = "rejected"
)

type User struct {
	ID       string `json:"id" firestore:"id"`
	Email    string `json:"email" firestore:"email"`
	Username string `json:"username" firestore:"username"`
	Phone    string `json:"phone" firestore:"phone"`
	Bio      string `json:"bio" firestore:"bio"`
	Role     string `json:"role" firestore:"role"` // "rider", "admin"

	// Onboarding verification. Verified is the single canonical flag;
	// VerifiedRecent marks accounts confirmed since the admin last viewed
	// the dashboard so the UI can badge them.
	Verified           bool   `json:"verified" firestore:"verified"`
	VerifiedRecent     bool   `json:"verified_recent" firestore:"verifiedRecent"`
	VerificationStatus string `json:"verification_status" firestore:"verificationStatus"` // "pending", "accepted", "rejected"

	AvatarURL    string    `json:"avatar_url,omitempty" firestore:"avatarURL,omitempty"`
	DeviceTokens []string  `json:"device_tokens,omitempty" firestore:"deviceTokens,omitempty"`
	LastSeen     time.Time `json:"last_seen" firestore:"lastSeen"`
	OnlineStatus string    `json:"online_status" firestore:"onlineStatus"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}
