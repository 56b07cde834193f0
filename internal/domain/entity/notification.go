package entity

import "time"

const (
	NotificationTypeMessage  = "message"
	NotificationTypeComment  = "comment"
	NotificationTypeReaction = "reaction"
	NotificationTypeRide     = "ride"
	NotificationTypeSystem   = "system"
)

type Notification struct {
	ID     string `json:"id" firestore:"id"`
	UserID string `json:"user_id" firestore:"userId"`
	Type   string `json:"type" firestore:"type"`
	Title  string `json:"title" firestore:"title"`
	Body   string `json:"body" firestore:"body"`

	// ChatID is set for message notifications so the relay can suppress
	// banners for the chat the user currently has open.
	ChatID string `json:"chat_id,omitempty" firestore:"chatId,omitempty"`
	RefID  string `json:"ref_id,omitempty" firestore:"refId,omitempty"`

	Read      bool      `json:"read" firestore:"read"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}
