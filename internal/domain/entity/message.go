package entity

import "time"

const (
	MessageTypeText   = "text"
	MessageTypeImage  = "image"
	MessageTypeFile   = "file"
	MessageTypeUnsent = "unsent"

	MessageStatusSent = "sent"
	MessageStatusRead = "read"

	// UnsentPlaceholder replaces the content of an unsent message for every
	// participant.
	UnsentPlaceholder = "This message was unsent"
)

type Message struct {
	ID       string `json:"id" firestore:"id"`
	ChatID   string `json:"chat_id" firestore:"chatId"`
	SenderID string `json:"sender_id" firestore:"senderId"`
	Content  string `json:"content" firestore:"content"` // text, or storage URI for image/file
	Type     string `json:"type" firestore:"type"`       // "text", "image", "file", "unsent"
	Status   string `json:"status" firestore:"status"`   // "sent", "read"

	// DeletedFor holds the ids of users who removed this message from their
	// own view. The message itself is never physically removed.
	DeletedFor []string `json:"deleted_for,omitempty" firestore:"deletedFor,omitempty"`

	// Server-assigned; readers order by this field, never the client clock.
	CreatedAt time.Time `json:"created_at" firestore:"createdAt,serverTimestamp"`
}

// VisibleTo reports whether userID has not soft-deleted this message.
func (m *Message) VisibleTo(userID string) bool {
	for _, id := range m.DeletedFor {
		if id == userID {
			return false
		}
	}
	return true
}

func (m *Message) IsUnsent() bool {
	return m.Type == MessageTypeUnsent
}
