package entity

import (
	"sort"
	"strings"
	"time"
)

const (
	ChatTypeDirect = "direct"
	ChatTypeGroup  = "group"
)

// ChatMember carries per-member metadata inside a chat document.
type ChatMember struct {
	UserID   string    `json:"user_id" firestore:"userId"`
	Role     string    `json:"role" firestore:"role"` // "member", "owner"
	JoinedAt time.Time `json:"joined_at" firestore:"joinedAt"`
}

type Chat struct {
	ID            string          `json:"id" firestore:"id"`
	Type          string          `json:"type" firestore:"type"` // "direct", "group"
	Participants  []string        `json:"participants" firestore:"participants"`
	Members       []ChatMember    `json:"members" firestore:"members"`
	GroupName     string          `json:"group_name,omitempty" firestore:"groupName,omitempty"`
	GroupImageURL string          `json:"group_image_url,omitempty" firestore:"groupImageURL,omitempty"`
	CreatedBy     string          `json:"created_by,omitempty" firestore:"createdBy,omitempty"`
	Typing        map[string]bool `json:"typing" firestore:"typing"` // member id -> currently typing

	// Denormalized last-message snapshot, mirrored into every member's
	// chat index entry on append.
	LastMessageID       string    `json:"last_message_id,omitempty" firestore:"lastMessageId,omitempty"`
	LastMessage         string    `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	LastMessageType     string    `json:"last_message_type,omitempty" firestore:"lastMessageType,omitempty"`
	LastMessageSenderID string    `json:"last_message_sender_id,omitempty" firestore:"lastMessageSenderId,omitempty"`
	LastMessageAt       time.Time `json:"last_message_at" firestore:"lastMessageAt"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// DirectChatID derives the deterministic id for a two-party chat. Both
// orderings of the pair produce the same id, so repeated "start chat with X"
// actions converge on one conversation.
func DirectChatID(userA, userB string) string {
	ids := []string{userA, userB}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}

func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}
