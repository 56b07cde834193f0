package entity

import "time"

// ChatIndexEntry is one row of a user's denormalized inbox, stored at
// userChats/{userId}/items/{chatId}. It is updated in the same atomic batch
// as the message append that caused the change.
type ChatIndexEntry struct {
	UserID string `json:"user_id" firestore:"userId"`
	ChatID string `json:"chat_id" firestore:"chatId"`

	// Incremented once per delivered message per non-sender member; reset to
	// zero only when the owning user views the chat. Never negative.
	UnreadCount int `json:"unread_count" firestore:"unreadCount"`

	ChatType      string `json:"chat_type" firestore:"chatType"`
	GroupName     string `json:"group_name,omitempty" firestore:"groupName,omitempty"`
	GroupImageURL string `json:"group_image_url,omitempty" firestore:"groupImageURL,omitempty"`
	OtherUserID   string `json:"other_user_id,omitempty" firestore:"otherUserId,omitempty"`

	LastMessageID       string    `json:"last_message_id,omitempty" firestore:"lastMessageId,omitempty"`
	LastMessage         string    `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	LastMessageType     string    `json:"last_message_type,omitempty" firestore:"lastMessageType,omitempty"`
	LastMessageSenderID string    `json:"last_message_sender_id,omitempty" firestore:"lastMessageSenderId,omitempty"`
	LastMessageAt       time.Time `json:"last_message_at" firestore:"lastMessageAt"`

	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// ChatIndexUpdate describes how one member's inbox entry changes inside a
// message-append batch. The repository applies UnreadDelta as a server-side
// increment so concurrent appends never lose counts.
type ChatIndexUpdate struct {
	UserID      string
	ChatID      string
	UnreadDelta int
	ResetUnread bool

	LastMessageID       string
	LastMessage         string
	LastMessageType     string
	LastMessageSenderID string
	LastMessageAt       time.Time
}
