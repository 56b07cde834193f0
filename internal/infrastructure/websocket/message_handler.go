package websocket

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket Message Types
const (
	MessageTypePing        = "ping"
	MessageTypePong        = "pong"
	MessageTypeTyping      = "typing"
	MessageTypeJoinRoom    = "join_room"
	MessageTypeLeaveRoom   = "leave_room"
	MessageTypeMarkRead    = "mark_read"
	MessageTypeHeartbeat   = "heartbeat"
	MessageTypeError       = "error"
	MessageTypeReadReceipt = "read_receipt"
)

// WSMessage is the envelope for every inbound client frame
type WSMessage struct {
	Type   string          `json:"type"`
	ChatID string          `json:"chat_id,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

type TypingData struct {
	ChatID string `json:"chat_id"`
	Typing bool   `json:"typing"`
}

type MarkReadData struct {
	ChatID    string `json:"chat_id"`
	MessageID string `json:"message_id,omitempty"`
}

// ChatEvents is implemented by the chat usecase. The socket layer only
// forwards; all authorization and persistence happens behind this interface.
type ChatEvents interface {
	CanAccessChat(ctx context.Context, chatID, userID string) bool
	SetTyping(ctx context.Context, chatID, userID string, typing bool) error
	MarkChatAsRead(ctx context.Context, chatID, userID string) error
	MarkMessageAsRead(ctx context.Context, chatID, messageID, userID string) error
}

// PresenceEvents is implemented by the presence usecase
type PresenceEvents interface {
	Heartbeat(ctx context.Context, userID string) error
}

func (m *Manager) SetChatEvents(events ChatEvents) {
	m.chatEvents = events
}

func (m *Manager) SetPresenceEvents(events PresenceEvents) {
	m.presenceEvents = events
}

// HandleClientMessage processes one inbound frame from a client
func (m *Manager) HandleClientMessage(client *Client, messageBytes []byte) {
	var wsMessage WSMessage
	if err := json.Unmarshal(messageBytes, &wsMessage); err != nil {
		log.Printf("WebSocket: invalid frame from client %s: %v", client.UserID, err)
		m.sendErrorToClient(client, "Invalid message format")
		return
	}

	ctx := context.Background()

	switch wsMessage.Type {
	case MessageTypePing:
		m.SendEvent(client.UserID, MessageTypePong, map[string]string{"status": "alive"})

	case MessageTypeHeartbeat:
		if m.presenceEvents != nil {
			if err := m.presenceEvents.Heartbeat(ctx, client.UserID); err != nil {
				log.Printf("WebSocket: heartbeat failed for %s: %v", client.UserID, err)
			}
		}

	case MessageTypeJoinRoom:
		chatID := wsMessage.ChatID
		if chatID == "" {
			m.sendErrorToClient(client, "Missing chat_id")
			return
		}
		if m.chatEvents != nil && !m.chatEvents.CanAccessChat(ctx, chatID, client.UserID) {
			m.sendErrorToClient(client, "Not a participant of this chat")
			return
		}
		m.JoinRoom(chatID, client)
		log.Printf("WebSocket: %s joined room %s", client.UserID, chatID)

	case MessageTypeLeaveRoom:
		chatID := wsMessage.ChatID
		if chatID == "" {
			m.sendErrorToClient(client, "Missing chat_id")
			return
		}
		m.LeaveRoom(chatID, client)
		// Leaving the room also stops any lingering typing indicator.
		if m.chatEvents != nil {
			if err := m.chatEvents.SetTyping(ctx, chatID, client.UserID, false); err != nil {
				log.Printf("WebSocket: typing clear failed for %s in %s: %v", client.UserID, chatID, err)
			}
		}

	case MessageTypeTyping:
		var data TypingData
		if err := json.Unmarshal(wsMessage.Data, &data); err != nil {
			m.sendErrorToClient(client, "Invalid typing data")
			return
		}
		if data.ChatID == "" {
			data.ChatID = wsMessage.ChatID
		}
		if data.ChatID == "" {
			m.sendErrorToClient(client, "Missing chat_id")
			return
		}
		if m.chatEvents != nil {
			if err := m.chatEvents.SetTyping(ctx, data.ChatID, client.UserID, data.Typing); err != nil {
				log.Printf("WebSocket: typing update failed for %s in %s: %v", client.UserID, data.ChatID, err)
				return
			}
		}
		m.SendToChatRoom(data.ChatID, MessageTypeTyping, map[string]interface{}{
			"user_id": client.UserID,
			"typing":  data.Typing,
		}, client.UserID)

	case MessageTypeMarkRead:
		var data MarkReadData
		if err := json.Unmarshal(wsMessage.Data, &data); err != nil {
			m.sendErrorToClient(client, "Invalid mark_read data")
			return
		}
		if data.ChatID == "" {
			data.ChatID = wsMessage.ChatID
		}
		if data.ChatID == "" {
			m.sendErrorToClient(client, "Missing chat_id")
			return
		}
		if m.chatEvents == nil {
			return
		}
		if data.MessageID != "" {
			if err := m.chatEvents.MarkMessageAsRead(ctx, data.ChatID, data.MessageID, client.UserID); err != nil {
				log.Printf("WebSocket: mark message read failed for %s: %v", client.UserID, err)
			}
			return
		}
		if err := m.chatEvents.MarkChatAsRead(ctx, data.ChatID, client.UserID); err != nil {
			log.Printf("WebSocket: mark chat read failed for %s: %v", client.UserID, err)
		}

	default:
		log.Printf("WebSocket: unknown message type '%s' from client %s", wsMessage.Type, client.UserID)
		m.sendErrorToClient(client, "Unknown message type")
	}
}

func (m *Manager) sendErrorToClient(client *Client, message string) {
	data, err := json.Marshal(map[string]interface{}{
		"type":      MessageTypeError,
		"error":     message,
		"timestamp": time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	select {
	case client.Send <- data:
	default:
	}
}

// ReadPump reads frames from the connection until it closes
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}

		m.HandleClientMessage(c, message)
	}
}
