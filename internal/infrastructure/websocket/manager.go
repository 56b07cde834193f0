package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Client represents a WebSocket connection client
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	rooms map[string]bool
	mutex sync.Mutex
}

func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 16),
		rooms:  make(map[string]bool),
	}
}

// Rooms returns the chat ids this client has joined. Used on disconnect to
// clear typing state the client can no longer clear itself.
func (c *Client) Rooms() []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var ids []string
	for id := range c.rooms {
		ids = append(ids, id)
	}
	return ids
}

// Manager manages all active WebSocket connections and chat rooms
type Manager struct {
	clients    map[string]*Client
	rooms      map[string]map[string]*Client // chatID -> userID -> client
	Register   chan *Client
	Unregister chan *Client
	mutex      sync.RWMutex

	// OnDisconnect runs after a client is removed, with the rooms it was in.
	OnDisconnect func(userID string, chatIDs []string)

	chatEvents     ChatEvents
	presenceEvents PresenceEvents
}

// NewManager creates a new WebSocket connection manager
func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Start runs the manager's main loop in a goroutine
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				m.clients[client.UserID] = client
				m.mutex.Unlock()
				log.Printf("Client registered: %s", client.UserID)

			case client := <-m.Unregister:
				chatIDs := client.Rooms()

				m.mutex.Lock()
				if _, ok := m.clients[client.UserID]; ok {
					delete(m.clients, client.UserID)
					close(client.Send)
				}
				for _, chatID := range chatIDs {
					if room, ok := m.rooms[chatID]; ok {
						delete(room, client.UserID)
						if len(room) == 0 {
							delete(m.rooms, chatID)
						}
					}
				}
				m.mutex.Unlock()
				log.Printf("Client unregistered: %s", client.UserID)

				if m.OnDisconnect != nil {
					m.OnDisconnect(client.UserID, chatIDs)
				}

			case <-ctx.Done():
				return
			}
		}
	}()
}

// JoinRoom marks the client as viewing the given chat
func (m *Manager) JoinRoom(chatID string, client *Client) {
	m.mutex.Lock()
	if _, ok := m.rooms[chatID]; !ok {
		m.rooms[chatID] = make(map[string]*Client)
	}
	m.rooms[chatID][client.UserID] = client
	m.mutex.Unlock()

	client.mutex.Lock()
	client.rooms[chatID] = true
	client.mutex.Unlock()
}

// LeaveRoom removes the client from the given chat room
func (m *Manager) LeaveRoom(chatID string, client *Client) {
	m.mutex.Lock()
	if room, ok := m.rooms[chatID]; ok {
		delete(room, client.UserID)
		if len(room) == 0 {
			delete(m.rooms, chatID)
		}
	}
	m.mutex.Unlock()

	client.mutex.Lock()
	delete(client.rooms, chatID)
	client.mutex.Unlock()
}

// IsUserInRoom reports whether the user currently has the chat open
func (m *Manager) IsUserInRoom(chatID, userID string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	room, ok := m.rooms[chatID]
	if !ok {
		return false
	}
	_, ok = room[userID]
	return ok
}

// IsUserConnected reports whether the user has an active socket
func (m *Manager) IsUserConnected(userID string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	_, ok := m.clients[userID]
	return ok
}

// SendToUser sends a message to a specific user
func (m *Manager) SendToUser(userID string, message []byte) {
	m.mutex.RLock()
	client, ok := m.clients[userID]
	m.mutex.RUnlock()

	if ok {
		select {
		case client.Send <- message:
		default:
			log.Printf("Dropping message for slow client %s", userID)
		}
	}
}

// SendEvent marshals a typed event payload and sends it to the user
func (m *Manager) SendEvent(userID, eventType string, payload interface{}) {
	data, err := json.Marshal(map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	})
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", eventType, err)
		return
	}
	m.SendToUser(userID, data)
}

// SendToChatRoom delivers an event to every viewer of a chat, optionally
// skipping one user (usually the sender)
func (m *Manager) SendToChatRoom(chatID, eventType string, payload interface{}, excludeUserID string) {
	data, err := json.Marshal(map[string]interface{}{
		"type":    eventType,
		"chatId":  chatID,
		"payload": payload,
	})
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", eventType, err)
		return
	}

	m.mutex.RLock()
	room := m.rooms[chatID]
	clients := make([]*Client, 0, len(room))
	for userID, client := range room {
		if userID == excludeUserID {
			continue
		}
		clients = append(clients, client)
	}
	m.mutex.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			log.Printf("Dropping %s event for slow client %s", eventType, client.UserID)
		}
	}
}

// WritePump sends messages to the WebSocket connection
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		message, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		err := c.Conn.WriteMessage(websocket.TextMessage, message)
		if err != nil {
			log.Printf("error: %v", err)
			return
		}
	}
}
