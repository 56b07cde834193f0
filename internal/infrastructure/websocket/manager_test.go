package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerClient(t *testing.T, m *Manager, userID string) *Client {
	t.Helper()
	client := NewClient(userID, nil)
	m.Register <- client
	waitFor(t, func() bool { return m.IsUserConnected(userID) })
	return client
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestManagerRoomMembership(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := NewManager()
	m.Start(ctx)

	alice := registerClient(t, m, "alice")
	bob := registerClient(t, m, "bob")

	m.JoinRoom("chat-1", alice)
	m.JoinRoom("chat-1", bob)

	assert.True(t, m.IsUserInRoom("chat-1", "alice"))
	assert.True(t, m.IsUserInRoom("chat-1", "bob"))
	assert.False(t, m.IsUserInRoom("chat-2", "alice"))

	m.LeaveRoom("chat-1", alice)
	assert.False(t, m.IsUserInRoom("chat-1", "alice"))
	assert.True(t, m.IsUserInRoom("chat-1", "bob"))
}

func TestSendToChatRoomExcludesSender(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := NewManager()
	m.Start(ctx)

	alice := registerClient(t, m, "alice")
	bob := registerClient(t, m, "bob")
	m.JoinRoom("chat-1", alice)
	m.JoinRoom("chat-1", bob)

	m.SendToChatRoom("chat-1", "new_message", map[string]string{"id": "m-1"}, "alice")

	select {
	case raw := <-bob.Send:
		var event map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &event))
		assert.Equal(t, "new_message", event["type"])
		assert.Equal(t, "chat-1", event["chatId"])
	case <-time.After(time.Second):
		t.Fatal("bob never received the event")
	}

	select {
	case <-alice.Send:
		t.Fatal("sender must not receive their own event")
	default:
	}
}

func TestSendEventToUser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := NewManager()
	m.Start(ctx)

	alice := registerClient(t, m, "alice")

	m.SendEvent("alice", "notification", map[string]string{"title": "hi"})

	select {
	case raw := <-alice.Send:
		var event map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &event))
		assert.Equal(t, "notification", event["type"])
	case <-time.After(time.Second):
		t.Fatal("event never arrived")
	}
}

func TestUnregisterCleansRoomsAndFiresHook(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := NewManager()

	hookDone := make(chan []string, 1)
	m.OnDisconnect = func(userID string, chatIDs []string) {
		if userID == "alice" {
			hookDone <- chatIDs
		}
	}
	m.Start(ctx)

	alice := registerClient(t, m, "alice")
	m.JoinRoom("chat-1", alice)
	m.JoinRoom("chat-2", alice)

	m.Unregister <- alice

	select {
	case chatIDs := <-hookDone:
		assert.ElementsMatch(t, []string{"chat-1", "chat-2"}, chatIDs)
	case <-time.After(time.Second):
		t.Fatal("disconnect hook never fired")
	}

	waitFor(t, func() bool { return !m.IsUserConnected("alice") })
	assert.False(t, m.IsUserInRoom("chat-1", "alice"))
	assert.False(t, m.IsUserInRoom("chat-2", "alice"))
}
