package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blazerider/internal/domain/entity"
	"blazerider/pkg/errors"
)

type fakeNotificationRepo struct {
	mu    sync.Mutex
	items map[string][]*entity.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{items: make(map[string][]*entity.Notification)}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, notification *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	copied := *notification
	r.items[notification.UserID] = append(r.items[notification.UserID], &copied)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.items[userID]
	return items, int64(len(items)), nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, userID, notificationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items[userID] {
		if item.ID == notificationID {
			item.Read = true
			return nil
		}
	}
	return errors.NotFound("Notification", nil)
}

type fakePush struct {
	mu    sync.Mutex
	sends int
}

func (p *fakePush) SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sends++
	return nil
}

func TestRelaySuppressedWhenChatOpen(t *testing.T) {
	repo := newFakeNotificationRepo()
	realtime := newFakeRealtime()
	users := newFakeUserRepo("bob")
	uc := NewNotificationUseCase(repo, users, realtime, nil)
	ctx := context.Background()

	realtime.inRoom[indexKey("bob", "chat-1")] = true
	realtime.connected["bob"] = true

	uc.Relay(ctx, &entity.Notification{
		UserID: "bob",
		Type:   entity.NotificationTypeMessage,
		ChatID: "chat-1",
		Title:  "alice",
		Body:   "hi",
	})

	// Persisted but never surfaced.
	items, total, err := repo.ListByUser(ctx, "bob", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, items, 1)
	assert.Empty(t, realtime.events)
}

func TestRelayShownAtMostOnce(t *testing.T) {
	repo := newFakeNotificationRepo()
	realtime := newFakeRealtime()
	users := newFakeUserRepo("bob")
	uc := NewNotificationUseCase(repo, users, realtime, nil)
	ctx := context.Background()

	realtime.connected["bob"] = true

	notification := &entity.Notification{
		ID:     "n-1",
		UserID: "bob",
		Type:   entity.NotificationTypeSystem,
		Title:  "Welcome",
	}

	uc.Relay(ctx, notification)
	uc.Relay(ctx, notification)

	assert.Len(t, realtime.events, 1)
}

func TestRelayFallsBackToPushWhenOffline(t *testing.T) {
	repo := newFakeNotificationRepo()
	realtime := newFakeRealtime()
	users := newFakeUserRepo("bob")
	push := &fakePush{}
	uc := NewNotificationUseCase(repo, users, realtime, push)
	ctx := context.Background()

	require.NoError(t, users.AddDeviceToken(ctx, "bob", "token-1"))

	uc.Relay(ctx, &entity.Notification{
		UserID: "bob",
		Type:   entity.NotificationTypeMessage,
		ChatID: "chat-1",
		Title:  "alice",
		Body:   "hi",
	})

	assert.Empty(t, realtime.events)
	assert.Equal(t, 1, push.sends)
}

func TestMarkRead(t *testing.T) {
	repo := newFakeNotificationRepo()
	uc := NewNotificationUseCase(repo, newFakeUserRepo(), newFakeRealtime(), nil)
	ctx := context.Background()

	notification := &entity.Notification{ID: "n-1", UserID: "bob", Type: entity.NotificationTypeSystem}
	require.NoError(t, repo.Create(ctx, notification))

	require.NoError(t, uc.MarkRead(ctx, "bob", "n-1"))

	items, _, err := uc.List(ctx, "bob", 20, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Read)
}
