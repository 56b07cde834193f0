package usecase

import (
	"context"
	"log"
	"sync"

	"blazerider/internal/domain/entity"
	"blazerider/internal/domain/repository"
)

// NotificationUseCase persists notifications and relays them live. A
// message notification is suppressed when the recipient already has the
// chat open, and each notification is shown at most once per process even
// if the relay is asked to deliver it again.
type NotificationUseCase struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	realtime         Realtime
	push             PushSender

	shownMutex sync.Mutex
	shown      map[string]bool
}

func NewNotificationUseCase(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	realtime Realtime,
	push PushSender,
) *NotificationUseCase {
	return &NotificationUseCase{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		realtime:         realtime,
		push:             push,
		shown:            make(map[string]bool),
	}
}

// RelayMessage records and delivers a new-message notification for one
// recipient. Called from the send path after the append committed.
func (uc *NotificationUseCase) RelayMessage(ctx context.Context, recipientID string, chat *entity.Chat, message *entity.Message, senderName string) {
	title := senderName
	if chat.Type == entity.ChatTypeGroup && chat.GroupName != "" {
		title = chat.GroupName
	}

	body := message.Content
	switch message.Type {
	case entity.MessageTypeImage:
		body = "Sent a photo"
	case entity.MessageTypeFile:
		body = "Sent a file"
	}

	notification := &entity.Notification{
		UserID: recipientID,
		Type:   entity.NotificationTypeMessage,
		Title:  title,
		Body:   body,
		ChatID: chat.ID,
		RefID:  message.ID,
	}

	uc.Relay(ctx, notification)
}

// Relay persists the notification, then delivers it at most once: over the
// socket if the user is connected, over push otherwise. Message
// notifications for a chat the user is viewing are stored but not surfaced.
func (uc *NotificationUseCase) Relay(ctx context.Context, notification *entity.Notification) {
	if err := uc.notificationRepo.Create(ctx, notification); err != nil {
		log.Printf("Notification persist failed for user %s: %v", notification.UserID, err)
		return
	}

	if notification.ChatID != "" && uc.realtime != nil && uc.realtime.IsUserInRoom(notification.ChatID, notification.UserID) {
		// The user is looking at this chat; the message event already
		// reached them, a banner would be noise.
		return
	}

	uc.shownMutex.Lock()
	if uc.shown[notification.ID] {
		uc.shownMutex.Unlock()
		return
	}
	uc.shown[notification.ID] = true
	uc.shownMutex.Unlock()

	if uc.realtime != nil && uc.realtime.IsUserConnected(notification.UserID) {
		uc.realtime.SendEvent(notification.UserID, "notification", notification)
		return
	}

	if uc.push == nil {
		return
	}

	user, err := uc.userRepo.GetByID(ctx, notification.UserID)
	if err != nil {
		log.Printf("Notification push skipped, user %s lookup failed: %v", notification.UserID, err)
		return
	}
	if len(user.DeviceTokens) == 0 {
		return
	}

	data := map[string]string{
		"type":   notification.Type,
		"ref_id": notification.RefID,
	}
	if notification.ChatID != "" {
		data["chat_id"] = notification.ChatID
	}

	if err := uc.push.SendToTokens(ctx, user.DeviceTokens, notification.Title, notification.Body, data); err != nil {
		log.Printf("Notification push failed for user %s: %v", notification.UserID, err)
	}
}

// List returns the user's stored notifications, newest first.
func (uc *NotificationUseCase) List(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, int64, error) {
	return uc.notificationRepo.ListByUser(ctx, userID, limit, offset)
}

// MarkRead flags one notification as read.
func (uc *NotificationUseCase) MarkRead(ctx context.Context, userID, notificationID string) error {
	return uc.notificationRepo.MarkRead(ctx, userID, notificationID)
}
