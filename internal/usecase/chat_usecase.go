package usecase

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"blazerider/internal/domain/entity"
	"blazerider/internal/domain/repository"
	"blazerider/internal/infrastructure/ratelimit"
	"blazerider/pkg/errors"
)

type ChatUseCase struct {
	chatRepo      repository.ChatRepository
	chatIndexRepo repository.ChatIndexRepository
	userRepo      repository.UserRepository
	realtime      Realtime
	notifier      *NotificationUseCase
	rateLimiter   *ratelimit.RateLimiter
}

func NewChatUseCase(
	chatRepo repository.ChatRepository,
	chatIndexRepo repository.ChatIndexRepository,
	userRepo repository.UserRepository,
	realtime Realtime,
	notifier *NotificationUseCase,
) *ChatUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &ChatUseCase{
		chatRepo:      chatRepo,
		chatIndexRepo: chatIndexRepo,
		userRepo:      userRepo,
		realtime:      realtime,
		notifier:      notifier,
		rateLimiter:   rateLimiter,
	}
}

type StartDirectChatInput struct {
	RecipientID    string
	InitialMessage string
}

type CreateGroupChatInput struct {
	Name           string
	ImageURL       string
	MemberIDs      []string
	InitialMessage string
}

type SendMessageInput struct {
	ChatID  string
	Content string
	Type    string // "text", "image", "file"
}

type ChatResponse struct {
	*entity.Chat
	OtherUser *entity.User `json:"other_user,omitempty"`
}

type MessageResponse struct {
	*entity.Message
	Sender *entity.User `json:"sender,omitempty"`
}

// StartDirectChat opens (or reopens) the one conversation between the caller
// and the recipient. The chat id is derived from the sorted user pair, so
// both sides converge on the same document no matter who starts first.
func (uc *ChatUseCase) StartDirectChat(ctx context.Context, userID string, input StartDirectChatInput) (*ChatResponse, error) {
	allowed, waitTime := uc.rateLimiter.Allow(userID, "create_chat")
	if !allowed {
		log.Printf("StartDirectChat Rate Limited: User %s must wait %v", userID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before creating another chat", waitTime)
	}

	if userID == input.RecipientID {
		log.Printf("StartDirectChat Error: User %s attempted to chat with themselves", userID)
		return nil, errors.BadRequest("You cannot create a chat with yourself", nil)
	}

	recipient, err := uc.userRepo.GetByID(ctx, input.RecipientID)
	if err != nil {
		log.Printf("StartDirectChat Error: Recipient %s not found: %v", input.RecipientID, err)
		return nil, errors.NotFound("Recipient not found", err)
	}

	chatID := entity.DirectChatID(userID, input.RecipientID)
	now := time.Now()

	chat := &entity.Chat{
		ID:           chatID,
		Type:         entity.ChatTypeDirect,
		Participants: []string{userID, input.RecipientID},
		Members: []entity.ChatMember{
			{UserID: userID, Role: "member", JoinedAt: now},
			{UserID: input.RecipientID, Role: "member", JoinedAt: now},
		},
		Typing:    map[string]bool{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Merge write: if the recipient raced us here, the existing document
	// survives and both creations land on the same chat.
	if err := uc.chatRepo.CreateMerged(ctx, chat); err != nil {
		log.Printf("StartDirectChat Error: Failed to create chat %s: %v", chatID, err)
		return nil, err
	}

	if err := uc.ensureIndexEntries(ctx, chat); err != nil {
		return nil, err
	}

	if input.InitialMessage != "" {
		if _, err := uc.SendMessage(ctx, userID, SendMessageInput{
			ChatID:  chatID,
			Content: input.InitialMessage,
			Type:    entity.MessageTypeText,
		}); err != nil {
			log.Printf("StartDirectChat Error: Failed to send initial message for chat %s: %v", chatID, err)
			return nil, err
		}
	}

	stored, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	return &ChatResponse{Chat: stored, OtherUser: recipient}, nil
}

// CreateGroupChat creates a named group with a random id. Unlike direct
// chats there is no deterministic identity to converge on.
func (uc *ChatUseCase) CreateGroupChat(ctx context.Context, userID string, input CreateGroupChatInput) (*ChatResponse, error) {
	allowed, waitTime := uc.rateLimiter.Allow(userID, "create_chat")
	if !allowed {
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before creating another chat", waitTime)
	}

	if len(input.MemberIDs) == 0 {
		return nil, errors.BadRequest("A group chat needs at least one other member", nil)
	}

	now := time.Now()
	participants := []string{userID}
	members := []entity.ChatMember{{UserID: userID, Role: "owner", JoinedAt: now}}
	for _, memberID := range input.MemberIDs {
		if memberID == userID {
			continue
		}
		if _, err := uc.userRepo.GetByID(ctx, memberID); err != nil {
			log.Printf("CreateGroupChat Error: Member %s not found: %v", memberID, err)
			return nil, errors.NotFound("Group member not found", err)
		}
		participants = append(participants, memberID)
		members = append(members, entity.ChatMember{UserID: memberID, Role: "member", JoinedAt: now})
	}

	chat := &entity.Chat{
		ID:            uuid.New().String(),
		Type:          entity.ChatTypeGroup,
		Participants:  participants,
		Members:       members,
		GroupName:     input.Name,
		GroupImageURL: input.ImageURL,
		CreatedBy:     userID,
		Typing:        map[string]bool{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := uc.chatRepo.CreateMerged(ctx, chat); err != nil {
		log.Printf("CreateGroupChat Error: Failed to create chat: %v", err)
		return nil, err
	}

	if err := uc.ensureIndexEntries(ctx, chat); err != nil {
		return nil, err
	}

	if input.InitialMessage != "" {
		if _, err := uc.SendMessage(ctx, userID, SendMessageInput{
			ChatID:  chat.ID,
			Content: input.InitialMessage,
			Type:    entity.MessageTypeText,
		}); err != nil {
			return nil, err
		}
	}

	return &ChatResponse{Chat: chat}, nil
}

func (uc *ChatUseCase) ensureIndexEntries(ctx context.Context, chat *entity.Chat) error {
	for _, memberID := range chat.Participants {
		entry := &entity.ChatIndexEntry{
			UserID:        memberID,
			ChatID:        chat.ID,
			ChatType:      chat.Type,
			GroupName:     chat.GroupName,
			GroupImageURL: chat.GroupImageURL,
			UpdatedAt:     time.Now(),
		}
		if chat.Type == entity.ChatTypeDirect {
			for _, other := range chat.Participants {
				if other != memberID {
					entry.OtherUserID = other
				}
			}
		}
		if err := uc.chatIndexRepo.Ensure(ctx, entry); err != nil {
			log.Printf("Chat index ensure failed for user %s chat %s: %v", memberID, chat.ID, err)
			return err
		}
	}
	return nil
}

// SendMessage appends a message and fans it out. The message document, the
// chat's last-message snapshot and every member's inbox entry commit in one
// atomic write; either everything lands or nothing does.
func (uc *ChatUseCase) SendMessage(ctx context.Context, userID string, input SendMessageInput) (*MessageResponse, error) {
	allowed, waitTime := uc.rateLimiter.Allow(userID, "send_message")
	if !allowed {
		log.Printf("SendMessage Rate Limited: User %s must wait %v", userID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please slow down", waitTime)
	}

	if input.Content == "" {
		return nil, errors.BadRequest("Message content cannot be empty", nil)
	}

	chat, err := uc.chatRepo.GetByID(ctx, input.ChatID)
	if err != nil {
		log.Printf("SendMessage Error: Chat %s not found: %v", input.ChatID, err)
		return nil, errors.NotFound("Chat not found", err)
	}
	if !chat.HasParticipant(userID) {
		log.Printf("SendMessage Error: User %s is not a participant of chat %s", userID, input.ChatID)
		return nil, errors.Forbidden("You are not a participant of this chat", nil)
	}

	messageType := input.Type
	if messageType == "" {
		messageType = entity.MessageTypeText
	}

	message := &entity.Message{
		ID:       uuid.New().String(),
		ChatID:   chat.ID,
		SenderID: userID,
		Content:  input.Content,
		Type:     messageType,
		Status:   entity.MessageStatusSent,
	}

	now := time.Now()
	indexUpdates := make([]*entity.ChatIndexUpdate, 0, len(chat.Participants))
	for _, memberID := range chat.Participants {
		update := &entity.ChatIndexUpdate{
			UserID:              memberID,
			ChatID:              chat.ID,
			LastMessageID:       message.ID,
			LastMessage:         message.Content,
			LastMessageType:     message.Type,
			LastMessageSenderID: userID,
			LastMessageAt:       now,
		}
		if memberID == userID {
			// The sender is looking at the chat; their counter resets.
			update.ResetUnread = true
		} else {
			update.UnreadDelta = 1
		}
		indexUpdates = append(indexUpdates, update)
	}

	if err := uc.chatRepo.AppendMessage(ctx, chat, message, indexUpdates); err != nil {
		log.Printf("SendMessage Error: Append failed for chat %s: %v", chat.ID, err)
		return nil, err
	}

	sender, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		log.Printf("SendMessage Warning: Sender %s lookup failed: %v", userID, err)
	}

	response := &MessageResponse{Message: message, Sender: sender}

	if uc.realtime != nil {
		uc.realtime.SendToChatRoom(chat.ID, "message", response, userID)
		for _, memberID := range chat.Participants {
			if memberID != userID {
				uc.realtime.SendEvent(memberID, "chat_updated", map[string]interface{}{
					"chat_id":      chat.ID,
					"last_message": message.Content,
					"sender_id":    userID,
				})
			}
		}
	}

	if uc.notifier != nil {
		senderName := userID
		if sender != nil {
			senderName = sender.Username
		}
		for _, memberID := range chat.Participants {
			if memberID == userID {
				continue
			}
			uc.notifier.RelayMessage(ctx, memberID, chat, message, senderName)
		}
	}

	return response, nil
}

// GetMessages returns the messages the caller can still see, newest first.
// Messages the caller deleted for themselves are filtered out; unsent
// messages remain, showing their placeholder.
func (uc *ChatUseCase) GetMessages(ctx context.Context, userID, chatID string, limit, offset int) ([]*entity.Message, int64, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, 0, errors.NotFound("Chat not found", err)
	}
	if !chat.HasParticipant(userID) {
		return nil, 0, errors.Forbidden("You are not a participant of this chat", nil)
	}

	messages, total, err := uc.chatRepo.GetMessagesByChat(ctx, chatID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	visible := make([]*entity.Message, 0, len(messages))
	for _, message := range messages {
		if message.VisibleTo(userID) {
			visible = append(visible, message)
		}
	}

	return visible, total, nil
}

// GetUserChats lists the caller's inbox, most recently active first.
func (uc *ChatUseCase) GetUserChats(ctx context.Context, userID string, limit, offset int) ([]*entity.ChatIndexEntry, int64, error) {
	return uc.chatIndexRepo.ListByUser(ctx, userID, limit, offset)
}

// MarkChatAsRead zeroes the caller's unread counter for the chat.
func (uc *ChatUseCase) MarkChatAsRead(ctx context.Context, chatID, userID string) error {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return errors.NotFound("Chat not found", err)
	}
	if !chat.HasParticipant(userID) {
		return errors.Forbidden("You are not a participant of this chat", nil)
	}

	return uc.chatIndexRepo.ResetUnread(ctx, userID, chatID)
}

// MarkMessageAsRead flags a single message read and emits a read receipt to
// the room. Marking an already-read message is a no-op.
func (uc *ChatUseCase) MarkMessageAsRead(ctx context.Context, chatID, messageID, userID string) error {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return errors.NotFound("Chat not found", err)
	}
	if !chat.HasParticipant(userID) {
		return errors.Forbidden("You are not a participant of this chat", nil)
	}

	if err := uc.chatRepo.UpdateMessageReadStatus(ctx, chatID, messageID, userID); err != nil {
		return err
	}

	if uc.realtime != nil {
		uc.realtime.SendToChatRoom(chatID, "read_receipt", map[string]interface{}{
			"message_id": messageID,
			"reader_id":  userID,
		}, userID)
	}

	return nil
}

// UnsendMessage retracts a message for everyone. Only the author can unsend,
// and unsending an already-unsent message succeeds without change.
func (uc *ChatUseCase) UnsendMessage(ctx context.Context, chatID, messageID, userID string) (*entity.Message, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, errors.NotFound("Chat not found", err)
	}
	if !chat.HasParticipant(userID) {
		return nil, errors.Forbidden("You are not a participant of this chat", nil)
	}

	message, err := uc.chatRepo.GetMessageByID(ctx, chatID, messageID)
	if err != nil {
		return nil, errors.NotFound("Message not found", err)
	}
	if message.SenderID != userID {
		log.Printf("UnsendMessage Error: User %s tried to unsend message %s owned by %s", userID, messageID, message.SenderID)
		return nil, errors.Forbidden("Only the sender can unsend a message", nil)
	}
	if message.IsUnsent() {
		return message, nil
	}

	message.Content = entity.UnsentPlaceholder
	message.Type = entity.MessageTypeUnsent

	if err := uc.chatRepo.UpdateMessage(ctx, chatID, message); err != nil {
		log.Printf("UnsendMessage Error: Update failed for message %s: %v", messageID, err)
		return nil, err
	}

	// If this was the latest message, the chat and inbox previews still show
	// the original text; rewrite them to the placeholder.
	if chat.LastMessageID == messageID {
		for _, memberID := range chat.Participants {
			update := &entity.ChatIndexUpdate{
				UserID:              memberID,
				ChatID:              chatID,
				LastMessageID:       messageID,
				LastMessage:         entity.UnsentPlaceholder,
				LastMessageType:     entity.MessageTypeUnsent,
				LastMessageSenderID: message.SenderID,
				LastMessageAt:       chat.LastMessageAt,
			}
			if err := uc.chatIndexRepo.Apply(ctx, update); err != nil {
				log.Printf("UnsendMessage Warning: Index preview update failed for user %s: %v", memberID, err)
			}
		}
	}

	if uc.realtime != nil {
		uc.realtime.SendToChatRoom(chatID, "message_unsent", map[string]interface{}{
			"message_id": messageID,
			"chat_id":    chatID,
		}, "")
	}

	return message, nil
}

// DeleteMessageForMe hides a message from the caller only. Other members'
// views are untouched.
func (uc *ChatUseCase) DeleteMessageForMe(ctx context.Context, chatID, messageID, userID string) error {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return errors.NotFound("Chat not found", err)
	}
	if !chat.HasParticipant(userID) {
		return errors.Forbidden("You are not a participant of this chat", nil)
	}

	if _, err := uc.chatRepo.GetMessageByID(ctx, chatID, messageID); err != nil {
		return errors.NotFound("Message not found", err)
	}

	return uc.chatRepo.AddDeletedFor(ctx, chatID, messageID, userID)
}

// SetTyping records the caller's typing flag. Failures are surfaced but the
// flag is advisory; a stale value is corrected by the next message append or
// disconnect sweep.
func (uc *ChatUseCase) SetTyping(ctx context.Context, chatID, userID string, typing bool) error {
	allowed, _ := uc.rateLimiter.Allow(userID, "typing")
	if !allowed {
		// Dropped typing events are invisible; do not error the socket.
		return nil
	}

	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return errors.NotFound("Chat not found", err)
	}
	if !chat.HasParticipant(userID) {
		return errors.Forbidden("You are not a participant of this chat", nil)
	}

	return uc.chatRepo.SetTyping(ctx, chatID, userID, typing)
}

// CanAccessChat reports whether the user participates in the chat. Used by
// the socket layer before joining rooms.
func (uc *ChatUseCase) CanAccessChat(ctx context.Context, chatID, userID string) bool {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return false
	}
	return chat.HasParticipant(userID)
}

// ClearTypingOnDisconnect clears the user's typing flag in every chat they
// had open. Runs best-effort from the socket disconnect hook.
func (uc *ChatUseCase) ClearTypingOnDisconnect(userID string, chatIDs []string) {
	ctx := context.Background()
	for _, chatID := range chatIDs {
		if err := uc.chatRepo.SetTyping(ctx, chatID, userID, false); err != nil {
			log.Printf("Typing cleanup failed for user %s in chat %s: %v", userID, chatID, err)
		}
	}
}
