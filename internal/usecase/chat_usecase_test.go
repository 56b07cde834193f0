package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blazerider/internal/domain/entity"
	"blazerider/pkg/errors"
)

// fakeChatStore implements ChatRepository and ChatIndexRepository in memory.
// AppendMessage applies the whole batch or nothing, mirroring the
// transactional repository.
type fakeChatStore struct {
	mu       sync.Mutex
	chats    map[string]*entity.Chat
	messages map[string]map[string]*entity.Message
	order    map[string][]string
	entries  map[string]*entity.ChatIndexEntry
}

func newFakeChatStore() *fakeChatStore {
	return &fakeChatStore{
		chats:    make(map[string]*entity.Chat),
		messages: make(map[string]map[string]*entity.Message),
		order:    make(map[string][]string),
		entries:  make(map[string]*entity.ChatIndexEntry),
	}
}

func indexKey(userID, chatID string) string {
	return userID + "|" + chatID
}

func (s *fakeChatStore) CreateMerged(ctx context.Context, chat *entity.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.chats[chat.ID]; ok {
		// Merge semantics: the first creation wins, racing creations
		// converge without clobbering.
		_ = existing
		return nil
	}
	copied := *chat
	s.chats[chat.ID] = &copied
	return nil
}

func (s *fakeChatStore) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[id]
	if !ok {
		return nil, errors.NotFound("Chat", nil)
	}
	copied := *chat
	return &copied, nil
}

func (s *fakeChatStore) AppendMessage(ctx context.Context, chat *entity.Chat, message *entity.Message, indexUpdates []*entity.ChatIndexUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.chats[chat.ID]
	if !ok {
		return errors.NotFound("Chat", nil)
	}

	message.CreatedAt = time.Now()
	if s.messages[chat.ID] == nil {
		s.messages[chat.ID] = make(map[string]*entity.Message)
	}
	s.messages[chat.ID][message.ID] = message
	s.order[chat.ID] = append(s.order[chat.ID], message.ID)

	stored.LastMessageID = message.ID
	stored.LastMessage = message.Content
	stored.LastMessageType = message.Type
	stored.LastMessageSenderID = message.SenderID
	stored.LastMessageAt = message.CreatedAt
	if stored.Typing == nil {
		stored.Typing = map[string]bool{}
	}
	stored.Typing[message.SenderID] = false

	for _, update := range indexUpdates {
		s.applyLocked(update)
	}
	return nil
}

func (s *fakeChatStore) applyLocked(update *entity.ChatIndexUpdate) {
	key := indexKey(update.UserID, update.ChatID)
	entry, ok := s.entries[key]
	if !ok {
		entry = &entity.ChatIndexEntry{UserID: update.UserID, ChatID: update.ChatID}
		s.entries[key] = entry
	}
	if update.ResetUnread {
		entry.UnreadCount = 0
	} else {
		entry.UnreadCount += update.UnreadDelta
	}
	if update.LastMessageID != "" {
		entry.LastMessageID = update.LastMessageID
		entry.LastMessage = update.LastMessage
		entry.LastMessageType = update.LastMessageType
		entry.LastMessageSenderID = update.LastMessageSenderID
		entry.LastMessageAt = update.LastMessageAt
	}
	entry.UpdatedAt = time.Now()
}

func (s *fakeChatStore) GetMessageByID(ctx context.Context, chatID, messageID string) (*entity.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	message, ok := s.messages[chatID][messageID]
	if !ok {
		return nil, errors.NotFound("Message", nil)
	}
	copied := *message
	return &copied, nil
}

func (s *fakeChatStore) GetMessagesByChat(ctx context.Context, chatID string, limit, offset int) ([]*entity.Message, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.order[chatID]
	var result []*entity.Message
	for i := len(ids) - 1; i >= 0; i-- {
		copied := *s.messages[chatID][ids[i]]
		result = append(result, &copied)
	}
	return result, int64(len(result)), nil
}

func (s *fakeChatStore) UpdateMessage(ctx context.Context, chatID string, message *entity.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages[chatID][message.ID]; !ok {
		return errors.NotFound("Message", nil)
	}
	copied := *message
	s.messages[chatID][message.ID] = &copied
	return nil
}

func (s *fakeChatStore) AddDeletedFor(ctx context.Context, chatID, messageID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	message, ok := s.messages[chatID][messageID]
	if !ok {
		return errors.NotFound("Message", nil)
	}
	for _, id := range message.DeletedFor {
		if id == userID {
			return nil
		}
	}
	message.DeletedFor = append(message.DeletedFor, userID)
	return nil
}

func (s *fakeChatStore) UpdateMessageReadStatus(ctx context.Context, chatID, messageID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if message, ok := s.messages[chatID][messageID]; ok {
		message.Status = entity.MessageStatusRead
	}
	return nil
}

func (s *fakeChatStore) SetTyping(ctx context.Context, chatID, userID string, typing bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[chatID]
	if !ok {
		return errors.NotFound("Chat", nil)
	}
	if chat.Typing == nil {
		chat.Typing = map[string]bool{}
	}
	chat.Typing[userID] = typing
	return nil
}

func (s *fakeChatStore) Ensure(ctx context.Context, entry *entity.ChatIndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := indexKey(entry.UserID, entry.ChatID)
	if existing, ok := s.entries[key]; ok {
		existing.ChatType = entry.ChatType
		existing.GroupName = entry.GroupName
		existing.OtherUserID = entry.OtherUserID
		return nil
	}
	copied := *entry
	copied.UnreadCount = 0
	s.entries[key] = &copied
	return nil
}

func (s *fakeChatStore) Get(ctx context.Context, userID, chatID string) (*entity.ChatIndexEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[indexKey(userID, chatID)]
	if !ok {
		return nil, errors.NotFound("Chat index entry", nil)
	}
	copied := *entry
	return &copied, nil
}

func (s *fakeChatStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.ChatIndexEntry, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*entity.ChatIndexEntry
	for _, entry := range s.entries {
		if entry.UserID == userID {
			copied := *entry
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LastMessageAt.After(result[j].LastMessageAt)
	})
	return result, int64(len(result)), nil
}

func (s *fakeChatStore) ResetUnread(ctx context.Context, userID, chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[indexKey(userID, chatID)]; ok {
		entry.UnreadCount = 0
	}
	return nil
}

func (s *fakeChatStore) Apply(ctx context.Context, update *entity.ChatIndexUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(update)
	return nil
}

func (s *fakeChatStore) Remove(ctx context.Context, userID, chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, indexKey(userID, chatID))
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newFakeUserRepo(ids ...string) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, id := range ids {
		repo.users[id] = &entity.User{
			ID:       id,
			Username: "user-" + id,
			Email:    id + "@example.com",
			Role:     "rider",
		}
	}
	return repo
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) AddDeviceToken(ctx context.Context, userID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[userID]; ok {
		user.DeviceTokens = append(user.DeviceTokens, token)
	}
	return nil
}

func (r *fakeUserRepo) ListByVerificationStatus(ctx context.Context, status string, limit, offset int) ([]*entity.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.User
	for _, user := range r.users {
		if user.VerificationStatus == status {
			copied := *user
			result = append(result, &copied)
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeUserRepo) CountByVerificationStatus(ctx context.Context, status string) (int64, error) {
	users, total, _ := r.ListByVerificationStatus(ctx, status, 0, 0)
	_ = users
	return total, nil
}

func (r *fakeUserRepo) ListCreatedAfter(ctx context.Context, since time.Time) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.User
	for _, user := range r.users {
		if !user.CreatedAt.Before(since) {
			copied := *user
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *fakeUserRepo) ListVerifiedRecent(ctx context.Context) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.User
	for _, user := range r.users {
		if user.VerifiedRecent {
			copied := *user
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *fakeUserRepo) ClearVerifiedRecent(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		user.VerifiedRecent = false
	}
	return nil
}

// fakeRealtime records events instead of delivering them.
type fakeRealtime struct {
	mu        sync.Mutex
	events    []string
	inRoom    map[string]bool
	connected map[string]bool
}

func newFakeRealtime() *fakeRealtime {
	return &fakeRealtime{
		inRoom:    make(map[string]bool),
		connected: make(map[string]bool),
	}
}

func (f *fakeRealtime) SendEvent(userID, eventType string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, fmt.Sprintf("%s:%s", userID, eventType))
}

func (f *fakeRealtime) SendToChatRoom(chatID, eventType string, payload interface{}, excludeUserID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, fmt.Sprintf("room %s:%s", chatID, eventType))
}

func (f *fakeRealtime) IsUserInRoom(chatID, userID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inRoom[indexKey(userID, chatID)]
}

func (f *fakeRealtime) IsUserConnected(userID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected[userID]
}

func newChatFixture(userIDs ...string) (*ChatUseCase, *fakeChatStore, *fakeUserRepo) {
	store := newFakeChatStore()
	users := newFakeUserRepo(userIDs...)
	uc := NewChatUseCase(store, store, users, newFakeRealtime(), nil)
	return uc, store, users
}

func TestStartDirectChatConvergesOnSameID(t *testing.T) {
	uc, store, _ := newChatFixture("alice", "bob")
	ctx := context.Background()

	first, err := uc.StartDirectChat(ctx, "alice", StartDirectChatInput{RecipientID: "bob"})
	require.NoError(t, err)

	second, err := uc.StartDirectChat(ctx, "bob", StartDirectChatInput{RecipientID: "alice"})
	require.NoError(t, err)

	assert.Equal(t, first.Chat.ID, second.Chat.ID)
	assert.Equal(t, entity.DirectChatID("alice", "bob"), first.Chat.ID)
	assert.Len(t, store.chats, 1)

	aliceEntry, err := store.Get(ctx, "alice", first.Chat.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, aliceEntry.UnreadCount)
	assert.Equal(t, "bob", aliceEntry.OtherUserID)
}

func TestStartDirectChatRejectsSelf(t *testing.T) {
	uc, _, _ := newChatFixture("alice")

	_, err := uc.StartDirectChat(context.Background(), "alice", StartDirectChatInput{RecipientID: "alice"})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestSendMessageFansOutToAllInboxes(t *testing.T) {
	uc, store, _ := newChatFixture("alice", "bob")
	ctx := context.Background()

	chat, err := uc.StartDirectChat(ctx, "alice", StartDirectChatInput{RecipientID: "bob"})
	require.NoError(t, err)

	message, err := uc.SendMessage(ctx, "alice", SendMessageInput{ChatID: chat.Chat.ID, Content: "hello"})
	require.NoError(t, err)

	bobEntry, err := store.Get(ctx, "bob", chat.Chat.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, bobEntry.UnreadCount)
	assert.Equal(t, "hello", bobEntry.LastMessage)
	assert.Equal(t, message.Message.ID, bobEntry.LastMessageID)

	aliceEntry, err := store.Get(ctx, "alice", chat.Chat.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, aliceEntry.UnreadCount)
	assert.Equal(t, "hello", aliceEntry.LastMessage)

	stored, err := store.GetByID(ctx, chat.Chat.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", stored.LastMessage)
	assert.Equal(t, "alice", stored.LastMessageSenderID)
}

func TestSendMessageUnreadAccumulates(t *testing.T) {
	uc, store, _ := newChatFixture("alice", "bob")
	ctx := context.Background()

	chat, err := uc.StartDirectChat(ctx, "alice", StartDirectChatInput{RecipientID: "bob"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := uc.SendMessage(ctx, "alice", SendMessageInput{ChatID: chat.Chat.ID, Content: fmt.Sprintf("msg %d", i)})
		require.NoError(t, err)
	}

	bobEntry, err := store.Get(ctx, "bob", chat.Chat.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, bobEntry.UnreadCount)

	require.NoError(t, uc.MarkChatAsRead(ctx, chat.Chat.ID, "bob"))

	bobEntry, err = store.Get(ctx, "bob", chat.Chat.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, bobEntry.UnreadCount)
}

func TestSendMessageRejectsNonParticipant(t *testing.T) {
	uc, _, _ := newChatFixture("alice", "bob", "mallory")
	ctx := context.Background()

	chat, err := uc.StartDirectChat(ctx, "alice", StartDirectChatInput{RecipientID: "bob"})
	require.NoError(t, err)

	_, err = uc.SendMessage(ctx, "mallory", SendMessageInput{ChatID: chat.Chat.ID, Content: "hi"})
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestSendMessageClearsSenderTyping(t *testing.T) {
	uc, store, _ := newChatFixture("alice", "bob")
	ctx := context.Background()

	chat, err := uc.StartDirectChat(ctx, "alice", StartDirectChatInput{RecipientID: "bob"})
	require.NoError(t, err)

	require.NoError(t, uc.SetTyping(ctx, chat.Chat.ID, "alice", true))

	stored, _ := store.GetByID(ctx, chat.Chat.ID)
	assert.True(t, stored.Typing["alice"])

	_, err = uc.SendMessage(ctx, "alice", SendMessageInput{ChatID: chat.Chat.ID, Content: "done typing"})
	require.NoError(t, err)

	stored, _ = store.GetByID(ctx, chat.Chat.ID)
	assert.False(t, stored.Typing["alice"])
}

func TestUnsendMessageAuthorOnlyAndIdempotent(t *testing.T) {
	uc, store, _ := newChatFixture("alice", "bob")
	ctx := context.Background()

	chat, err := uc.StartDirectChat(ctx, "alice", StartDirectChatInput{RecipientID: "bob"})
	require.NoError(t, err)

	sent, err := uc.SendMessage(ctx, "alice", SendMessageInput{ChatID: chat.Chat.ID, Content: "oops"})
	require.NoError(t, err)

	_, err = uc.UnsendMessage(ctx, chat.Chat.ID, sent.Message.ID, "bob")
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	unsent, err := uc.UnsendMessage(ctx, chat.Chat.ID, sent.Message.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, entity.UnsentPlaceholder, unsent.Content)
	assert.Equal(t, entity.MessageTypeUnsent, unsent.Type)

	// Second unsend succeeds without change.
	again, err := uc.UnsendMessage(ctx, chat.Chat.ID, sent.Message.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, entity.UnsentPlaceholder, again.Content)

	// The inbox preview no longer leaks the original text.
	bobEntry, err := store.Get(ctx, "bob", chat.Chat.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.UnsentPlaceholder, bobEntry.LastMessage)
}

func TestDeleteForMeHidesOnlyForDeleter(t *testing.T) {
	uc, _, _ := newChatFixture("alice", "bob")
	ctx := context.Background()

	chat, err := uc.StartDirectChat(ctx, "alice", StartDirectChatInput{RecipientID: "bob"})
	require.NoError(t, err)

	sent, err := uc.SendMessage(ctx, "alice", SendMessageInput{ChatID: chat.Chat.ID, Content: "secret"})
	require.NoError(t, err)

	require.NoError(t, uc.DeleteMessageForMe(ctx, chat.Chat.ID, sent.Message.ID, "bob"))

	bobView, _, err := uc.GetMessages(ctx, "bob", chat.Chat.ID, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, bobView)

	aliceView, _, err := uc.GetMessages(ctx, "alice", chat.Chat.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, aliceView, 1)
	assert.Equal(t, "secret", aliceView[0].Content)
}

func TestClearTypingOnDisconnect(t *testing.T) {
	uc, store, _ := newChatFixture("alice", "bob")
	ctx := context.Background()

	chat, err := uc.StartDirectChat(ctx, "alice", StartDirectChatInput{RecipientID: "bob"})
	require.NoError(t, err)

	require.NoError(t, uc.SetTyping(ctx, chat.Chat.ID, "alice", true))

	uc.ClearTypingOnDisconnect("alice", []string{chat.Chat.ID})

	stored, _ := store.GetByID(ctx, chat.Chat.ID)
	assert.False(t, stored.Typing["alice"])
}

func TestCreateGroupChat(t *testing.T) {
	uc, store, _ := newChatFixture("alice", "bob", "carol")
	ctx := context.Background()

	chat, err := uc.CreateGroupChat(ctx, "alice", CreateGroupChatInput{
		Name:      "Sunday ride",
		MemberIDs: []string{"bob", "carol"},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ChatTypeGroup, chat.Chat.Type)
	assert.Len(t, chat.Chat.Participants, 3)

	sent, err := uc.SendMessage(ctx, "alice", SendMessageInput{ChatID: chat.Chat.ID, Content: "everyone in?"})
	require.NoError(t, err)
	_ = sent

	for _, member := range []string{"bob", "carol"} {
		entry, err := store.Get(ctx, member, chat.Chat.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, entry.UnreadCount, member)
	}
}
