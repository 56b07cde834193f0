package repository

import (
	"context"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"blazerider/internal/domain/entity"
	"blazerider/internal/domain/repository"
	"blazerider/pkg/errors"
)

type firestoreChatIndexRepository struct {
	client *firestore.Client
}

func NewFirestoreChatIndexRepository(client *firestore.Client) repository.ChatIndexRepository {
	return &firestoreChatIndexRepository{
		client: client,
	}
}

func (r *firestoreChatIndexRepository) itemRef(userID, chatID string) *firestore.DocumentRef {
	return r.client.Collection("userChats").Doc(userID).Collection("items").Doc(chatID)
}

func (r *firestoreChatIndexRepository) Ensure(ctx context.Context, entry *entity.ChatIndexEntry) error {
	ref := r.itemRef(entry.UserID, entry.ChatID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}

		if err == nil && doc.Exists() {
			// Merge chat metadata only; never clobber the unread counter.
			return tx.Set(ref, map[string]interface{}{
				"chatType":      entry.ChatType,
				"groupName":     entry.GroupName,
				"groupImageURL": entry.GroupImageURL,
				"otherUserId":   entry.OtherUserID,
				"updatedAt":     firestore.ServerTimestamp,
			}, firestore.MergeAll)
		}

		entry.UnreadCount = 0
		return tx.Set(ref, entry)
	})
	if err != nil {
		return errors.Internal("Failed to initialize chat index entry", err)
	}

	return nil
}

func (r *firestoreChatIndexRepository) Get(ctx context.Context, userID, chatID string) (*entity.ChatIndexEntry, error) {
	doc, err := r.itemRef(userID, chatID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Chat index entry", nil)
		}
		return nil, errors.Internal("Failed to get chat index entry", err)
	}

	var entry entity.ChatIndexEntry
	if err := doc.DataTo(&entry); err != nil {
		return nil, errors.Internal("Failed to parse chat index entry", err)
	}

	return &entry, nil
}

func (r *firestoreChatIndexRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.ChatIndexEntry, int64, error) {
	query := r.client.Collection("userChats").Doc(userID).Collection("items").OrderBy("lastMessageAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while fetching chat index for user %s: %v", userID, err)
		return nil, 0, errors.Internal("Failed to fetch chat index", err)
	}

	total := int64(len(allDocs))

	start := offset
	end := len(allDocs)
	if limit > 0 {
		end = start + limit
		if end > len(allDocs) {
			end = len(allDocs)
		}
	}
	if start > len(allDocs) {
		start = len(allDocs)
	}

	var entries []*entity.ChatIndexEntry
	for i := start; i < end; i++ {
		var entry entity.ChatIndexEntry
		if err := allDocs[i].DataTo(&entry); err != nil {
			log.Printf("Error parsing chat index entry for user %s: %v", userID, err)
			continue // Skip bad data instead of failing
		}
		entries = append(entries, &entry)
	}

	return entries, total, nil
}

func (r *firestoreChatIndexRepository) ResetUnread(ctx context.Context, userID, chatID string) error {
	_, err := r.itemRef(userID, chatID).Set(ctx, map[string]interface{}{
		"unreadCount": 0,
		"updatedAt":   firestore.ServerTimestamp,
	}, firestore.MergeAll)
	if err != nil {
		return errors.Internal("Failed to reset unread count", err)
	}
	return nil
}

func (r *firestoreChatIndexRepository) Apply(ctx context.Context, update *entity.ChatIndexUpdate) error {
	data := map[string]interface{}{
		"userId":              update.UserID,
		"chatId":              update.ChatID,
		"lastMessageId":       update.LastMessageID,
		"lastMessage":         update.LastMessage,
		"lastMessageType":     update.LastMessageType,
		"lastMessageSenderId": update.LastMessageSenderID,
		"lastMessageAt":       firestore.ServerTimestamp,
		"updatedAt":           firestore.ServerTimestamp,
	}
	if update.ResetUnread {
		data["unreadCount"] = 0
	} else if update.UnreadDelta != 0 {
		data["unreadCount"] = firestore.Increment(update.UnreadDelta)
	}

	_, err := r.itemRef(update.UserID, update.ChatID).Set(ctx, data, firestore.MergeAll)
	if err != nil {
		return errors.Internal("Failed to apply chat index update", err)
	}
	return nil
}

func (r *firestoreChatIndexRepository) Remove(ctx context.Context, userID, chatID string) error {
	_, err := r.itemRef(userID, chatID).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to remove chat index entry", err)
	}
	return nil
}
