package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"blazerider/internal/domain/entity"
	"blazerider/internal/domain/repository"
	"blazerider/pkg/errors"
)

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

func (r *firestoreChatRepository) chatRef(chatID string) *firestore.DocumentRef {
	return r.client.Collection("chats").Doc(chatID)
}

func (r *firestoreChatRepository) messageRef(chatID, messageID string) *firestore.DocumentRef {
	return r.chatRef(chatID).Collection("messages").Doc(messageID)
}

func (r *firestoreChatRepository) indexRef(userID, chatID string) *firestore.DocumentRef {
	return r.client.Collection("userChats").Doc(userID).Collection("items").Doc(chatID)
}

func (r *firestoreChatRepository) CreateMerged(ctx context.Context, chat *entity.Chat) error {
	now := time.Now()
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = now
	}
	chat.UpdatedAt = now

	// Merge-write so a concurrent first message from the other party lands on
	// the same document instead of replacing it.
	_, err := r.chatRef(chat.ID).Set(ctx, chat, firestore.MergeAll)
	if err != nil {
		return errors.Internal("Failed to create chat", err)
	}

	return nil
}

func (r *firestoreChatRepository) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	doc, err := r.chatRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Chat", nil)
		}
		return nil, errors.Internal("Failed to get chat", err)
	}

	var chat entity.Chat
	if err := doc.DataTo(&chat); err != nil {
		return nil, errors.Internal("Failed to parse chat data", err)
	}

	return &chat, nil
}

// AppendMessage performs the whole append as one Firestore transaction:
// message document, chat snapshot, and every member's inbox entry commit
// together or not at all.
func (r *firestoreChatRepository) AppendMessage(ctx context.Context, chat *entity.Chat, message *entity.Message, indexUpdates []*entity.ChatIndexUpdate) error {
	chatRef := r.chatRef(chat.ID)
	msgRef := r.messageRef(chat.ID, message.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Set(msgRef, message); err != nil {
			return err
		}

		chatUpdate := map[string]interface{}{
			"lastMessageId":       message.ID,
			"lastMessage":         message.Content,
			"lastMessageType":     message.Type,
			"lastMessageSenderId": message.SenderID,
			"lastMessageAt":       firestore.ServerTimestamp,
			"updatedAt":           firestore.ServerTimestamp,
			"typing": map[string]interface{}{
				message.SenderID: false,
			},
		}
		if err := tx.Set(chatRef, chatUpdate, firestore.MergeAll); err != nil {
			return err
		}

		for _, update := range indexUpdates {
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

			if err := tx.Set(r.indexRef(update.UserID, update.ChatID), data, firestore.MergeAll); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		log.Printf("AppendMessage: transaction failed for chat %s: %v", chat.ID, err)
		return errors.Internal("Failed to append message", err)
	}

	return nil
}

func (r *firestoreChatRepository) GetMessageByID(ctx context.Context, chatID, messageID string) (*entity.Message, error) {
	doc, err := r.messageRef(chatID, messageID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Message", err)
		}
		return nil, errors.Internal("Failed to get message", err)
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}
	return &message, nil
}

func (r *firestoreChatRepository) GetMessagesByChat(ctx context.Context, chatID string, limit, offset int) ([]*entity.Message, int64, error) {
	// Ordered by the server-assigned timestamp, never the client clock.
	query := r.chatRef(chatID).Collection("messages").OrderBy("createdAt", firestore.Desc)

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while counting messages for chat %s: %v", chatID, err)
		return nil, 0, errors.Internal("Failed to count messages for chat", err)
	}
	total := int64(len(countDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var messages []*entity.Message

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Firestore error while iterating messages for chat %s: %v", chatID, err)
			return nil, 0, errors.Internal("Failed to iterate messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			log.Printf("Error parsing message data for chat %s: %v", chatID, err)
			continue // Skip bad data instead of failing the whole page
		}

		messages = append(messages, &message)
	}

	return messages, total, nil
}

func (r *firestoreChatRepository) UpdateMessage(ctx context.Context, chatID string, message *entity.Message) error {
	_, err := r.messageRef(chatID, message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to update message", err)
	}
	return nil
}

func (r *firestoreChatRepository) AddDeletedFor(ctx context.Context, chatID, messageID, userID string) error {
	_, err := r.messageRef(chatID, messageID).Update(ctx, []firestore.Update{
		{Path: "deletedFor", Value: firestore.ArrayUnion(userID)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Message", err)
		}
		return errors.Internal("Failed to delete message for user", err)
	}
	return nil
}

func (r *firestoreChatRepository) UpdateMessageReadStatus(ctx context.Context, chatID, messageID, userID string) error {
	docRef := r.messageRef(chatID, messageID)
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			// Message not found in this chat - silently skip
			log.Printf("UpdateMessageReadStatus: Message %s not found in chat %s (may be old/deleted)", messageID, chatID)
			return nil
		}
		return errors.Internal("Failed to get message", err)
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return errors.Internal("Failed to parse message data", err)
	}

	if message.Status == entity.MessageStatusRead {
		return nil // Already marked as read
	}

	_, err = docRef.Update(ctx, []firestore.Update{
		{Path: "status", Value: entity.MessageStatusRead},
	})
	if err != nil {
		return errors.Internal("Failed to update message read status", err)
	}

	return nil
}

func (r *firestoreChatRepository) SetTyping(ctx context.Context, chatID, userID string, typing bool) error {
	_, err := r.chatRef(chatID).Set(ctx, map[string]interface{}{
		"typing": map[string]interface{}{
			userID: typing,
		},
	}, firestore.MergeAll)
	if err != nil {
		return errors.Internal("Failed to update typing flag", err)
	}
	return nil
}
