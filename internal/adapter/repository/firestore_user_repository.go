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

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) Create(ctx context.Context, user *entity.User) error {
	_, err := r.client.Collection("users").Doc(user.ID).Set(ctx, user)
	return err
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	doc, err := r.client.Collection("users").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("User", nil)
		}
		return nil, err
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *firestoreUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := r.client.Collection("users").Where("email", "==", email).Limit(1)
	iter := query.Documents(ctx)
	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("User", nil)
		}
		return nil, err
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *firestoreUserRepository) Update(ctx context.Context, user *entity.User) error {
	// Merge a map instead of the struct so empty fields never clobber
	// existing data.
	updateData := map[string]interface{}{
		"username":           user.Username,
		"phone":              user.Phone,
		"bio":                user.Bio,
		"avatarURL":          user.AvatarURL,
		"verificationStatus": user.VerificationStatus,
		"onlineStatus":       user.OnlineStatus,
		"updatedAt":          time.Now(),
	}

	cleanUpdateData := map[string]interface{}{
		// Booleans always written; the canonical verified flag must be able
		// to flip in both directions.
		"verified":       user.Verified,
		"verifiedRecent": user.VerifiedRecent,
	}
	for key, value := range updateData {
		if strVal, ok := value.(string); ok && strVal == "" {
			continue
		}
		if timeVal, ok := value.(time.Time); ok && timeVal.IsZero() {
			continue
		}
		cleanUpdateData[key] = value
	}

	_, err := r.client.Collection("users").Doc(user.ID).Set(ctx, cleanUpdateData, firestore.MergeAll)
	if err != nil {
		log.Printf("Firestore user update error: %v", err)
		return err
	}

	return nil
}

func (r *firestoreUserRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection("users").Doc(id).Delete(ctx)
	return err
}

func (r *firestoreUserRepository) AddDeviceToken(ctx context.Context, userID, token string) error {
	_, err := r.client.Collection("users").Doc(userID).Update(ctx, []firestore.Update{
		{Path: "deviceTokens", Value: firestore.ArrayUnion(token)},
	})
	if err != nil {
		return errors.Internal("Failed to register device token", err)
	}
	return nil
}

func (r *firestoreUserRepository) ListByVerificationStatus(ctx context.Context, verificationStatus string, limit, offset int) ([]*entity.User, int64, error) {
	query := r.client.Collection("users").Where("verificationStatus", "==", verificationStatus).OrderBy("createdAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while listing users by status %s: %v", verificationStatus, err)
		return nil, 0, errors.Internal("Failed to list users", err)
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

	var users []*entity.User
	for i := start; i < end; i++ {
		var user entity.User
		if err := allDocs[i].DataTo(&user); err != nil {
			continue // Skip malformed documents
		}
		users = append(users, &user)
	}

	return users, total, nil
}

func (r *firestoreUserRepository) CountByVerificationStatus(ctx context.Context, verificationStatus string) (int64, error) {
	docs, err := r.client.Collection("users").Where("verificationStatus", "==", verificationStatus).Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to count users", err)
	}
	return int64(len(docs)), nil
}

func (r *firestoreUserRepository) ListCreatedAfter(ctx context.Context, since time.Time) ([]*entity.User, error) {
	query := r.client.Collection("users").Where("createdAt", ">=", since).OrderBy("createdAt", firestore.Asc)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to list recent users", err)
	}

	var users []*entity.User
	for _, doc := range docs {
		var user entity.User
		if err := doc.DataTo(&user); err != nil {
			continue
		}
		users = append(users, &user)
	}

	return users, nil
}

func (r *firestoreUserRepository) ListVerifiedRecent(ctx context.Context) ([]*entity.User, error) {
	docs, err := r.client.Collection("users").Where("verifiedRecent", "==", true).Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to list recently verified users", err)
	}

	var users []*entity.User
	for _, doc := range docs {
		var user entity.User
		if err := doc.DataTo(&user); err != nil {
			continue
		}
		users = append(users, &user)
	}

	return users, nil
}

func (r *firestoreUserRepository) ClearVerifiedRecent(ctx context.Context) error {
	docs, err := r.client.Collection("users").Where("verifiedRecent", "==", true).Documents(ctx).GetAll()
	if err != nil {
		return errors.Internal("Failed to list recently verified users", err)
	}

	for _, doc := range docs {
		if _, err := doc.Ref.Update(ctx, []firestore.Update{
			{Path: "verifiedRecent", Value: false},
		}); err != nil {
			log.Printf("ClearVerifiedRecent: failed for user %s: %v", doc.Ref.ID, err)
		}
	}

	return nil
}
