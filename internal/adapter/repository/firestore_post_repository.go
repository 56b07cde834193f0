package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"blazerider/internal/domain/entity"
	"blazerider/internal/domain/repository"
	"blazerider/pkg/errors"
)

type firestorePostRepository struct {
	client *firestore.Client
}

func NewFirestorePostRepository(client *firestore.Client) repository.PostRepository {
	return &firestorePostRepository{
		client: client,
	}
}

func (r *firestorePostRepository) postRef(id string) *firestore.DocumentRef {
	return r.client.Collection("posts").Doc(id)
}

func (r *firestorePostRepository) Create(ctx context.Context, post *entity.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}

	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	_, err := r.postRef(post.ID).Set(ctx, post)
	if err != nil {
		return errors.Internal("Failed to create post", err)
	}

	return nil
}

func (r *firestorePostRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	doc, err := r.postRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Post", nil)
		}
		return nil, errors.Internal("Failed to get post", err)
	}

	var post entity.Post
	if err := doc.DataTo(&post); err != nil {
		return nil, errors.Internal("Failed to parse post data", err)
	}

	return &post, nil
}

func (r *firestorePostRepository) Update(ctx context.Context, post *entity.Post) error {
	post.UpdatedAt = time.Now()

	_, err := r.postRef(post.ID).Set(ctx, post)
	if err != nil {
		return errors.Internal("Failed to update post", err)
	}

	return nil
}

func (r *firestorePostRepository) Delete(ctx context.Context, id string) error {
	_, err := r.postRef(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete post", err)
	}

	return nil
}

func (r *firestorePostRepository) ListPublished(ctx context.Context, authorID string, limit, offset int) ([]*entity.Post, int64, error) {
	query := r.client.Collection("posts").Where("published", "==", true)
	if authorID != "" {
		query = query.Where("authorId", "==", authorID)
	}
	query = query.OrderBy("createdAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while listing posts: %v", err)
		return nil, 0, errors.Internal("Failed to list posts", err)
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

	var posts []*entity.Post
	for i := start; i < end; i++ {
		var post entity.Post
		if err := allDocs[i].DataTo(&post); err != nil {
			continue // Skip malformed documents
		}
		posts = append(posts, &post)
	}

	return posts, total, nil
}

func (r *firestorePostRepository) ListPendingPublish(ctx context.Context) ([]*entity.Post, error) {
	docs, err := r.client.Collection("posts").Where("published", "==", false).Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to list pending posts", err)
	}

	var posts []*entity.Post
	for _, doc := range docs {
		var post entity.Post
		if err := doc.DataTo(&post); err != nil {
			continue
		}
		if post.PublishAt.IsZero() {
			continue
		}
		posts = append(posts, &post)
	}

	return posts, nil
}

func (r *firestorePostRepository) SetPublished(ctx context.Context, id string) error {
	_, err := r.postRef(id).Update(ctx, []firestore.Update{
		{Path: "published", Value: true},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return errors.Internal("Failed to publish post", err)
	}

	return nil
}

func (r *firestorePostRepository) AddComment(ctx context.Context, comment *entity.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	comment.CreatedAt = time.Now()

	postRef := r.postRef(comment.PostID)
	commentRef := postRef.Collection("comments").Doc(comment.ID)

	// Comment write and counter bump commit together.
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Set(commentRef, comment); err != nil {
			return err
		}
		return tx.Update(postRef, []firestore.Update{
			{Path: "commentCount", Value: firestore.Increment(1)},
		})
	})
	if err != nil {
		return errors.Internal("Failed to add comment", err)
	}

	return nil
}

func (r *firestorePostRepository) ListComments(ctx context.Context, postID string, limit, offset int) ([]*entity.Comment, int64, error) {
	query := r.postRef(postID).Collection("comments").OrderBy("createdAt", firestore.Asc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to list comments", err)
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

	var comments []*entity.Comment
	for i := start; i < end; i++ {
		var comment entity.Comment
		if err := allDocs[i].DataTo(&comment); err != nil {
			continue
		}
		comments = append(comments, &comment)
	}

	return comments, total, nil
}

func (r *firestorePostRepository) SetReaction(ctx context.Context, reaction *entity.Reaction) error {
	reaction.CreatedAt = time.Now()

	postRef := r.postRef(reaction.PostID)
	// Keyed by user id: one reaction per user per post.
	reactionRef := postRef.Collection("reactions").Doc(reaction.UserID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Get(reactionRef)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}

		if err := tx.Set(reactionRef, reaction); err != nil {
			return err
		}

		// Only bump the counter for a brand-new reaction; changing kind keeps
		// the count.
		if err != nil || !existing.Exists() {
			return tx.Update(postRef, []firestore.Update{
				{Path: "reactionCount", Value: firestore.Increment(1)},
			})
		}
		return nil
	})
	if err != nil {
		return errors.Internal("Failed to set reaction", err)
	}

	return nil
}

func (r *firestorePostRepository) RemoveReaction(ctx context.Context, postID, userID string) error {
	postRef := r.postRef(postID)
	reactionRef := postRef.Collection("reactions").Doc(userID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Get(reactionRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return nil // Nothing to remove
			}
			return err
		}
		if !existing.Exists() {
			return nil
		}

		if err := tx.Delete(reactionRef); err != nil {
			return err
		}
		return tx.Update(postRef, []firestore.Update{
			{Path: "reactionCount", Value: firestore.Increment(-1)},
		})
	})
	if err != nil {
		return errors.Internal("Failed to remove reaction", err)
	}

	return nil
}

func (r *firestorePostRepository) GetReaction(ctx context.Context, postID, userID string) (*entity.Reaction, error) {
	doc, err := r.postRef(postID).Collection("reactions").Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Reaction", nil)
		}
		return nil, errors.Internal("Failed to get reaction", err)
	}

	var reaction entity.Reaction
	if err := doc.DataTo(&reaction); err != nil {
		return nil, errors.Internal("Failed to parse reaction data", err)
	}

	return &reaction, nil
}
