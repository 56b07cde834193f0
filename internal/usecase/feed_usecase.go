package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"blazerider/internal/domain/entity"
	"blazerider/internal/domain/repository"
	"blazerider/internal/infrastructure/ratelimit"
	"blazerider/pkg/errors"
)

// FeedUseCase runs the community feed: posts, comments, reactions and
// deferred publishing. A post with a future PublishAt is stored unpublished
// and a one-shot job flips it live at the requested time.
type FeedUseCase struct {
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	notifier    *NotificationUseCase
	scheduler   JobScheduler
	rateLimiter *ratelimit.RateLimiter
}

func NewFeedUseCase(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	notifier *NotificationUseCase,
	scheduler JobScheduler,
) *FeedUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &FeedUseCase{
		postRepo:    postRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		scheduler:   scheduler,
		rateLimiter: rateLimiter,
	}
}

type CreatePostInput struct {
	Content   string
	ImageURLs []string
	PublishAt time.Time
}

type AddCommentInput struct {
	Content  string
	ImageURL string
}

func publishJobID(postID string) string {
	return fmt.Sprintf("publish-post-%s", postID)
}

// CreatePost stores a post. With a future PublishAt it stays hidden until
// the scheduled publish fires; otherwise it is live immediately.
func (uc *FeedUseCase) CreatePost(ctx context.Context, userID string, input CreatePostInput) (*entity.Post, error) {
	allowed, waitTime := uc.rateLimiter.Allow(userID, "create_post")
	if !allowed {
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before posting again", waitTime)
	}

	if input.Content == "" && len(input.ImageURLs) == 0 {
		return nil, errors.BadRequest("A post needs text or at least one image", nil)
	}

	author, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NotFound("User not found", err)
	}

	post := &entity.Post{
		AuthorID:        userID,
		AuthorName:      author.Username,
		AuthorAvatarURL: author.AvatarURL,
		Content:         input.Content,
		ImageURLs:       input.ImageURLs,
		Published:       true,
	}

	deferred := input.PublishAt.After(time.Now())
	if deferred {
		post.Published = false
		post.PublishAt = input.PublishAt
	}

	if err := uc.postRepo.Create(ctx, post); err != nil {
		log.Printf("CreatePost Error: Failed for user %s: %v", userID, err)
		return nil, err
	}

	if deferred && uc.scheduler != nil {
		uc.schedulePublish(post.ID, input.PublishAt)
	}

	return post, nil
}

func (uc *FeedUseCase) schedulePublish(postID string, at time.Time) {
	uc.scheduler.Schedule(publishJobID(postID), time.Until(at), func() {
		ctx := context.Background()
		if err := uc.postRepo.SetPublished(ctx, postID); err != nil {
			log.Printf("Scheduled publish failed for post %s: %v", postID, err)
			return
		}
		log.Printf("Post %s published on schedule", postID)
	})
}

// ReschedulePendingPublishes re-arms publish jobs after a restart. Posts
// whose time already passed publish immediately.
func (uc *FeedUseCase) ReschedulePendingPublishes(ctx context.Context) {
	if uc.scheduler == nil {
		return
	}

	pending, err := uc.postRepo.ListPendingPublish(ctx)
	if err != nil {
		log.Printf("Failed to reschedule pending posts: %v", err)
		return
	}

	for _, post := range pending {
		uc.schedulePublish(post.ID, post.PublishAt)
	}
	if len(pending) > 0 {
		log.Printf("Rescheduled %d pending post publishes", len(pending))
	}
}

func (uc *FeedUseCase) GetPost(ctx context.Context, userID, postID string) (*entity.Post, error) {
	post, err := uc.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	// Unpublished posts are only visible to their author.
	if !post.Published && post.AuthorID != userID {
		return nil, errors.NotFound("Post", nil)
	}
	return post, nil
}

func (uc *FeedUseCase) ListFeed(ctx context.Context, authorID string, limit, offset int) ([]*entity.Post, int64, error) {
	return uc.postRepo.ListPublished(ctx, authorID, limit, offset)
}

func (uc *FeedUseCase) DeletePost(ctx context.Context, userID, postID string) error {
	post, err := uc.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return errors.Forbidden("Only the author can delete a post", nil)
	}

	if uc.scheduler != nil {
		uc.scheduler.Cancel(publishJobID(postID))
	}

	return uc.postRepo.Delete(ctx, postID)
}

// AddComment appends a comment and notifies the post author.
func (uc *FeedUseCase) AddComment(ctx context.Context, userID, postID string, input AddCommentInput) (*entity.Comment, error) {
	if input.Content == "" && input.ImageURL == "" {
		return nil, errors.BadRequest("A comment needs text or an image", nil)
	}

	post, err := uc.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.Published && post.AuthorID != userID {
		return nil, errors.NotFound("Post", nil)
	}

	author, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NotFound("User not found", err)
	}

	comment := &entity.Comment{
		PostID:     postID,
		AuthorID:   userID,
		AuthorName: author.Username,
		Content:    input.Content,
		ImageURL:   input.ImageURL,
	}

	if err := uc.postRepo.AddComment(ctx, comment); err != nil {
		log.Printf("AddComment Error: Failed for post %s: %v", postID, err)
		return nil, err
	}

	if uc.notifier != nil && post.AuthorID != userID {
		uc.notifier.Relay(ctx, &entity.Notification{
			UserID: post.AuthorID,
			Type:   entity.NotificationTypeComment,
			Title:  author.Username,
			Body:   "Commented on your post",
			RefID:  postID,
		})
	}

	return comment, nil
}

func (uc *FeedUseCase) ListComments(ctx context.Context, postID string, limit, offset int) ([]*entity.Comment, int64, error) {
	return uc.postRepo.ListComments(ctx, postID, limit, offset)
}

// React sets the caller's reaction on a post. Reacting again with a new
// kind replaces the old one without double-counting.
func (uc *FeedUseCase) React(ctx context.Context, userID, postID, kind string) error {
	post, err := uc.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	reaction := &entity.Reaction{
		PostID: postID,
		UserID: userID,
		Kind:   kind,
	}
	if err := uc.postRepo.SetReaction(ctx, reaction); err != nil {
		return err
	}

	if uc.notifier != nil && post.AuthorID != userID {
		if user, err := uc.userRepo.GetByID(ctx, userID); err == nil {
			uc.notifier.Relay(ctx, &entity.Notification{
				UserID: post.AuthorID,
				Type:   entity.NotificationTypeReaction,
				Title:  user.Username,
				Body:   "Reacted to your post",
				RefID:  postID,
			})
		}
	}

	return nil
}

func (uc *FeedUseCase) Unreact(ctx context.Context, userID, postID string) error {
	return uc.postRepo.RemoveReaction(ctx, postID, userID)
}
