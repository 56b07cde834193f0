package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blazerider/internal/domain/entity"
	"blazerider/pkg/errors"
)

type fakePostRepo struct {
	mu        sync.Mutex
	posts     map[string]*entity.Post
	comments  map[string][]*entity.Comment
	reactions map[string]map[string]*entity.Reaction
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		posts:     make(map[string]*entity.Post),
		comments:  make(map[string][]*entity.Comment),
		reactions: make(map[string]map[string]*entity.Reaction),
	}
}

func (r *fakePostRepo) Create(ctx context.Context, post *entity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	copied := *post
	r.posts[post.ID] = &copied
	return nil
}

func (r *fakePostRepo) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, errors.NotFound("Post", nil)
	}
	copied := *post
	return &copied, nil
}

func (r *fakePostRepo) Update(ctx context.Context, post *entity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *post
	r.posts[post.ID] = &copied
	return nil
}

func (r *fakePostRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) ListPublished(ctx context.Context, authorID string, limit, offset int) ([]*entity.Post, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Post
	for _, post := range r.posts {
		if !post.Published {
			continue
		}
		if authorID != "" && post.AuthorID != authorID {
			continue
		}
		copied := *post
		result = append(result, &copied)
	}
	return result, int64(len(result)), nil
}

func (r *fakePostRepo) ListPendingPublish(ctx context.Context) ([]*entity.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Post
	for _, post := range r.posts {
		if !post.Published && !post.PublishAt.IsZero() {
			copied := *post
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *fakePostRepo) SetPublished(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return errors.NotFound("Post", nil)
	}
	post.Published = true
	return nil
}

func (r *fakePostRepo) AddComment(ctx context.Context, comment *entity.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[comment.PostID]
	if !ok {
		return errors.NotFound("Post", nil)
	}
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	copied := *comment
	r.comments[comment.PostID] = append(r.comments[comment.PostID], &copied)
	post.CommentCount++
	return nil
}

func (r *fakePostRepo) ListComments(ctx context.Context, postID string, limit, offset int) ([]*entity.Comment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.comments[postID]
	return items, int64(len(items)), nil
}

func (r *fakePostRepo) SetReaction(ctx context.Context, reaction *entity.Reaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[reaction.PostID]
	if !ok {
		return errors.NotFound("Post", nil)
	}
	if r.reactions[reaction.PostID] == nil {
		r.reactions[reaction.PostID] = make(map[string]*entity.Reaction)
	}
	_, existed := r.reactions[reaction.PostID][reaction.UserID]
	copied := *reaction
	r.reactions[reaction.PostID][reaction.UserID] = &copied
	if !existed {
		post.ReactionCount++
	}
	return nil
}

func (r *fakePostRepo) RemoveReaction(ctx context.Context, postID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reactions[postID][userID]; !ok {
		return nil
	}
	delete(r.reactions[postID], userID)
	if post, ok := r.posts[postID]; ok {
		post.ReactionCount--
	}
	return nil
}

func (r *fakePostRepo) GetReaction(ctx context.Context, postID, userID string) (*entity.Reaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reaction, ok := r.reactions[postID][userID]
	if !ok {
		return nil, errors.NotFound("Reaction", nil)
	}
	copied := *reaction
	return &copied, nil
}

// fakeScheduler records jobs and lets tests fire them by hand.
type fakeScheduler struct {
	mu   sync.Mutex
	jobs map[string]func()
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{jobs: make(map[string]func())}
}

func (s *fakeScheduler) Schedule(id string, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[id] = fn
}

func (s *fakeScheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
}

func (s *fakeScheduler) fire(id string) bool {
	s.mu.Lock()
	fn, ok := s.jobs[id]
	delete(s.jobs, id)
	s.mu.Unlock()
	if ok {
		fn()
	}
	return ok
}

func TestCreatePostPublishesImmediately(t *testing.T) {
	repo := newFakePostRepo()
	uc := NewFeedUseCase(repo, newFakeUserRepo("alice"), nil, newFakeScheduler())
	ctx := context.Background()

	post, err := uc.CreatePost(ctx, "alice", CreatePostInput{Content: "first ride today"})
	require.NoError(t, err)
	assert.True(t, post.Published)

	feed, total, err := uc.ListFeed(ctx, "", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, feed, 1)
}

func TestCreatePostDeferredStaysHiddenUntilJobFires(t *testing.T) {
	repo := newFakePostRepo()
	sched := newFakeScheduler()
	uc := NewFeedUseCase(repo, newFakeUserRepo("alice", "bob"), nil, sched)
	ctx := context.Background()

	post, err := uc.CreatePost(ctx, "alice", CreatePostInput{
		Content:   "announcement",
		PublishAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	assert.False(t, post.Published)

	// Hidden from everyone but the author until the job fires.
	_, err = uc.GetPost(ctx, "bob", post.ID)
	assert.True(t, errors.Is(err, "NOT_FOUND"))

	mine, err := uc.GetPost(ctx, "alice", post.ID)
	require.NoError(t, err)
	assert.Equal(t, "announcement", mine.Content)

	require.True(t, sched.fire(publishJobID(post.ID)))

	visible, err := uc.GetPost(ctx, "bob", post.ID)
	require.NoError(t, err)
	assert.True(t, visible.Published)
}

func TestDeletePostCancelsPendingPublish(t *testing.T) {
	repo := newFakePostRepo()
	sched := newFakeScheduler()
	uc := NewFeedUseCase(repo, newFakeUserRepo("alice"), nil, sched)
	ctx := context.Background()

	post, err := uc.CreatePost(ctx, "alice", CreatePostInput{
		Content:   "scheduled",
		PublishAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, uc.DeletePost(ctx, "alice", post.ID))
	assert.False(t, sched.fire(publishJobID(post.ID)), "job should have been cancelled")
}

func TestAddCommentBumpsCountAndNotifiesAuthor(t *testing.T) {
	repo := newFakePostRepo()
	notifRepo := newFakeNotificationRepo()
	realtime := newFakeRealtime()
	users := newFakeUserRepo("alice", "bob")
	notifier := NewNotificationUseCase(notifRepo, users, realtime, nil)
	uc := NewFeedUseCase(repo, users, notifier, newFakeScheduler())
	ctx := context.Background()

	post, err := uc.CreatePost(ctx, "alice", CreatePostInput{Content: "hello"})
	require.NoError(t, err)

	_, err = uc.AddComment(ctx, "bob", post.ID, AddCommentInput{Content: "nice"})
	require.NoError(t, err)

	updated, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.CommentCount)

	_, total, err := notifRepo.ListByUser(ctx, "alice", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestReactTwiceCountsOnce(t *testing.T) {
	repo := newFakePostRepo()
	uc := NewFeedUseCase(repo, newFakeUserRepo("alice", "bob"), nil, newFakeScheduler())
	ctx := context.Background()

	post, err := uc.CreatePost(ctx, "alice", CreatePostInput{Content: "hello"})
	require.NoError(t, err)

	require.NoError(t, uc.React(ctx, "bob", post.ID, "like"))
	require.NoError(t, uc.React(ctx, "bob", post.ID, "love"))

	updated, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.ReactionCount)

	require.NoError(t, uc.Unreact(ctx, "bob", post.ID))

	updated, err = repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.ReactionCount)
}

func TestReschedulePendingPublishes(t *testing.T) {
	repo := newFakePostRepo()
	sched := newFakeScheduler()
	uc := NewFeedUseCase(repo, newFakeUserRepo("alice"), nil, sched)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.Post{
		ID:        "p-1",
		AuthorID:  "alice",
		Content:   "left over",
		Published: false,
		PublishAt: time.Now().Add(time.Minute),
	}))

	uc.ReschedulePendingPublishes(ctx)

	assert.True(t, sched.fire(publishJobID("p-1")))

	post, err := repo.GetByID(ctx, "p-1")
	require.NoError(t, err)
	assert.True(t, post.Published)
}
