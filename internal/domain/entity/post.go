package entity

import "time"

type Post struct {
	ID              string    `json:"id" firestore:"id"`
	AuthorID        string    `json:"author_id" firestore:"authorId"`
	AuthorName      string    `json:"author_name" firestore:"authorName"`
	AuthorAvatarURL string    `json:"author_avatar_url,omitempty" firestore:"authorAvatarURL,omitempty"`
	Content         string    `json:"content" firestore:"content"`
	ImageURLs       []string  `json:"image_urls,omitempty" firestore:"imageURLs,omitempty"`
	CommentCount    int       `json:"comment_count" firestore:"commentCount"`
	ReactionCount   int       `json:"reaction_count" firestore:"reactionCount"`
	Published       bool      `json:"published" firestore:"published"`
	PublishAt       time.Time `json:"publish_at,omitempty" firestore:"publishAt,omitempty"`
	CreatedAt       time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt       time.Time `json:"updated_at" firestore:"updatedAt"`
}

type Comment struct {
	ID         string    `json:"id" firestore:"id"`
	PostID     string    `json:"post_id" firestore:"postId"`
	AuthorID   string    `json:"author_id" firestore:"authorId"`
	AuthorName string    `json:"author_name" firestore:"authorName"`
	Content    string    `json:"content" firestore:"content"`
	ImageURL   string    `json:"image_url,omitempty" firestore:"imageURL,omitempty"`
	CreatedAt  time.Time `json:"created_at" firestore:"createdAt"`
}

// Reaction documents are keyed by the reacting user's id so a user can hold
// at most one reaction per post.
type Reaction struct {
	PostID    string    `json:"post_id" firestore:"postId"`
	UserID    string    `json:"user_id" firestore:"userId"`
	Kind      string    `json:"kind" firestore:"kind"` // "like", "love", "wow"
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}
