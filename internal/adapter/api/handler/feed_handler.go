package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"blazerider/internal/usecase"
	"blazerider/pkg/response"
)

type FeedHandler struct {
	feedUseCase *usecase.FeedUseCase
}

func NewFeedHandler(feedUseCase *usecase.FeedUseCase) *FeedHandler {
	return &FeedHandler{
		feedUseCase: feedUseCase,
	}
}

type createPostRequest struct {
	Content   string    `json:"content" validate:"omitempty,max=2000"`
	ImageURLs []string  `json:"image_urls" validate:"omitempty,dive,url"`
	PublishAt time.Time `json:"publish_at"`
}

type addCommentRequest struct {
	Content  string `json:"content" validate:"omitempty,max=1000"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
}

type reactRequest struct {
	Kind string `json:"kind" validate:"required,oneof=like love wow"`
}

func (h *FeedHandler) CreatePost(c echo.Context) error {
	var req createPostRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	post, err := h.feedUseCase.CreatePost(c.Request().Context(), userID, usecase.CreatePostInput{
		Content:   req.Content,
		ImageURLs: req.ImageURLs,
		PublishAt: req.PublishAt,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, post)
}

func (h *FeedHandler) GetPost(c echo.Context) error {
	userID := c.Get("uid").(string)

	post, err := h.feedUseCase.GetPost(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, post)
}

func (h *FeedHandler) ListFeed(c echo.Context) error {
	limit, offset := pagination(c)

	posts, total, err := h.feedUseCase.ListFeed(c.Request().Context(), c.QueryParam("author_id"), limit, offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, posts, total, limit, offset)
}

func (h *FeedHandler) DeletePost(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.feedUseCase.DeletePost(c.Request().Context(), userID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "deleted"})
}

func (h *FeedHandler) AddComment(c echo.Context) error {
	var req addCommentRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	comment, err := h.feedUseCase.AddComment(c.Request().Context(), userID, c.Param("id"), usecase.AddCommentInput{
		Content:  req.Content,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, comment)
}

func (h *FeedHandler) ListComments(c echo.Context) error {
	limit, offset := pagination(c)

	comments, total, err := h.feedUseCase.ListComments(c.Request().Context(), c.Param("id"), limit, offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, comments, total, limit, offset)
}

func (h *FeedHandler) React(c echo.Context) error {
	var req reactRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	if err := h.feedUseCase.React(c.Request().Context(), userID, c.Param("id"), req.Kind); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "reacted"})
}

func (h *FeedHandler) Unreact(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.feedUseCase.Unreact(c.Request().Context(), userID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "removed"})
}
