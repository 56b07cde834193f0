package handler

import (
	"github.com/labstack/echo/v4"

	"blazerider/internal/usecase"
	"blazerider/pkg/response"
	"blazerider/pkg/utils"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type startDirectChatRequest struct {
	RecipientID    string `json:"recipient_id" validate:"required"`
	InitialMessage string `json:"initial_message"`
}

type createGroupChatRequest struct {
	Name           string   `json:"name" validate:"required,min=1"`
	ImageURL       string   `json:"image_url" validate:"omitempty,url"`
	MemberIDs      []string `json:"member_ids" validate:"required,min=1"`
	InitialMessage string   `json:"initial_message"`
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required"`
	Type    string `json:"type" validate:"omitempty,oneof=text image file"`
}

func pagination(c echo.Context) (int, int) {
	params := utils.GetPaginationParams(c)
	return params.Limit, params.Offset
}

func (h *ChatHandler) StartDirectChat(c echo.Context) error {
	var req startDirectChatRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	chat, err := h.chatUseCase.StartDirectChat(c.Request().Context(), userID, usecase.StartDirectChatInput{
		RecipientID:    req.RecipientID,
		InitialMessage: req.InitialMessage,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, chat)
}

func (h *ChatHandler) CreateGroupChat(c echo.Context) error {
	var req createGroupChatRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	chat, err := h.chatUseCase.CreateGroupChat(c.Request().Context(), userID, usecase.CreateGroupChatInput{
		Name:           req.Name,
		ImageURL:       req.ImageURL,
		MemberIDs:      req.MemberIDs,
		InitialMessage: req.InitialMessage,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, chat)
}

func (h *ChatHandler) GetUserChats(c echo.Context) error {
	userID := c.Get("uid").(string)
	limit, offset := pagination(c)

	chats, total, err := h.chatUseCase.GetUserChats(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, chats, total, limit, offset)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)
	chatID := c.Param("id")

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), userID, usecase.SendMessageInput{
		ChatID:  chatID,
		Content: req.Content,
		Type:    req.Type,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *ChatHandler) GetChatMessages(c echo.Context) error {
	userID := c.Get("uid").(string)
	chatID := c.Param("id")
	limit, offset := pagination(c)

	messages, total, err := h.chatUseCase.GetMessages(c.Request().Context(), userID, chatID, limit, offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, messages, total, limit, offset)
}

func (h *ChatHandler) MarkChatAsRead(c echo.Context) error {
	userID := c.Get("uid").(string)
	chatID := c.Param("id")

	if err := h.chatUseCase.MarkChatAsRead(c.Request().Context(), chatID, userID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "read"})
}

func (h *ChatHandler) MarkMessageAsRead(c echo.Context) error {
	userID := c.Get("uid").(string)
	chatID := c.Param("id")
	messageID := c.Param("messageId")

	if err := h.chatUseCase.MarkMessageAsRead(c.Request().Context(), chatID, messageID, userID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "read"})
}

func (h *ChatHandler) UnsendMessage(c echo.Context) error {
	userID := c.Get("uid").(string)
	chatID := c.Param("id")
	messageID := c.Param("messageId")

	message, err := h.chatUseCase.UnsendMessage(c.Request().Context(), chatID, messageID, userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, message)
}

func (h *ChatHandler) DeleteMessageForMe(c echo.Context) error {
	userID := c.Get("uid").(string)
	chatID := c.Param("id")
	messageID := c.Param("messageId")

	if err := h.chatUseCase.DeleteMessageForMe(c.Request().Context(), chatID, messageID, userID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "deleted"})
}

type typingRequest struct {
	Typing bool `json:"typing"`
}

func (h *ChatHandler) SetTyping(c echo.Context) error {
	var req typingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)
	chatID := c.Param("id")

	if err := h.chatUseCase.SetTyping(c.Request().Context(), chatID, userID, req.Typing); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "ok"})
}
