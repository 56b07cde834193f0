package router

import (
	"github.com/labstack/echo/v4"

	"blazerider/internal/adapter/api/handler"
	"blazerider/internal/adapter/api/middleware"
)

// SetupChatRouter sets up all chat-related routes (excluding WebSocket)
func SetupChatRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	chatHandler := handler.GetChatHandler()

	chats := e.Group("/v1/chats")
	chats.Use(authMiddleware.Authenticate)

	chats.POST("", chatHandler.StartDirectChat)
	chats.POST("/groups", chatHandler.CreateGroupChat)
	chats.GET("", chatHandler.GetUserChats)
	chats.PUT("/:id/read", chatHandler.MarkChatAsRead)
	chats.PUT("/:id/typing", chatHandler.SetTyping)

	chats.POST("/:id/messages", chatHandler.SendMessage)
	chats.GET("/:id/messages", chatHandler.GetChatMessages)
	chats.PUT("/:id/messages/:messageId/read", chatHandler.MarkMessageAsRead)
	chats.POST("/:id/messages/:messageId/unsend", chatHandler.UnsendMessage)
	chats.DELETE("/:id/messages/:messageId", chatHandler.DeleteMessageForMe)
}
