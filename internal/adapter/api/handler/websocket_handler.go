package handler

import (
	"log"
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	ws "blazerider/internal/infrastructure/websocket"
	"blazerider/internal/usecase"
	"blazerider/pkg/errors"
)

type WebSocketHandler struct {
	wsManager       *ws.Manager
	authUseCase     *usecase.AuthUseCase
	presenceUseCase *usecase.PresenceUseCase
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // You should restrict this in production
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, authUseCase *usecase.AuthUseCase, presenceUseCase *usecase.PresenceUseCase) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:       wsManager,
		authUseCase:     authUseCase,
		presenceUseCase: presenceUseCase,
	}
}

// HandleWebSocket upgrades the connection. Browsers cannot set headers on
// socket requests, so the token may also arrive as a query parameter.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	userID, ok := c.Get("uid").(string)
	if !ok || userID == "" {
		token := c.QueryParam("token")
		if token == "" {
			return errors.Unauthorized("Authentication required", nil)
		}
		uid, err := h.authUseCase.VerifyToken(c.Request().Context(), token)
		if err != nil {
			return errors.Unauthorized("Invalid or expired token", err)
		}
		userID = uid
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := ws.NewClient(userID, conn)
	h.wsManager.Register <- client

	// Connecting counts as activity.
	if h.presenceUseCase != nil {
		if err := h.presenceUseCase.Heartbeat(c.Request().Context(), userID); err != nil {
			log.Printf("WebSocket: heartbeat on connect failed for %s: %v", userID, err)
		}
	}

	go client.ReadPump(h.wsManager)
	go client.WritePump()

	return nil
}
