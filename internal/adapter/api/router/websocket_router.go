package router

import (
	"github.com/labstack/echo/v4"

	"blazerider/internal/adapter/api/handler"
)

// SetupWebSocketRouter registers the socket endpoint. Authentication happens
// inside the handler because browsers pass the token as a query parameter.
func SetupWebSocketRouter(e *echo.Echo) {
	websocketHandler := handler.GetWebSocketHandler()

	e.GET("/v1/ws", websocketHandler.HandleWebSocket)
}
