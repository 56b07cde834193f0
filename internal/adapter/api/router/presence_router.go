package router

import (
	"github.com/labstack/echo/v4"

	"blazerider/internal/adapter/api/handler"
	"blazerider/internal/adapter/api/middleware"
)

func SetupPresenceRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	presenceHandler := handler.GetPresenceHandler()

	presence := e.Group("/v1/presence")
	presence.Use(authMiddleware.Authenticate)

	presence.PUT("", presenceHandler.UpdatePresence)
	presence.PUT("/location", presenceHandler.UpdateLocation)
	presence.GET("/nearby", presenceHandler.GetNearbyRiders)
	presence.GET("/:id", presenceHandler.GetPresence)
}
