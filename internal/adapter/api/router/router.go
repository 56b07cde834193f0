package router

import (
	"github.com/labstack/echo/v4"

	"blazerider/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	SetupHealthRouter(e)
	SetupAuthRouter(e, authMiddleware)
	SetupUserRouter(e, authMiddleware)
	SetupChatRouter(e, authMiddleware)
	SetupPresenceRouter(e, authMiddleware)
	SetupFeedRouter(e, authMiddleware)
	SetupRideRouter(e, authMiddleware)
	SetupNotificationRouter(e, authMiddleware)
	SetupAdminRouter(e, authMiddleware, adminMiddleware)
	SetupFileRouter(e, authMiddleware)
	SetupWebSocketRouter(e)
}
