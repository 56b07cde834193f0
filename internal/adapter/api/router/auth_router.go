package router

import (
	"github.com/labstack/echo/v4"

	"blazerider/internal/adapter/api/handler"
	"blazerider/internal/adapter/api/middleware"
)

func SetupAuthRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	authHandler := handler.GetAuthHandler()

	auth := e.Group("/v1/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/password-reset", authHandler.RequestPasswordReset)

	auth.POST("/change-password", authHandler.ChangePassword, authMiddleware.Authenticate)
	auth.POST("/verify-email", authHandler.RequestEmailVerification, authMiddleware.Authenticate)
}
