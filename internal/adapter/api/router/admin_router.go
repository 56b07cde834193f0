package router

import (
	"github.com/labstack/echo/v4"

	"blazerider/internal/adapter/api/handler"
	"blazerider/internal/adapter/api/middleware"
)

func SetupAdminRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	adminHandler := handler.GetAdminHandler()

	admin := e.Group("/v1/admin")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(adminMiddleware.AdminOnly)

	admin.GET("/users/pending", adminHandler.ListPendingUsers)
	admin.POST("/users/:id/confirm", adminHandler.ConfirmUser)
	admin.POST("/users/:id/reject", adminHandler.RejectUser)
	admin.GET("/dashboard", adminHandler.GetDashboardStats)
}
