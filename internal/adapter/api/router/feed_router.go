package router

import (
	"github.com/labstack/echo/v4"

	"blazerider/internal/adapter/api/handler"
	"blazerider/internal/adapter/api/middleware"
)

func SetupFeedRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	feedHandler := handler.GetFeedHandler()

	posts := e.Group("/v1/posts")
	posts.Use(authMiddleware.Authenticate)

	posts.POST("", feedHandler.CreatePost)
	posts.GET("", feedHandler.ListFeed)
	posts.GET("/:id", feedHandler.GetPost)
	posts.DELETE("/:id", feedHandler.DeletePost)

	posts.POST("/:id/comments", feedHandler.AddComment)
	posts.GET("/:id/comments", feedHandler.ListComments)
	posts.PUT("/:id/reactions", feedHandler.React)
	posts.DELETE("/:id/reactions", feedHandler.Unreact)
}
