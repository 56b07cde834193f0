package router

import (
	"github.com/labstack/echo/v4"

	"blazerider/internal/adapter/api/handler"
	"blazerider/internal/adapter/api/middleware"
)

func SetupRideRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	rideHandler := handler.GetRideHandler()

	routes := e.Group("/v1/routes")
	routes.Use(authMiddleware.Authenticate)

	routes.POST("", rideHandler.CreateRoute)
	routes.GET("", rideHandler.ListRoutes)
	routes.GET("/:id", rideHandler.GetRoute)
	routes.GET("/:id/weather", rideHandler.GetRouteWeather)

	rides := e.Group("/v1/rides")
	rides.Use(authMiddleware.Authenticate)

	rides.POST("", rideHandler.CreateRide)
	rides.GET("", rideHandler.ListUpcomingRides)
	rides.GET("/:id", rideHandler.GetRide)
	rides.POST("/:id/join", rideHandler.JoinRide)
	rides.POST("/:id/leave", rideHandler.LeaveRide)
}
