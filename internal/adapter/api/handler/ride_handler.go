package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"blazerider/internal/domain/entity"
	"blazerider/internal/usecase"
	"blazerider/pkg/response"
)

type RideHandler struct {
	rideUseCase *usecase.RideUseCase
}

func NewRideHandler(rideUseCase *usecase.RideUseCase) *RideHandler {
	return &RideHandler{
		rideUseCase: rideUseCase,
	}
}

type geoPointRequest struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

type createRouteRequest struct {
	Name      string            `json:"name" validate:"required,min=1"`
	Points    []geoPointRequest `json:"points" validate:"required,min=2,dive"`
	PublishAt time.Time         `json:"publish_at"`
}

type createRideRequest struct {
	RouteID  string    `json:"route_id" validate:"required"`
	Title    string    `json:"title" validate:"required,min=1"`
	DepartAt time.Time `json:"depart_at" validate:"required"`
	Seats    int       `json:"seats" validate:"required,min=1,max=50"`
}

func (h *RideHandler) CreateRoute(c echo.Context) error {
	var req createRouteRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	points := make([]entity.GeoPoint, 0, len(req.Points))
	for _, p := range req.Points {
		points = append(points, entity.GeoPoint{Latitude: p.Latitude, Longitude: p.Longitude})
	}

	route, err := h.rideUseCase.CreateRoute(c.Request().Context(), userID, usecase.CreateRouteInput{
		Name:      req.Name,
		Points:    points,
		PublishAt: req.PublishAt,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, route)
}

func (h *RideHandler) GetRoute(c echo.Context) error {
	userID := c.Get("uid").(string)

	route, err := h.rideUseCase.GetRoute(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, route)
}

func (h *RideHandler) ListRoutes(c echo.Context) error {
	limit, offset := pagination(c)

	routes, total, err := h.rideUseCase.ListRoutes(c.Request().Context(), limit, offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, routes, total, limit, offset)
}

func (h *RideHandler) GetRouteWeather(c echo.Context) error {
	weather, err := h.rideUseCase.RouteWeather(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, weather)
}

func (h *RideHandler) CreateRide(c echo.Context) error {
	var req createRideRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	ride, err := h.rideUseCase.CreateRide(c.Request().Context(), userID, usecase.CreateRideInput{
		RouteID:  req.RouteID,
		Title:    req.Title,
		DepartAt: req.DepartAt,
		Seats:    req.Seats,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, ride)
}

func (h *RideHandler) GetRide(c echo.Context) error {
	ride, err := h.rideUseCase.GetRide(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, ride)
}

func (h *RideHandler) ListUpcomingRides(c echo.Context) error {
	limit, offset := pagination(c)

	rides, total, err := h.rideUseCase.ListUpcomingRides(c.Request().Context(), limit, offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, rides, total, limit, offset)
}

func (h *RideHandler) JoinRide(c echo.Context) error {
	userID := c.Get("uid").(string)

	ride, err := h.rideUseCase.JoinRide(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, ride)
}

func (h *RideHandler) LeaveRide(c echo.Context) error {
	userID := c.Get("uid").(string)

	ride, err := h.rideUseCase.LeaveRide(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, ride)
}
