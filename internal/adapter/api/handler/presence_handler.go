package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"blazerider/internal/usecase"
	"blazerider/pkg/errors"
	"blazerider/pkg/response"
)

type PresenceHandler struct {
	presenceUseCase *usecase.PresenceUseCase
}

func NewPresenceHandler(presenceUseCase *usecase.PresenceUseCase) *PresenceHandler {
	return &PresenceHandler{
		presenceUseCase: presenceUseCase,
	}
}

type updatePresenceRequest struct {
	State     string  `json:"state" validate:"required,oneof=online offline pending"`
	Latitude  float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude float64 `json:"longitude" validate:"omitempty,longitude"`
}

type updateLocationRequest struct {
	Latitude  float64 `json:"latitude" validate:"required,latitude"`
	Longitude float64 `json:"longitude" validate:"required,longitude"`
}

func (h *PresenceHandler) UpdatePresence(c echo.Context) error {
	var req updatePresenceRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	presence, err := h.presenceUseCase.Update(c.Request().Context(), userID, usecase.UpdatePresenceInput{
		State:     req.State,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, presence)
}

func (h *PresenceHandler) GetPresence(c echo.Context) error {
	presence, err := h.presenceUseCase.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, presence)
}

func (h *PresenceHandler) UpdateLocation(c echo.Context) error {
	var req updateLocationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	if err := h.presenceUseCase.UpdateLocation(c.Request().Context(), userID, req.Latitude, req.Longitude); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "ok"})
}

func (h *PresenceHandler) GetNearbyRiders(c echo.Context) error {
	lat, err := strconv.ParseFloat(c.QueryParam("lat"), 64)
	if err != nil {
		return response.Error(c, errors.BadRequest("lat is required", err))
	}
	lng, err := strconv.ParseFloat(c.QueryParam("lng"), 64)
	if err != nil {
		return response.Error(c, errors.BadRequest("lng is required", err))
	}
	radius, _ := strconv.ParseFloat(c.QueryParam("radius_km"), 64)
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	riders, err := h.presenceUseCase.Nearby(c.Request().Context(), lat, lng, radius, limit)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, riders)
}
