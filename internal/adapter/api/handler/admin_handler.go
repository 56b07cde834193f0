package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"blazerider/internal/usecase"
	"blazerider/pkg/response"
)

type AdminHandler struct {
	adminUseCase *usecase.AdminUseCase
}

func NewAdminHandler(adminUseCase *usecase.AdminUseCase) *AdminHandler {
	return &AdminHandler{
		adminUseCase: adminUseCase,
	}
}

type rejectUserRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

func (h *AdminHandler) ListPendingUsers(c echo.Context) error {
	limit, offset := pagination(c)

	users, total, err := h.adminUseCase.ListPendingUsers(c.Request().Context(), limit, offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, users, total, limit, offset)
}

func (h *AdminHandler) ConfirmUser(c echo.Context) error {
	user, err := h.adminUseCase.ConfirmUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *AdminHandler) RejectUser(c echo.Context) error {
	var req rejectUserRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.adminUseCase.RejectUser(c.Request().Context(), c.Param("id"), req.Reason)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *AdminHandler) GetDashboardStats(c echo.Context) error {
	days, _ := strconv.Atoi(c.QueryParam("days"))

	stats, err := h.adminUseCase.GetDashboardStats(c.Request().Context(), days)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, stats)
}
