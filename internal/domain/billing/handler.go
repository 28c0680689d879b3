package billing

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/internal/platform/db"
	"github.com/clinicdesk/clinicdesk/internal/platform/validation"
	"github.com/clinicdesk/clinicdesk/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	write := auth.RequireRole(auth.RoleReceptionist, auth.RoleAdmin)

	api.GET("/fees", h.ListFees)
	api.GET("/fees/:id", h.GetFee)
	api.POST("/fees", h.CreateFee, write)
	api.PUT("/fees/:id", h.UpdateFee, write)
	api.DELETE("/fees/:id", h.DeleteFee, write)
}

func (h *Handler) CreateFee(c echo.Context) error {
	var in FeeInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	f, err := h.svc.CreateFee(c.Request().Context(), in)
	if err != nil {
		return toHTTPError(err)
	}
	c.Set("resource_id", f.FeeID)
	return c.JSON(http.StatusCreated, f)
}

func (h *Handler) GetFee(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	f, err := h.svc.GetFee(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) ListFees(c echo.Context) error {
	items, err := h.svc.ListFees(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return pagination.JSON(c, items)
}

func (h *Handler) UpdateFee(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var body FeeUpdate
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if body.FeeID != 0 && body.FeeID != id {
		return echo.NewHTTPError(http.StatusBadRequest, "feeId does not match the route")
	}
	f, err := h.svc.UpdateFee(c.Request().Context(), id, body.FeeInput)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) DeleteFee(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteFee(c.Request().Context(), id); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "fee not found")
	case validation.IsValidation(err):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
