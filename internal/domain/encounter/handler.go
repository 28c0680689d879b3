package encounter

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

// RegisterRoutes mounts the visit endpoints. Doctors and front-desk staff
// book and edit visits; only doctors and admins delete them.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	write := auth.RequireRole(auth.RoleDoctor, auth.RoleReceptionist, auth.RoleAdmin)
	remove := auth.RequireRole(auth.RoleDoctor, auth.RoleAdmin)

	api.GET("/visits", h.ListVisits)
	api.GET("/visits/:id", h.GetVisit)
	api.POST("/visits", h.CreateVisit, write)
	api.PUT("/visits/:id", h.UpdateVisit, write)
	api.DELETE("/visits/:id", h.DeleteVisit, remove)
}

func (h *Handler) CreateVisit(c echo.Context) error {
	var in VisitInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v, err := h.svc.CreateVisit(c.Request().Context(), in)
	if err != nil {
		return toHTTPError(err)
	}
	c.Set("resource_id", v.VisitID)
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) GetVisit(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	v, err := h.svc.GetVisit(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) ListVisits(c echo.Context) error {
	items, err := h.svc.ListVisits(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return pagination.JSON(c, items)
}

func (h *Handler) UpdateVisit(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var body VisitUpdate
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if body.VisitID != 0 && body.VisitID != id {
		return echo.NewHTTPError(http.StatusBadRequest, "visitId does not match the route")
	}
	v, err := h.svc.UpdateVisit(c.Request().Context(), id, body.VisitInput)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) DeleteVisit(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteVisit(c.Request().Context(), id); err != nil {
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
		return echo.NewHTTPError(http.StatusNotFound, "visit not found")
	case errors.Is(err, ErrUnknownReference), validation.IsValidation(err):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
