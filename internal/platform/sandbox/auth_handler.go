package sandbox

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/internal/platform/db"
	"github.com/clinicdesk/clinicdesk/internal/platform/validation"
)

// AuthHandler serves /api/auth. Login and register are public; see
// auth.AuthSkipper.
type AuthHandler struct {
	accounts *Accounts
}

func NewAuthHandler(a *Accounts) *AuthHandler {
	return &AuthHandler{accounts: a}
}

func (h *AuthHandler) RegisterRoutes(api *echo.Group) {
	api.POST("/auth/login", h.Login)
	api.POST("/auth/register", h.Register)
	api.POST("/auth/change-password", h.ChangePassword)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var creds Credentials
	if err := c.Bind(&creds); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	token, err := h.accounts.Login(creds)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
		case validation.IsValidation(err):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

func (h *AuthHandler) Register(c echo.Context) error {
	var s Signup
	if err := c.Bind(&s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if _, err := h.accounts.Register(s); err != nil {
		switch {
		case errors.Is(err, ErrUsernameTaken):
			return echo.NewHTTPError(http.StatusConflict, "Username already exists")
		case validation.IsValidation(err):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User registered successfully"})
}

// ChangePassword lets a user reset their own password. Admins may reset
// anyone's.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var r PasswordReset
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	caller, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	if caller.UserID != r.UserID && caller.Role != auth.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "cannot change another user's password")
	}
	if err := h.accounts.ChangePassword(r); err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		case validation.IsValidation(err):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Password changed successfully"})
}
