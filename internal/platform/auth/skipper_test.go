package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func routeContext(path string) echo.Context {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodPost, path, nil), httptest.NewRecorder())
	c.SetPath(path)
	return c
}

func TestAuthSkipper(t *testing.T) {
	tests := []struct {
		path string
		skip bool
	}{
		{"/health", true},
		{"/api/auth/login", true},
		{"/api/auth/register", true},
		{"/api/auth/change-password", false},
		{"/api/patients", false},
		{"/api/activitylogs", false},
		{"/health/extra", false},
		{"/", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := AuthSkipper(routeContext(tt.path)); got != tt.skip {
				t.Errorf("AuthSkipper(%s) = %v, want %v", tt.path, got, tt.skip)
			}
		})
	}
}

func TestJWTMiddleware_WithSkipper(t *testing.T) {
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	t.Run("public route passes without token", func(t *testing.T) {
		h := JWTMiddleware(JWTConfig{SigningKey: testSigningKey, Skipper: AuthSkipper})(ok)
		if err := h(routeContext("/api/auth/login")); err != nil {
			t.Fatalf("expected pass-through, got %v", err)
		}
	})

	t.Run("protected route needs token", func(t *testing.T) {
		h := JWTMiddleware(JWTConfig{SigningKey: testSigningKey, Skipper: AuthSkipper})(ok)
		err := h(routeContext("/api/fees"))
		he, isHTTP := err.(*echo.HTTPError)
		if !isHTTP || he.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %v", err)
		}
	})

	t.Run("no skipper guards everything", func(t *testing.T) {
		h := JWTMiddleware(JWTConfig{SigningKey: testSigningKey})(ok)
		if err := h(routeContext("/health")); err == nil {
			t.Fatal("expected an error without a skipper")
		}
	})
}
