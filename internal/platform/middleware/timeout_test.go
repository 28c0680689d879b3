package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func runTimeout(d time.Duration, h echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/visits", nil), rec)
	return rec, RequestTimeout(d)(h)(c)
}

func TestRequestTimeout_Deadline(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		want    bool
	}{
		{"bounded", 30 * time.Second, true},
		{"zero disables", 0, false},
		{"negative disables", -time.Second, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got bool
			rec, err := runTimeout(tt.timeout, func(c echo.Context) error {
				_, got = c.Request().Context().Deadline()
				return c.NoContent(http.StatusNoContent)
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("deadline set = %v, want %v", got, tt.want)
			}
			if rec.Code != http.StatusNoContent {
				t.Errorf("expected 204, got %d", rec.Code)
			}
		})
	}
}

func TestRequestTimeout_SlowHandlerGets504(t *testing.T) {
	rec, err := runTimeout(20*time.Millisecond, func(c echo.Context) error {
		<-c.Request().Context().Done()
		return c.Request().Context().Err()
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["message"] != "Request timed out" {
		t.Errorf("unexpected message %q", body["message"])
	}
}

func TestRequestTimeout_HandlerFinishesBeforeReturning(t *testing.T) {
	finished := false
	rec, err := runTimeout(10*time.Millisecond, func(c echo.Context) error {
		<-c.Request().Context().Done()
		time.Sleep(20 * time.Millisecond)
		finished = true
		return c.Request().Context().Err()
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !finished {
		t.Error("middleware returned while the handler was still running")
	}
	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("expected 504, got %d", rec.Code)
	}
}

func TestRequestTimeout_WrittenResponseStands(t *testing.T) {
	rec, err := runTimeout(10*time.Millisecond, func(c echo.Context) error {
		<-c.Request().Context().Done()
		return c.String(http.StatusAccepted, "queued")
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Errorf("expected the handler's 202, got %d", rec.Code)
	}
}

func TestRequestTimeout_HandlerErrorPassesThrough(t *testing.T) {
	_, err := runTimeout(time.Second, func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "visit not found")
	})
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", he.Code)
	}
}
