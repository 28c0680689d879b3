package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

// mockRecorder collects audit entries for assertions.
type mockRecorder struct {
	mu      sync.Mutex
	entries []AuditEntry
	err     error
}

func (m *mockRecorder) RecordAccess(entry AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return m.err
}

func (m *mockRecorder) last() AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[len(m.entries)-1]
}

func (m *mockRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func newTestContext(method, path string, opts ...func(*http.Request)) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withIdentity(id auth.Identity) func(*http.Request) {
	return func(req *http.Request) {
		*req = *req.WithContext(auth.WithIdentity(req.Context(), id))
	}
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestAudit_RecordsCreate(t *testing.T) {
	rec := &mockRecorder{}
	c, _ := newTestContext(http.MethodPost, "/api/patients",
		withIdentity(auth.Identity{UserID: 2, Username: "reception", Role: auth.RoleReceptionist}))
	c.Set("request_id", "req-1")

	handler := func(c echo.Context) error {
		c.Set("resource_id", int64(14))
		return c.JSON(http.StatusCreated, map[string]int{"patientId": 14})
	}

	if err := Audit(zerolog.New(os.Stderr), rec)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.count() != 1 {
		t.Fatalf("expected 1 entry, got %d", rec.count())
	}
	e := rec.last()
	if e.Action != "Created" || e.Resource != "patients" || e.ResourceID != "14" {
		t.Errorf("unexpected entry %+v", e)
	}
	if e.UserID != 2 || e.Username != "reception" {
		t.Errorf("expected identity on entry, got %+v", e)
	}
	if e.RequestID != "req-1" {
		t.Errorf("expected request id req-1, got %s", e.RequestID)
	}
	if e.Details() != "Created patients #14" {
		t.Errorf("unexpected details %q", e.Details())
	}
}

func TestAudit_UpdateAndDeleteTakeIDFromPath(t *testing.T) {
	tests := []struct {
		method string
		action string
	}{
		{http.MethodPut, "Updated"},
		{http.MethodPatch, "Updated"},
		{http.MethodDelete, "Deleted"},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			rec := &mockRecorder{}
			c, _ := newTestContext(tt.method, "/api/fees/7")
			if err := Audit(zerolog.Nop(), rec)(okHandler)(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			e := rec.last()
			if e.Action != tt.action || e.Resource != "fees" || e.ResourceID != "7" {
				t.Errorf("unexpected entry %+v", e)
			}
		})
	}
}

func TestAudit_SkipsReadsAndExcludedPaths(t *testing.T) {
	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/patients"},
		{http.MethodPost, "/api/auth/login"},
		{http.MethodPost, "/api/activitylogs"},
		{http.MethodDelete, "/api/activitylogs/3"},
		{http.MethodPost, "/api/sandbox/reset"},
		{http.MethodPost, "/health"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := &mockRecorder{}
			c, _ := newTestContext(tt.method, tt.path)
			if err := Audit(zerolog.Nop(), rec)(okHandler)(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.count() != 0 {
				t.Errorf("expected no entry, got %+v", rec.entries)
			}
		})
	}
}

func TestAudit_SkipsFailedMutations(t *testing.T) {
	rec := &mockRecorder{}
	c, _ := newTestContext(http.MethodDelete, "/api/visits/99")
	handler := func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "visit not found")
	}

	err := Audit(zerolog.Nop(), rec)(handler)(c)
	if err == nil {
		t.Fatal("expected handler error to propagate")
	}
	if rec.count() != 0 {
		t.Errorf("expected no entry for failed mutation, got %d", rec.count())
	}
}

func TestAudit_RecorderErrorDoesNotFailRequest(t *testing.T) {
	rec := &mockRecorder{err: errors.New("disk full")}
	c, _ := newTestContext(http.MethodPut, "/api/doctors/1")

	if err := Audit(zerolog.Nop(), rec)(okHandler)(c); err != nil {
		t.Fatalf("recorder failure should not fail the request: %v", err)
	}
	if rec.count() != 1 {
		t.Errorf("expected recorder to be called once, got %d", rec.count())
	}
}

func TestAudit_RecorderFunc(t *testing.T) {
	var got AuditEntry
	fn := AuditRecorderFunc(func(e AuditEntry) error {
		got = e
		return nil
	})
	c, _ := newTestContext(http.MethodDelete, "/api/doctors/4")

	if err := Audit(zerolog.Nop(), fn)(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Details() != "Deleted doctors #4" {
		t.Errorf("unexpected details %q", got.Details())
	}
}

func TestExtractResource(t *testing.T) {
	tests := []struct {
		path     string
		resource string
		id       string
	}{
		{"/api/patients", "patients", ""},
		{"/api/Patients/12", "patients", "12"},
		{"/api/fees/", "fees", ""},
	}
	for _, tt := range tests {
		r, id := extractResource(tt.path)
		if r != tt.resource || id != tt.id {
			t.Errorf("%s: expected (%s, %s), got (%s, %s)", tt.path, tt.resource, tt.id, r, id)
		}
	}
}
