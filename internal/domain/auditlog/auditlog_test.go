package auditlog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/apiclient"
	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/internal/platform/db"
	"github.com/clinicdesk/clinicdesk/internal/platform/middleware"
	"github.com/clinicdesk/clinicdesk/internal/store"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestService() *Service {
	return NewService(NewLogRepoMem(db.NewTable[ActivityLog]("activitylogs")))
}

// newLogServer serves the log endpoint with every request made as role.
func newLogServer(t *testing.T, svc *Service, role string) *apiclient.Client {
	t.Helper()
	e := echo.New()
	api := e.Group("/api", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := auth.WithIdentity(c.Request().Context(), auth.Identity{UserID: 1, Username: "admin", Role: role})
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})
	NewHandler(svc).RegisterRoutes(api)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	c, err := apiclient.New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestService_RecordAccess(t *testing.T) {
	svc := newTestService()
	err := svc.RecordAccess(middleware.AuditEntry{
		UserID:     2,
		Username:   "reception",
		Action:     ActionCreated,
		Resource:   "patients",
		ResourceID: "14",
		Timestamp:  fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logs, _ := svc.ListLogs(context.Background())
	if len(logs) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(logs))
	}
	l := logs[0]
	if l.LogID != 1 || l.UserID != 2 || l.Username != "reception" || l.Details != "Created patients #14" {
		t.Errorf("unexpected entry %+v", l)
	}
}

func TestService_ListLogs_NewestFirst(t *testing.T) {
	svc := newTestService()
	for i := 0; i < 3; i++ {
		svc.RecordAccess(middleware.AuditEntry{Action: ActionUpdated, Resource: "fees", Timestamp: fixedNow.Add(time.Duration(i) * time.Minute)})
	}
	logs, _ := svc.ListLogs(context.Background())
	if logs[0].LogID != 3 || logs[2].LogID != 1 {
		t.Errorf("expected newest first, got ids %d..%d", logs[0].LogID, logs[2].LogID)
	}
}

func TestHandler_ListLogs_AdminOnly(t *testing.T) {
	c := newLogServer(t, newTestService(), auth.RoleDoctor)
	_, err := NewGateway(c).List(context.Background())
	if apiclient.StatusCode(err) != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestGateway_ListFeedsGet(t *testing.T) {
	svc := newTestService()
	svc.RecordAccess(middleware.AuditEntry{UserID: 1, Action: ActionDeleted, Resource: "visits", ResourceID: "3", Timestamp: fixedNow})
	g := NewGateway(newLogServer(t, svc, auth.RoleAdmin))
	ctx := context.Background()

	if _, err := g.Get(ctx, 1); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found before listing, got %v", err)
	}
	logs, err := g.List(ctx)
	if err != nil || len(logs) != 1 {
		t.Fatalf("list: %v %+v", err, logs)
	}
	got, err := g.Get(ctx, 1)
	if err != nil || got.Details != "Deleted visits #3" {
		t.Errorf("unexpected get %+v %v", got, err)
	}
}

func TestGateway_ListDropsEntriesNoLongerServed(t *testing.T) {
	table := db.NewTable[ActivityLog]("activitylogs")
	svc := NewService(NewLogRepoMem(table))
	svc.RecordAccess(middleware.AuditEntry{UserID: 1, Action: ActionCreated, Resource: "fees", ResourceID: "2", Timestamp: fixedNow})
	g := NewGateway(newLogServer(t, svc, auth.RoleAdmin), WithGatewayClock(func() time.Time { return fixedNow }))
	ctx := context.Background()

	if _, err := g.List(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}
	local, _ := g.Create(ctx, ActivityLogInput{Details: "noted locally"})

	table.Truncate()
	if _, err := g.List(ctx); err != nil {
		t.Fatalf("relist: %v", err)
	}
	if _, err := g.Get(ctx, 1); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected server entry to be gone, got %v", err)
	}
	if got, err := g.Get(ctx, local.LogID); err != nil || got.Details != "noted locally" {
		t.Errorf("expected local entry to survive, got %+v %v", got, err)
	}
}

func TestGateway_GetMissingMessage(t *testing.T) {
	g := NewGateway(nil)
	_, err := g.Get(context.Background(), 99)
	if err == nil || err.Error() != "activity log not found" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestGateway_CreateSynthesisesEntry(t *testing.T) {
	g := NewGateway(nil,
		WithGatewayClock(func() time.Time { return fixedNow }),
		WithCurrentUser(func() (int64, string) { return 4, "admin" }),
	)
	ctx := context.Background()

	first, _ := g.Create(ctx, ActivityLogInput{Details: "exported report"})
	second, _ := g.Create(ctx, ActivityLogInput{Action: ActionUpdated})

	if first.LogID != fixedNow.UnixMilli() {
		t.Errorf("expected id from clock, got %d", first.LogID)
	}
	if second.LogID != first.LogID+1 {
		t.Errorf("expected bumped id %d, got %d", first.LogID+1, second.LogID)
	}
	if first.Action != ActionCreated || first.UserID != 4 || first.Username != "admin" {
		t.Errorf("unexpected entry %+v", first)
	}
}

func TestGateway_CreateWithoutUser(t *testing.T) {
	g := NewGateway(nil, WithCurrentUser(func() (int64, string) { return 0, "" }))
	l, _ := g.Create(context.Background(), ActivityLogInput{Action: ActionCreated})
	if l.UserID != defaultUserID {
		t.Errorf("expected default user id, got %d", l.UserID)
	}
}

func TestGateway_UpdateMergesAndDeleteAlwaysSucceeds(t *testing.T) {
	g := NewGateway(nil, WithGatewayClock(func() time.Time { return fixedNow }))
	ctx := context.Background()
	l, _ := g.Create(ctx, ActivityLogInput{Action: ActionCreated, Details: "first"})

	u, err := g.Update(ctx, l.LogID, ActivityLogInput{Details: "second"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.Action != ActionCreated || u.Details != "second" {
		t.Errorf("unexpected merge %+v", u)
	}
	if _, err := g.Update(ctx, 1, ActivityLogInput{}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected not found for unknown id, got %v", err)
	}

	if err := g.Delete(ctx, l.LogID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := g.Delete(ctx, l.LogID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestStore_CreateActivityLog(t *testing.T) {
	g := NewGateway(nil)
	s := store.New[ActivityLog, ActivityLogInput]("activitylogs", g)

	before := time.Now()
	l, err := s.Create(context.Background(), ActivityLogInput{Action: ActionCreated})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	items := s.Items()
	if len(items) != 1 || items[0].LogID != l.LogID || l.LogID == 0 {
		t.Fatalf("expected the new entry in items, got %+v", items)
	}
	if items[0].Action != ActionCreated {
		t.Errorf("expected action Created, got %q", items[0].Action)
	}
	if d := items[0].Timestamp.Sub(before); d < 0 || d > time.Minute {
		t.Errorf("timestamp %v not near now", items[0].Timestamp)
	}
	if s.Err() != "" {
		t.Errorf("expected no error, got %q", s.Err())
	}
}

func TestStore_LoadOneMissingSetsError(t *testing.T) {
	s := store.New[ActivityLog, ActivityLogInput]("activitylogs", NewGateway(nil))
	if _, err := s.LoadOne(context.Background(), 5); err == nil {
		t.Fatal("expected error")
	}
	if s.Err() != "activity log not found" {
		t.Errorf("unexpected error message %q", s.Err())
	}
}
