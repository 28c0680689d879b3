package app

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicdesk/clinicdesk/internal/config"
	"github.com/clinicdesk/clinicdesk/internal/domain/billing"
	"github.com/clinicdesk/clinicdesk/internal/domain/encounter"
	"github.com/clinicdesk/clinicdesk/internal/platform/sandbox"
	"github.com/clinicdesk/clinicdesk/internal/platform/tokenstore"
	"github.com/clinicdesk/clinicdesk/internal/router"
	"github.com/clinicdesk/clinicdesk/internal/session"
	"github.com/clinicdesk/clinicdesk/internal/ui"
	"github.com/clinicdesk/clinicdesk/pkg/jsontime"
	"github.com/clinicdesk/clinicdesk/pkg/pagination"
)

var seedConfig = sandbox.SeedConfig{PatientCount: 3, DoctorCount: 2, VisitsPerPatient: 2, FeeCount: 4, Seed: 11}

func startSandbox(t *testing.T) *httptest.Server {
	t.Helper()
	srv := sandbox.New(sandbox.Config{
		SigningKey: []byte("app-test-key"),
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, zerolog.Nop())
	if err := srv.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := srv.Seed(context.Background(), seedConfig); err != nil {
		t.Fatalf("seed: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func newApp(t *testing.T, baseURL string, tokens tokenstore.Store) *App {
	t.Helper()
	cfg := &config.Config{APIBaseURL: baseURL, RateLimitBurst: 10}
	a, err := New(cfg, zerolog.Nop(), WithTokenStore(tokens))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a
}

func signIn(t *testing.T, a *App, username string) {
	t.Helper()
	next, banner, err := ui.Login(context.Background(), a.Session,
		session.Credentials{Username: username, Password: sandbox.DemoPassword})
	if err != nil {
		t.Fatalf("login %s: %v (%s)", username, err, banner)
	}
	if next != router.DashboardPath {
		t.Fatalf("expected to land on %s, got %s", router.DashboardPath, next)
	}
}

func tallyCounts(tallies []ui.Tally) map[string]int {
	out := make(map[string]int, len(tallies))
	for _, t := range tallies {
		out[t.Name] = t.Count
	}
	return out
}

func TestApp_SignedOutGoesToLogin(t *testing.T) {
	ts := startSandbox(t)
	a := newApp(t, ts.URL, tokenstore.NewMemoryStore())

	nav := a.Enter("/dashboard/patients")
	if nav.Target != router.LoginPath || !nav.Blocked {
		t.Errorf("expected redirect to login, got %+v", nav)
	}
}

func TestApp_ReceptionistDashboard(t *testing.T) {
	ts := startSandbox(t)
	a := newApp(t, ts.URL, tokenstore.NewMemoryStore())
	signIn(t, a, "reception")

	if nav := a.Enter(router.DashboardPath); nav.Target != "/dashboard/patients" {
		t.Errorf("expected default child, got %+v", nav)
	}

	tallies, err := a.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	counts := tallyCounts(tallies)
	want := map[string]int{"Patients": 3, "Doctors": 2, "Fees": 4}
	if len(counts) != len(want) {
		t.Fatalf("expected tallies %v, got %v", want, counts)
	}
	for name, n := range want {
		if counts[name] != n {
			t.Errorf("%s: expected %d, got %d", name, n, counts[name])
		}
	}

	var buf bytes.Buffer
	if err := ui.NewDashboard(a.Session, a.Router).Render(&buf, tallies); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "Welcome, reception!") || strings.Contains(out, "Visits") {
		t.Errorf("unexpected dashboard:\n%s", out)
	}
}

func TestApp_DoctorSeesVisitsOnly(t *testing.T) {
	ts := startSandbox(t)
	a := newApp(t, ts.URL, tokenstore.NewMemoryStore())
	signIn(t, a, "doc1")

	nav := a.Enter("/dashboard/patients")
	if !nav.Blocked || nav.Target != router.DashboardPath {
		t.Errorf("expected patients to be blocked, got %+v", nav)
	}

	tallies, err := a.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(tallies) != 1 || tallies[0].Name != "Visits" || tallies[0].Count != 6 {
		t.Errorf("unexpected tallies %+v", tallies)
	}

	screen := ui.NewScreen(ui.VisitDefinition(a.Patients, a.Doctors), a.Visits)
	defer screen.Close()
	var buf bytes.Buffer
	if err := screen.Render(&buf, pagination.All); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), ui.Unknown) {
		t.Errorf("visit names should come from the server:\n%s", buf.String())
	}
}

func TestApp_AdminMutationsReachActivityLog(t *testing.T) {
	ts := startSandbox(t)
	a := newApp(t, ts.URL, tokenstore.NewMemoryStore())
	signIn(t, a, "admin")
	ctx := context.Background()

	tallies, err := a.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(tallies) != 5 {
		t.Fatalf("expected every resource for admin, got %+v", tallies)
	}

	screen := ui.NewScreen(ui.FeeDefinition(), a.Fees)
	defer screen.Close()
	fee, err := screen.Submit(ctx, billing.FeeInput{ServiceName: "MRI", Amount: 400})
	if err != nil {
		t.Fatalf("create fee: %v", err)
	}
	if screen.Banner().Kind != ui.BannerSuccess {
		t.Errorf("expected success banner, got %v", screen.Banner())
	}

	visit, err := a.Visits.Create(ctx, encounter.VisitInput{
		PatientID: a.Patients.Items()[0].PatientID,
		DoctorID:  a.Doctors.Items()[0].DoctorID,
		VisitDate: jsontime.New(time.Now().Add(24 * time.Hour)),
	})
	if err != nil {
		t.Fatalf("create visit: %v", err)
	}
	if visit.Status != encounter.StatusScheduled || visit.PatientName == "" {
		t.Errorf("expected server defaults on %+v", visit)
	}

	if err := a.Logs.LoadAll(ctx); err != nil {
		t.Fatalf("load logs: %v", err)
	}
	logs := a.Logs.Items()
	if len(logs) != 2 {
		t.Fatalf("expected 2 activity logs, got %+v", logs)
	}
	details := map[string]string{}
	for _, l := range logs {
		details[l.Details] = l.Username
	}
	for _, want := range []string{
		"Created fees #" + strconv.FormatInt(fee.FeeID, 10),
		"Created visits #" + strconv.FormatInt(visit.VisitID, 10),
	} {
		if details[want] != "admin" {
			t.Errorf("missing log %q by admin in %v", want, details)
		}
	}
}

func TestApp_UnknownVisitReferenceRejected(t *testing.T) {
	ts := startSandbox(t)
	a := newApp(t, ts.URL, tokenstore.NewMemoryStore())
	signIn(t, a, "doc1")

	_, err := a.Visits.Create(context.Background(), encounter.VisitInput{
		PatientID: 999,
		DoctorID:  1,
		VisitDate: jsontime.New(time.Now()),
	})
	if err == nil {
		t.Fatal("expected an error for an unknown patient")
	}
	if a.Visits.Err() == "" {
		t.Error("expected the store to record the failure")
	}
}

func TestApp_SessionSurvivesRestartUntilLogout(t *testing.T) {
	ts := startSandbox(t)
	tokens := tokenstore.NewMemoryStore()

	first := newApp(t, ts.URL, tokens)
	signIn(t, first, "user1")

	second := newApp(t, ts.URL, tokens)
	if !second.Session.IsAuthenticated() || second.Session.CurrentUser().Username != "user1" {
		t.Fatalf("expected restored session, got %+v", second.Session.Snapshot())
	}
	if nav := second.Enter("/dashboard/profile"); nav.Blocked {
		t.Errorf("profile should be open to any user, got %+v", nav)
	}

	second.Logout()
	third := newApp(t, ts.URL, tokens)
	if third.Session.IsAuthenticated() {
		t.Error("expected logout to clear the stored token")
	}
}

func TestApp_RegisterWhileSignedInKeepsGuards(t *testing.T) {
	ts := startSandbox(t)
	a := newApp(t, ts.URL, tokenstore.NewMemoryStore())
	signIn(t, a, "user1")
	logs := router.DashboardPath + "/activity-logs"

	if a.Router.Permits(logs) {
		t.Fatal("user1 should not reach the activity log")
	}
	err := a.Session.Register(context.Background(), session.Registration{
		Username: "newadmin", Email: "newadmin@clinic.example", Password: "secret1", Role: "Admin",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if a.Router.Permits(logs) {
		t.Error("registering an account must not change the signed-in role")
	}
	if u := a.Session.CurrentUser(); u.Username != "user1" {
		t.Errorf("expected user1 to stay signed in, got %+v", u)
	}
}

func TestApp_LogoutEmptiesStores(t *testing.T) {
	ts := startSandbox(t)
	a := newApp(t, ts.URL, tokenstore.NewMemoryStore())
	signIn(t, a, "admin")
	if _, err := a.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if a.Patients.Count() == 0 || a.Fees.Count() == 0 {
		t.Fatal("expected loaded stores before logout")
	}

	a.Logout()
	for name, n := range map[string]int{
		"patients": a.Patients.Count(),
		"doctors":  a.Doctors.Count(),
		"visits":   a.Visits.Count(),
		"fees":     a.Fees.Count(),
		"logs":     a.Logs.Count(),
	} {
		if n != 0 {
			t.Errorf("expected %s to be empty after logout, got %d", name, n)
		}
	}
}

func TestApp_RejectsBadBaseURL(t *testing.T) {
	cfg := &config.Config{APIBaseURL: "localhost:5147"}
	if _, err := New(cfg, zerolog.Nop(), WithTokenStore(tokenstore.NewMemoryStore())); err == nil {
		t.Error("expected an error for a base url without scheme")
	}
}
