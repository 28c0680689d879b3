// Package app wires the client side together: API client, session, router
// and one store per resource.
package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/clinicdesk/clinicdesk/internal/config"
	"github.com/clinicdesk/clinicdesk/internal/domain/auditlog"
	"github.com/clinicdesk/clinicdesk/internal/domain/billing"
	"github.com/clinicdesk/clinicdesk/internal/domain/encounter"
	"github.com/clinicdesk/clinicdesk/internal/domain/identity"
	"github.com/clinicdesk/clinicdesk/internal/platform/apiclient"
	"github.com/clinicdesk/clinicdesk/internal/platform/tokenstore"
	"github.com/clinicdesk/clinicdesk/internal/router"
	"github.com/clinicdesk/clinicdesk/internal/session"
	"github.com/clinicdesk/clinicdesk/internal/store"
	"github.com/clinicdesk/clinicdesk/internal/ui"
)

type options struct {
	tokens     tokenstore.Store
	httpClient *http.Client
	now        func() time.Time
}

type Option func(*options)

// WithTokenStore replaces the token file named by the config.
func WithTokenStore(s tokenstore.Store) Option {
	return func(o *options) { o.tokens = s }
}

// WithHTTPClient replaces the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithClock replaces time.Now for token expiry and fetch stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

type App struct {
	logger zerolog.Logger

	Client  *apiclient.Client
	Session *session.Session
	Router  *router.Router

	Patients *ui.PatientStore
	Doctors  *ui.DoctorStore
	Visits   *ui.VisitStore
	Fees     *ui.FeeStore
	Logs     *ui.LogStore
}

// New builds the app and restores any stored session.
func New(cfg *config.Config, logger zerolog.Logger, opts ...Option) (*App, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tokens == nil {
		path, err := cfg.TokenPath()
		if err != nil {
			return nil, err
		}
		o.tokens = tokenstore.NewFileStore(path)
	}

	clientOpts := []apiclient.Option{
		apiclient.WithTokens(o.tokens),
		apiclient.WithTimeout(cfg.RequestTimeout),
		apiclient.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		apiclient.WithLogger(logger),
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, apiclient.WithHTTPClient(o.httpClient))
	}
	client, err := apiclient.New(cfg.APIBaseURL, clientOpts...)
	if err != nil {
		return nil, err
	}

	sess := session.New(session.NewHTTPBackend(client), o.tokens,
		session.WithLogger(logger), session.WithClock(o.now))
	if err := sess.Hydrate(); err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}

	storeOpts := []store.Option{store.WithLogger(logger), store.WithClock(o.now)}
	currentUser := func() (int64, string) {
		if u := sess.CurrentUser(); u != nil {
			return u.UserID, u.Username
		}
		return 0, ""
	}

	return &App{
		logger:   logger,
		Client:   client,
		Session:  sess,
		Router:   router.New(sess),
		Patients: store.New[identity.Patient, identity.PatientInput]("patients", identity.NewPatientGateway(client), storeOpts...),
		Doctors:  store.New[identity.Doctor, identity.DoctorInput]("doctors", identity.NewDoctorGateway(client), storeOpts...),
		Visits:   store.New[encounter.Visit, encounter.VisitInput]("visits", encounter.NewVisitGateway(client), storeOpts...),
		Fees:     store.New[billing.Fee, billing.FeeInput]("fees", billing.NewFeeGateway(client), storeOpts...),
		Logs: store.New[auditlog.ActivityLog, auditlog.ActivityLogInput]("activity logs",
			auditlog.NewGateway(client, auditlog.WithGatewayClock(o.now), auditlog.WithCurrentUser(currentUser)), storeOpts...),
	}, nil
}

// Enter resolves path through the route guards.
func (a *App) Enter(path string) router.Navigation {
	return a.Router.Navigate(path)
}

type loader struct {
	load  func(context.Context) error
	count func() int
}

func (a *App) loaders() map[string]loader {
	return map[string]loader{
		router.DashboardPath + "/patients":      {a.Patients.LoadAll, a.Patients.Count},
		router.DashboardPath + "/doctors":       {a.Doctors.LoadAll, a.Doctors.Count},
		router.DashboardPath + "/visits":        {a.Visits.LoadAll, a.Visits.Count},
		router.DashboardPath + "/fees":          {a.Fees.LoadAll, a.Fees.Count},
		router.DashboardPath + "/activity-logs": {a.Logs.LoadAll, a.Logs.Count},
	}
}

// Refresh loads, concurrently, every resource the signed-in user may view
// and returns one tally per resource in route order. Tallies of failed
// loads are omitted; the first failure is returned.
func (a *App) Refresh(ctx context.Context) ([]ui.Tally, error) {
	loaders := a.loaders()

	var (
		mu     sync.Mutex
		loaded = make(map[string]bool)
		g      errgroup.Group
	)
	for _, rt := range a.Router.Routes() {
		l, ok := loaders[rt.Path]
		if !ok || !a.Router.Permits(rt.Path) {
			continue
		}
		path := rt.Path
		g.Go(func() error {
			if err := l.load(ctx); err != nil {
				return fmt.Errorf("load %s: %w", path, err)
			}
			mu.Lock()
			loaded[path] = true
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()

	var tallies []ui.Tally
	for _, rt := range a.Router.Routes() {
		if loaded[rt.Path] {
			tallies = append(tallies, ui.Tally{Name: rt.Title, Path: rt.Path, Count: loaders[rt.Path].count()})
		}
	}
	if err != nil {
		a.logger.Warn().Err(err).Msg("dashboard refresh incomplete")
	}
	return tallies, err
}

// Logout ends the session, forgets the stored token and empties every store.
func (a *App) Logout() {
	a.Session.Logout()
	a.Patients.Reset()
	a.Doctors.Reset()
	a.Visits.Reset()
	a.Fees.Reset()
	a.Logs.Reset()
}
