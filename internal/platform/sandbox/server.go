// Package sandbox is a self-contained clinic backend for demos and tests:
// in-memory tables behind the same REST surface the CLI talks to, seeded
// with one account per role.
package sandbox

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinicdesk/internal/domain/auditlog"
	"github.com/clinicdesk/clinicdesk/internal/domain/billing"
	"github.com/clinicdesk/clinicdesk/internal/domain/encounter"
	"github.com/clinicdesk/clinicdesk/internal/domain/identity"
	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/internal/platform/db"
	"github.com/clinicdesk/clinicdesk/internal/platform/middleware"
)

const shutdownTimeout = 10 * time.Second

type Config struct {
	SigningKey     []byte
	TokenTTL       time.Duration
	RequestTimeout time.Duration
	// RateLimit applies per client IP. Zero RequestsPerSecond disables it.
	RateLimit  middleware.RateLimitConfig
	BcryptCost int
	Now        func() time.Time
}

type Server struct {
	echo   *echo.Echo
	logger zerolog.Logger
	now    func() time.Time

	users    *db.Table[User]
	patients *db.Table[identity.Patient]
	doctors  *db.Table[identity.Doctor]
	visits   *db.Table[encounter.Visit]
	fees     *db.Table[billing.Fee]
	logs     *db.Table[auditlog.ActivityLog]

	accounts   *Accounts
	identity   *identity.Service
	encounters *encounter.Service
	billing    *billing.Service
	audit      *auditlog.Service
}

// New builds the server with empty tables. Call Reset or a Seeder to
// populate it.
func New(cfg Config, logger zerolog.Logger) *Server {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	s := &Server{
		logger:   logger,
		now:      cfg.Now,
		users:    db.NewTable[User]("users"),
		patients: db.NewTable[identity.Patient]("patients"),
		doctors:  db.NewTable[identity.Doctor]("doctors"),
		visits:   db.NewTable[encounter.Visit]("visits"),
		fees:     db.NewTable[billing.Fee]("fees"),
		logs:     db.NewTable[auditlog.ActivityLog]("activity_logs"),
	}

	patientRepo := identity.NewPatientRepoMem(s.patients)
	doctorRepo := identity.NewDoctorRepoMem(s.doctors)
	s.accounts = NewAccounts(s.users, cfg.SigningKey, cfg.TokenTTL, cfg.BcryptCost, cfg.Now)
	s.identity = identity.NewService(patientRepo, doctorRepo)
	s.encounters = encounter.NewService(encounter.NewVisitRepoMem(s.visits), patientRepo, doctorRepo)
	s.billing = billing.NewService(billing.NewFeeRepoMem(s.fees))
	s.audit = auditlog.NewService(auditlog.NewLogRepoMem(s.logs))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowHeaders:  []string{echo.HeaderAuthorization, echo.HeaderContentType, middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
	}))

	e.GET("/health", db.HealthHandler(s.users, s.patients, s.doctors, s.visits, s.fees, s.logs))

	api := e.Group("/api")
	api.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	if cfg.RateLimit.RequestsPerSecond > 0 {
		api.Use(middleware.RateLimit(cfg.RateLimit))
	}
	api.Use(auth.JWTMiddleware(auth.JWTConfig{
		SigningKey: cfg.SigningKey,
		Skipper:    auth.AuthSkipper,
		Now:        cfg.Now,
	}))
	api.Use(middleware.Audit(logger, s.audit))

	NewAuthHandler(s.accounts).RegisterRoutes(api)
	identity.NewHandler(s.identity).RegisterRoutes(api)
	encounter.NewHandler(s.encounters).RegisterRoutes(api)
	billing.NewHandler(s.billing).RegisterRoutes(api)
	auditlog.NewHandler(s.audit).RegisterRoutes(api)
	NewSeedHandler(s).RegisterRoutes(api)

	s.echo = e
	return s
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// Reset empties every table and recreates the demo accounts.
func (s *Server) Reset() error {
	s.users.Truncate()
	s.patients.Truncate()
	s.doctors.Truncate()
	s.visits.Truncate()
	s.fees.Truncate()
	s.logs.Truncate()
	_, err := SeedAccounts(s.accounts)
	return err
}

// Seed populates the server with generated demo data.
func (s *Server) Seed(ctx context.Context, cfg SeedConfig) (*SeedResult, error) {
	return NewSeeder(cfg, s.now()).Seed(ctx, s)
}

// Account is a user as exported, without the password hash.
type Account struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Export is a full dump of the sandbox tables.
type Export struct {
	Users        []Account              `json:"users"`
	Patients     []identity.Patient     `json:"patients"`
	Doctors      []identity.Doctor      `json:"doctors"`
	Visits       []encounter.Visit      `json:"visits"`
	Fees         []billing.Fee          `json:"fees"`
	ActivityLogs []auditlog.ActivityLog `json:"activityLogs"`
}

func (s *Server) Export() Export {
	users := s.users.List()
	accounts := make([]Account, len(users))
	for i, u := range users {
		accounts[i] = Account{UserID: u.UserID, Username: u.Username, Email: u.Email, Role: u.Role}
	}
	return Export{
		Users:        accounts,
		Patients:     s.patients.List(),
		Doctors:      s.doctors.List(),
		Visits:       s.visits.List(),
		Fees:         s.fees.List(),
		ActivityLogs: s.logs.List(),
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("sandbox listening")
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down sandbox")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}
