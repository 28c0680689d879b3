package sandbox

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/domain/billing"
	"github.com/clinicdesk/clinicdesk/internal/domain/encounter"
	"github.com/clinicdesk/clinicdesk/internal/domain/identity"
	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/pkg/jsontime"
)

// DemoPassword is the password of every demo account.
const DemoPassword = "password"

// DemoAccounts are created on every seed and reset, one per role.
var DemoAccounts = []Signup{
	{Username: "admin", Email: "admin@clinic.example", Password: DemoPassword, Role: auth.RoleAdmin},
	{Username: "reception", Email: "reception@clinic.example", Password: DemoPassword, Role: auth.RoleReceptionist},
	{Username: "doc1", Email: "doc1@clinic.example", Password: DemoPassword, Role: auth.RoleDoctor},
	{Username: "user1", Email: "user1@clinic.example", Password: DemoPassword, Role: auth.RoleUser},
}

// SeedConfig controls how much demo data to generate.
type SeedConfig struct {
	PatientCount     int   `json:"patientCount"`
	DoctorCount      int   `json:"doctorCount"`
	VisitsPerPatient int   `json:"visitsPerPatient"`
	FeeCount         int   `json:"feeCount"`
	Seed             int64 `json:"seed"`
}

// DefaultSeedConfig returns the data set the sandbox starts with.
func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		PatientCount:     12,
		DoctorCount:      4,
		VisitsPerPatient: 2,
		FeeCount:         len(feeCatalog),
		Seed:             42,
	}
}

// withDefaults fills zero counts from DefaultSeedConfig.
func (c SeedConfig) withDefaults() SeedConfig {
	d := DefaultSeedConfig()
	if c.PatientCount == 0 {
		c.PatientCount = d.PatientCount
	}
	if c.DoctorCount == 0 {
		c.DoctorCount = d.DoctorCount
	}
	if c.VisitsPerPatient == 0 {
		c.VisitsPerPatient = d.VisitsPerPatient
	}
	if c.FeeCount == 0 {
		c.FeeCount = d.FeeCount
	}
	return c
}

// SeedResult summarizes a seeding run.
type SeedResult struct {
	Users    int           `json:"users"`
	Patients int           `json:"patients"`
	Doctors  int           `json:"doctors"`
	Visits   int           `json:"visits"`
	Fees     int           `json:"fees"`
	Duration time.Duration `json:"duration"`
}

var (
	firstNamesMale = []string{
		"James", "Robert", "John", "Michael", "David", "William", "Richard",
		"Joseph", "Thomas", "Charles", "Daniel", "Matthew", "Anthony", "Mark",
		"Steven", "Paul", "Andrew", "Kevin", "Brian", "George",
	}
	firstNamesFemale = []string{
		"Mary", "Patricia", "Jennifer", "Linda", "Barbara", "Elizabeth",
		"Susan", "Jessica", "Sarah", "Karen", "Lisa", "Nancy", "Margaret",
		"Emily", "Michelle", "Laura", "Rachel", "Anna", "Emma", "Helen",
	}
	lastNames = []string{
		"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
		"Davis", "Rodriguez", "Martinez", "Wilson", "Anderson", "Taylor",
		"Moore", "Jackson", "Martin", "Lee", "Thompson", "White", "Harris",
		"Clark", "Lewis", "Walker", "Young", "King", "Wright", "Scott",
	}
	streets = []string{
		"123 Main St", "456 Oak Ave", "789 Elm St", "321 Pine Rd",
		"654 Maple Dr", "987 Cedar Ln", "147 Birch Blvd", "258 Walnut Way",
	}
	cities = []string{
		"Springfield", "Riverside", "Fairview", "Franklin", "Greenville",
		"Madison", "Georgetown", "Clinton",
	}
	specialties = []string{
		"General Practice", "Cardiology", "Dermatology", "Pediatrics",
		"Orthopedics", "Neurology", "Gynecology", "Ophthalmology",
	}
	visitNotes = []string{
		"Annual check-up",
		"Follow-up on blood pressure",
		"Persistent cough for two weeks",
		"Lower back pain",
		"Medication review",
		"Skin rash on forearm",
		"Post-operative review",
		"Vaccination appointment",
		"Headaches and dizziness",
		"",
	}
	feeCatalog = []billing.FeeInput{
		{ServiceName: "General Consultation", Amount: 50},
		{ServiceName: "Follow-up Visit", Amount: 35},
		{ServiceName: "Blood Test", Amount: 25},
		{ServiceName: "X-Ray", Amount: 80},
		{ServiceName: "ECG", Amount: 60},
		{ServiceName: "Vaccination", Amount: 20},
		{ServiceName: "Ultrasound", Amount: 120},
		{ServiceName: "Physical Therapy Session", Amount: 70},
	}
)

// DataGenerator produces deterministic demo clinic records. Visit dates are
// spread around anchor: past visits are mostly Completed, future ones are
// Scheduled.
type DataGenerator struct {
	rng    *rand.Rand
	anchor time.Time
}

// NewDataGenerator returns a generator seeded for reproducibility. If seed is
// 0 a time-based seed is chosen.
func NewDataGenerator(seed int64, anchor time.Time) *DataGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &DataGenerator{
		rng:    rand.New(rand.NewSource(seed)),
		anchor: anchor.UTC().Truncate(24 * time.Hour),
	}
}

func (g *DataGenerator) pick(pool []string) string {
	return pool[g.rng.Intn(len(pool))]
}

func (g *DataGenerator) randomBirthDate() time.Time {
	y := 1940 + g.rng.Intn(2015-1940+1)
	m := time.Month(1 + g.rng.Intn(12))
	d := 1 + g.rng.Intn(28)
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (g *DataGenerator) randomPhone() string {
	return fmt.Sprintf("(%03d) %03d-%04d",
		200+g.rng.Intn(800),
		200+g.rng.Intn(800),
		g.rng.Intn(10000),
	)
}

func emailFor(first, last, domain string) string {
	return strings.ToLower(first+"."+last) + "@" + domain
}

func (g *DataGenerator) GeneratePatient() identity.PatientInput {
	var first, gender string
	if g.rng.Intn(2) == 0 {
		first, gender = g.pick(firstNamesMale), "Male"
	} else {
		first, gender = g.pick(firstNamesFemale), "Female"
	}
	last := g.pick(lastNames)

	return identity.PatientInput{
		FirstName:   first,
		LastName:    last,
		DateOfBirth: jsontime.Ptr(g.randomBirthDate()),
		Gender:      gender,
		Phone:       g.randomPhone(),
		Email:       emailFor(first, last, "example.com"),
		Address:     g.pick(streets) + ", " + g.pick(cities),
	}
}

func (g *DataGenerator) GenerateDoctor() identity.DoctorInput {
	pool := firstNamesMale
	if g.rng.Intn(2) == 1 {
		pool = firstNamesFemale
	}
	first := g.pick(pool)
	last := g.pick(lastNames)
	return identity.DoctorInput{
		FirstName: first,
		LastName:  last,
		Specialty: g.pick(specialties),
		Phone:     g.randomPhone(),
		Email:     emailFor(first, last, "clinic.example"),
	}
}

// GenerateVisit books patientID with doctorID between 60 days before and
// 30 days after the anchor, during clinic hours.
func (g *DataGenerator) GenerateVisit(patientID, doctorID int64) encounter.VisitInput {
	day := g.anchor.AddDate(0, 0, g.rng.Intn(91)-60)
	at := day.Add(time.Duration(8+g.rng.Intn(9))*time.Hour + time.Duration(g.rng.Intn(4)*15)*time.Minute)

	status := encounter.StatusScheduled
	if at.Before(g.anchor) {
		status = encounter.StatusCompleted
		if g.rng.Intn(7) == 0 {
			status = encounter.StatusCancelled
		}
	}

	return encounter.VisitInput{
		PatientID: patientID,
		DoctorID:  doctorID,
		VisitDate: jsontime.New(at),
		Notes:     g.pick(visitNotes),
		Status:    status,
	}
}

// Fees returns the first n entries of the price list.
func (g *DataGenerator) Fees(n int) []billing.FeeInput {
	if n > len(feeCatalog) {
		n = len(feeCatalog)
	}
	out := make([]billing.FeeInput, n)
	copy(out, feeCatalog[:n])
	return out
}

// Seeder writes generated data into a Server through its domain services,
// so every record passes the same validation as API writes.
type Seeder struct {
	generator *DataGenerator
	config    SeedConfig
}

func NewSeeder(config SeedConfig, anchor time.Time) *Seeder {
	config = config.withDefaults()
	return &Seeder{
		generator: NewDataGenerator(config.Seed, anchor),
		config:    config,
	}
}

// SeedAccounts creates any missing demo account.
func SeedAccounts(a *Accounts) (int, error) {
	created := 0
	for _, s := range DemoAccounts {
		if _, err := a.Register(s); err != nil {
			if errors.Is(err, ErrUsernameTaken) {
				continue
			}
			return created, fmt.Errorf("seeding account %s: %w", s.Username, err)
		}
		created++
	}
	return created, nil
}

// Seed creates the demo accounts and the configured patients, doctors,
// visits and fees. Visits are assigned to doctors round-robin.
func (s *Seeder) Seed(ctx context.Context, srv *Server) (*SeedResult, error) {
	start := time.Now()
	result := &SeedResult{}

	users, err := SeedAccounts(srv.accounts)
	if err != nil {
		return nil, err
	}
	result.Users = users

	var doctorIDs []int64
	for i := 0; i < s.config.DoctorCount; i++ {
		d, err := srv.identity.CreateDoctor(ctx, s.generator.GenerateDoctor())
		if err != nil {
			return nil, fmt.Errorf("seeding doctor: %w", err)
		}
		doctorIDs = append(doctorIDs, d.DoctorID)
	}
	result.Doctors = len(doctorIDs)

	for i := 0; i < s.config.PatientCount; i++ {
		p, err := srv.identity.CreatePatient(ctx, s.generator.GeneratePatient())
		if err != nil {
			return nil, fmt.Errorf("seeding patient: %w", err)
		}
		result.Patients++

		if len(doctorIDs) == 0 {
			continue
		}
		for j := 0; j < s.config.VisitsPerPatient; j++ {
			doctorID := doctorIDs[(i+j)%len(doctorIDs)]
			if _, err := srv.encounters.CreateVisit(ctx, s.generator.GenerateVisit(p.PatientID, doctorID)); err != nil {
				return nil, fmt.Errorf("seeding visit: %w", err)
			}
			result.Visits++
		}
	}

	for _, in := range s.generator.Fees(s.config.FeeCount) {
		if _, err := srv.billing.CreateFee(ctx, in); err != nil {
			return nil, fmt.Errorf("seeding fee: %w", err)
		}
		result.Fees++
	}

	result.Duration = time.Since(start)
	return result, nil
}

// SeedHandler exposes sandbox data management to admins.
type SeedHandler struct {
	srv *Server
	mu  sync.Mutex
}

func NewSeedHandler(srv *Server) *SeedHandler {
	return &SeedHandler{srv: srv}
}

// RegisterRoutes registers sandbox routes on the API group.
func (h *SeedHandler) RegisterRoutes(api *echo.Group) {
	admin := auth.RequireRole(auth.RoleAdmin)
	api.POST("/sandbox/seed", h.handleSeed, admin)
	api.POST("/sandbox/reset", h.handleReset, admin)
	api.GET("/sandbox/export", h.handleExport, admin)
}

func (h *SeedHandler) handleSeed(c echo.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var cfg SeedConfig
	if err := c.Bind(&cfg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if cfg.PatientCount < 0 || cfg.DoctorCount < 0 || cfg.VisitsPerPatient < 0 || cfg.FeeCount < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "counts must not be negative")
	}

	result, err := NewSeeder(cfg, h.srv.now()).Seed(c.Request().Context(), h.srv)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *SeedHandler) handleReset(c echo.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.srv.Reset(); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "reset"})
}

func (h *SeedHandler) handleExport(c echo.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	return c.JSON(http.StatusOK, h.srv.Export())
}
