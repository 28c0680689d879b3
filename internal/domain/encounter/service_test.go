package encounter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/domain/identity"
	"github.com/clinicdesk/clinicdesk/internal/platform/db"
	"github.com/clinicdesk/clinicdesk/internal/platform/validation"
	"github.com/clinicdesk/clinicdesk/pkg/jsontime"
)

type fixture struct {
	svc      *Service
	patients identity.PatientRepository
	doctors  identity.DoctorRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		patients: identity.NewPatientRepoMem(db.NewTable[identity.Patient]("patients")),
		doctors:  identity.NewDoctorRepoMem(db.NewTable[identity.Doctor]("doctors")),
	}
	f.svc = NewService(NewVisitRepoMem(db.NewTable[Visit]("visits")), f.patients, f.doctors)

	ctx := context.Background()
	if err := f.patients.Create(ctx, &identity.Patient{FirstName: "Jane", LastName: "Doe"}); err != nil {
		t.Fatal(err)
	}
	if err := f.doctors.Create(ctx, &identity.Doctor{FirstName: "Gregory", LastName: "House"}); err != nil {
		t.Fatal(err)
	}
	return f
}

func visitOn(day int) VisitInput {
	return VisitInput{
		PatientID: 1,
		DoctorID:  1,
		VisitDate: jsontime.New(time.Date(2024, 3, day, 9, 30, 0, 0, time.UTC)),
	}
}

func TestService_CreateVisit_FillsNamesAndStatus(t *testing.T) {
	f := newFixture(t)
	v, err := f.svc.CreateVisit(context.Background(), visitOn(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.VisitID != 1 {
		t.Errorf("expected id 1, got %d", v.VisitID)
	}
	if v.PatientName != "Jane Doe" || v.DoctorName != "Gregory House" {
		t.Errorf("unexpected names %q / %q", v.PatientName, v.DoctorName)
	}
	if v.Status != StatusScheduled {
		t.Errorf("expected default status %q, got %q", StatusScheduled, v.Status)
	}
}

func TestService_CreateVisit_Invalid(t *testing.T) {
	f := newFixture(t)
	in := visitOn(1)
	in.VisitDate = jsontime.Time{}
	in.Status = "Pending"

	_, err := f.svc.CreateVisit(context.Background(), in)
	if !validation.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	verr := err.(*validation.Error)
	if !verr.Has("visitDate") || !verr.Has("status") {
		t.Errorf("expected visitDate and status failures, got %v", verr.Fields)
	}
}

func TestService_CreateVisit_UnknownReference(t *testing.T) {
	f := newFixture(t)
	in := visitOn(1)
	in.DoctorID = 99

	_, err := f.svc.CreateVisit(context.Background(), in)
	if !errors.Is(err, ErrUnknownReference) {
		t.Fatalf("expected ErrUnknownReference, got %v", err)
	}
}

func TestService_ListVisits_RefreshesNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.svc.CreateVisit(ctx, visitOn(1)); err != nil {
		t.Fatal(err)
	}

	p, _ := f.patients.GetByID(ctx, 1)
	p.LastName = "Smith"
	if err := f.patients.Update(ctx, p); err != nil {
		t.Fatal(err)
	}

	list, err := f.svc.ListVisits(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 || list[0].PatientName != "Jane Smith" {
		t.Errorf("expected refreshed patient name, got %+v", list)
	}
}

func TestService_ListVisits_KeepsNamesOfDeletedPatient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.CreateVisit(ctx, visitOn(1))
	f.patients.Delete(ctx, 1)

	v, err := f.svc.GetVisit(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.PatientName != "Jane Doe" {
		t.Errorf("expected stored name to survive, got %q", v.PatientName)
	}
}

func TestService_UpdateVisit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.CreateVisit(ctx, visitOn(1))

	in := visitOn(2)
	in.Status = StatusCompleted
	in.Notes = "follow-up in two weeks"
	v, err := f.svc.UpdateVisit(ctx, 1, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.VisitID != 1 || v.Status != StatusCompleted || v.VisitDate.Day() != 2 {
		t.Errorf("unexpected visit after update %+v", v)
	}
}

func TestService_UpdateVisit_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UpdateVisit(context.Background(), 42, visitOn(1))
	if !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_DeleteVisit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.CreateVisit(ctx, visitOn(1))

	if err := f.svc.DeleteVisit(ctx, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.GetVisit(ctx, 1); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStatuses(t *testing.T) {
	got := Statuses()
	if len(got) != 4 || got[0] != StatusScheduled || got[3] != StatusCancelled {
		t.Errorf("unexpected statuses %v", got)
	}
}
