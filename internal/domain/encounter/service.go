package encounter

import (
	"context"
	"errors"
	"fmt"

	"github.com/clinicdesk/clinicdesk/internal/platform/db"
)

// ErrUnknownReference is returned when a visit names a patient or doctor
// that does not exist.
var ErrUnknownReference = errors.New("unknown reference")

type Service struct {
	visits   VisitRepository
	patients PatientLookup
	doctors  DoctorLookup
}

func NewService(v VisitRepository, p PatientLookup, d DoctorLookup) *Service {
	return &Service{visits: v, patients: p, doctors: d}
}

func (s *Service) CreateVisit(ctx context.Context, in VisitInput) (*Visit, error) {
	v, err := s.build(ctx, 0, in)
	if err != nil {
		return nil, err
	}
	if err := s.visits.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) GetVisit(ctx context.Context, id int64) (*Visit, error) {
	v, err := s.visits.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.refreshNames(ctx, v)
	return v, nil
}

func (s *Service) ListVisits(ctx context.Context) ([]*Visit, error) {
	visits, err := s.visits.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, v := range visits {
		s.refreshNames(ctx, v)
	}
	return visits, nil
}

func (s *Service) UpdateVisit(ctx context.Context, id int64, in VisitInput) (*Visit, error) {
	if _, err := s.visits.GetByID(ctx, id); err != nil {
		return nil, err
	}
	v, err := s.build(ctx, id, in)
	if err != nil {
		return nil, err
	}
	if err := s.visits.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) DeleteVisit(ctx context.Context, id int64) error {
	return s.visits.Delete(ctx, id)
}

// build validates in, resolves its references and defaults the status.
func (s *Service) build(ctx context.Context, id int64, in VisitInput) (*Visit, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p, err := s.patients.GetByID(ctx, in.PatientID)
	if err != nil {
		return nil, lookupError("patientId", in.PatientID, err)
	}
	d, err := s.doctors.GetByID(ctx, in.DoctorID)
	if err != nil {
		return nil, lookupError("doctorId", in.DoctorID, err)
	}

	v := &Visit{
		VisitID:     id,
		PatientID:   in.PatientID,
		DoctorID:    in.DoctorID,
		VisitDate:   in.VisitDate,
		Notes:       in.Notes,
		Status:      in.Status,
		PatientName: p.FullName(),
		DoctorName:  d.FullName(),
	}
	if v.Status == "" {
		v.Status = StatusScheduled
	}
	return v, nil
}

// refreshNames re-reads the denormalised names. Missing references keep the
// names recorded when the visit was saved.
func (s *Service) refreshNames(ctx context.Context, v *Visit) {
	if p, err := s.patients.GetByID(ctx, v.PatientID); err == nil {
		v.PatientName = p.FullName()
	}
	if d, err := s.doctors.GetByID(ctx, v.DoctorID); err == nil {
		v.DoctorName = d.FullName()
	}
}

func lookupError(field string, id int64, err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%s %d: %w", field, id, ErrUnknownReference)
	}
	return err
}
