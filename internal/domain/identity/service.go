package identity

import (
	"context"
)

type Service struct {
	patients PatientRepository
	doctors  DoctorRepository
}

func NewService(p PatientRepository, d DoctorRepository) *Service {
	return &Service{patients: p, doctors: d}
}

// -- Patient --

func (s *Service) CreatePatient(ctx context.Context, in PatientInput) (*Patient, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p := patientFromInput(0, in)
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context) ([]*Patient, error) {
	return s.patients.List(ctx)
}

func (s *Service) UpdatePatient(ctx context.Context, id int64, in PatientInput) (*Patient, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.patients.GetByID(ctx, id); err != nil {
		return nil, err
	}
	p := patientFromInput(id, in)
	if err := s.patients.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) DeletePatient(ctx context.Context, id int64) error {
	return s.patients.Delete(ctx, id)
}

func patientFromInput(id int64, in PatientInput) *Patient {
	return &Patient{
		PatientID:   id,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		DateOfBirth: in.DateOfBirth,
		Gender:      in.Gender,
		Phone:       in.Phone,
		Email:       in.Email,
		Address:     in.Address,
	}
}

// -- Doctor --

func (s *Service) CreateDoctor(ctx context.Context, in DoctorInput) (*Doctor, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	d := doctorFromInput(0, in)
	if err := s.doctors.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) GetDoctor(ctx context.Context, id int64) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context) ([]*Doctor, error) {
	return s.doctors.List(ctx)
}

func (s *Service) UpdateDoctor(ctx context.Context, id int64, in DoctorInput) (*Doctor, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.doctors.GetByID(ctx, id); err != nil {
		return nil, err
	}
	d := doctorFromInput(id, in)
	if err := s.doctors.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) DeleteDoctor(ctx context.Context, id int64) error {
	return s.doctors.Delete(ctx, id)
}

func doctorFromInput(id int64, in DoctorInput) *Doctor {
	return &Doctor{
		DoctorID:  id,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Specialty: in.Specialty,
		Phone:     in.Phone,
		Email:     in.Email,
	}
}
