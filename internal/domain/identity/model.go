package identity

import (
	"strings"

	"github.com/clinicdesk/clinicdesk/internal/platform/validation"
	"github.com/clinicdesk/clinicdesk/pkg/jsontime"
)

// Genders offered by the patient form.
var Genders = []string{"Male", "Female", "Other"}

// Patient is a registered patient as the backend returns it.
type Patient struct {
	PatientID   int64          `json:"patientId"`
	FirstName   string         `json:"firstName"`
	LastName    string         `json:"lastName"`
	DateOfBirth *jsontime.Time `json:"dateOfBirth,omitempty"`
	Gender      string         `json:"gender,omitempty"`
	Phone       string         `json:"phone,omitempty"`
	Email       string         `json:"email,omitempty"`
	Address     string         `json:"address,omitempty"`
}

func (p Patient) Key() int64 { return p.PatientID }

// FullName is "First Last".
func (p Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Input returns the editable fields of p, for pre-filling an edit form.
func (p Patient) Input() PatientInput {
	return PatientInput{
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		DateOfBirth: p.DateOfBirth,
		Gender:      p.Gender,
		Phone:       p.Phone,
		Email:       p.Email,
		Address:     p.Address,
	}
}

// PatientInput is the create/update payload for a patient.
type PatientInput struct {
	FirstName   string         `json:"firstName" validate:"required"`
	LastName    string         `json:"lastName" validate:"required"`
	DateOfBirth *jsontime.Time `json:"dateOfBirth,omitempty"`
	Gender      string         `json:"gender,omitempty" validate:"omitempty,oneof=Male Female Other"`
	Phone       string         `json:"phone,omitempty"`
	Email       string         `json:"email,omitempty" validate:"omitempty,email"`
	Address     string         `json:"address,omitempty"`
}

func (in PatientInput) Validate() error {
	return validation.Struct(in)
}

// UpdatePayload adds the id the backend expects in PUT bodies.
func (in PatientInput) UpdatePayload(id int64) interface{} {
	return PatientUpdate{PatientInput: in, PatientID: id}
}

// PatientUpdate is the PUT body: the input plus the patient id.
type PatientUpdate struct {
	PatientInput
	PatientID int64 `json:"patientId"`
}

// Doctor is a practitioner who can be booked for visits.
type Doctor struct {
	DoctorID  int64  `json:"doctorId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Specialty string `json:"specialty,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
}

func (d Doctor) Key() int64 { return d.DoctorID }

func (d Doctor) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

func (d Doctor) Input() DoctorInput {
	return DoctorInput{
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Specialty: d.Specialty,
		Phone:     d.Phone,
		Email:     d.Email,
	}
}

// DoctorInput is the create/update payload for a doctor.
type DoctorInput struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Specialty string `json:"specialty,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
}

func (in DoctorInput) Validate() error {
	return validation.Struct(in)
}

func (in DoctorInput) UpdatePayload(id int64) interface{} {
	return DoctorUpdate{DoctorInput: in, DoctorID: id}
}

type DoctorUpdate struct {
	DoctorInput
	DoctorID int64 `json:"doctorId"`
}
