package identity

import (
	"github.com/clinicdesk/clinicdesk/internal/platform/apiclient"
	"github.com/clinicdesk/clinicdesk/internal/store"
)

const (
	PatientsPath = "/api/patients"
	DoctorsPath  = "/api/doctors"
)

// NewPatientGateway maps patient CRUD onto /api/patients.
func NewPatientGateway(c *apiclient.Client) *apiclient.Resource[Patient, PatientInput] {
	return apiclient.NewResource[Patient, PatientInput](c, PatientsPath)
}

// NewDoctorGateway maps doctor CRUD onto /api/doctors.
func NewDoctorGateway(c *apiclient.Client) *apiclient.Resource[Doctor, DoctorInput] {
	return apiclient.NewResource[Doctor, DoctorInput](c, DoctorsPath)
}

var (
	_ store.Gateway[Patient, PatientInput] = (*apiclient.Resource[Patient, PatientInput])(nil)
	_ store.Gateway[Doctor, DoctorInput]   = (*apiclient.Resource[Doctor, DoctorInput])(nil)
)
