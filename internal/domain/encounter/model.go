package encounter

import (
	"github.com/clinicdesk/clinicdesk/internal/platform/validation"
	"github.com/clinicdesk/clinicdesk/pkg/jsontime"
)

// Visit statuses.
const (
	StatusScheduled  = "Scheduled"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
	StatusCancelled  = "Cancelled"
)

// Statuses lists every visit status in workflow order.
func Statuses() []string {
	return []string{StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled}
}

// Visit is one patient appointment with one doctor. PatientName and
// DoctorName are filled in by the server.
type Visit struct {
	VisitID     int64         `json:"visitId"`
	PatientID   int64         `json:"patientId"`
	DoctorID    int64         `json:"doctorId"`
	VisitDate   jsontime.Time `json:"visitDate"`
	Notes       string        `json:"notes,omitempty"`
	Status      string        `json:"status,omitempty"`
	PatientName string        `json:"patientName,omitempty"`
	DoctorName  string        `json:"doctorName,omitempty"`
}

func (v Visit) Key() int64 { return v.VisitID }

func (v Visit) Input() VisitInput {
	return VisitInput{
		PatientID: v.PatientID,
		DoctorID:  v.DoctorID,
		VisitDate: v.VisitDate,
		Notes:     v.Notes,
		Status:    v.Status,
	}
}

// VisitInput is the create/update payload for a visit.
type VisitInput struct {
	PatientID int64         `json:"patientId" validate:"required"`
	DoctorID  int64         `json:"doctorId" validate:"required"`
	VisitDate jsontime.Time `json:"visitDate" validate:"required"`
	Notes     string        `json:"notes,omitempty"`
	Status    string        `json:"status,omitempty" validate:"omitempty,oneof='Scheduled' 'In Progress' 'Completed' 'Cancelled'"`
}

func (in VisitInput) Validate() error {
	return validation.Struct(in)
}

func (in VisitInput) UpdatePayload(id int64) interface{} {
	return VisitUpdate{VisitInput: in, VisitID: id}
}

// VisitUpdate is the PUT body: the input plus the visit id.
type VisitUpdate struct {
	VisitInput
	VisitID int64 `json:"visitId"`
}
