package encounter

import (
	"context"

	"github.com/clinicdesk/clinicdesk/internal/domain/identity"
)

type VisitRepository interface {
	Create(ctx context.Context, v *Visit) error
	GetByID(ctx context.Context, id int64) (*Visit, error)
	Update(ctx context.Context, v *Visit) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*Visit, error)
}

// PatientLookup resolves the patient a visit points at.
type PatientLookup interface {
	GetByID(ctx context.Context, id int64) (*identity.Patient, error)
}

// DoctorLookup resolves the doctor a visit points at.
type DoctorLookup interface {
	GetByID(ctx context.Context, id int64) (*identity.Doctor, error)
}
