package identity

import (
	"context"

	"github.com/clinicdesk/clinicdesk/internal/platform/db"
)

type patientRepoMem struct {
	tbl *db.Table[Patient]
}

// NewPatientRepoMem stores patients in tbl.
func NewPatientRepoMem(tbl *db.Table[Patient]) PatientRepository {
	return &patientRepoMem{tbl: tbl}
}

func (r *patientRepoMem) Create(_ context.Context, p *Patient) error {
	*p = r.tbl.Insert(func(id int64) Patient {
		row := *p
		row.PatientID = id
		return row
	})
	return nil
}

func (r *patientRepoMem) GetByID(_ context.Context, id int64) (*Patient, error) {
	p, err := r.tbl.Get(id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *patientRepoMem) Update(_ context.Context, p *Patient) error {
	_, err := r.tbl.Update(p.PatientID, func(Patient) Patient { return *p })
	return err
}

func (r *patientRepoMem) Delete(_ context.Context, id int64) error {
	return r.tbl.Delete(id)
}

func (r *patientRepoMem) List(_ context.Context) ([]*Patient, error) {
	rows := r.tbl.List()
	out := make([]*Patient, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, nil
}

type doctorRepoMem struct {
	tbl *db.Table[Doctor]
}

// NewDoctorRepoMem stores doctors in tbl.
func NewDoctorRepoMem(tbl *db.Table[Doctor]) DoctorRepository {
	return &doctorRepoMem{tbl: tbl}
}

func (r *doctorRepoMem) Create(_ context.Context, d *Doctor) error {
	*d = r.tbl.Insert(func(id int64) Doctor {
		row := *d
		row.DoctorID = id
		return row
	})
	return nil
}

func (r *doctorRepoMem) GetByID(_ context.Context, id int64) (*Doctor, error) {
	d, err := r.tbl.Get(id)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *doctorRepoMem) Update(_ context.Context, d *Doctor) error {
	_, err := r.tbl.Update(d.DoctorID, func(Doctor) Doctor { return *d })
	return err
}

func (r *doctorRepoMem) Delete(_ context.Context, id int64) error {
	return r.tbl.Delete(id)
}

func (r *doctorRepoMem) List(_ context.Context) ([]*Doctor, error) {
	rows := r.tbl.List()
	out := make([]*Doctor, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, nil
}
