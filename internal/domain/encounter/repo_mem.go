package encounter

import (
	"context"

	"github.com/clinicdesk/clinicdesk/internal/platform/db"
)

type visitRepoMem struct {
	tbl *db.Table[Visit]
}

// NewVisitRepoMem stores visits in tbl.
func NewVisitRepoMem(tbl *db.Table[Visit]) VisitRepository {
	return &visitRepoMem{tbl: tbl}
}

func (r *visitRepoMem) Create(_ context.Context, v *Visit) error {
	*v = r.tbl.Insert(func(id int64) Visit {
		row := *v
		row.VisitID = id
		return row
	})
	return nil
}

func (r *visitRepoMem) GetByID(_ context.Context, id int64) (*Visit, error) {
	v, err := r.tbl.Get(id)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *visitRepoMem) Update(_ context.Context, v *Visit) error {
	_, err := r.tbl.Update(v.VisitID, func(Visit) Visit { return *v })
	return err
}

func (r *visitRepoMem) Delete(_ context.Context, id int64) error {
	return r.tbl.Delete(id)
}

func (r *visitRepoMem) List(_ context.Context) ([]*Visit, error) {
	rows := r.tbl.List()
	out := make([]*Visit, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, nil
}
