package billing

import (
	"context"

	"github.com/clinicdesk/clinicdesk/internal/platform/db"
)

type FeeRepository interface {
	Create(ctx context.Context, f *Fee) error
	GetByID(ctx context.Context, id int64) (*Fee, error)
	Update(ctx context.Context, f *Fee) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*Fee, error)
}

type feeRepoMem struct {
	tbl *db.Table[Fee]
}

func NewFeeRepoMem(tbl *db.Table[Fee]) FeeRepository {
	return &feeRepoMem{tbl: tbl}
}

func (r *feeRepoMem) Create(_ context.Context, f *Fee) error {
	*f = r.tbl.Insert(func(id int64) Fee {
		row := *f
		row.FeeID = id
		return row
	})
	return nil
}

func (r *feeRepoMem) GetByID(_ context.Context, id int64) (*Fee, error) {
	f, err := r.tbl.Get(id)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *feeRepoMem) Update(_ context.Context, f *Fee) error {
	_, err := r.tbl.Update(f.FeeID, func(Fee) Fee { return *f })
	return err
}

func (r *feeRepoMem) Delete(_ context.Context, id int64) error {
	return r.tbl.Delete(id)
}

func (r *feeRepoMem) List(_ context.Context) ([]*Fee, error) {
	rows := r.tbl.List()
	out := make([]*Fee, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, nil
}
