package auditlog

import (
	"context"

	"github.com/clinicdesk/clinicdesk/internal/platform/db"
)

type LogRepository interface {
	Create(ctx context.Context, l *ActivityLog) error
	List(ctx context.Context) ([]*ActivityLog, error)
}

type logRepoMem struct {
	tbl *db.Table[ActivityLog]
}

func NewLogRepoMem(tbl *db.Table[ActivityLog]) LogRepository {
	return &logRepoMem{tbl: tbl}
}

func (r *logRepoMem) Create(_ context.Context, l *ActivityLog) error {
	*l = r.tbl.Insert(func(id int64) ActivityLog {
		row := *l
		row.LogID = id
		return row
	})
	return nil
}

func (r *logRepoMem) List(_ context.Context) ([]*ActivityLog, error) {
	rows := r.tbl.List()
	out := make([]*ActivityLog, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, nil
}
