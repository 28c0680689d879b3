package auditlog

import (
	"context"
	"sort"

	"github.com/clinicdesk/clinicdesk/internal/platform/middleware"
	"github.com/clinicdesk/clinicdesk/pkg/jsontime"
)

type Service struct {
	logs LogRepository
}

func NewService(logs LogRepository) *Service {
	return &Service{logs: logs}
}

// ListLogs returns the log newest first.
func (s *Service) ListLogs(ctx context.Context) ([]*ActivityLog, error) {
	logs, err := s.logs.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Timestamp.After(logs[j].Timestamp.Time)
	})
	return logs, nil
}

// RecordAccess stores one audited mutation. It implements
// middleware.AuditRecorder.
func (s *Service) RecordAccess(entry middleware.AuditEntry) error {
	l := &ActivityLog{
		UserID:    entry.UserID,
		Username:  entry.Username,
		Action:    entry.Action,
		Timestamp: jsontime.New(entry.Timestamp),
		Details:   entry.Details(),
	}
	return s.logs.Create(context.Background(), l)
}

var _ middleware.AuditRecorder = (*Service)(nil)
