// Package auditlog holds the activity log: one entry per mutation a user
// made through the API. The backend exposes the log read-only.
package auditlog

import "github.com/clinicdesk/clinicdesk/pkg/jsontime"

// Actions recorded by the server.
const (
	ActionCreated = "Created"
	ActionUpdated = "Updated"
	ActionDeleted = "Deleted"
)

type ActivityLog struct {
	LogID     int64         `json:"logId"`
	UserID    int64         `json:"userId"`
	Action    string        `json:"action"`
	Timestamp jsontime.Time `json:"timestamp"`
	Details   string        `json:"details,omitempty"`
	Username  string        `json:"username,omitempty"`
}

func (l ActivityLog) Key() int64 { return l.LogID }

// ActivityLogInput is what a caller supplies for a locally recorded entry.
type ActivityLogInput struct {
	Action  string `json:"action"`
	Details string `json:"details,omitempty"`
}
