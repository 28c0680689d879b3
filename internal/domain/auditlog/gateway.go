package auditlog

import (
	"context"
	"sync"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/platform/apiclient"
	"github.com/clinicdesk/clinicdesk/internal/store"
	"github.com/clinicdesk/clinicdesk/pkg/jsontime"
)

const LogsPath = "/api/activitylogs"

// defaultUserID is stamped on local entries when no user is signed in.
const defaultUserID = 1

// notFoundError is returned for ids that were never listed or recorded.
type notFoundError struct {
	id int64
}

func (e notFoundError) Error() string { return "activity log not found" }

func (e notFoundError) Unwrap() error { return store.ErrNotFound }

// Gateway reads the activity log over HTTP. The backend only lists entries,
// so Get, Create, Update and Delete run against a local mirror of what was
// listed or created here.
//
// TODO: route Get/Create/Update/Delete to the server once /api/activitylogs
// grows per-id endpoints; ids minted by Create are local only.
type Gateway struct {
	list *apiclient.Resource[ActivityLog, ActivityLogInput]
	now  func() time.Time
	user func() (int64, string)

	mu     sync.Mutex
	mirror map[int64]ActivityLog
	local  map[int64]bool
	lastID int64
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithGatewayClock replaces time.Now for local timestamps and ids.
func WithGatewayClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) { g.now = now }
}

// WithCurrentUser supplies the signed-in user stamped on local entries.
func WithCurrentUser(fn func() (int64, string)) GatewayOption {
	return func(g *Gateway) { g.user = fn }
}

func NewGateway(c *apiclient.Client, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		list:   apiclient.NewResource[ActivityLog, ActivityLogInput](c, LogsPath),
		now:    time.Now,
		mirror: make(map[int64]ActivityLog),
		local:  make(map[int64]bool),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var _ store.Gateway[ActivityLog, ActivityLogInput] = (*Gateway)(nil)

// List fetches the log and rebuilds the mirror from it. Entries created
// locally survive; anything else the server stopped listing is dropped.
func (g *Gateway) List(ctx context.Context) ([]ActivityLog, error) {
	logs, err := g.list.List(ctx)
	if err != nil {
		return nil, err
	}
	mirror := make(map[int64]ActivityLog, len(logs))
	for _, l := range logs {
		mirror[l.LogID] = l
	}

	g.mu.Lock()
	for id := range g.local {
		if _, listed := mirror[id]; !listed {
			mirror[id] = g.mirror[id]
		}
	}
	g.mirror = mirror
	g.mu.Unlock()
	return logs, nil
}

func (g *Gateway) Get(_ context.Context, id int64) (ActivityLog, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.mirror[id]
	if !ok {
		return ActivityLog{}, notFoundError{id: id}
	}
	return l, nil
}

// Create records an entry locally. The id is the current Unix time in
// milliseconds, bumped when two entries land in the same millisecond.
func (g *Gateway) Create(_ context.Context, in ActivityLogInput) (ActivityLog, error) {
	now := g.now()
	userID, username := int64(defaultUserID), ""
	if g.user != nil {
		if id, name := g.user(); id != 0 {
			userID, username = id, name
		}
	}
	action := in.Action
	if action == "" {
		action = ActionCreated
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	id := now.UnixMilli()
	if id <= g.lastID {
		id = g.lastID + 1
	}
	g.lastID = id

	l := ActivityLog{
		LogID:     id,
		UserID:    userID,
		Action:    action,
		Timestamp: jsontime.New(now),
		Details:   in.Details,
		Username:  username,
	}
	g.mirror[id] = l
	g.local[id] = true
	return l, nil
}

// Update merges the non-empty fields of in into the mirrored entry.
func (g *Gateway) Update(_ context.Context, id int64, in ActivityLogInput) (ActivityLog, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.mirror[id]
	if !ok {
		return ActivityLog{}, notFoundError{id: id}
	}
	if in.Action != "" {
		l.Action = in.Action
	}
	if in.Details != "" {
		l.Details = in.Details
	}
	g.mirror[id] = l
	return l, nil
}

// Delete drops the entry from the mirror. It never fails.
func (g *Gateway) Delete(_ context.Context, id int64) error {
	g.mu.Lock()
	delete(g.mirror, id)
	delete(g.local, id)
	g.mu.Unlock()
	return nil
}
