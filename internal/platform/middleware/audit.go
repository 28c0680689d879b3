package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

// AuditEntry describes one successful mutation made through the API.
type AuditEntry struct {
	UserID     int64
	Username   string
	Action     string // Created, Updated, Deleted
	Resource   string
	ResourceID string
	Method     string
	Path       string
	RequestID  string
	StatusCode int
	Timestamp  time.Time
}

// Details renders the entry the way it is stored in the activity log.
func (e AuditEntry) Details() string {
	if e.ResourceID == "" {
		return e.Action + " " + e.Resource
	}
	return e.Action + " " + e.Resource + " #" + e.ResourceID
}

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	RecordAccess(entry AuditEntry) error
}

// AuditRecorderFunc is a function adapter for AuditRecorder.
type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordAccess(entry AuditEntry) error {
	return f(entry)
}

// Audit records every successful POST, PUT, PATCH or DELETE under /api/.
// Authentication calls, sandbox administration and the activity log
// itself are not audited.
//
// The resource id comes from the path for PUT and DELETE. For POST it is
// the int64 the handler stored under "resource_id", if any.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path

			action := httpMethodToAction(req.Method)
			if action == "" || !isAuditablePath(path) {
				return next(c)
			}

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			if err != nil || status < 200 || status >= 300 {
				return err
			}

			entry := AuditEntry{
				Timestamp:  time.Now().UTC(),
				Action:     action,
				Method:     req.Method,
				Path:       path,
				StatusCode: status,
			}
			entry.Resource, entry.ResourceID = extractResource(path)
			if entry.ResourceID == "" {
				if id, ok := c.Get("resource_id").(int64); ok {
					entry.ResourceID = strconv.FormatInt(id, 10)
				}
			}
			if id, ok := auth.IdentityFromContext(req.Context()); ok {
				entry.UserID = id.UserID
				entry.Username = id.Username
			}
			if rid, ok := c.Get("request_id").(string); ok {
				entry.RequestID = rid
			}

			for _, r := range recorders {
				if r == nil {
					continue
				}
				if recErr := r.RecordAccess(entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record audit entry")
				}
			}

			logger.Info().
				Str("type", "audit").
				Str("request_id", entry.RequestID).
				Int64("user_id", entry.UserID).
				Str("username", entry.Username).
				Str("action", entry.Action).
				Str("resource", entry.Resource).
				Str("resource_id", entry.ResourceID).
				Int("status", entry.StatusCode).
				Msg("mutation")

			return nil
		}
	}
}

func isAuditablePath(path string) bool {
	if !strings.HasPrefix(path, "/api/") {
		return false
	}
	resource, _ := extractResource(path)
	switch resource {
	case "auth", "activitylogs", "sandbox":
		return false
	}
	return true
}

func httpMethodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "Created"
	case http.MethodPut, http.MethodPatch:
		return "Updated"
	case http.MethodDelete:
		return "Deleted"
	}
	return ""
}

// extractResource splits /api/<resource>/<id> into its parts.
func extractResource(path string) (string, string) {
	segments := strings.Split(strings.Trim(strings.TrimPrefix(path, "/api/"), "/"), "/")
	resource := strings.ToLower(segments[0])
	if len(segments) > 1 {
		return resource, segments[1]
	}
	return resource, ""
}
