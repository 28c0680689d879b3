package router

import (
	"strings"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

// Guard decides whether user may enter rt. When it refuses it names the
// path to redirect to.
type Guard interface {
	Check(rt Route, user *auth.Identity) (redirect, reason string, ok bool)
}

// AuthGuard admits any signed-in user and sends everyone else to /login.
type AuthGuard struct{}

func (AuthGuard) Check(_ Route, user *auth.Identity) (string, string, bool) {
	if user == nil {
		return LoginPath, "sign in required", false
	}
	return "", "", true
}

// RoleGuard admits users whose role is listed on the route. Users without a
// permitted role go back to the dashboard.
type RoleGuard struct{}

func (RoleGuard) Check(rt Route, user *auth.Identity) (string, string, bool) {
	if len(rt.Roles) == 0 {
		return "", "", true
	}
	if user == nil {
		return LoginPath, "sign in required", false
	}
	if auth.HasAnyRole(user.Role, rt.Roles) {
		return "", "", true
	}
	return DashboardPath, "requires role " + strings.Join(rt.Roles, " or "), false
}
