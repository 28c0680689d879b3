// Package router decides which screen a path lands on. Every navigation runs
// the authentication guard and then the role guard; a refused navigation is
// redirected rather than failed.
package router

import (
	"strings"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

// Well-known paths.
const (
	LoginPath     = "/login"
	RegisterPath  = "/register"
	DashboardPath = "/dashboard"
)

// maxRedirects bounds the redirect chain Navigate follows.
const maxRedirects = 4

// Route is one navigable screen.
type Route struct {
	Path  string
	Title string
	// Public routes skip every guard.
	Public bool
	// Roles limits the route to these roles. Empty means any signed-in user.
	Roles []string
	// Default is the child /dashboard opens when the user may enter it.
	Default bool
}

// Routes returns the application's route table.
func Routes() []Route {
	staff := []string{auth.RoleReceptionist, auth.RoleAdmin}
	return []Route{
		{Path: LoginPath, Title: "Login", Public: true},
		{Path: RegisterPath, Title: "Register", Public: true},
		{Path: DashboardPath, Title: "Dashboard"},
		{Path: DashboardPath + "/patients", Title: "Patients", Roles: staff, Default: true},
		{Path: DashboardPath + "/doctors", Title: "Doctors", Roles: staff},
		{Path: DashboardPath + "/visits", Title: "Visits", Roles: []string{auth.RoleDoctor, auth.RoleAdmin}},
		{Path: DashboardPath + "/fees", Title: "Fees", Roles: staff},
		{Path: DashboardPath + "/activity-logs", Title: "Activity Logs", Roles: []string{auth.RoleAdmin}},
		{Path: DashboardPath + "/profile", Title: "Profile"},
	}
}

// UserSource reports who is signed in. A nil user means nobody.
type UserSource interface {
	CurrentUser() *auth.Identity
	IsAuthenticated() bool
}

// Navigation is the outcome of one Navigate call.
type Navigation struct {
	Requested string
	Target    string
	// Blocked is set when a guard refused the requested route.
	Blocked bool
	// Reason is the refusing guard's explanation.
	Reason string
	Route  Route
}

type Router struct {
	routes map[string]Route
	order  []Route
	guards []Guard
	users  UserSource
}

// New builds a router over the standard route table with the authentication
// guard followed by the role guard.
func New(users UserSource) *Router {
	r := &Router{
		routes: make(map[string]Route),
		guards: []Guard{AuthGuard{}, RoleGuard{}},
		users:  users,
	}
	for _, rt := range Routes() {
		r.routes[rt.Path] = rt
		r.order = append(r.order, rt)
	}
	return r
}

// Routes returns the route table in declaration order.
func (r *Router) Routes() []Route {
	out := make([]Route, len(r.order))
	copy(out, r.order)
	return out
}

// Navigate resolves path to the screen the current user lands on.
func (r *Router) Navigate(path string) Navigation {
	nav := Navigation{Requested: path}
	target := normalize(path)

	for hop := 0; hop < maxRedirects; hop++ {
		rt, ok := r.routes[target]
		if !ok {
			// Empty and unknown paths go to the login screen.
			target = LoginPath
			continue
		}

		if redirect, reason, ok := r.check(rt); !ok {
			if !nav.Blocked {
				nav.Blocked = true
				nav.Reason = reason
			}
			target = redirect
			continue
		}

		if rt.Path == DashboardPath {
			if child, ok := r.defaultChild(); ok {
				rt = child
			}
		}
		nav.Target = rt.Path
		nav.Route = rt
		return nav
	}

	// Unreachable with the standard table; fall back to the login screen.
	nav.Target = LoginPath
	nav.Route = r.routes[LoginPath]
	return nav
}

// Permits reports whether the current user may enter path itself.
func (r *Router) Permits(path string) bool {
	rt, ok := r.routes[normalize(path)]
	if !ok {
		return false
	}
	_, _, allowed := r.check(rt)
	return allowed
}

func (r *Router) check(rt Route) (redirect, reason string, ok bool) {
	if rt.Public {
		return "", "", true
	}
	user := r.currentUser()
	for _, g := range r.guards {
		if redirect, reason, ok := g.Check(rt, user); !ok {
			return redirect, reason, false
		}
	}
	return "", "", true
}

// defaultChild returns the dashboard child to open, if the user may enter
// it. Otherwise the dashboard itself is shown.
func (r *Router) defaultChild() (Route, bool) {
	user := r.currentUser()
	for _, rt := range r.order {
		if !rt.Default {
			continue
		}
		for _, g := range r.guards {
			if _, _, ok := g.Check(rt, user); !ok {
				return Route{}, false
			}
		}
		return rt, true
	}
	return Route{}, false
}

func (r *Router) currentUser() *auth.Identity {
	if r.users == nil || !r.users.IsAuthenticated() {
		return nil
	}
	return r.users.CurrentUser()
}

func normalize(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || path == "/" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(path, "/")
}
