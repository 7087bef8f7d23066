// Package guard gates views on session state and role, mirroring the app's
// route table: public-only pages bounce authenticated sessions home, the
// dashboard side needs a session, and the admin side needs the admin role.
package guard

import (
	"strings"

	"github.com/refbridge/crms/internal/model"
)

// Well-known paths.
const (
	PathLanding       = "/"
	PathLogin         = "/login"
	PathRegister      = "/register"
	PathResetPassword = "/reset-password"
	PathChangePass    = "/change-password"
	PathHome          = "/home"
	PathDashboard     = "/dashboard"
	PathReferral      = "/referral"
	PathProfile       = "/profile"
	PathAdmin         = "/admin"
	PathAdminList     = "/admin/candidates"
	PathAdminCharts   = "/admin/analytics"
)

// State is the slice of the session a guard decision needs.
type State struct {
	Authenticated bool
	Role          model.Role
}

// Decision says whether a view may render, and where to send the visitor
// otherwise.
type Decision struct {
	Allowed    bool
	RedirectTo string
}

var allow = Decision{Allowed: true}

// HomePath is the post-login landing: admins go to the admin dashboard,
// everyone else to theirs.
func HomePath(role model.Role) string {
	if role == model.RoleAdmin {
		return PathAdmin
	}
	return PathDashboard
}

// Decide resolves one path against the session state.
func Decide(path string, s State) Decision {
	switch path {
	case PathLogin, PathRegister, PathResetPassword:
		if s.Authenticated {
			return Decision{RedirectTo: PathLanding}
		}
		return allow

	case PathLanding:
		if s.Authenticated {
			return Decision{RedirectTo: PathHome}
		}
		return allow

	case PathChangePass:
		// reachable from a mail link with no session
		return allow

	case PathHome:
		if !s.Authenticated {
			return Decision{RedirectTo: PathLogin}
		}
		if s.Role == model.RoleAdmin {
			return Decision{RedirectTo: PathAdmin}
		}
		return allow

	case PathDashboard, PathReferral, PathProfile:
		if !s.Authenticated {
			return Decision{RedirectTo: PathLogin}
		}
		return allow
	}

	if path == PathAdmin || strings.HasPrefix(path, PathAdmin+"/") || strings.HasPrefix(path, "/update/") {
		if !s.Authenticated {
			return Decision{RedirectTo: PathLogin}
		}
		if s.Role != model.RoleAdmin {
			return Decision{RedirectTo: HomePath(s.Role)}
		}
		return allow
	}

	// unknown path: send somewhere sensible
	if s.Authenticated {
		return Decision{RedirectTo: PathLanding}
	}
	return Decision{RedirectTo: PathLogin}
}
