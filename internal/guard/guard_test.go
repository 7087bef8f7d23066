package guard

import (
	"testing"

	"github.com/refbridge/crms/internal/model"
)

var (
	anon      = State{}
	userState = State{Authenticated: true, Role: model.RoleUser}
	admin     = State{Authenticated: true, Role: model.RoleAdmin}
)

func TestHomePath(t *testing.T) {
	t.Parallel()

	if HomePath(model.RoleAdmin) != PathAdmin {
		t.Fatalf("admin home")
	}
	if HomePath(model.RoleUser) != PathDashboard {
		t.Fatalf("user home")
	}
	if HomePath("") != PathDashboard {
		t.Fatalf("unknown role defaults to the user dashboard")
	}
}

func TestDecide(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		path  string
		state State
		want  Decision
	}{
		{"login anon", PathLogin, anon, Decision{Allowed: true}},
		{"login authed bounces", PathLogin, userState, Decision{RedirectTo: PathLanding}},
		{"register authed bounces", PathRegister, admin, Decision{RedirectTo: PathLanding}},
		{"reset anon", PathResetPassword, anon, Decision{Allowed: true}},

		{"landing anon", PathLanding, anon, Decision{Allowed: true}},
		{"landing authed", PathLanding, userState, Decision{RedirectTo: PathHome}},

		{"change-password works without a session", PathChangePass, anon, Decision{Allowed: true}},
		{"change-password works with a session", PathChangePass, userState, Decision{Allowed: true}},

		{"home anon", PathHome, anon, Decision{RedirectTo: PathLogin}},
		{"home user", PathHome, userState, Decision{Allowed: true}},
		{"home admin redirects to admin dashboard", PathHome, admin, Decision{RedirectTo: PathAdmin}},

		{"dashboard anon", PathDashboard, anon, Decision{RedirectTo: PathLogin}},
		{"dashboard user", PathDashboard, userState, Decision{Allowed: true}},
		{"referral user", PathReferral, userState, Decision{Allowed: true}},
		{"profile anon", PathProfile, anon, Decision{RedirectTo: PathLogin}},

		{"admin anon", PathAdmin, anon, Decision{RedirectTo: PathLogin}},
		{"admin as user", PathAdmin, userState, Decision{RedirectTo: PathDashboard}},
		{"admin as admin", PathAdmin, admin, Decision{Allowed: true}},
		{"admin list as user", PathAdminList, userState, Decision{RedirectTo: PathDashboard}},
		{"admin charts as admin", PathAdminCharts, admin, Decision{Allowed: true}},
		{"update page as user", "/update/abc1", userState, Decision{RedirectTo: PathDashboard}},
		{"update page as admin", "/update/abc1", admin, Decision{Allowed: true}},

		{"unknown anon", "/nope", anon, Decision{RedirectTo: PathLogin}},
		{"unknown authed", "/nope", userState, Decision{RedirectTo: PathLanding}},
	}
	for _, tc := range cases {
		if got := Decide(tc.path, tc.state); got != tc.want {
			t.Fatalf("%s: Decide(%q) = %+v, want %+v", tc.name, tc.path, got, tc.want)
		}
	}
}
