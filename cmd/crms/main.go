// Command crms is a CLI client for a Candidate Referral Management System
// backend: employees submit candidate referrals, admins triage them.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/refbridge/crms/internal/analytics"
	"github.com/refbridge/crms/internal/api"
	"github.com/refbridge/crms/internal/config"
	"github.com/refbridge/crms/internal/errs"
	"github.com/refbridge/crms/internal/guard"
	"github.com/refbridge/crms/internal/model"
	"github.com/refbridge/crms/internal/session"
	"github.com/refbridge/crms/internal/store"
	"github.com/refbridge/crms/internal/validate"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func usage() {
	fmt.Fprintf(os.Stderr, `crms CLI
Usage:
  crms [-base URL] [-v] <cmd> [args]

Commands:
  version
  register         -name N -email E -password P -confirm P [-role user|admin]
  login            -email E -password P
  logout
  whoami
  refer            -name N -email E -title T [-phone P] [-exp LEVEL] [-resume URL | -resume-file PATH]
  list             [-term T] [-category name|email|phone|jobTitle|experience|status]
  stats
  status           -id ID -status Pending|Reviewed|Hired|Rejected
  bulk-status      -ids ID1,ID2,... -status S
  rm               -id ID
  analytics        [-type bar|pie|line|stats] [-refresh]
  reset-password   -email E
  change-password  -password P -token RESET_TOKEN
`)
	os.Exit(2)
}

// app bundles the wired-up client layers for command handlers.
type app struct {
	cfg      config.Config
	client   *api.Client
	sessions *session.Manager
	store    *store.Store
	valid    *validate.Validator
}

func newApp(baseURL string, timeout time.Duration, verbose bool) *app {
	cfg := config.Load()
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if timeout > 0 {
		cfg.Timeout = timeout
	}

	logger := zap.NewNop()
	if verbose {
		logger, _ = zap.NewProduction()
	}

	storage := session.NewStorage(cfg.StateDir)
	var sessions *session.Manager
	client := api.New(cfg.BaseURL, cfg.Timeout, logger, func() string {
		if sessions == nil {
			return ""
		}
		return sessions.Token()
	})
	sessions = session.NewManager(client, storage)
	sessions.Restore()

	return &app{
		cfg:      cfg,
		client:   client,
		sessions: sessions,
		store:    store.New(client),
		valid:    validate.New(),
	}
}

// guardState projects the session into what route guards need.
func (a *app) guardState() guard.State {
	return guard.State{
		Authenticated: a.sessions.Authenticated(),
		Role:          a.sessions.User().Role,
	}
}

// requireView refuses to run a command whose page the guards would not render.
func (a *app) requireView(path string) {
	d := guard.Decide(path, a.guardState())
	if d.Allowed {
		return
	}
	if !a.sessions.Authenticated() {
		fail(errors.New("login required (crms login)"))
	}
	fail(fmt.Errorf("not allowed for role %q", a.sessions.User().Role))
}

func main() {
	base := flag.String("base", "", "backend base URL (overrides CRMS_BASE_URL)")
	timeout := flag.Duration("timeout", 0, "request timeout (overrides CRMS_TIMEOUT)")
	verbose := flag.Bool("v", false, "log requests")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	if cmd == "version" {
		fmt.Printf("crms %s (%s)\n", version, buildDate)
		return
	}

	a := newApp(*base, *timeout, *verbose)

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Timeout+5*time.Second)
	defer cancel()

	switch cmd {
	case "register":
		a.cmdRegister(ctx, args)
	case "login":
		a.cmdLogin(ctx, args)
	case "logout":
		if err := a.sessions.Logout(); err != nil {
			fail(err)
		}
		fmt.Println("Logged out successfully!")
	case "whoami":
		a.cmdWhoami()
	case "refer":
		a.cmdRefer(ctx, args)
	case "list":
		a.cmdList(ctx, args)
	case "stats":
		a.cmdStats(ctx)
	case "status":
		a.cmdStatus(ctx, args)
	case "bulk-status":
		a.cmdBulkStatus(ctx, args)
	case "rm":
		a.cmdDelete(ctx, args)
	case "analytics":
		a.cmdAnalytics(ctx, args)
	case "reset-password":
		a.cmdResetPassword(ctx, args)
	case "change-password":
		a.cmdChangePassword(ctx, args)
	default:
		usage()
	}
}

func (a *app) cmdRegister(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")
	confirm := fs.String("confirm", "", "password confirmation")
	role := fs.String("role", "user", "role (user|admin)")
	_ = fs.Parse(args)

	a.requireView(guard.PathRegister)

	in := model.RegisterInput{
		Name:            *name,
		Email:           *email,
		Password:        *password,
		ConfirmPassword: *confirm,
		Role:            model.Role(*role),
	}
	if err := a.valid.Register(in); err != nil {
		fail(err)
	}
	if err := a.sessions.Register(ctx, in); err != nil {
		fail(err)
	}
	fmt.Println("Registration successful! Please log in.")
}

func (a *app) cmdLogin(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")
	_ = fs.Parse(args)

	a.requireView(guard.PathLogin)

	if a.sessions.ConsumeRegistrationNotice() {
		fmt.Println("Registration successful! Please log in.")
	}

	if err := a.valid.Login(model.LoginInput{Email: *email, Password: *password}); err != nil {
		fail(err)
	}
	if err := a.sessions.Login(ctx, *email, *password); err != nil {
		fail(err)
	}
	u := a.sessions.User()
	fmt.Printf("Logged in as %s (%s) -> %s\n", u.Name, u.Role, guard.HomePath(u.Role))
}

func (a *app) cmdWhoami() {
	if !a.sessions.Authenticated() {
		fmt.Println("not logged in")
		return
	}
	s := a.sessions.Session()
	out := map[string]any{
		"user": s.User,
	}
	if !s.ExpiresAt.IsZero() {
		out["token_expires_at"] = s.ExpiresAt.UTC().Format(time.RFC3339)
	}
	printJSON(out)
}

func (a *app) cmdRefer(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("refer", flag.ExitOnError)
	name := fs.String("name", "", "candidate name")
	email := fs.String("email", "", "candidate email")
	phone := fs.String("phone", "", "candidate phone")
	title := fs.String("title", "", "job title")
	exp := fs.String("exp", "", "experience level")
	resume := fs.String("resume", "", "resume link")
	resumeFile := fs.String("resume-file", "", "resume file path")
	_ = fs.Parse(args)

	a.requireView(guard.PathReferral)

	in := model.ReferralInput{
		Name:       *name,
		Email:      *email,
		Phone:      *phone,
		JobTitle:   *title,
		Experience: *exp,
		Resume:     *resume,
		ResumeFile: *resumeFile,
	}
	if err := a.valid.Referral(in); err != nil {
		fail(err)
	}
	created, err := a.store.Add(ctx, in)
	if err != nil {
		fail(err)
	}
	fmt.Println(a.store.Success())
	printJSON(created)
}

func (a *app) cmdList(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	term := fs.String("term", "", "search term")
	category := fs.String("category", store.DefaultCategory, "search category")
	_ = fs.Parse(args)

	a.requireView(guard.PathDashboard)

	if err := a.store.Fetch(ctx, a.sessions.User().Role); err != nil {
		fail(err)
	}
	a.store.SetFilter(*term, *category)
	printCandidates(a.store.Filtered())
}

func (a *app) cmdStats(ctx context.Context) {
	a.requireView(guard.PathDashboard)

	if err := a.store.Fetch(ctx, a.sessions.User().Role); err != nil {
		fail(err)
	}
	printJSON(a.store.Stats())
}

func (a *app) cmdStatus(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	id := fs.String("id", "", "referral id")
	status := fs.String("status", "", "new status")
	_ = fs.Parse(args)
	if *id == "" || *status == "" {
		fail(errors.New("need -id and -status"))
	}

	a.requireView(guard.PathAdminList)

	st, err := model.ParseStatus(*status)
	if err != nil {
		fail(err)
	}
	if err := a.store.Fetch(ctx, model.RoleAdmin); err != nil {
		fail(err)
	}
	if err := a.store.UpdateStatus(ctx, *id, st); err != nil {
		fail(err)
	}
	fmt.Println(a.store.Success())
	if c, ok := a.store.Get(*id); ok {
		printJSON(c)
	}
}

func (a *app) cmdBulkStatus(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("bulk-status", flag.ExitOnError)
	ids := fs.String("ids", "", "comma-separated referral ids")
	status := fs.String("status", "", "new status")
	_ = fs.Parse(args)

	a.requireView(guard.PathAdminList)

	st, err := model.ParseStatus(*status)
	if *status != "" && err != nil {
		fail(err)
	}
	if err := a.store.Fetch(ctx, model.RoleAdmin); err != nil {
		fail(err)
	}
	if err := a.store.BulkUpdateStatus(ctx, splitIDs(*ids), st); err != nil {
		if errors.Is(err, errs.ErrValidation) {
			fail(errors.New(a.store.Err()))
		}
		fail(err)
	}
	fmt.Println(a.store.Success())
	printCandidates(a.store.Candidates())
}

func (a *app) cmdDelete(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	id := fs.String("id", "", "referral id")
	_ = fs.Parse(args)
	if *id == "" {
		fail(errors.New("need -id"))
	}

	a.requireView(guard.PathAdminList)

	if err := a.store.Fetch(ctx, model.RoleAdmin); err != nil {
		fail(err)
	}
	if err := a.store.Delete(ctx, *id); err != nil {
		fail(err)
	}
	fmt.Println(a.store.Success())
}

func (a *app) cmdAnalytics(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("analytics", flag.ExitOnError)
	graphType := fs.String("type", analytics.GraphBar, "graph type (bar|pie|line|stats)")
	refresh := fs.Bool("refresh", false, "bypass the cache")
	_ = fs.Parse(args)

	a.requireView(guard.PathAdminCharts)

	f := analytics.New(a.client.Analytics, nil)
	f.SetGraphType(*graphType)

	var err error
	if *refresh {
		err = f.Refresh(ctx)
	} else {
		err = f.FetchData(ctx)
	}
	if err != nil {
		fail(err)
	}
	printAnalytics(f)
}

func (a *app) cmdResetPassword(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("reset-password", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	_ = fs.Parse(args)
	if *email == "" {
		fail(errors.New("need -email"))
	}

	a.requireView(guard.PathResetPassword)

	if err := a.sessions.RequestPasswordReset(ctx, *email); err != nil {
		fail(err)
	}
	fmt.Println("If the account exists, a reset link has been sent.")
}

func (a *app) cmdChangePassword(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("change-password", flag.ExitOnError)
	password := fs.String("password", "", "new password")
	token := fs.String("token", "", "reset token from the mail link")
	_ = fs.Parse(args)
	if *password == "" || *token == "" {
		fail(errors.New("need -password and -token"))
	}

	a.requireView(guard.PathChangePass)

	if err := a.sessions.ChangePassword(ctx, *password, *token); err != nil {
		fail(err)
	}
	fmt.Println("Password changed. Please log in.")
}

func splitIDs(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
