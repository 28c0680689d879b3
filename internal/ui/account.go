package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/internal/platform/validation"
	"github.com/clinicdesk/clinicdesk/internal/router"
	"github.com/clinicdesk/clinicdesk/internal/session"
)

// AppName heads the dashboard.
const AppName = "Patient Visit Manager"

func LoginForm() Form[session.Credentials] {
	return Form[session.Credentials]{
		Text("username", "account name", func(c *session.Credentials) *string { return &c.Username }),
		Secret("password", "account password", func(c *session.Credentials) *string { return &c.Password }),
	}
}

func RegisterForm() Form[session.Registration] {
	return Form[session.Registration]{
		Text("username", "account name", func(r *session.Registration) *string { return &r.Username }),
		Text("email", "email address", func(r *session.Registration) *string { return &r.Email }),
		Secret("password", "at least 6 characters", func(r *session.Registration) *string { return &r.Password }),
		Text("role", "one of "+strings.Join(auth.Roles(), ", "), func(r *session.Registration) *string { return &r.Role }),
	}
}

func PasswordForm() Form[session.PasswordChange] {
	return Form[session.PasswordChange]{
		Secret("new-password", "at least 6 characters", func(p *session.PasswordChange) *string { return &p.NewPassword }),
		Secret("confirm-password", "repeat the new password", func(p *session.PasswordChange) *string { return &p.ConfirmPassword }),
	}
}

// Login signs in and returns where to go next: the dashboard on success,
// the login screen with a banner otherwise.
func Login(ctx context.Context, sess *session.Session, creds session.Credentials) (string, Banner, error) {
	if err := sess.Login(ctx, creds); err != nil {
		return router.LoginPath, Failure(err.Error()), err
	}
	return router.DashboardPath, Banner{}, nil
}

// Register creates an account and sends the user to the login screen.
func Register(ctx context.Context, sess *session.Session, reg session.Registration) (string, Banner, error) {
	if err := sess.Register(ctx, reg); err != nil {
		return router.RegisterPath, Failure(err.Error()), err
	}
	return router.LoginPath, Success("Registration successful! Please login."), nil
}

// Tally is one line of the dashboard summary.
type Tally struct {
	Name  string
	Path  string
	Count int
}

// Dashboard is the signed-in landing page.
type Dashboard struct {
	sess   *session.Session
	router *router.Router
}

func NewDashboard(sess *session.Session, r *router.Router) *Dashboard {
	return &Dashboard{sess: sess, router: r}
}

// Render writes the welcome header, the screens the user may open and the
// summary counts.
func (d *Dashboard) Render(w io.Writer, tallies []Tally) error {
	user := d.sess.CurrentUser()
	if user == nil {
		return errors.New("not signed in")
	}

	fmt.Fprintf(w, "%s\n\n", AppName)
	fmt.Fprintf(w, "Welcome, %s!\n", user.Username)
	fmt.Fprintf(w, "Role: %s\n\n", user.Role)

	counts := make(map[string]int, len(tallies))
	for _, t := range tallies {
		counts[t.Path] = t.Count
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, rt := range d.router.Routes() {
		if !strings.HasPrefix(rt.Path, router.DashboardPath+"/") || !d.router.Permits(rt.Path) {
			continue
		}
		if n, ok := counts[rt.Path]; ok {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", rt.Title, rt.Path, n)
		} else {
			fmt.Fprintf(tw, "%s\t%s\t\n", rt.Title, rt.Path)
		}
	}
	return tw.Flush()
}

// Profile shows the signed-in user and changes their password.
type Profile struct {
	sess   *session.Session
	banner Banner
}

func NewProfile(sess *session.Session) *Profile {
	return &Profile{sess: sess}
}

func (p *Profile) Banner() Banner {
	return p.banner
}

// ChangePassword submits the change-password form.
func (p *Profile) ChangePassword(ctx context.Context, change session.PasswordChange) error {
	err := p.sess.ChangePassword(ctx, change)
	switch {
	case err == nil:
		p.banner = Success("Password changed successfully")
	case validation.IsValidation(err):
		p.banner = Failure(err.Error())
	case errors.Is(err, session.ErrNoUser):
		p.banner = Failure("User not found")
	default:
		p.banner = Failure("Failed to change password")
	}
	return err
}

func (p *Profile) Render(w io.Writer) error {
	fmt.Fprintf(w, "Profile\n\n")
	if err := p.banner.write(w); err != nil {
		return err
	}
	user := p.sess.CurrentUser()
	if user == nil {
		_, err := fmt.Fprintln(w, "User not found")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "Username:\t%s\n", user.Username)
	fmt.Fprintf(tw, "Email:\t%s\n", user.Email)
	fmt.Fprintf(tw, "Role:\t%s\n", user.Role)
	return tw.Flush()
}
