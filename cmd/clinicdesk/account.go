package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/clinicdesk/clinicdesk/internal/app"
	"github.com/clinicdesk/clinicdesk/internal/router"
	"github.com/clinicdesk/clinicdesk/internal/session"
	"github.com/clinicdesk/clinicdesk/internal/ui"
)

// enter checks the route guards for path. Being redirected anywhere else
// is an error, so blocked commands exit non-zero.
func enter(a *app.App, path string) error {
	nav := a.Enter(path)
	if nav.Blocked {
		return fmt.Errorf("cannot open %s: %s (redirected to %s)", path, nav.Reason, nav.Target)
	}
	if nav.Target != path && !strings.HasPrefix(nav.Target, path+"/") {
		return fmt.Errorf("cannot open %s: redirected to %s", path, nav.Target)
	}
	return nil
}

func loginCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
	}
	form := ui.LoginForm().Bind(cmd.Flags())
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		a, err := e.open()
		if err != nil {
			return err
		}
		creds, err := form.Apply(session.Credentials{})
		if err != nil {
			return err
		}
		next, banner, err := ui.Login(cmd.Context(), a.Session, creds)
		if !banner.IsZero() {
			e.printf("%s\n", banner)
		}
		if err != nil {
			return err
		}
		user := a.Session.CurrentUser()
		e.printf("Signed in as %s (%s). Next: %s\n", user.Username, user.Role, a.Enter(next).Target)
		return nil
	}
	return cmd
}

func registerCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
	}
	form := ui.RegisterForm().Bind(cmd.Flags())
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		a, err := e.open()
		if err != nil {
			return err
		}
		reg, err := form.Apply(session.Registration{})
		if err != nil {
			return err
		}
		_, banner, err := ui.Register(cmd.Context(), a.Session, reg)
		e.printf("%s\n", banner)
		return err
	}
	return cmd
}

func logoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open()
			if err != nil {
				return err
			}
			a.Logout()
			e.printf("Signed out.\n")
			return nil
		},
	}
}

func whoamiCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user's profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open()
			if err != nil {
				return err
			}
			if err := enter(a, router.DashboardPath+"/profile"); err != nil {
				return err
			}
			return ui.NewProfile(a.Session).Render(e.out)
		},
	}
}

func passwdCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change your password",
		Args:  cobra.NoArgs,
	}
	form := ui.PasswordForm().Bind(cmd.Flags())
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		a, err := e.open()
		if err != nil {
			return err
		}
		if err := enter(a, router.DashboardPath+"/profile"); err != nil {
			return err
		}
		change, err := form.Apply(session.PasswordChange{})
		if err != nil {
			return err
		}
		profile := ui.NewProfile(a.Session)
		err = profile.ChangePassword(cmd.Context(), change)
		e.printf("%s\n", profile.Banner())
		return err
	}
	return cmd
}

func dashboardCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the welcome screen and record counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open()
			if err != nil {
				return err
			}
			if err := enter(a, router.DashboardPath); err != nil {
				return err
			}
			tallies, refreshErr := a.Refresh(cmd.Context())
			if err := ui.NewDashboard(a.Session, a.Router).Render(e.out, tallies); err != nil {
				return err
			}
			return refreshErr
		},
	}
}

func routesCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List screens and whether you may open them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "PATH\tTITLE\tROLES\tALLOWED")
			for _, rt := range a.Router.Routes() {
				roles := strings.Join(rt.Roles, ", ")
				switch {
				case rt.Public:
					roles = "public"
				case roles == "":
					roles = "any"
				}
				allowed := "no"
				if a.Router.Permits(rt.Path) {
					allowed = "yes"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rt.Path, rt.Title, roles, allowed)
			}
			return tw.Flush()
		},
	}
}
