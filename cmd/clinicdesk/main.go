package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinicdesk/clinicdesk/internal/app"
	"github.com/clinicdesk/clinicdesk/internal/config"
)

func main() {
	if err := newRootCmd(&env{out: os.Stdout}).Execute(); err != nil {
		os.Exit(1)
	}
}

// env is what every command shares: output, configuration and, once
// opened, the client app.
type env struct {
	out     io.Writer
	cfg     *config.Config
	logger  zerolog.Logger
	appOpts []app.Option
	app     *app.App
}

// setup loads the configuration unless one was supplied.
func (e *env) setup() error {
	if e.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		e.cfg = cfg
		e.logger = cfg.NewLogger()
	}
	return nil
}

// open builds the client app and restores the stored session.
func (e *env) open() (*app.App, error) {
	if e.app != nil {
		return e.app, nil
	}
	a, err := app.New(e.cfg, e.logger, e.appOpts...)
	if err != nil {
		return nil, err
	}
	e.app = a
	return a, nil
}

func (e *env) printf(format string, args ...interface{}) {
	fmt.Fprintf(e.out, format, args...)
}

func newRootCmd(e *env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "clinicdesk",
		Short:         "Clinic administration client",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup()
		},
	}
	rootCmd.SetOut(e.out)
	rootCmd.SetErr(e.out)

	rootCmd.AddCommand(loginCmd(e))
	rootCmd.AddCommand(registerCmd(e))
	rootCmd.AddCommand(logoutCmd(e))
	rootCmd.AddCommand(whoamiCmd(e))
	rootCmd.AddCommand(passwdCmd(e))
	rootCmd.AddCommand(dashboardCmd(e))
	rootCmd.AddCommand(routesCmd(e))
	rootCmd.AddCommand(patientsCmd(e))
	rootCmd.AddCommand(doctorsCmd(e))
	rootCmd.AddCommand(visitsCmd(e))
	rootCmd.AddCommand(feesCmd(e))
	rootCmd.AddCommand(logsCmd(e))
	rootCmd.AddCommand(sandboxCmd(e))
	return rootCmd
}
