package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/clinicdesk/clinicdesk/internal/app"
	"github.com/clinicdesk/clinicdesk/internal/domain/auditlog"
	"github.com/clinicdesk/clinicdesk/internal/domain/billing"
	"github.com/clinicdesk/clinicdesk/internal/domain/encounter"
	"github.com/clinicdesk/clinicdesk/internal/domain/identity"
	"github.com/clinicdesk/clinicdesk/internal/router"
	"github.com/clinicdesk/clinicdesk/internal/store"
	"github.com/clinicdesk/clinicdesk/internal/ui"
	"github.com/clinicdesk/clinicdesk/pkg/pagination"
)

// resource describes one CRUD command tree. A nil form makes it read-only.
// listFirst loads the whole list before get, for gateways that can only
// find what was already listed.
type resource[T store.Entity, P any] struct {
	use       string
	short     string
	route     string
	form      ui.Form[P]
	listFirst bool
	screen    func(a *app.App) *ui.Screen[T, P]
}

func patientsCmd(e *env) *cobra.Command {
	return resource[identity.Patient, identity.PatientInput]{
		use:   "patients",
		short: "Manage patients",
		route: router.DashboardPath + "/patients",
		form:  ui.PatientForm(),
		screen: func(a *app.App) *ui.Screen[identity.Patient, identity.PatientInput] {
			return ui.NewScreen(ui.PatientDefinition(), a.Patients)
		},
	}.command(e)
}

func doctorsCmd(e *env) *cobra.Command {
	return resource[identity.Doctor, identity.DoctorInput]{
		use:   "doctors",
		short: "Manage doctors",
		route: router.DashboardPath + "/doctors",
		form:  ui.DoctorForm(),
		screen: func(a *app.App) *ui.Screen[identity.Doctor, identity.DoctorInput] {
			return ui.NewScreen(ui.DoctorDefinition(), a.Doctors)
		},
	}.command(e)
}

func visitsCmd(e *env) *cobra.Command {
	return resource[encounter.Visit, encounter.VisitInput]{
		use:   "visits",
		short: "Manage patient visits",
		route: router.DashboardPath + "/visits",
		form:  ui.VisitForm(),
		screen: func(a *app.App) *ui.Screen[encounter.Visit, encounter.VisitInput] {
			return ui.NewScreen(ui.VisitDefinition(a.Patients, a.Doctors), a.Visits)
		},
	}.command(e)
}

func feesCmd(e *env) *cobra.Command {
	return resource[billing.Fee, billing.FeeInput]{
		use:   "fees",
		short: "Manage the fee schedule",
		route: router.DashboardPath + "/fees",
		form:  ui.FeeForm(),
		screen: func(a *app.App) *ui.Screen[billing.Fee, billing.FeeInput] {
			return ui.NewScreen(ui.FeeDefinition(), a.Fees)
		},
	}.command(e)
}

func logsCmd(e *env) *cobra.Command {
	return resource[auditlog.ActivityLog, auditlog.ActivityLogInput]{
		use:       "logs",
		short:     "Browse the activity log",
		route:     router.DashboardPath + "/activity-logs",
		listFirst: true,
		screen: func(a *app.App) *ui.Screen[auditlog.ActivityLog, auditlog.ActivityLogInput] {
			return ui.NewScreen(ui.LogDefinition(), a.Logs)
		},
	}.command(e)
}

// open builds the app, checks the route guard and opens the screen.
func (r resource[T, P]) open(e *env) (*ui.Screen[T, P], error) {
	a, err := e.open()
	if err != nil {
		return nil, err
	}
	if err := enter(a, r.route); err != nil {
		return nil, err
	}
	return r.screen(a), nil
}

func (r resource[T, P]) command(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   r.use,
		Short: r.short,
	}
	cmd.AddCommand(r.listCmd(e), r.getCmd(e))
	if r.form != nil {
		cmd.AddCommand(r.createCmd(e), r.updateCmd(e), r.deleteCmd(e))
	}
	return cmd
}

func (r resource[T, P]) listCmd(e *env) *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + r.use,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := r.open(e)
			if err != nil {
				return err
			}
			defer sc.Close()
			loadErr := sc.Load(cmd.Context())
			if err := sc.Render(e.out, pagination.New(limit, offset)); err != nil {
				return err
			}
			return loadErr
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "show at most this many rows (0 for all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "skip this many rows")
	return cmd
}

func (r resource[T, P]) getCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			sc, err := r.open(e)
			if err != nil {
				return err
			}
			defer sc.Close()
			if r.listFirst {
				if err := sc.Load(cmd.Context()); err != nil {
					return err
				}
			}
			item, err := sc.Store().LoadOne(cmd.Context(), id)
			if err != nil {
				return err
			}
			return sc.RenderItem(e.out, item)
		},
	}
}

func (r resource[T, P]) createCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a record",
		Args:  cobra.NoArgs,
	}
	form := r.form.Bind(cmd.Flags())
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		sc, err := r.open(e)
		if err != nil {
			return err
		}
		defer sc.Close()
		var zero P
		in, err := form.Apply(zero)
		if err != nil {
			return err
		}
		item, err := sc.Submit(cmd.Context(), in)
		e.printf("%s\n", sc.Banner())
		if err != nil {
			return err
		}
		return sc.RenderItem(e.out, item)
	}
	return cmd
}

func (r resource[T, P]) updateCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the given fields of a record",
		Args:  cobra.ExactArgs(1),
	}
	form := r.form.Bind(cmd.Flags())
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		sc, err := r.open(e)
		if err != nil {
			return err
		}
		defer sc.Close()
		current, err := sc.Edit(cmd.Context(), id)
		if err != nil {
			e.printf("%s\n", sc.Banner())
			return err
		}
		in, err := form.Apply(current)
		if err != nil {
			return err
		}
		item, err := sc.Submit(cmd.Context(), in)
		e.printf("%s\n", sc.Banner())
		if err != nil {
			return err
		}
		return sc.RenderItem(e.out, item)
	}
	return cmd
}

func (r resource[T, P]) deleteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			sc, err := r.open(e)
			if err != nil {
				return err
			}
			defer sc.Close()
			err = sc.Remove(cmd.Context(), id)
			e.printf("%s\n", sc.Banner())
			return err
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
