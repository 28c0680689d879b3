package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clinicdesk/clinicdesk/internal/platform/middleware"
	"github.com/clinicdesk/clinicdesk/internal/platform/sandbox"
)

func sandboxCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Run a local in-memory clinic backend",
	}
	cmd.AddCommand(serveCmd(e))
	return cmd
}

func serveCmd(e *env) *cobra.Command {
	var (
		addr  string
		empty bool
		seed  = sandbox.DefaultSeedConfig()
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the sandbox API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = e.cfg.SandboxAddr
			}
			srv := sandbox.New(sandbox.Config{
				SigningKey:     []byte(e.cfg.SandboxSigningKey),
				TokenTTL:       e.cfg.SandboxTokenTTL,
				RequestTimeout: e.cfg.RequestTimeout,
				RateLimit:      middleware.DefaultRateLimitConfig(),
			}, e.logger)

			if err := srv.Reset(); err != nil {
				return err
			}
			if !empty {
				result, err := srv.Seed(cmd.Context(), seed)
				if err != nil {
					return err
				}
				e.logger.Info().
					Int("patients", result.Patients).
					Int("doctors", result.Doctors).
					Int("visits", result.Visits).
					Int("fees", result.Fees).
					Msg("sandbox seeded")
			}
			e.printf("Sandbox listening on %s (demo password %q)\n", addr, sandbox.DemoPassword)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default SANDBOX_ADDR)")
	cmd.Flags().BoolVar(&empty, "empty", false, "start with only the demo accounts")
	cmd.Flags().IntVar(&seed.PatientCount, "patients", seed.PatientCount, "patients to generate")
	cmd.Flags().IntVar(&seed.DoctorCount, "doctors", seed.DoctorCount, "doctors to generate")
	cmd.Flags().IntVar(&seed.VisitsPerPatient, "visits-per-patient", seed.VisitsPerPatient, "visits booked per patient")
	cmd.Flags().Int64Var(&seed.Seed, "seed", seed.Seed, "random seed, 0 for time based")
	return cmd
}
