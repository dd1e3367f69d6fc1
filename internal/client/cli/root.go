package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/clouddemo/internal/backend"
	"github.com/dmitrijs2005/clouddemo/internal/client/client"
	"github.com/dmitrijs2005/clouddemo/internal/client/config"
	"github.com/dmitrijs2005/clouddemo/internal/client/services"
	"github.com/dmitrijs2005/clouddemo/internal/logging"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Seams for the subcommands.
var (
	openBackend    = backend.Open
	migrateBackend = backend.Migrate
	runDashboard   = func(ctx context.Context, cfg *config.Config, log logging.Logger, in io.Reader, out io.Writer) error {
		app, err := NewApp(ctx, cfg, log, in, out)
		if err != nil {
			return err
		}
		defer app.Close()
		return app.Run(ctx)
	}
)

// NewRootCommand builds the command tree. Configuration flags (-u, -k, -d,
// -l, -i, -c) are consumed by the config package before cobra sees the
// arguments.
func NewRootCommand(cfg *config.Config, log logging.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "clouddemo",
		Short: "Interactive demo of a managed backend platform",
		Long: `An interactive terminal dashboard showcasing a backend-as-a-service platform:
email/password authentication, relational CRUD with row level security,
realtime subscriptions, file storage and edge functions.

Configuration flags (read before the command):
  -u url       backend base URL
  -k key       anon API key
  -d dsn       PostgreSQL DSN (migrate only)
  -l level     log level (debug, info, warn, error)
  -i seconds   health check interval
  -c file      JSON config file

Quick Start:
  clouddemo -d postgres://... migrate   # provision the schema
  clouddemo health                      # check backend health
  clouddemo                             # open the dashboard`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd.Context(), cfg, log, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(
		newMigrateCommand(cfg, log),
		newHealthCommand(cfg),
		newInvokeCommand(cfg),
	)
	return root
}

func newMigrateCommand(cfg *config.Config, log logging.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the backend schema (notes, messages, uploads bucket)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openBackend(ctx, cfg.DatabaseDSN)
			if err != nil {
				if errors.Is(err, backend.ErrNoDSN) {
					err = fmt.Errorf("%w (set -d or CLOUDDEMO_DATABASE_DSN)", err)
				}
				return err
			}
			defer db.Close()

			v, err := migrateBackend(ctx, db, log)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✅ Schema at version %d", v)))
			return nil
		},
	}
}

func newHealthCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			auth := client.NewAuthAPI(client.NewEndpoint(cfg.BackendURL, cfg.AnonKey, cfg.RequestTimeout))
			if err := auth.Health(cmd.Context()); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), errorStyle.Render("❌ Backend unreachable:"), err)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✅ Backend is healthy"), subtleStyle.Render(cfg.BackendURL))
			return nil
		},
	}
}

func newInvokeCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "invoke [name]",
		Short: "Call an edge function anonymously and print its response",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := cfg.FunctionName
			if len(args) == 1 {
				name = args[0]
			}
			functions := client.NewFunctionsAPI(client.NewEndpoint(cfg.BackendURL, cfg.AnonKey, cfg.RequestTimeout))
			res, err := services.NewFunctionService(functions, nil, name).Invoke(cmd.Context())
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), renderFunction(nil, err.Error()))
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderFunction(&res, ""))
			return nil
		},
	}
}
