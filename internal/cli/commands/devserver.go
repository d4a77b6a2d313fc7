package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/openradius/radops/internal/cli/config"
	"github.com/openradius/radops/internal/devserver"
)

// DevServerOptions holds options for the devserver command.
type DevServerOptions struct {
	Port  int
	DB    string
	Seed  string
	Watch bool
	Fresh bool
}

// NewDevServerCommand creates the devserver command.
func NewDevServerCommand() *cobra.Command {
	opts := &DevServerOptions{}

	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run a local fixture backend",
		Long: `Serve the whole backend API contract from a local SQLite database:
search, CRUD, bulk actions, and layout preferences. Point the console at it
for development and demos.

The database is seeded with deterministic fixtures on first start and keeps
edits across restarts. A custom seed file is reloaded whenever it changes.`,
		Example: `  # Serve on the default port with the built-in fixtures
  radops devserver

  # Custom fixtures, reseeded on every save of the file
  radops devserver --seed=fixtures.json

  # Throw away previous edits and reseed
  radops devserver --fresh`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDevServer(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 4000, "Port to serve on")
	cmd.Flags().StringVar(&opts.DB, "db", ".radops/devserver.db", "Fixture database path")
	cmd.Flags().StringVar(&opts.Seed, "seed", "", "JSON seed file (default: built-in fixtures)")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Reseed when the seed file changes")
	cmd.Flags().BoolVar(&opts.Fresh, "fresh", false, "Reseed even when the database already holds data")

	return cmd
}

func runDevServer(cmd *cobra.Command, opts *DevServerOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := config.GetLogger(ctx)

	store, err := devserver.OpenStore(opts.DB, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	data := devserver.DefaultSeed()
	if opts.Seed != "" {
		if data, err = devserver.LoadSeedFile(opts.Seed); err != nil {
			return fmt.Errorf("load seed file: %w", err)
		}
	}
	if opts.Fresh {
		err = store.Seed(ctx, data)
	} else {
		err = store.SeedIfEmpty(ctx, data)
	}
	if err != nil {
		return fmt.Errorf("seed fixtures: %w", err)
	}

	seedFile := ""
	if opts.Watch {
		seedFile = opts.Seed
	}

	srv := devserver.NewServer(devserver.Config{
		Store:    store,
		Port:     opts.Port,
		SeedFile: seedFile,
		Logger:   logger,
	})
	return srv.Serve(ctx)
}
