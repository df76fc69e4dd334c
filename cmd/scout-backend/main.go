package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"playerscout/adapters/db/postgres/migrations"
	"playerscout/adapters/fixtures"
	"playerscout/adapters/postgres"
	"playerscout/internal/analysis"
	"playerscout/internal/backend"
	"playerscout/internal/config"
	"playerscout/internal/errors"
	"playerscout/ports"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	rootCmd := &cobra.Command{
		Use:   "scout-backend",
		Short: "PlayerScout development statistics service",
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSeedCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve /api/player/search from fixtures or PostgreSQL",
		Long: `Serve the player search API.

Without DATABASE_URL players are loaded from FIXTURES_DIR; with it they are
read from the players table, which is migrated on startup.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Backend.Addr
			}

			store, closeStore, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			var analyzer ports.OverviewAnalyzer
			if cfg.Backend.Analyze {
				analyzer = analysis.NewAnalyzer(nil)
			}

			srv := backend.NewServer(store, analyzer, cfg.Backend.CORSOrigins)
			return srv.Start(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default BACKEND_ADDR)")
	return cmd
}

// openStore picks the fixtures directory or PostgreSQL depending on DATABASE_URL
func openStore(ctx context.Context, cfg *config.Config) (ports.PlayerRepository, func(), error) {
	if cfg.Database.URL == "" {
		store, err := fixtures.LoadDir(cfg.Backend.FixturesDir)
		if err != nil {
			return nil, nil, err
		}
		count, _ := store.Count(ctx)
		log.Printf("[Backend] Loaded %d players from %s", count, cfg.Backend.FixturesDir)
		return store, func() {}, nil
	}

	db, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	repo := postgres.NewPlayerRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	count, err := repo.Count(ctx)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	log.Printf("[Backend] Serving %d players from PostgreSQL", count)
	return repo, func() { db.Close() }, nil
}

func connect(ctx context.Context) (*sqlx.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.Database.URL == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}
	return postgres.Open(ctx, cfg.Database.URL)
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Manage the players schema",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}

			db, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			migrator := migrations.NewMigrator(db.DB)
			out := cmd.OutOrStdout()

			switch action {
			case "down":
				version, err := migrator.Down(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Rolled back %s\n", version)
			case "status":
				statuses, err := migrator.Status(cmd.Context())
				if err != nil {
					return err
				}
				for _, s := range statuses {
					state := "pending"
					if s.Applied {
						state = "applied"
					}
					if s.Drifted {
						state += " (checksum changed)"
					}
					fmt.Fprintf(out, "%s_%s\t%s\n", s.Version, s.Name, state)
				}
			default:
				applied, err := migrator.Up(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Applied %d migration(s)\n", len(applied))
				for _, v := range applied {
					fmt.Fprintf(out, "  %s\n", v)
				}
			}
			return nil
		},
	}
	return cmd
}

func newSeedCmd() *cobra.Command {
	var analyze bool

	cmd := &cobra.Command{
		Use:   "seed <fixtures-dir>",
		Short: "Load player fixtures into PostgreSQL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := fixtures.LoadDir(args[0])
			if err != nil {
				return err
			}

			db, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			repo := postgres.NewPlayerRepository(db)
			if err := repo.Migrate(cmd.Context()); err != nil {
				return err
			}

			analyzer := analysis.NewAnalyzer(nil)
			records := source.All()
			for _, record := range records {
				if analyze && !record.HasOverview() {
					overview, err := analyzer.Analyze(record)
					if err != nil {
						log.Printf("[Seed] Skipping analysis for %q: %v", record.GeneralInfo.Name, err)
					} else {
						record.PlayerOverview = overview
					}
				}
				if err := repo.Upsert(cmd.Context(), record); err != nil {
					return errors.Wrapf(err, "failed to seed %q", record.GeneralInfo.Name)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d players from %s\n", len(records), args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&analyze, "analyze", false, "compute player_overview before storing")
	return cmd
}
