package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kirinyoku/antrian-go/internal/app"
	"github.com/kirinyoku/antrian-go/internal/config"
	"github.com/kirinyoku/antrian-go/internal/logger"
	"github.com/kirinyoku/antrian-go/internal/migrations"
	"github.com/kirinyoku/antrian-go/internal/postgres"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
	}

	var steps int

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(ctx context.Context, m *migrations.Migrator, log *slog.Logger) error {
				for i := 0; i < steps; i++ {
					if err := m.Down(ctx); err != nil {
						return err
					}
				}
				v, err := m.Version(ctx)
				if err != nil {
					return err
				}
				log.Info("rolled back", "steps", steps, "version", v)
				return nil
			})
		},
	}
	down.Flags().IntVarP(&steps, "steps", "n", 1, "number of migrations to roll back")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd.Context(), func(ctx context.Context, m *migrations.Migrator, _ *slog.Logger) error {
					return m.Up(ctx)
				})
			},
		},
		down,
		&cobra.Command{
			Use:   "status",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd.Context(), func(ctx context.Context, m *migrations.Migrator, _ *slog.Logger) error {
					v, err := m.Version(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
					return nil
				})
			},
		},
	)

	return cmd
}

func withMigrator(
	ctx context.Context,
	fn func(ctx context.Context, m *migrations.Migrator, log *slog.Logger) error,
) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}

	log := logger.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	pool, err := postgres.New(ctx, app.PostgresConfig(cfg))
	if err != nil {
		return err
	}
	defer pool.Close()

	m, err := migrations.New(pool, log)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := fn(ctx, m, log); err != nil {
		log.Error("migration failed", "err", err)
		return err
	}

	return nil
}
