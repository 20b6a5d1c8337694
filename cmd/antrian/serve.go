package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kirinyoku/antrian-go/internal/app"
	"github.com/kirinyoku/antrian-go/internal/config"
	"github.com/kirinyoku/antrian-go/internal/logger"
)

func newServeCommand() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}

			if migrate {
				cfg.AutoMigrate = true
			}

			log := logger.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)

			application, err := app.New(cmd.Context(), cfg, log)
			if err != nil {
				log.Error("failed to create application", "err", err)
				return err
			}

			if err := application.Run(cmd.Context()); err != nil {
				log.Error("application finished with error", "err", err)
				return err
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving (same as AUTO_MIGRATE=true)")

	return cmd
}
