package main

import (
	"os"

	"github.com/spf13/cobra"

	_ "github.com/kirinyoku/antrian-go/docs"
)

// @title Antrian API
// @version 1.0
// @description Hospital queue ticketing: take a number, call it to a counter, follow it on the display.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	rootCmd := &cobra.Command{
		Use:           "antrian",
		Short:         "Hospital queue ticketing service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
