package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "facility-api",
		Short:        "Patient facility management API",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "path to config.yaml (default: ./config.yaml or ./config/config.yaml)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(checkCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
