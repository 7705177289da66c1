package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdesskyterra/vendor-tracking-app/internal/config"
)

// version is reported by the health endpoint and --version.
const version = "1.0.0"

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:     "vendor-tracker",
	Short:   "Supplier comparison and sourcing-risk tracking",
	Long:    "Scores hardware suppliers against each other on landed cost, lead time, reliability, and capacity from a Notion catalog, flags sourcing risks, archives score history, and serves the comparison dashboard API.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
