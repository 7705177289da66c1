package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/pdesskyterra/vendor-tracking-app/internal/catalog"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the Notion databases with the demo catalog",
	Long: `Validate the Vendors, Parts, and Score History database schemas, then
create the demo catalog: thirty vendors across six regions quoting
batteries, sensors, displays, and related wearable components.

Populated databases are left alone unless --force is set.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("seed"); err != nil {
			return err
		}

		validateOnly, _ := cmd.Flags().GetBool("validate")
		force, _ := cmd.Flags().GetBool("force")

		cat := buildCatalog()

		if validateOnly {
			if err := cat.ValidateSchemas(ctx); err != nil {
				return err
			}
			fmt.Println("Schemas OK.")
			return nil
		}

		result, err := cat.Seed(ctx, force)
		if err != nil {
			if eris.Is(err, catalog.ErrDataExists) {
				return eris.Wrap(err, "seed: pass --force to seed anyway")
			}
			return err
		}

		fmt.Printf("Seeded %d vendors and %d parts\n", result.VendorsCreated, result.PartsCreated)
		return nil
	},
}

func init() {
	seedCmd.Flags().Bool("validate", false, "validate database schemas without writing")
	seedCmd.Flags().Bool("force", false, "seed even if the databases already contain data")
	rootCmd.AddCommand(seedCmd)
}
