package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdesskyterra/vendor-tracking-app/internal/policy"
)

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Inspect or update the pillar weights",
	Long:  "Commands for reading and writing the weights section of the policy file.",
}

// -- weights show --

var weightsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current weights",
	RunE: func(cmd *cobra.Command, _ []string) error {
		pol, err := policy.Load(cfg.Policy.Path)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(pol.Weights)
	},
}

// -- weights set --

var weightsSetCmd = &cobra.Command{
	Use:   "set <cost> <time> <reliability> <capacity>",
	Short: "Set the weights and save the policy file",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := parseWeights(strings.Join(args, ","))
		if err != nil {
			return err
		}

		pol, err := policy.Load(cfg.Policy.Path)
		if err != nil {
			return err
		}
		pol.Weights = w

		if err := policy.Save(cfg.Policy.Path, pol); err != nil {
			return err
		}

		fmt.Printf("Weights saved to %s (sum %.2f)\n", cfg.Policy.Path, w.Sum())
		return nil
	},
}

func init() {
	weightsCmd.AddCommand(weightsShowCmd)
	weightsCmd.AddCommand(weightsSetCmd)
	rootCmd.AddCommand(weightsCmd)
}
