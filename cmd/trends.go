package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/pdesskyterra/vendor-tracking-app/internal/store"
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Show score and cost trends from the archive",
	Long: `Aggregate archived snapshots into monthly series: per-vendor average
final score and the fleet-wide average landed cost.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("archive"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		vendor, _ := cmd.Flags().GetString("vendor")
		months, _ := cmd.Flags().GetInt("months")
		if months <= 0 {
			return eris.Errorf("trends: --months must be positive (got %d)", months)
		}

		trends, err := st.VendorTrends(ctx, months)
		if err != nil {
			return eris.Wrap(err, "trends")
		}
		if vendor != "" {
			trends = filterTrends(trends, vendor)
			if len(trends) == 0 {
				fmt.Fprintf(os.Stderr, "No archived snapshots match vendor %q.\n", vendor)
				return nil
			}
		}

		formatVendorTrends(os.Stdout, trends)

		if vendor == "" {
			cost, err := st.CostTrend(ctx, months)
			if err != nil {
				return eris.Wrap(err, "trends: cost")
			}
			formatCostTrend(os.Stdout, cost)
		}
		return nil
	},
}

func init() {
	trendsCmd.Flags().String("vendor", "", "limit to one vendor by ID or name")
	trendsCmd.Flags().Int("months", 6, "number of months of history")
	rootCmd.AddCommand(trendsCmd)
}

// filterTrends keeps trends whose vendor matches by ID or
// case-insensitive name.
func filterTrends(trends []store.VendorTrend, vendor string) []store.VendorTrend {
	var out []store.VendorTrend
	for _, t := range trends {
		if t.VendorID == vendor || strings.EqualFold(t.VendorName, vendor) {
			out = append(out, t)
		}
	}
	return out
}

// formatVendorTrends writes one row per vendor-month to w.
func formatVendorTrends(out io.Writer, trends []store.VendorTrend) {
	if len(trends) == 0 {
		fmt.Fprintln(out, "No archived snapshots in the window.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "VENDOR\tMONTH\tAVG SCORE\tSNAPSHOTS")
	_, _ = fmt.Fprintln(w, "------\t-----\t---------\t---------")

	for _, t := range trends {
		name := t.VendorName
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		for _, p := range t.Points {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%.3f\t%d\n",
				name, p.Month, p.AvgFinalScore, p.Snapshots)
		}
	}
	_ = w.Flush()
}

// formatCostTrend writes the fleet-wide monthly cost series to w.
func formatCostTrend(out io.Writer, points []store.TrendPoint) {
	if len(points) == 0 {
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "\nMONTH\tAVG LANDED COST\tSNAPSHOTS")
	_, _ = fmt.Fprintln(w, "-----\t---------------\t---------")
	for _, p := range points {
		_, _ = fmt.Fprintf(w, "%s\t$%.2f\t%d\n", p.Month, p.AvgLandedCost, p.Snapshots)
	}
	_ = w.Flush()
}
