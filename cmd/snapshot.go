package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdesskyterra/vendor-tracking-app/internal/model"
	"github.com/pdesskyterra/vendor-tracking-app/internal/scoring"
	"github.com/pdesskyterra/vendor-tracking-app/internal/store"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Archive and inspect score snapshots",
	Long:  "Commands for saving scoring runs to the archive and browsing a vendor's history.",
}

// -- snapshot save --

var snapshotSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Score the current catalog and archive the results",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("snapshot"); err != nil {
			return err
		}

		log := zap.L().With(zap.String("command", "snapshot save"))

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		engine, _, err := buildEngine()
		if err != nil {
			return err
		}

		data, err := loadData(ctx, "")
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		ids := make([]string, len(data.Vendors))
		for i, v := range data.Vendors {
			ids[i] = v.ID
		}
		prior, err := store.PriorCosts(ctx, st, ids, now)
		if err != nil {
			log.Warn("prior costs unavailable", zap.Error(err))
			prior = nil
		}

		res := engine.Run(scoring.Input{
			Vendors:       data.Vendors,
			PartsByVendor: data.PartsByVendor,
			PriorCosts:    prior,
			Now:           now,
		})
		if len(res.Analyses) == 0 {
			fmt.Fprintln(os.Stderr, "No scoreable vendors; nothing archived.")
			return nil
		}

		snaps := make([]model.Snapshot, 0, len(res.Analyses))
		for _, a := range res.Analyses {
			snaps = append(snaps, model.NewSnapshot(a, res.ComputedAt))
		}
		if err := st.SaveSnapshots(ctx, snaps); err != nil {
			return eris.Wrap(err, "snapshot save")
		}
		fmt.Printf("Archived %d snapshots at %s\n", len(snaps), res.ComputedAt.Format(time.RFC3339))

		// The archive is the source of truth; the Notion mirror is
		// best-effort.
		if cfg.Notion.ScoresDB != "" {
			pages, err := buildCatalog().WriteSnapshots(ctx, res.Analyses, res.ComputedAt)
			if err != nil {
				log.Warn("notion snapshot mirror failed", zap.Error(err))
			} else {
				fmt.Printf("Mirrored %d snapshot pages to Notion\n", pages)
			}
		}
		return nil
	},
}

// -- snapshot list --

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived snapshots for a vendor",
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

		vendorID, _ := cmd.Flags().GetString("vendor")
		limit, _ := cmd.Flags().GetInt("limit")

		snaps, err := st.History(ctx, vendorID, limit)
		if err != nil {
			return eris.Wrap(err, "snapshot list")
		}
		if len(snaps) == 0 {
			fmt.Fprintln(os.Stderr, "No snapshots found.")
			return nil
		}

		formatSnapshotList(os.Stdout, snaps)
		return nil
	},
}

func init() {
	snapshotListCmd.Flags().String("vendor", "", "vendor ID (required)")
	snapshotListCmd.Flags().Int("limit", 20, "max number of snapshots to display")
	_ = snapshotListCmd.MarkFlagRequired("vendor")

	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	rootCmd.AddCommand(snapshotCmd)
}

// formatSnapshotList writes a tabular snapshot history to w, newest
// first.
func formatSnapshotList(out io.Writer, snaps []model.Snapshot) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tVENDOR\tTAKEN\tFINAL\tCOST\tTIME\tREL\tCAP")
	_, _ = fmt.Fprintln(w, "--\t------\t-----\t-----\t----\t----\t---\t---")

	for _, s := range snaps {
		name := s.VendorName
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%.3f\t%.2f\t%.2f\t%.2f\t%.2f\n",
			truncateID(s.ID),
			name,
			s.TakenAt.Format("2006-01-02 15:04"),
			s.FinalScore,
			s.Pillars.TotalCost,
			s.Pillars.TotalTime,
			s.Pillars.Reliability,
			s.Pillars.Capacity,
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
