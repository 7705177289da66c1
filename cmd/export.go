package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdesskyterra/vendor-tracking-app/internal/export"
	"github.com/pdesskyterra/vendor-tracking-app/internal/scoring"
	"github.com/pdesskyterra/vendor-tracking-app/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the ranked vendor comparison to CSV or XLSX",
	Long: `Score the catalog and write the full comparison, ranking, metrics,
and risk flags, to a procurement-ready file.

Examples:
  # CSV to stdout
  export

  # Spreadsheet for the sourcing review
  export --format xlsx --output vendors.xlsx`,
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.String("format", "csv", "export format: csv or xlsx")
	f.String("output", "", "output file path (default: stdout; required for xlsx)")
	f.String("fixture", "", "export a YAML fixture file instead of Notion")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	fixture, _ := cmd.Flags().GetString("fixture")

	if format != "csv" && format != "xlsx" {
		return eris.Errorf("export: --format must be csv or xlsx (got %q)", format)
	}
	if format == "xlsx" && outputPath == "" {
		return eris.New("export: --output is required for xlsx")
	}

	engine, _, err := buildEngine()
	if err != nil {
		return err
	}

	data, err := loadData(ctx, fixture)
	if err != nil {
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

	now := time.Now().UTC()
	ids := make([]string, len(data.Vendors))
	for i, v := range data.Vendors {
		ids[i] = v.ID
	}
	prior, err := store.PriorCosts(ctx, st, ids, now)
	if err != nil {
		zap.L().Warn("prior costs unavailable", zap.Error(err))
		prior = nil
	}

	res := engine.Run(scoring.Input{
		Vendors:       data.Vendors,
		PartsByVendor: data.PartsByVendor,
		PriorCosts:    prior,
		Now:           now,
	})

	var w *os.File
	if outputPath != "" {
		w, err = os.Create(outputPath)
		if err != nil {
			return eris.Wrapf(err, "export: create output file %s", outputPath)
		}
		defer w.Close() //nolint:errcheck
	} else {
		w = os.Stdout
	}

	switch format {
	case "xlsx":
		err = export.WriteXLSX(w, res)
	default:
		err = export.WriteCSV(w, res)
	}
	if err != nil {
		return err
	}

	if outputPath != "" {
		fmt.Printf("Wrote %s export for %d vendors to %s\n", format, len(res.Analyses), outputPath)
	}
	return nil
}
