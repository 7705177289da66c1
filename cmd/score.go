package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdesskyterra/vendor-tracking-app/internal/export"
	"github.com/pdesskyterra/vendor-tracking-app/internal/model"
	"github.com/pdesskyterra/vendor-tracking-app/internal/scoring"
	"github.com/pdesskyterra/vendor-tracking-app/internal/store"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score and rank vendors",
	Long: `Score every vendor in the catalog against the others on landed cost,
total time, reliability, and capacity, evaluate risk rules, and print
the ranking.

Scores are set-relative: filters change the candidate set, and
therefore the scores.

Examples:
  # Rank all vendors
  score

  # Battery suppliers in the EU, ranked by cost score
  score --component battery --region EU --sort total_cost

  # One-off weights without touching the policy file
  score --weights 0.5,0.2,0.2,0.1

  # Score a local fixture instead of Notion
  score --fixture testdata/catalog.yaml

  # Archive the run and mirror snapshots to Notion
  score --save`,
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.String("sort", "final_score", "ranking key: final_score, total_cost, total_time, reliability, capacity")
	f.String("component", "", "only vendors quoting a matching part name")
	f.String("region", "", "only vendors in this region (US, EU, KR, CN, VN, MX, IN)")
	f.String("mode", "", "only vendors shipping via this mode (Air, Ocean, Ground)")
	f.Int("limit", 0, "maximum number of rows (0=all)")
	f.String("weights", "", "override weights as cost,time,reliability,capacity (e.g. 0.4,0.3,0.2,0.1)")
	f.String("fixture", "", "score a YAML fixture file instead of Notion")
	f.String("output", "", "output file path (default: stdout)")
	f.String("format", "table", "output format: table, csv, or json")
	f.Bool("save", false, "archive the run and mirror snapshots to Notion")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := zap.L().With(zap.String("command", "score"))

	// Parse flags.
	sortFlag, _ := cmd.Flags().GetString("sort")
	component, _ := cmd.Flags().GetString("component")
	region, _ := cmd.Flags().GetString("region")
	mode, _ := cmd.Flags().GetString("mode")
	limit, _ := cmd.Flags().GetInt("limit")
	weightsFlag, _ := cmd.Flags().GetString("weights")
	fixture, _ := cmd.Flags().GetString("fixture")
	outputPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	save, _ := cmd.Flags().GetBool("save")

	key, err := scoring.ParseSortKey(sortFlag)
	if err != nil {
		return err
	}
	if format != "table" && format != "csv" && format != "json" {
		return eris.Errorf("score: --format must be table, csv, or json (got %q)", format)
	}

	engine, holder, err := buildEngine()
	if err != nil {
		return err
	}
	if weightsFlag != "" {
		w, err := parseWeights(weightsFlag)
		if err != nil {
			return err
		}
		if err := holder.Swap(w); err != nil {
			return err
		}
	}

	data, err := loadData(ctx, fixture)
	if err != nil {
		return err
	}

	vendors := scoring.ApplyFilters(data.Vendors, data.PartsByVendor, scoring.FilterOptions{
		Component: component,
		Region:    region,
		Mode:      mode,
	})

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck
	if err := st.Migrate(ctx); err != nil {
		return err
	}

	now := time.Now().UTC()

	// Prior costs feed the cost-spike rule. An empty archive just means
	// the rule stays silent.
	ids := make([]string, len(vendors))
	for i, v := range vendors {
		ids[i] = v.ID
	}
	prior, err := store.PriorCosts(ctx, st, ids, now)
	if err != nil {
		log.Warn("prior costs unavailable", zap.Error(err))
		prior = nil
	}

	res := engine.Run(scoring.Input{
		Vendors:       vendors,
		PartsByVendor: data.PartsByVendor,
		PriorCosts:    prior,
		Now:           now,
	})

	if key != scoring.SortFinalScore {
		scoring.Rank(res.Analyses, key)
	}

	view := *res
	if limit > 0 && limit < len(view.Analyses) {
		view.Analyses = view.Analyses[:limit]
	}

	log.Info("scoring complete",
		zap.Int("ranked", len(res.Analyses)),
		zap.Int("excluded", len(res.Excluded)),
		zap.String("sort", string(key)),
	)

	if err := outputScoreResults(&view, format, outputPath); err != nil {
		return err
	}
	if format == "table" {
		printRunSummary(os.Stdout, res)
	}

	if save && len(res.Analyses) > 0 {
		snaps := make([]model.Snapshot, 0, len(res.Analyses))
		for _, a := range res.Analyses {
			snaps = append(snaps, model.NewSnapshot(a, res.ComputedAt))
		}
		if err := st.SaveSnapshots(ctx, snaps); err != nil {
			return eris.Wrap(err, "score: save snapshots")
		}
		fmt.Printf("Archived %d snapshots\n", len(snaps))

		if fixture == "" && cfg.Notion.ScoresDB != "" {
			pages, err := buildCatalog().WriteSnapshots(ctx, res.Analyses, res.ComputedAt)
			if err != nil {
				log.Warn("notion snapshot mirror failed", zap.Error(err))
			} else {
				fmt.Printf("Mirrored %d snapshot pages to Notion\n", pages)
			}
		}
	}

	return nil
}

func outputScoreResults(res *scoring.Result, format, outputPath string) error {
	var w *os.File
	if outputPath != "" {
		var err error
		w, err = os.Create(outputPath)
		if err != nil {
			return eris.Wrapf(err, "score: create output file %s", outputPath)
		}
		defer w.Close() //nolint:errcheck
	} else {
		w = os.Stdout
	}

	switch format {
	case "csv":
		return export.WriteCSV(w, res)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "table":
		return writeVendorTable(w, res)
	default:
		return eris.Errorf("score: unsupported format %q", format)
	}
}

func writeVendorTable(w io.Writer, res *scoring.Result) error {
	header := fmt.Sprintf("%-4s %-28s %-6s %6s %6s %6s %6s %6s %6s %-5s\n",
		"RANK", "VENDOR", "REGION", "FINAL", "COST", "TIME", "REL", "CAP", "RISKS", "STALE")
	if _, err := fmt.Fprint(w, header); err != nil {
		return eris.Wrap(err, "score: write table header")
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", 86)); err != nil {
		return eris.Wrap(err, "score: write table separator")
	}

	for i, a := range res.Analyses {
		name := a.Vendor.Name
		if len(name) > 28 {
			name = name[:25] + "..."
		}
		stale := "-"
		if a.Stale {
			stale = "yes"
		}
		line := fmt.Sprintf("%-4d %-28s %-6s %6.3f %6.2f %6.2f %6.2f %6.2f %6d %-5s\n",
			i+1, name, a.Vendor.Region,
			a.Score.FinalScore,
			a.Score.Pillars.TotalCost, a.Score.Pillars.TotalTime,
			a.Score.Pillars.Reliability, a.Score.Pillars.Capacity,
			len(a.Flags), stale)
		if _, err := fmt.Fprint(w, line); err != nil {
			return eris.Wrap(err, "score: write table row")
		}
	}
	return nil
}

func printRunSummary(w io.Writer, res *scoring.Result) {
	fmt.Fprintf(w, "\n%s\n", res.Summary.Summary)
	if res.Summary.Recommendation != "" {
		fmt.Fprintf(w, "%s\n", res.Summary.Recommendation)
	}
	if len(res.Excluded) > 0 {
		fmt.Fprintf(w, "Excluded (no parts): %s\n", strings.Join(res.Excluded, ", "))
	}
}

// parseWeights parses a "cost,time,reliability,capacity" flag value.
func parseWeights(s string) (model.Weights, error) {
	parts := splitAndTrim(s)
	if len(parts) != 4 {
		return model.Weights{}, eris.Errorf("weights: expected 4 comma-separated values (got %d)", len(parts))
	}

	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return model.Weights{}, eris.Wrapf(err, "weights: parse %q", p)
		}
		vals[i] = v
	}

	w := model.Weights{
		TotalCost:   vals[0],
		TotalTime:   vals[1],
		Reliability: vals[2],
		Capacity:    vals[3],
	}
	if err := w.Validate(); err != nil {
		return model.Weights{}, err
	}
	return w, nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
