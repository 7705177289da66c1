// Package export renders a completed scoring run as CSV or XLSX for
// sharing outside the dashboard. Rows follow the run's ranking order.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/pdesskyterra/vendor-tracking-app/internal/model"
	"github.com/pdesskyterra/vendor-tracking-app/internal/scoring"
)

// exportColumns defines the ordered output columns shared by both formats.
var exportColumns = []string{
	"Rank",
	"Vendor",
	"Region",
	"Final Score",
	"Cost Score",
	"Time Score",
	"Reliability Score",
	"Capacity Score",
	"Avg Landed Cost",
	"Avg Total Time (days)",
	"Total Capacity",
	"Parts",
	"Risk Flags",
	"Last Verified",
}

// WriteCSV writes the ranked analyses as CSV with a header row.
func WriteCSV(w io.Writer, res *scoring.Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(exportColumns); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for i, a := range res.Analyses {
		if err := cw.Write(buildRow(i+1, a)); err != nil {
			return eris.Wrapf(err, "export: write row for %s", a.Vendor.Name)
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush")
}

// buildRow maps one analysis to its CSV row.
func buildRow(rank int, a model.VendorAnalysis) []string {
	return []string{
		strconv.Itoa(rank),
		a.Vendor.Name,
		string(a.Vendor.Region),
		fmt.Sprintf("%.3f", a.Score.FinalScore),
		fmt.Sprintf("%.3f", a.Score.Pillars.TotalCost),
		fmt.Sprintf("%.3f", a.Score.Pillars.TotalTime),
		fmt.Sprintf("%.3f", a.Score.Pillars.Reliability),
		fmt.Sprintf("%.3f", a.Score.Pillars.Capacity),
		fmt.Sprintf("%.2f", a.Metrics.AvgLandedCost),
		fmt.Sprintf("%.1f", a.Metrics.AvgTotalTime),
		strconv.Itoa(a.Metrics.TotalCapacity),
		strconv.Itoa(a.Metrics.PartCount),
		formatFlags(a.Flags),
		formatVerified(a),
	}
}

// formatFlags renders risk flags as "kind (severity)" joined by "; ".
func formatFlags(flags []model.RiskFlag) string {
	if len(flags) == 0 {
		return ""
	}
	parts := make([]string, len(flags))
	for i, f := range flags {
		parts[i] = fmt.Sprintf("%s (%s)", f.Kind, f.Severity)
	}
	return strings.Join(parts, "; ")
}

func formatVerified(a model.VendorAnalysis) string {
	if a.Vendor.LastVerified.IsZero() {
		return "never"
	}
	s := a.Vendor.LastVerified.Format("2006-01-02")
	if a.Stale {
		s += " (stale)"
	}
	return s
}
