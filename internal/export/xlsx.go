package export

import (
	"io"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/pdesskyterra/vendor-tracking-app/internal/model"
	"github.com/pdesskyterra/vendor-tracking-app/internal/scoring"
)

// WriteXLSX writes the run as a workbook: a Vendors sheet with typed
// cells in the shared column order, and a Summary sheet with the run
// context (weights, executive summary, exclusions).
func WriteXLSX(w io.Writer, res *scoring.Result) error {
	f := xlsx.NewFile()

	vendors, err := f.AddSheet("Vendors")
	if err != nil {
		return eris.Wrap(err, "export: add vendors sheet")
	}
	header := vendors.AddRow()
	for _, col := range exportColumns {
		header.AddCell().SetString(col)
	}
	for i, a := range res.Analyses {
		addVendorRow(vendors.AddRow(), i+1, a)
	}

	summary, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}
	addSummaryRows(summary, res)

	return eris.Wrap(f.Write(w), "export: write workbook")
}

func addVendorRow(row *xlsx.Row, rank int, a model.VendorAnalysis) {
	row.AddCell().SetInt(rank)
	row.AddCell().SetString(a.Vendor.Name)
	row.AddCell().SetString(string(a.Vendor.Region))
	row.AddCell().SetFloatWithFormat(a.Score.FinalScore, "0.000")
	row.AddCell().SetFloatWithFormat(a.Score.Pillars.TotalCost, "0.000")
	row.AddCell().SetFloatWithFormat(a.Score.Pillars.TotalTime, "0.000")
	row.AddCell().SetFloatWithFormat(a.Score.Pillars.Reliability, "0.000")
	row.AddCell().SetFloatWithFormat(a.Score.Pillars.Capacity, "0.000")
	row.AddCell().SetFloatWithFormat(a.Metrics.AvgLandedCost, "0.00")
	row.AddCell().SetFloatWithFormat(a.Metrics.AvgTotalTime, "0.0")
	row.AddCell().SetInt(a.Metrics.TotalCapacity)
	row.AddCell().SetInt(a.Metrics.PartCount)
	row.AddCell().SetString(formatFlags(a.Flags))
	row.AddCell().SetString(formatVerified(a))
}

func addSummaryRows(sheet *xlsx.Sheet, res *scoring.Result) {
	pair := func(label, value string) {
		row := sheet.AddRow()
		row.AddCell().SetString(label)
		row.AddCell().SetString(value)
	}
	weight := func(label string, value float64) {
		row := sheet.AddRow()
		row.AddCell().SetString(label)
		row.AddCell().SetFloatWithFormat(value, "0.00")
	}

	pair("Generated", res.ComputedAt.Format(time.RFC3339))
	if len(res.Excluded) > 0 {
		pair("Excluded (no parts)", strings.Join(res.Excluded, ", "))
	}
	sheet.AddRow()

	pair("Weights", "")
	weight("Total Cost", res.Weights.TotalCost)
	weight("Total Time", res.Weights.TotalTime)
	weight("Reliability", res.Weights.Reliability)
	weight("Capacity", res.Weights.Capacity)
	sheet.AddRow()

	pair("Summary", res.Summary.Summary)
	pair("Recommendation", res.Summary.Recommendation)
}
