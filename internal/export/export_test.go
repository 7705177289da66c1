package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/pdesskyterra/vendor-tracking-app/internal/model"
	"github.com/pdesskyterra/vendor-tracking-app/internal/scoring"
)

func testResult() *scoring.Result {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	return &scoring.Result{
		Analyses: []model.VendorAnalysis{
			{
				Vendor: model.Vendor{
					ID: "v1", Name: "Acme Precision", Region: "North America",
					ReliabilityScore: 0.95, LastVerified: now.AddDate(0, 0, -10),
				},
				Metrics: model.RawMetrics{AvgLandedCost: 120.5, AvgTotalTime: 31.5, TotalCapacity: 5000, Reliability: 0.95, PartCount: 3},
				Score: model.VendorScore{
					VendorID: "v1", VendorName: "Acme Precision",
					Pillars:    model.PillarScores{TotalCost: 1, TotalTime: 0.8, Reliability: 1, Capacity: 1},
					FinalScore: 0.94, Weights: model.DefaultWeights(), ComputedAt: now,
				},
			},
			{
				Vendor: model.Vendor{ID: "v2", Name: "Baltic Forge", Region: "Europe", ReliabilityScore: 0.7},
				Metrics: model.RawMetrics{AvgLandedCost: 200, AvgTotalTime: 60, TotalCapacity: 2000, Reliability: 0.7, PartCount: 2},
				Score: model.VendorScore{
					VendorID: "v2", VendorName: "Baltic Forge",
					Pillars:    model.PillarScores{TotalCost: 0, TotalTime: 0, Reliability: 0, Capacity: 0},
					FinalScore: 0, Weights: model.DefaultWeights(), ComputedAt: now,
				},
				Flags: []model.RiskFlag{
					{Kind: model.RiskDelay, Severity: model.SeverityHigh, Description: "lead time exceeds ceiling"},
					{Kind: model.RiskStaleData, Severity: model.SeverityMedium, Description: "never verified"},
				},
				Stale: true,
			},
		},
		Excluded:   []string{"Ghost Supply"},
		Summary:    scoring.Summary{Summary: "**Top Performer**: Acme Precision", Recommendation: "Acme Precision is the leading choice"},
		Weights:    model.DefaultWeights(),
		ComputedAt: now,
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testResult()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, exportColumns, records[0])

	first := records[1]
	assert.Equal(t, "1", first[0])
	assert.Equal(t, "Acme Precision", first[1])
	assert.Equal(t, "North America", first[2])
	assert.Equal(t, "0.940", first[3])
	assert.Equal(t, "120.50", first[8])
	assert.Equal(t, "5000", first[10])
	assert.Equal(t, "", first[12])
	assert.Equal(t, "2026-02-28", first[13])

	second := records[2]
	assert.Equal(t, "2", second[0])
	assert.Equal(t, "delay_risk (high); stale_data (medium)", second[12])
	assert.Equal(t, "never", second[13])
}

func TestWriteCSV_NoAnalyses(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, &scoring.Result{}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, exportColumns, records[0])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, testResult()))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)

	vendors, ok := f.Sheet["Vendors"]
	require.True(t, ok)
	require.Len(t, vendors.Rows, 3)

	header := vendors.Rows[0]
	require.Len(t, header.Cells, len(exportColumns))
	assert.Equal(t, "Rank", header.Cells[0].String())
	assert.Equal(t, "Risk Flags", header.Cells[12].String())

	first := vendors.Rows[1]
	assert.Equal(t, "Acme Precision", first.Cells[1].String())
	score, err := first.Cells[3].Float()
	require.NoError(t, err)
	assert.InDelta(t, 0.94, score, 0.001)
	capacity, err := first.Cells[10].Int()
	require.NoError(t, err)
	assert.Equal(t, 5000, capacity)

	second := vendors.Rows[2]
	assert.Equal(t, "delay_risk (high); stale_data (medium)", second.Cells[12].String())

	summary, ok := f.Sheet["Summary"]
	require.True(t, ok)
	labels := make([]string, 0, len(summary.Rows))
	for _, row := range summary.Rows {
		if len(row.Cells) > 0 {
			labels = append(labels, row.Cells[0].String())
		}
	}
	assert.Contains(t, labels, "Weights")
	assert.Contains(t, labels, "Recommendation")
	assert.Contains(t, labels, "Excluded (no parts)")
}
