package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdesskyterra/vendor-tracking-app/internal/store"
)

func sampleTrends() []store.VendorTrend {
	return []store.VendorTrend{
		{
			VendorID:   "v1",
			VendorName: "Acme Precision",
			Points: []store.TrendPoint{
				{Month: "2026-07", AvgFinalScore: 0.80, Snapshots: 3},
				{Month: "2026-08", AvgFinalScore: 0.84, Snapshots: 2},
			},
		},
		{
			VendorID:   "v2",
			VendorName: "Baltic Forge",
			Points: []store.TrendPoint{
				{Month: "2026-08", AvgFinalScore: 0.41, Snapshots: 2},
			},
		},
	}
}

func TestFormatVendorTrends(t *testing.T) {
	var buf bytes.Buffer
	formatVendorTrends(&buf, sampleTrends())

	output := buf.String()
	assert.Contains(t, output, "VENDOR")
	assert.Contains(t, output, "MONTH")
	assert.Contains(t, output, "Acme Precision")
	assert.Contains(t, output, "2026-07")
	assert.Contains(t, output, "0.800")
	assert.Contains(t, output, "Baltic Forge")
	assert.Contains(t, output, "0.410")
}

func TestFormatVendorTrends_Empty(t *testing.T) {
	var buf bytes.Buffer
	formatVendorTrends(&buf, nil)

	assert.Contains(t, buf.String(), "No archived snapshots")
}

func TestFormatCostTrend(t *testing.T) {
	points := []store.TrendPoint{
		{Month: "2026-07", AvgLandedCost: 150.25, Snapshots: 5},
		{Month: "2026-08", AvgLandedCost: 140.5, Snapshots: 4},
	}

	var buf bytes.Buffer
	formatCostTrend(&buf, points)

	output := buf.String()
	assert.Contains(t, output, "AVG LANDED COST")
	assert.Contains(t, output, "$150.25")
	assert.Contains(t, output, "$140.50")
}

func TestFilterTrends(t *testing.T) {
	trends := sampleTrends()

	byID := filterTrends(trends, "v2")
	assert.Len(t, byID, 1)
	assert.Equal(t, "Baltic Forge", byID[0].VendorName)

	byName := filterTrends(trends, "acme precision")
	assert.Len(t, byName, 1)
	assert.Equal(t, "v1", byName[0].VendorID)

	assert.Empty(t, filterTrends(trends, "nope"))
}
