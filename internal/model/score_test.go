package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewSnapshot(t *testing.T) {
	takenAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	a := VendorAnalysis{
		Vendor: Vendor{ID: "v1", Name: "Acme Precision"},
		Metrics: RawMetrics{
			AvgLandedCost: 14.25,
			AvgTotalTime:  31.5,
			TotalCapacity: 90000,
			Reliability:   0.95,
			PartCount:     2,
		},
		Score: VendorScore{
			VendorID:   "v1",
			FinalScore: 0.87,
			Pillars:    PillarScores{TotalCost: 0.9, TotalTime: 0.8, Reliability: 1.0, Capacity: 0.6},
			Weights:    DefaultWeights(),
		},
	}

	snap := NewSnapshot(a, takenAt)

	// The archive assigns the ID on insert.
	assert.Empty(t, snap.ID)
	assert.Equal(t, "v1", snap.VendorID)
	assert.Equal(t, "Acme Precision", snap.VendorName)
	assert.Equal(t, takenAt, snap.TakenAt)
	assert.Equal(t, 0.87, snap.FinalScore)
	assert.Equal(t, a.Score.Pillars, snap.Pillars)
	assert.Equal(t, a.Score.Weights, snap.Weights)
	assert.Equal(t, a.Metrics, snap.Metrics)
}
