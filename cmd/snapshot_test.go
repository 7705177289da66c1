package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pdesskyterra/vendor-tracking-app/internal/model"
)

func TestFormatSnapshotList(t *testing.T) {
	taken := time.Date(2026, 6, 15, 10, 30, 0, 0, time.UTC)
	snaps := []model.Snapshot{
		{
			ID:         "abc12345-6789-0000-0000-000000000000",
			VendorID:   "v1",
			VendorName: "Acme Precision",
			TakenAt:    taken,
			FinalScore: 0.81,
			Pillars:    model.PillarScores{TotalCost: 0.9, TotalTime: 0.7, Reliability: 0.8, Capacity: 0.6},
		},
		{
			ID:         "def12345-6789-0000-0000-000000000000",
			VendorID:   "v1",
			VendorName: "Acme Precision",
			TakenAt:    taken.AddDate(0, -1, 0),
			FinalScore: 0.77,
			Pillars:    model.PillarScores{TotalCost: 0.8, TotalTime: 0.7, Reliability: 0.8, Capacity: 0.5},
		},
	}

	var buf bytes.Buffer
	formatSnapshotList(&buf, snaps)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "VENDOR")
	assert.Contains(t, output, "TAKEN")
	assert.Contains(t, output, "abc12345")
	assert.Contains(t, output, "def12345")
	assert.Contains(t, output, "Acme Precision")
	assert.Contains(t, output, "2026-06-15 10:30")
	assert.Contains(t, output, "0.810")
	assert.Contains(t, output, "0.770")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789-0000-0000-000000000000"))
	assert.Equal(t, "short", truncateID("short"))
}
