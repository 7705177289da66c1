// Package store is the local snapshot archive. Every explicit save
// appends one row per vendor; nothing ever updates or deletes, so the
// archive is a faithful history of what the engine computed and when.
// SQLite is the default backend, Postgres is available for shared
// deployments.
package store

import (
	"context"
	"time"

	"github.com/pdesskyterra/vendor-tracking-app/internal/model"
)

// TrendPoint is one month of averaged archive data.
type TrendPoint struct {
	Month         string  `json:"month"` // YYYY-MM
	AvgFinalScore float64 `json:"avg_final_score"`
	AvgLandedCost float64 `json:"avg_landed_cost"`
	Snapshots     int     `json:"snapshots"`
}

// VendorTrend is one vendor's monthly score trajectory.
type VendorTrend struct {
	VendorID   string       `json:"vendor_id"`
	VendorName string       `json:"vendor_name"`
	Points     []TrendPoint `json:"points"`
}

// Store is the snapshot archive interface. History returns snapshots
// newest first; LatestBefore returns the most recent snapshot taken
// strictly before t, or nil when the vendor has no earlier history.
type Store interface {
	SaveSnapshots(ctx context.Context, snaps []model.Snapshot) error
	History(ctx context.Context, vendorID string, limit int) ([]model.Snapshot, error)
	LatestBefore(ctx context.Context, vendorID string, t time.Time) (*model.Snapshot, error)
	CostTrend(ctx context.Context, months int) ([]TrendPoint, error)
	VendorTrends(ctx context.Context, months int) ([]VendorTrend, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// PriorCosts looks up each vendor's average landed cost from its most
// recent snapshot taken strictly before t. Vendors with no earlier
// history are absent from the returned map, which keeps the cost-spike
// rule silent for them.
func PriorCosts(ctx context.Context, s Store, vendorIDs []string, t time.Time) (map[string]float64, error) {
	costs := make(map[string]float64, len(vendorIDs))
	for _, id := range vendorIDs {
		snap, err := s.LatestBefore(ctx, id, t)
		if err != nil {
			return nil, err
		}
		if snap == nil {
			continue
		}
		costs[id] = snap.Metrics.AvgLandedCost
	}
	return costs, nil
}

// monthFloor truncates t to the first instant of its month in UTC.
func monthFloor(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// trendCutoff returns the inclusive lower bound for a trailing window of
// whole months ending in the current month. months <= 0 defaults to 6.
func trendCutoff(now time.Time, months int) time.Time {
	if months <= 0 {
		months = 6
	}
	return monthFloor(now).AddDate(0, -(months - 1), 0)
}
