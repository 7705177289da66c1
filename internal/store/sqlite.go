package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/pdesskyterra/vendor-tracking-app/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode. Timestamps are stored in SQLite's own text format so the
// strftime-based trend queries can parse them.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", sqliteDSN(dsn))
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_time_format=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_time_format=sqlite"
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	id                TEXT PRIMARY KEY,
	vendor_id         TEXT NOT NULL,
	vendor_name       TEXT NOT NULL,
	taken_at          DATETIME NOT NULL,
	final_score       REAL NOT NULL,
	cost_score        REAL NOT NULL,
	time_score        REAL NOT NULL,
	reliability_score REAL NOT NULL,
	capacity_score    REAL NOT NULL,
	avg_landed_cost   REAL NOT NULL,
	avg_total_time    REAL NOT NULL,
	total_capacity    INTEGER NOT NULL,
	part_count        INTEGER NOT NULL,
	weights_json      TEXT NOT NULL,
	metrics_json      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_vendor_taken ON snapshots(vendor_id, taken_at DESC);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveSnapshots(ctx context.Context, snaps []model.Snapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO snapshots (
			id, vendor_id, vendor_name, taken_at, final_score,
			cost_score, time_score, reliability_score, capacity_score,
			avg_landed_cost, avg_total_time, total_capacity, part_count,
			weights_json, metrics_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	for _, snap := range snaps {
		id := snap.ID
		if id == "" {
			id = uuid.New().String()
		}
		weightsJSON, err := json.Marshal(snap.Weights)
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal weights for %s", snap.VendorID)
		}
		metricsJSON, err := json.Marshal(snap.Metrics)
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal metrics for %s", snap.VendorID)
		}
		if _, err := stmt.ExecContext(ctx,
			id, snap.VendorID, snap.VendorName, snap.TakenAt.UTC(), snap.FinalScore,
			snap.Pillars.TotalCost, snap.Pillars.TotalTime,
			snap.Pillars.Reliability, snap.Pillars.Capacity,
			snap.Metrics.AvgLandedCost, snap.Metrics.AvgTotalTime,
			snap.Metrics.TotalCapacity, snap.Metrics.PartCount,
			string(weightsJSON), string(metricsJSON),
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert snapshot for %s", snap.VendorID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit save")
}

const selectSnapshot = `SELECT id, vendor_id, vendor_name, taken_at, final_score,
	cost_score, time_score, reliability_score, capacity_score,
	weights_json, metrics_json FROM snapshots`

func (s *SQLiteStore) History(ctx context.Context, vendorID string, limit int) ([]model.Snapshot, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		selectSnapshot+` WHERE vendor_id = ? ORDER BY taken_at DESC LIMIT ?`,
		vendorID, limit,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: history for %s", vendorID)
	}
	defer rows.Close()

	var snaps []model.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, *snap)
	}
	return snaps, eris.Wrap(rows.Err(), "sqlite: history iterate")
}

func (s *SQLiteStore) LatestBefore(ctx context.Context, vendorID string, t time.Time) (*model.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		selectSnapshot+` WHERE vendor_id = ? AND taken_at < ? ORDER BY taken_at DESC LIMIT 1`,
		vendorID, t.UTC(),
	)
	return scanSnapshot(row)
}

func (s *SQLiteStore) CostTrend(ctx context.Context, months int) ([]TrendPoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT strftime('%Y-%m', taken_at) AS month,
			AVG(final_score), AVG(avg_landed_cost), COUNT(*)
		 FROM snapshots WHERE taken_at >= ?
		 GROUP BY month ORDER BY month`,
		trendCutoff(time.Now(), months),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: cost trend")
	}
	defer rows.Close()

	var points []TrendPoint
	for rows.Next() {
		var p TrendPoint
		if err := rows.Scan(&p.Month, &p.AvgFinalScore, &p.AvgLandedCost, &p.Snapshots); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan trend point")
		}
		points = append(points, p)
	}
	return points, eris.Wrap(rows.Err(), "sqlite: cost trend iterate")
}

func (s *SQLiteStore) VendorTrends(ctx context.Context, months int) ([]VendorTrend, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT vendor_id, vendor_name, strftime('%Y-%m', taken_at) AS month,
			AVG(final_score), AVG(avg_landed_cost), COUNT(*)
		 FROM snapshots WHERE taken_at >= ?
		 GROUP BY vendor_id, vendor_name, month
		 ORDER BY vendor_name, vendor_id, month`,
		trendCutoff(time.Now(), months),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: vendor trends")
	}
	defer rows.Close()

	var trends []VendorTrend
	idx := make(map[string]int)
	for rows.Next() {
		var (
			id, name string
			p        TrendPoint
		)
		if err := rows.Scan(&id, &name, &p.Month, &p.AvgFinalScore, &p.AvgLandedCost, &p.Snapshots); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan vendor trend")
		}
		i, ok := idx[id]
		if !ok {
			i = len(trends)
			idx[id] = i
			trends = append(trends, VendorTrend{VendorID: id, VendorName: name})
		}
		trends[i].Points = append(trends[i].Points, p)
	}
	return trends, eris.Wrap(rows.Err(), "sqlite: vendor trends iterate")
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scannable) (*model.Snapshot, error) {
	var snap model.Snapshot
	var weightsJSON, metricsJSON string

	err := row.Scan(&snap.ID, &snap.VendorID, &snap.VendorName, &snap.TakenAt, &snap.FinalScore,
		&snap.Pillars.TotalCost, &snap.Pillars.TotalTime,
		&snap.Pillars.Reliability, &snap.Pillars.Capacity,
		&weightsJSON, &metricsJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan snapshot")
	}

	if err := json.Unmarshal([]byte(weightsJSON), &snap.Weights); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal weights")
	}
	if err := json.Unmarshal([]byte(metricsJSON), &snap.Metrics); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal metrics")
	}
	return &snap, nil
}
