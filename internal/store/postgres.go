package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/pdesskyterra/vendor-tracking-app/internal/db"
	"github.com/pdesskyterra/vendor-tracking-app/internal/model"
)

// PostgresStore implements Store using pgxpool. Bulk saves go through the
// COPY protocol; reads use statements prepared on each new connection.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32
	MinConns int32
}

const (
	sqlHistory = `SELECT id, vendor_id, vendor_name, taken_at, final_score,
		cost_score, time_score, reliability_score, capacity_score,
		weights_json, metrics_json
	FROM snapshots WHERE vendor_id = $1 ORDER BY taken_at DESC LIMIT $2`

	sqlLatestBefore = `SELECT id, vendor_id, vendor_name, taken_at, final_score,
		cost_score, time_score, reliability_score, capacity_score,
		weights_json, metrics_json
	FROM snapshots WHERE vendor_id = $1 AND taken_at < $2
	ORDER BY taken_at DESC LIMIT 1`

	sqlCostTrend = `SELECT to_char(taken_at AT TIME ZONE 'UTC', 'YYYY-MM') AS month,
		AVG(final_score), AVG(avg_landed_cost), COUNT(*)
	FROM snapshots WHERE taken_at >= $1
	GROUP BY month ORDER BY month`

	sqlVendorTrends = `SELECT vendor_id, vendor_name,
		to_char(taken_at AT TIME ZONE 'UTC', 'YYYY-MM') AS month,
		AVG(final_score), AVG(avg_landed_cost), COUNT(*)
	FROM snapshots WHERE taken_at >= $1
	GROUP BY vendor_id, vendor_name, month
	ORDER BY vendor_name, vendor_id, month`
)

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hot read paths.
var preparedStatements = map[string]string{
	"history":       sqlHistory,
	"latest_before": sqlLatestBefore,
	"cost_trend":    sqlCostTrend,
	"vendor_trends": sqlVendorTrends,
}

// snapshotColumns is the insert column order for SaveSnapshots.
var snapshotColumns = []string{
	"id", "vendor_id", "vendor_name", "taken_at", "final_score",
	"cost_score", "time_score", "reliability_score", "capacity_score",
	"avg_landed_cost", "avg_total_time", "total_capacity", "part_count",
	"weights_json", "metrics_json",
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	id                TEXT PRIMARY KEY,
	vendor_id         TEXT NOT NULL,
	vendor_name       TEXT NOT NULL,
	taken_at          TIMESTAMPTZ NOT NULL,
	final_score       DOUBLE PRECISION NOT NULL,
	cost_score        DOUBLE PRECISION NOT NULL,
	time_score        DOUBLE PRECISION NOT NULL,
	reliability_score DOUBLE PRECISION NOT NULL,
	capacity_score    DOUBLE PRECISION NOT NULL,
	avg_landed_cost   DOUBLE PRECISION NOT NULL,
	avg_total_time    DOUBLE PRECISION NOT NULL,
	total_capacity    INTEGER NOT NULL,
	part_count        INTEGER NOT NULL,
	weights_json      JSONB NOT NULL,
	metrics_json      JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_vendor_taken ON snapshots(vendor_id, taken_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveSnapshots(ctx context.Context, snaps []model.Snapshot) error {
	rows := make([][]any, 0, len(snaps))
	for _, snap := range snaps {
		id := snap.ID
		if id == "" {
			id = uuid.New().String()
		}
		weightsJSON, err := json.Marshal(snap.Weights)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal weights for %s", snap.VendorID)
		}
		metricsJSON, err := json.Marshal(snap.Metrics)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal metrics for %s", snap.VendorID)
		}
		rows = append(rows, []any{
			id, snap.VendorID, snap.VendorName, snap.TakenAt.UTC(), snap.FinalScore,
			snap.Pillars.TotalCost, snap.Pillars.TotalTime,
			snap.Pillars.Reliability, snap.Pillars.Capacity,
			snap.Metrics.AvgLandedCost, snap.Metrics.AvgTotalTime,
			snap.Metrics.TotalCapacity, snap.Metrics.PartCount,
			weightsJSON, metricsJSON,
		})
	}
	_, err := db.CopyFrom(ctx, s.pool, "snapshots", snapshotColumns, rows)
	return err
}

func (s *PostgresStore) History(ctx context.Context, vendorID string, limit int) ([]model.Snapshot, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, sqlHistory, vendorID, limit)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: history for %s", vendorID)
	}
	defer rows.Close()

	var snaps []model.Snapshot
	for rows.Next() {
		snap, err := scanSnapshotPG(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, *snap)
	}
	return snaps, eris.Wrap(rows.Err(), "postgres: history iterate")
}

func (s *PostgresStore) LatestBefore(ctx context.Context, vendorID string, t time.Time) (*model.Snapshot, error) {
	row := s.pool.QueryRow(ctx, sqlLatestBefore, vendorID, t.UTC())
	return scanSnapshotPG(row)
}

func (s *PostgresStore) CostTrend(ctx context.Context, months int) ([]TrendPoint, error) {
	rows, err := s.pool.Query(ctx, sqlCostTrend, trendCutoff(time.Now(), months))
	if err != nil {
		return nil, eris.Wrap(err, "postgres: cost trend")
	}
	defer rows.Close()

	var points []TrendPoint
	for rows.Next() {
		var p TrendPoint
		if err := rows.Scan(&p.Month, &p.AvgFinalScore, &p.AvgLandedCost, &p.Snapshots); err != nil {
			return nil, eris.Wrap(err, "postgres: scan trend point")
		}
		points = append(points, p)
	}
	return points, eris.Wrap(rows.Err(), "postgres: cost trend iterate")
}

func (s *PostgresStore) VendorTrends(ctx context.Context, months int) ([]VendorTrend, error) {
	rows, err := s.pool.Query(ctx, sqlVendorTrends, trendCutoff(time.Now(), months))
	if err != nil {
		return nil, eris.Wrap(err, "postgres: vendor trends")
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
			return nil, eris.Wrap(err, "postgres: scan vendor trend")
		}
		i, ok := idx[id]
		if !ok {
			i = len(trends)
			idx[id] = i
			trends = append(trends, VendorTrend{VendorID: id, VendorName: name})
		}
		trends[i].Points = append(trends[i].Points, p)
	}
	return trends, eris.Wrap(rows.Err(), "postgres: vendor trends iterate")
}

func scanSnapshotPG(row scannable) (*model.Snapshot, error) {
	var snap model.Snapshot
	var weightsJSON, metricsJSON []byte

	err := row.Scan(&snap.ID, &snap.VendorID, &snap.VendorName, &snap.TakenAt, &snap.FinalScore,
		&snap.Pillars.TotalCost, &snap.Pillars.TotalTime,
		&snap.Pillars.Reliability, &snap.Pillars.Capacity,
		&weightsJSON, &metricsJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan snapshot")
	}

	if err := json.Unmarshal(weightsJSON, &snap.Weights); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal weights")
	}
	if err := json.Unmarshal(metricsJSON, &snap.Metrics); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal metrics")
	}
	return &snap, nil
}
