package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	upsertStatisticSQL = `INSERT INTO meter_statistics (
        entity_id,
        bucket_ts,
        value,
        kind
    ) VALUES (
        $1,$2,$3,$4
    )
    ON CONFLICT (entity_id, bucket_ts) DO UPDATE
    SET
        value = EXCLUDED.value,
        kind  = EXCLUDED.kind;`

	listStatisticsBetweenSQL = `SELECT
        entity_id,
        bucket_ts,
        value,
        kind,
        created_at
    FROM meter_statistics
    WHERE entity_id = $1
      AND bucket_ts >= $2
      AND bucket_ts < $3
    ORDER BY bucket_ts;`

	countStatisticsSQL = `SELECT COUNT(*) FROM meter_statistics;`

	listEntitiesSQL = `SELECT DISTINCT entity_id FROM meter_statistics ORDER BY entity_id;`

	deleteStatisticsBeforeSQL = `DELETE FROM meter_statistics WHERE bucket_ts < $1;`

	insertForecastRunSQL = `INSERT INTO forecast_runs (
        run_at,
        meters,
        points,
        status,
        error
    ) VALUES (
        $1,$2,$3,$4,$5
    )
    RETURNING id, run_at, meters, points, status, error, created_at;`

	listRecentRunsSQL = `SELECT
        id,
        run_at,
        meters,
        points,
        status,
        error,
        created_at
    FROM forecast_runs
    ORDER BY run_at DESC
    LIMIT $1;`

	deleteRunsBeforeSQL = `DELETE FROM forecast_runs WHERE created_at < $1;`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// RunStore defines operations for forecast run auditing.
type RunStore interface {
	InsertRun(ctx context.Context, run ForecastRun) (ForecastRun, error)
	ListRecentRuns(ctx context.Context, limit int) ([]ForecastRun, error)
	DeleteRunsBefore(ctx context.Context, olderThan time.Time) error
}

// AdvisoryLocker exposes advisory lock helpers.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}

// Store aggregates access to meter statistics and forecast runs.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns a release func.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if _, err := conn.Exec(ctxUnlock, advisoryUnlockSQL, key); err != nil {
			// unlock best effort; log omitted in storage package
		}
		conn.Release()
	}
	return unlock, true, nil
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// UpsertStatistic persists or updates one hourly statistic row.
func (s *Store) UpsertStatistic(ctx context.Context, stat MeterStatistic) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	_, execErr := pool.Exec(ctx, upsertStatisticSQL,
		stat.EntityID,
		stat.Bucket,
		stat.Value.String(),
		stat.Kind,
	)
	if execErr != nil {
		return fmt.Errorf("upsert meter statistic: %w", execErr)
	}
	return nil
}

// ListStatisticsBetween lists one entity's statistics within [from, to).
func (s *Store) ListStatisticsBetween(ctx context.Context, entityID string, from, to time.Time) ([]MeterStatistic, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listStatisticsBetweenSQL, entityID, from, to)
	if queryErr != nil {
		return nil, fmt.Errorf("list statistics between: %w", queryErr)
	}
	defer rows.Close()

	stats := make([]MeterStatistic, 0)
	for rows.Next() {
		stat, scanErr := scanStatistic(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		stats = append(stats, stat)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return stats, nil
}

// CountStatistics counts stored statistic rows.
func (s *Store) CountStatistics(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countStatisticsSQL).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count statistics: %w", scanErr)
	}
	return count, nil
}

// ListEntities lists the distinct meter entities with stored statistics.
func (s *Store) ListEntities(ctx context.Context) ([]string, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listEntitiesSQL)
	if queryErr != nil {
		return nil, fmt.Errorf("list entities: %w", queryErr)
	}
	defer rows.Close()

	entities := make([]string, 0)
	for rows.Next() {
		var entity string
		if err := rows.Scan(&entity); err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return entities, nil
}

// DeleteStatisticsBefore trims history older than the given instant.
func (s *Store) DeleteStatisticsBefore(ctx context.Context, olderThan time.Time) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, deleteStatisticsBeforeSQL, olderThan); execErr != nil {
		return fmt.Errorf("delete statistics before: %w", execErr)
	}
	return nil
}

// InsertRun persists a forecast run audit row.
func (s *Store) InsertRun(ctx context.Context, run ForecastRun) (ForecastRun, error) {
	pool, err := s.getPool()
	if err != nil {
		return ForecastRun{}, err
	}

	var errMsg interface{}
	if run.Error != nil {
		errMsg = *run.Error
	}

	row := pool.QueryRow(ctx, insertForecastRunSQL,
		run.RunAt,
		run.Meters,
		run.Points,
		run.Status,
		errMsg,
	)

	rec, scanErr := scanRun(row)
	if scanErr != nil {
		return ForecastRun{}, fmt.Errorf("insert forecast run: %w", scanErr)
	}
	return rec, nil
}

// ListRecentRuns lists the most recent forecast runs.
func (s *Store) ListRecentRuns(ctx context.Context, limit int) ([]ForecastRun, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentRunsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent runs: %w", queryErr)
	}
	defer rows.Close()

	runs := make([]ForecastRun, 0, limit)
	for rows.Next() {
		rec, scanErr := scanRun(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		runs = append(runs, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return runs, nil
}

// DeleteRunsBefore trims old audit rows.
func (s *Store) DeleteRunsBefore(ctx context.Context, olderThan time.Time) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, deleteRunsBeforeSQL, olderThan); execErr != nil {
		return fmt.Errorf("delete runs before: %w", execErr)
	}
	return nil
}

func scanStatistic(rows pgx.Rows) (MeterStatistic, error) {
	var (
		entityID  string
		bucket    time.Time
		valueStr  string
		kind      string
		createdAt time.Time
	)

	if err := rows.Scan(&entityID, &bucket, &valueStr, &kind, &createdAt); err != nil {
		return MeterStatistic{}, err
	}

	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return MeterStatistic{}, fmt.Errorf("parse statistic value: %w", err)
	}

	return MeterStatistic{
		EntityID:  entityID,
		Bucket:    bucket,
		Value:     value,
		Kind:      kind,
		CreatedAt: createdAt,
	}, nil
}

func scanRun(row pgx.Row) (ForecastRun, error) {
	var (
		rec    ForecastRun
		errMsg *string
	)

	if err := row.Scan(
		&rec.ID,
		&rec.RunAt,
		&rec.Meters,
		&rec.Points,
		&rec.Status,
		&errMsg,
		&rec.CreatedAt,
	); err != nil {
		return ForecastRun{}, err
	}

	rec.Error = errMsg
	return rec, nil
}
