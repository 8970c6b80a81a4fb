package repository

import (
	"context"
	"database/sql"
	"fmt"
)

type UsageSQLite struct {
	db *sql.DB
}

func NewUsageSQLite(db *sql.DB) *UsageSQLite {
	return &UsageSQLite{db: db}
}

const (
	// Merge-add in a single statement so concurrent writers for the same
	// day cannot lose updates.
	mergeUsageSQL = `
		INSERT INTO usage_log (day, on_time_ms)
		VALUES (?, ?)
		ON CONFLICT(day) DO UPDATE SET
			on_time_ms = on_time_ms + excluded.on_time_ms
	`

	totalUsageSQL = `SELECT COALESCE(SUM(on_time_ms), 0) FROM usage_log`
)

// Add merge-adds durationMs into the entry for day (ISO date, "2006-01-02"),
// creating the entry if absent. Negative durations are rejected.
func (r *UsageSQLite) Add(ctx context.Context, day string, durationMs int64) error {
	if durationMs < 0 {
		return fmt.Errorf("negative usage duration %dms for day %s", durationMs, day)
	}
	_, err := r.db.ExecContext(ctx, mergeUsageSQL, day, durationMs)
	return err
}

// Total returns the sum of on_time_ms across all stored days.
func (r *UsageSQLite) Total(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, totalUsageSQL).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
