package repository

import (
	"context"
	"database/sql"
	"time"

	"smart_bulb"
)

// UsageRepo is the durable per-day on-time ledger. Entries only ever grow.
type UsageRepo interface {
	Add(ctx context.Context, day string, durationMs int64) error
	Total(ctx context.Context) (int64, error)
}

// EventRepo is the append-only log of relay and timer events.
type EventRepo interface {
	Append(ctx context.Context, e smart_bulb.BulbEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]smart_bulb.BulbEvent, error)
}

type Repository struct {
	Usage  UsageRepo
	Events EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Usage:  NewUsageSQLite(db),
		Events: NewEventSQLite(db),
	}
}
