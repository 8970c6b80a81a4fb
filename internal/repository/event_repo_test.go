package repository_test

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"smart_bulb"
	"smart_bulb/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

// argMatcherFunc adapts a func to sqlmock's Argument interface.
type argMatcherFunc func(v driver.Value) bool

func (f argMatcherFunc) Match(v driver.Value) bool { return f(v) }

func isUUID(v driver.Value) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

func TestEventSQLite_Append_FillsIDAndTimestamp(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := repository.NewEventSQLite(db)

	isRecentSQLiteTime := argMatcherFunc(func(v driver.Value) bool {
		s, ok := v.(string)
		if !ok {
			return false
		}
		tm, err := time.Parse("2006-01-02 15:04:05", s)
		if err != nil {
			return false
		}
		now := time.Now().UTC()
		return !tm.Before(now.Add(-5*time.Second)) && !tm.After(now.Add(5*time.Second))
	})

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bulb_events")).
		WithArgs(argMatcherFunc(isUUID), isRecentSQLiteTime, "TOGGLE", "Bulb turned on", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Append(context.Background(), smart_bulb.BulbEvent{
		Type:        "toggle", // should be uppercased
		Description: "Bulb turned on",
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestEventSQLite_Append_MarshalsMetadata(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := repository.NewEventSQLite(db)

	isJSONObject := argMatcherFunc(func(v driver.Value) bool {
		s, ok := v.(string)
		return ok && len(s) > 0 && s[0] == '{'
	})

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bulb_events")).
		WithArgs("ev-1", sqlmock.AnyArg(), "TIMER_SET", "Timer set", isJSONObject).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Append(context.Background(), smart_bulb.BulbEvent{
		EventID:     "ev-1",
		OccurredAt:  time.Now(),
		Type:        "TIMER_SET",
		Description: "Timer set",
		Metadata:    map[string]any{"minutes": 10},
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestEventSQLite_List_FiltersAndOrders(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := repository.NewEventSQLite(db)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC)

	occurred := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "occurred_at", "type", "message", "meta"}).
		AddRow("ev-1", occurred, "TOGGLE", "Bulb turned on", `{"state":true}`).
		AddRow("ev-2", occurred.Add(time.Hour), "TOGGLE", "Bulb turned off", nil)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, occurred_at, type, message, meta FROM bulb_events WHERE occurred_at >= ? AND occurred_at <= ? AND type = ? ORDER BY occurred_at ASC",
	)).
		WithArgs(from, to, "TOGGLE").
		WillReturnRows(rows)

	events, err := repo.List(context.Background(), from, to, "toggle")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].EventID != "ev-1" || events[1].EventID != "ev-2" {
		t.Fatalf("events out of order: %+v", events)
	}
	meta, ok := events[0].Metadata.(map[string]any)
	if !ok || meta["state"] != true {
		t.Fatalf("metadata not decoded: %#v", events[0].Metadata)
	}
	if events[1].Metadata != nil {
		t.Fatalf("nil meta should stay nil, got %#v", events[1].Metadata)
	}
}

func TestEventSQLite_List_NoFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := repository.NewEventSQLite(db)

	rows := sqlmock.NewRows([]string{"id", "occurred_at", "type", "message", "meta"})
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, occurred_at, type, message, meta FROM bulb_events ORDER BY occurred_at ASC",
	)).WillReturnRows(rows)

	events, err := repo.List(context.Background(), time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
}
