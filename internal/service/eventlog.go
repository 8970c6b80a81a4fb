package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"smart_bulb"
	"smart_bulb/internal/repository"
)

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

// List returns filtered event-log entries, normalizing the filter to UTC
// and validating the range first.
func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]smart_bulb.BulbEvent, error) {
	from, to := toUTC(f.From), toUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, errInvalidTimeRange
	}
	typ := strings.ToUpper(strings.TrimSpace(f.Type))
	return s.eventRepo.List(ctx, from, to, typ)
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
