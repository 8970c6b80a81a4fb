package service

import (
	"context"
	"time"

	"smart_bulb"
	"smart_bulb/internal/hub"
	"smart_bulb/internal/logger"
	"smart_bulb/internal/repository"
)

// Relay exposes the live relay state: flipping it, reading it, and
// attaching push-channel observers with a consistent snapshot.
type Relay interface {
	Toggle(ctx context.Context) smart_bulb.RelayState
	State(ctx context.Context) smart_bulb.BulbSnapshot
	Attach(o *hub.Observer)
	Detach(o *hub.Observer)
}

// Timer manages the single pending delayed transition.
type Timer interface {
	Schedule(ctx context.Context, minutes int, action string) (smart_bulb.TimerState, error)
	Cancel(ctx context.Context)
}

// Stats derives aggregate hours/energy/cost from the usage ledger.
type Stats interface {
	Compute(ctx context.Context) (smart_bulb.UsageStats, error)
}

// EventLog exposes the append-only event log with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]smart_bulb.BulbEvent, error)
}

// Motion runs the background motion-detector stub.
// Stop via context cancellation in main() for graceful shutdown.
type Motion interface {
	Run(ctx context.Context, tick time.Duration)
}

// Broadcaster is the fan-out side of the notification hub, as the
// controller sees it.
type Broadcaster interface {
	Publish(v any)
	Register(o *hub.Observer, snapshot ...any)
	Unregister(o *hub.Observer)
}

// Service aggregates all sub-services.
type Service struct {
	Relay
	Timer
	Stats
	EventLog
	Motion
}

// NewService wires the repository layer and notification hub into concrete
// services. Relay and Timer are backed by the same controller: relay state
// and the pending timer share a single owner.
func NewService(repos *repository.Repository, b Broadcaster, cfg StatsConfig, log *logger.Logger) *Service {
	ctrl := NewControllerService(repos.Usage, repos.Events, b, log)
	return &Service{
		Relay:    ctrl,
		Timer:    ctrl,
		Stats:    NewStatsService(repos.Usage, cfg),
		EventLog: NewEventLogService(repos.Events),
		Motion:   NewMotionService(ctrl),
	}
}
