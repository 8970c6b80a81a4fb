package smart_bulb

import "time"

// Timer actions accepted by the scheduler.
const (
	ActionOn  = "on"
	ActionOff = "off"
)

// Push message kinds delivered over the websocket.
const (
	PushRelay  = "relay"
	PushTimer  = "timer"
	PushMotion = "motion"
)

// RelayState is the current commanded state of the bulb relay.
// OnSince is set while the relay is on and an on-interval is open.
type RelayState struct {
	IsOn    bool       `json:"is_on"`
	OnSince *time.Time `json:"on_since,omitempty"`
}

// TimerState describes the single pending scheduled transition, if any.
type TimerState struct {
	Active          bool      `json:"active"`
	Action          string    `json:"action,omitempty"`           // "on" | "off"
	DurationMinutes int       `json:"duration_minutes,omitempty"` // as requested
	FireAt          time.Time `json:"fire_at,omitempty"`
}

// BulbSnapshot is the full observable state at one instant.
type BulbSnapshot struct {
	Relay          RelayState `json:"relay"`
	Timer          TimerState `json:"timer"`
	MotionDetected bool       `json:"motion_detected"`
}

// UsageStats aggregates the usage ledger into billable numbers.
type UsageStats struct {
	Hours     float64 `json:"hours"`      // 2 decimals
	EnergyKWh float64 `json:"energy_kwh"` // 3 decimals
	Cost      float64 `json:"cost"`       // 2 decimals
}

// BulbEvent is a single log entry.
type BulbEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // TOGGLE | TIMER_SET | TIMER_FIRED | TIMER_CANCELLED
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}

// RelayPush is broadcast whenever the relay state changes.
type RelayPush struct {
	Type  string `json:"type"` // "relay"
	State bool   `json:"state"`
}

// TimerPush is broadcast when a timer is armed, fired, or cancelled.
// On arm, DurationMinutes echoes the requested duration; in a connect
// snapshot it carries the remaining minutes, rounded.
type TimerPush struct {
	Type            string `json:"type"` // "timer"
	Active          bool   `json:"active"`
	Action          string `json:"action,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	FireAtEpochMs   int64  `json:"fire_at_epoch_ms,omitempty"`
}

// MotionPush mirrors the motion detector stub.
type MotionPush struct {
	Type     string `json:"type"` // "motion"
	Detected bool   `json:"detected"`
}
