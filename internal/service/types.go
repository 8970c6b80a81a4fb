package service

import "time"

// Event log entry types.
const (
	EventToggle         = "TOGGLE"
	EventTimerSet       = "TIMER_SET"
	EventTimerFired     = "TIMER_FIRED"
	EventTimerCancelled = "TIMER_CANCELLED"
)

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "TOGGLE", "TIMER_SET", "TIMER_FIRED", "TIMER_CANCELLED"
}

// RateTier is one bracket of the progressive cost schedule. UpToKWh <= 0
// marks the final, unbounded bracket.
type RateTier struct {
	UpToKWh float64 `mapstructure:"up_to_kwh"`
	Rate    float64 `mapstructure:"rate"` // cost per kWh inside this bracket
}

// StatsConfig carries the deployment-specific pricing constants.
type StatsConfig struct {
	RatedWattage float64    `mapstructure:"rated_wattage"` // bulb power draw, W
	Tiers        []RateTier `mapstructure:"tiers"`
}
