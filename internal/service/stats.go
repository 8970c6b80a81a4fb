package service

import (
	"context"
	"math"

	"smart_bulb"
	"smart_bulb/internal/repository"
)

const msPerHour = 3_600_000.0

// StatsService turns the lifetime ledger total into hours, energy, and a
// tiered cost. The bracket boundaries, rates, and bulb wattage all come
// from configuration.
type StatsService struct {
	usageRepo repository.UsageRepo
	cfg       StatsConfig
}

func NewStatsService(usageRepo repository.UsageRepo, cfg StatsConfig) *StatsService {
	return &StatsService{usageRepo: usageRepo, cfg: cfg}
}

// Compute reads the ledger total and derives the aggregate stats. An empty
// ledger yields an all-zero result.
func (s *StatsService) Compute(ctx context.Context) (smart_bulb.UsageStats, error) {
	totalMs, err := s.usageRepo.Total(ctx)
	if err != nil {
		return smart_bulb.UsageStats{}, err
	}

	hours := float64(totalMs) / msPerHour
	energyKWh := hours * s.cfg.RatedWattage / 1000

	return smart_bulb.UsageStats{
		Hours:     roundTo(hours, 2),
		EnergyKWh: roundTo(energyKWh, 3),
		Cost:      roundTo(tieredCost(energyKWh, s.cfg.Tiers), 2),
	}, nil
}

// tieredCost charges each consumed kWh at the rate of the bracket it falls
// in (progressive schedule, like residential electricity billing).
func tieredCost(kwh float64, tiers []RateTier) float64 {
	var cost float64
	lower := 0.0
	for _, t := range tiers {
		if kwh <= lower {
			break
		}
		upper := t.UpToKWh
		if upper <= 0 || upper > kwh {
			upper = kwh
		}
		cost += (upper - lower) * t.Rate
		lower = upper
	}
	return cost
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
