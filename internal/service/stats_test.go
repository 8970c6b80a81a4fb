package service

import (
	"context"
	"errors"
	"testing"
)

type statsUsageStub struct {
	total    int64
	totalErr error
}

func (s *statsUsageStub) Add(ctx context.Context, day string, durationMs int64) error { return nil }
func (s *statsUsageStub) Total(ctx context.Context) (int64, error)                    { return s.total, s.totalErr }

var testTiers = []RateTier{
	{UpToKWh: 50, Rate: 4.63},
	{UpToKWh: 100, Rate: 7.01},
	{UpToKWh: 0, Rate: 9.50}, // unbounded
}

func TestStatsService_EmptyLedgerYieldsZeros(t *testing.T) {
	svc := NewStatsService(&statsUsageStub{total: 0}, StatsConfig{RatedWattage: 9, Tiers: testTiers})

	got, err := svc.Compute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Hours != 0 || got.EnergyKWh != 0 || got.Cost != 0 {
		t.Fatalf("expected all-zero stats, got %+v", got)
	}
}

func TestStatsService_ConvertsAndRounds(t *testing.T) {
	// 9_000_000 ms = 2.5 h; at 9 W that is 0.0225 kWh, first bracket only.
	svc := NewStatsService(&statsUsageStub{total: 9_000_000}, StatsConfig{RatedWattage: 9, Tiers: testTiers})

	got, err := svc.Compute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Hours != 2.5 {
		t.Fatalf("hours=%v, want 2.5", got.Hours)
	}
	if got.EnergyKWh != 0.023 { // 0.0225 rounded to 3 decimals
		t.Fatalf("energy=%v, want 0.023", got.EnergyKWh)
	}
	if got.Cost != 0.10 { // 0.0225 * 4.63 = 0.1042 -> 0.10
		t.Fatalf("cost=%v, want 0.10", got.Cost)
	}
}

func TestStatsService_PropagatesLedgerError(t *testing.T) {
	svc := NewStatsService(&statsUsageStub{totalErr: errors.New("db down")}, StatsConfig{RatedWattage: 9})

	if _, err := svc.Compute(context.Background()); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestTieredCost(t *testing.T) {
	cases := []struct {
		name string
		kwh  float64
		want float64
	}{
		{"zero", 0, 0},
		{"inside_first_bracket", 10, 10 * 4.63},
		{"exactly_first_boundary", 50, 50 * 4.63},
		{"spans_two_brackets", 75, 50*4.63 + 25*7.01},
		{"spans_all_brackets", 130, 50*4.63 + 50*7.01 + 30*9.50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tieredCost(tc.kwh, testTiers)
			if diff := got - tc.want; diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("tieredCost(%v) = %v, want %v", tc.kwh, got, tc.want)
			}
		})
	}
}

func TestTieredCost_NoTiersCostsNothing(t *testing.T) {
	if got := tieredCost(42, nil); got != 0 {
		t.Fatalf("expected zero cost without a schedule, got %v", got)
	}
}
