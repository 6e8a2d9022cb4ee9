package services

import (
	"context"
	"math"
	"testing"
	"time"

	"route-optimizer-service/internal/domain"
)

func almostEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestCompareMetricsKnownRoute(t *testing.T) {
	// Optimized order A,C,B vs original A,B,C. Baseline is about 8870 m
	// / 1380 s, the optimized walk about 5428 m / 960 s.
	s := fixedClockSequencer(time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC))
	optimized, err := s.Sequence(context.Background(), []domain.Stop{stopA, stopB, stopC}, domain.Preferences{OptimizeFor: domain.OptimizeTime})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := CompareMetrics(optimized, []domain.Stop{stopA, stopB, stopC})

	if m.TimeSavedSeconds != 420 {
		t.Fatalf("timeSaved = %f, want 420", m.TimeSavedSeconds)
	}
	if !almostEqual(m.DistanceSavedKm, 3.4419, 0.01) {
		t.Fatalf("distanceSaved = %f, want about 3.44 km", m.DistanceSavedKm)
	}
	// Baseline under 50 km: urban rate of 10 L/100km.
	if !almostEqual(m.FuelSavedLiters, 0.34419, 0.001) {
		t.Fatalf("fuelSaved = %f, want about 0.344", m.FuelSavedLiters)
	}
	if !almostEqual(m.CO2SavedKg, 0.79163, 0.002) {
		t.Fatalf("co2Saved = %f, want about 0.792", m.CO2SavedKg)
	}
	if !almostEqual(m.CostSaved, 3.4329, 0.005) {
		t.Fatalf("costSaved = %f, want about 3.43", m.CostSaved)
	}
	if m.TimeImprovementPct != 30 {
		t.Fatalf("timeImprovementPct = %d, want 30", m.TimeImprovementPct)
	}
	if m.DistanceImprovementPct != 39 {
		t.Fatalf("distanceImprovementPct = %d, want 39", m.DistanceImprovementPct)
	}
	if m.FuelEfficiencyPct != m.DistanceImprovementPct {
		t.Fatalf("fuelEfficiencyPct = %d, want %d", m.FuelEfficiencyPct, m.DistanceImprovementPct)
	}
}

func TestCompareMetricsNeverNegative(t *testing.T) {
	// An "optimized" route worse than the baseline must report zero
	// savings, not negative ones.
	worse := &SequencedRoute{
		TotalDistanceMeters:  1e6,
		TotalDurationSeconds: 100000,
	}

	m := CompareMetrics(worse, []domain.Stop{stopA, stopB})

	fields := map[string]float64{
		"timeSaved":     m.TimeSavedSeconds,
		"distanceSaved": m.DistanceSavedKm,
		"fuelSaved":     m.FuelSavedLiters,
		"co2Saved":      m.CO2SavedKg,
		"costSaved":     m.CostSaved,
	}
	for name, v := range fields {
		if v != 0 {
			t.Errorf("%s = %f, want 0", name, v)
		}
	}
	for name, v := range map[string]int{
		"timePct":     m.TimeImprovementPct,
		"distancePct": m.DistanceImprovementPct,
		"fuelPct":     m.FuelEfficiencyPct,
	} {
		if v != 0 {
			t.Errorf("%s = %d, want 0", name, v)
		}
	}
}

func TestCompareMetricsZeroBaseline(t *testing.T) {
	// Single-stop baseline has zero distance and duration; percentages
	// must be zero, not NaN or a division panic.
	optimized := &SequencedRoute{}

	m := CompareMetrics(optimized, []domain.Stop{stopA})

	if m.TimeImprovementPct != 0 || m.DistanceImprovementPct != 0 || m.FuelEfficiencyPct != 0 {
		t.Fatalf("percentages = (%d, %d, %d), want zeros",
			m.TimeImprovementPct, m.DistanceImprovementPct, m.FuelEfficiencyPct)
	}
}

func TestCompareMetricsFuelTier(t *testing.T) {
	// One degree of latitude is about 111 km, putting the baseline in
	// the highway tier (7 L/100km).
	far := []domain.Stop{
		{Latitude: 40.0, Longitude: -74.0, Address: "south"},
		{Latitude: 41.0, Longitude: -74.0, Address: "north"},
	}

	_, baseDuration, _ := estimateRoute(far, time.Time{})
	optimized := &SequencedRoute{
		TotalDistanceMeters:  101194.9, // 10 km shorter than baseline
		TotalDurationSeconds: baseDuration,
	}

	m := CompareMetrics(optimized, far)

	if !almostEqual(m.DistanceSavedKm, 10.0, 0.01) {
		t.Fatalf("distanceSaved = %f, want about 10 km", m.DistanceSavedKm)
	}
	if !almostEqual(m.FuelSavedLiters, 0.7, 0.001) {
		t.Fatalf("fuelSaved = %f, want 0.7 (highway tier)", m.FuelSavedLiters)
	}
}
