package services

import (
	"math"
	"time"

	"route-optimizer-service/internal/domain"
)

// Cost and emission model constants. The fuel rate is tiered on the
// baseline's total distance: urban consumption under 50 km, highway
// consumption above.
const (
	urbanFuelRatePer100Km   = 10.0
	highwayFuelRatePer100Km = 7.0
	fuelTierThresholdKm     = 50.0
	co2KgPerLiter           = 2.3
	fuelCostPerLiter        = 1.50
	driverCostPerHour       = 25.0
)

// CompareMetrics derives the savings of an optimized route against the
// unoptimized baseline: the same fixed-speed/dwell estimation applied
// to the stops in their original caller-supplied order. Pure and
// deterministic; every field is clamped to non-negative.
func CompareMetrics(optimized *SequencedRoute, original []domain.Stop) domain.OptimizationMetrics {
	baseDistance, baseDuration, _ := estimateRoute(original, time.Time{})

	timeSaved := clamp(float64(baseDuration - optimized.TotalDurationSeconds))
	distanceSavedKm := clamp((baseDistance - optimized.TotalDistanceMeters) / 1000)

	fuelRate := urbanFuelRatePer100Km
	if baseDistance/1000 >= fuelTierThresholdKm {
		fuelRate = highwayFuelRatePer100Km
	}

	fuelSaved := distanceSavedKm * fuelRate / 100
	co2Saved := fuelSaved * co2KgPerLiter
	costSaved := fuelSaved*fuelCostPerLiter + timeSaved/3600*driverCostPerHour

	timePct := improvementPct(timeSaved, float64(baseDuration))
	distancePct := improvementPct(distanceSavedKm*1000, baseDistance)

	return domain.OptimizationMetrics{
		TimeSavedSeconds:       timeSaved,
		DistanceSavedKm:        distanceSavedKm,
		FuelSavedLiters:        fuelSaved,
		CO2SavedKg:             co2Saved,
		CostSaved:              costSaved,
		TimeImprovementPct:     timePct,
		DistanceImprovementPct: distancePct,
		// Fuel efficiency improvement is modeled as proportional to
		// distance improvement, not independently measured.
		FuelEfficiencyPct: distancePct,
	}
}

func improvementPct(saved, baseline float64) int {
	if baseline <= 0 {
		return 0
	}
	pct := int(math.Round(100 * saved / baseline))
	if pct < 0 {
		return 0
	}
	return pct
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
