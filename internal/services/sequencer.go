package services

import (
	"context"
	"math"
	"time"

	"route-optimizer-service/internal/apperr"
	"route-optimizer-service/internal/domain"
)

// Estimation constants for the fallback heuristic: a fixed 30 km/h
// urban-average speed (2 minutes per km) and a 5-minute dwell at every
// interior stop.
const (
	minutesPerKm = 2.0
	dwellMinutes = 5
)

// An ordered route produced by sequencing, with derived totals.
type SequencedRoute struct {
	Order                []domain.Stop
	TotalDistanceMeters  float64
	TotalDurationSeconds int
	Waypoints            []domain.Waypoint
	EncodedPath          string
}

// Contract for producing an ordered waypoint list from a stop list.
// Implementations are selected at construction time: provider-backed
// when an external routing provider is configured, heuristic otherwise.
type RouteSequencer interface {
	Sequence(ctx context.Context, stops []domain.Stop, prefs domain.Preferences) (*SequencedRoute, error)
}

// HeuristicSequencer orders stops with a greedy nearest-neighbor walk.
//
// The algorithm minimizes immediate great-circle distance at each step.
// It does not attempt global route optimization (e.g., TSP solvers).
// The design prioritizes determinism and simplicity over optimality.
// Preferences.OptimizeFor is not consulted; the walk is always by
// distance.
type HeuristicSequencer struct {
	now func() time.Time
}

func NewHeuristicSequencer() *HeuristicSequencer {
	return &HeuristicSequencer{now: time.Now}
}

func (s *HeuristicSequencer) Sequence(
	ctx context.Context,
	stops []domain.Stop,
	prefs domain.Preferences,
) (*SequencedRoute, error) {
	if len(stops) == 0 {
		return nil, apperr.Validation("sequence: stop list must not be empty")
	}

	order := nearestNeighborOrder(stops)
	distance, duration, waypoints := estimateRoute(order, s.now())

	return &SequencedRoute{
		Order:                order,
		TotalDistanceMeters:  distance,
		TotalDurationSeconds: duration,
		Waypoints:            waypoints,
		// No path geometry is available without a provider.
		EncodedPath: "",
	}, nil
}

// nearestNeighborOrder returns a permutation of stops: start at the
// first input stop, then repeatedly visit the nearest unvisited stop.
// Ties break by input order (the first minimum encountered wins).
func nearestNeighborOrder(stops []domain.Stop) []domain.Stop {
	if len(stops) < 3 {
		out := make([]domain.Stop, len(stops))
		copy(out, stops)
		return out
	}

	visited := make([]bool, len(stops))
	order := make([]domain.Stop, 0, len(stops))

	current := 0
	visited[0] = true
	order = append(order, stops[0])

	for len(order) < len(stops) {
		best := -1
		minDist := math.MaxFloat64

		// Greedy step: strict less-than keeps the earliest minimum.
		for i, stop := range stops {
			if visited[i] {
				continue
			}
			d := domain.DistanceMeters(stops[current].Coordinates(), stop.Coordinates())
			if d < minDist {
				minDist = d
				best = i
			}
		}

		// NaN distances leave best unset; fall back to input order so
		// the walk still yields a full permutation.
		if best < 0 {
			for i := range stops {
				if !visited[i] {
					best = i
					break
				}
			}
		}

		visited[best] = true
		order = append(order, stops[best])
		current = best
	}

	return order
}

// estimateRoute derives distance, duration and per-stop ETAs for stops
// visited in the given order, using the fixed-speed and dwell-time
// model. Also used by the metrics calculator to price the unoptimized
// baseline.
func estimateRoute(
	order []domain.Stop,
	departAt time.Time,
) (distanceMeters float64, durationSeconds int, waypoints []domain.Waypoint) {
	waypoints = make([]domain.Waypoint, 0, len(order))
	if len(order) == 0 {
		return 0, 0, waypoints
	}

	arrival := departAt
	waypoints = append(waypoints, waypoint(order[0], arrival))

	for i := 1; i < len(order); i++ {
		legMeters := domain.DistanceMeters(order[i-1].Coordinates(), order[i].Coordinates())
		legMinutes := int(math.Round(legMeters / 1000 * minutesPerKm))

		distanceMeters += legMeters
		durationSeconds += legMinutes * 60
		arrival = arrival.Add(time.Duration(legMinutes) * time.Minute)
		waypoints = append(waypoints, waypoint(order[i], arrival))

		// Dwell at interior stops only; the final stop ends the route.
		if i != len(order)-1 {
			durationSeconds += dwellMinutes * 60
			arrival = arrival.Add(dwellMinutes * time.Minute)
		}
	}

	return distanceMeters, durationSeconds, waypoints
}

func waypoint(s domain.Stop, eta time.Time) domain.Waypoint {
	return domain.Waypoint{
		Latitude:         s.Latitude,
		Longitude:        s.Longitude,
		Address:          s.Address,
		EstimatedArrival: eta,
	}
}
