package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"route-optimizer-service/internal/apperr"
	"route-optimizer-service/internal/domain"
	"route-optimizer-service/internal/ports"
)

// ProviderSequencer delegates ordering to an external routing provider
// and translates its per-leg metrics into cumulative per-stop ETAs.
// Provider failure is fatal to the call; there is no internal retry and
// no silent fallback to the heuristic.
type ProviderSequencer struct {
	provider ports.RouteProvider
	now      func() time.Time
}

func NewProviderSequencer(provider ports.RouteProvider) *ProviderSequencer {
	return &ProviderSequencer{provider: provider, now: time.Now}
}

func (s *ProviderSequencer) Sequence(
	ctx context.Context,
	stops []domain.Stop,
	prefs domain.Preferences,
) (*SequencedRoute, error) {
	if len(stops) == 0 {
		return nil, apperr.Validation("sequence: stop list must not be empty")
	}

	now := s.now()
	if len(stops) == 1 {
		return &SequencedRoute{
			Order:     []domain.Stop{stops[0]},
			Waypoints: []domain.Waypoint{waypoint(stops[0], now)},
		}, nil
	}

	avoid := ports.AvoidFlags{Tolls: prefs.AvoidTolls, Highways: prefs.AvoidHighways}
	res, err := s.provider.Route(ctx, stops, avoid)
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, err
		}
		return nil, apperr.Provider("sequence: routing provider call failed", err)
	}

	order, err := applyOrder(stops, res.Order)
	if err != nil {
		return nil, err
	}

	if len(res.Legs) != len(order)-1 {
		return nil, apperr.Provider(
			fmt.Sprintf("sequence: provider returned %d legs for %d stops", len(res.Legs), len(order)),
			nil,
		)
	}

	var distance float64
	var duration float64
	waypoints := make([]domain.Waypoint, 0, len(order))
	waypoints = append(waypoints, waypoint(order[0], now))

	// ETA at stop i is now plus the sum of leg durations 0..i-1.
	for i, leg := range res.Legs {
		distance += leg.DistanceMeters
		duration += leg.DurationSeconds
		eta := now.Add(time.Duration(duration * float64(time.Second)))
		waypoints = append(waypoints, waypoint(order[i+1], eta))
	}

	return &SequencedRoute{
		Order:                order,
		TotalDistanceMeters:  distance,
		TotalDurationSeconds: int(math.Round(duration)),
		Waypoints:            waypoints,
		EncodedPath:          res.EncodedPath,
	}, nil
}

// applyOrder reorders stops by the provider's visit order. A nil order
// keeps the input order; anything that is not a permutation of the
// input indexes is a provider contract violation.
func applyOrder(stops []domain.Stop, order []int) ([]domain.Stop, error) {
	if order == nil {
		out := make([]domain.Stop, len(stops))
		copy(out, stops)
		return out, nil
	}

	if len(order) != len(stops) {
		return nil, apperr.Provider(
			fmt.Sprintf("sequence: provider order has %d entries for %d stops", len(order), len(stops)),
			nil,
		)
	}

	seen := make([]bool, len(stops))
	out := make([]domain.Stop, 0, len(stops))
	for _, idx := range order {
		if idx < 0 || idx >= len(stops) || seen[idx] {
			return nil, apperr.Provider(
				fmt.Sprintf("sequence: provider order is not a permutation (index %d)", idx),
				nil,
			)
		}
		seen[idx] = true
		out = append(out, stops[idx])
	}

	return out, nil
}
