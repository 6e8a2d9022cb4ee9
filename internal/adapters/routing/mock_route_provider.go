package routing

import (
	"context"
	"fmt"
	"strconv"

	"route-optimizer-service/internal/domain"
	"route-optimizer-service/internal/ports"
)

type MockLeg struct {
	From, To domain.Coordinates
	Meters   float64
	Seconds  float64
}

// MockRouteProvider serves canned leg metrics for known coordinate
// pairs. Useful for wiring the provider-backed sequencer in tests and
// local runs without an ORS key.
type MockRouteProvider struct {
	m map[string]ports.RouteLeg
}

func NewMockRouteProvider(legs []MockLeg) *MockRouteProvider {
	m := make(map[string]ports.RouteLeg, len(legs))
	for _, l := range legs {
		m[pairKey(l.From, l.To)] = ports.RouteLeg{DistanceMeters: l.Meters, DurationSeconds: l.Seconds}
	}
	return &MockRouteProvider{m: m}
}

func (p *MockRouteProvider) Route(
	ctx context.Context,
	stops []domain.Stop,
	avoid ports.AvoidFlags,
) (ports.RouteResult, error) {
	legs := make([]ports.RouteLeg, 0, len(stops)-1)
	for i := 0; i < len(stops)-1; i++ {
		from, to := stops[i].Coordinates(), stops[i+1].Coordinates()
		leg, ok := p.m[pairKey(from, to)]
		if !ok {
			return ports.RouteResult{}, fmt.Errorf("missing pair %v -> %v", from, to)
		}
		legs = append(legs, leg)
	}

	return ports.RouteResult{Legs: legs}, nil
}

func pairKey(from, to domain.Coordinates) string {
	return strconv.FormatFloat(from.Lat, 'f', 6, 64) + "," +
		strconv.FormatFloat(from.Lon, 'f', 6, 64) + "|" +
		strconv.FormatFloat(to.Lat, 'f', 6, 64) + "," +
		strconv.FormatFloat(to.Lon, 'f', 6, 64)
}
