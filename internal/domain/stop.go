package domain

// A caller-supplied geographic point to visit. Stops are immutable and
// a request always carries at least one, in input order.
type Stop struct {
	Latitude  float64
	Longitude float64
	Address   string
}

func (s Stop) Coordinates() Coordinates {
	return Coordinates{Lat: s.Latitude, Lon: s.Longitude}
}

// What the caller asked the optimizer to minimize.
type OptimizeFor string

const (
	OptimizeTime     OptimizeFor = "time"
	OptimizeDistance OptimizeFor = "distance"
	OptimizeFuel     OptimizeFor = "fuel"
)

func (o OptimizeFor) Valid() bool {
	switch o {
	case OptimizeTime, OptimizeDistance, OptimizeFuel:
		return true
	}
	return false
}

// Routing preferences supplied with a request. OptimizeFor is accepted
// and stored but the fallback heuristic does not branch on it; only a
// provider-backed sequencer can honor it.
type Preferences struct {
	AvoidTolls    bool
	AvoidHighways bool
	OptimizeFor   OptimizeFor
}
