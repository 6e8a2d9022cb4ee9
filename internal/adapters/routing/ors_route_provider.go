package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"route-optimizer-service/internal/apperr"
	"route-optimizer-service/internal/domain"
	"route-optimizer-service/internal/ports"
)

// ORSRouteProvider implements RouteProvider using the OpenRouteService
// directions endpoint.
//
// It coordinates:
//   - Avoidance flag translation
//   - A persistent cache of provider responses
//   - External API calls with retry/backoff
//
// The provider is safe for concurrent use. ORS does not reorder
// waypoints, so the returned Order is always nil (input order kept).
type ORSRouteProvider struct {
	session *http.Client
	logger  *slog.Logger
	apiKey  string
	baseURL string
	profile string
	cache   ports.RouteCache
}

func NewORSRouteProvider(logger *slog.Logger, apiKey string, cache ports.RouteCache) (*ORSRouteProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	return &ORSRouteProvider{
		session: &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
		apiKey:  apiKey,
		baseURL: "https://api.openrouteservice.org",
		profile: "driving-car",
		cache:   cache,
	}, nil
}

type directionsRequest struct {
	Coordinates [][]float64       `json:"coordinates"`
	Options     directionsOptions `json:"options,omitempty"`
}

type directionsOptions struct {
	AvoidFeatures []string `json:"avoid_features,omitempty"`
}

type directionsResponse struct {
	Routes []struct {
		Segments []struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"segments"`
		Geometry string `json:"geometry"`
	} `json:"routes"`
}

func (o *ORSRouteProvider) Route(
	ctx context.Context,
	stops []domain.Stop,
	avoid ports.AvoidFlags,
) (ports.RouteResult, error) {
	if len(stops) < 2 {
		return ports.RouteResult{}, apperr.Validation("route: at least two stops are required")
	}

	key := o.cacheKey(stops, avoid)

	// Check the persistent cache before issuing external API calls.
	if o.cache != nil {
		cached, ok, err := o.cache.Get(ctx, key)
		if err != nil {
			o.logger.Warn("route cache read failed", "error", err)
		} else if ok {
			return cached, nil
		}
	}

	result, err := o.fetchDirections(ctx, stops, avoid)
	if err != nil {
		return ports.RouteResult{}, err
	}

	if o.cache != nil {
		if err := o.cache.Put(ctx, key, result); err != nil {
			o.logger.Warn("route cache write failed", "error", err)
		}
	}

	return result, nil
}

func (o *ORSRouteProvider) fetchDirections(
	ctx context.Context,
	stops []domain.Stop,
	avoid ports.AvoidFlags,
) (ports.RouteResult, error) {
	endpoint := fmt.Sprintf("%s/v2/directions/%s", o.baseURL, o.profile)

	coords := make([][]float64, 0, len(stops))
	for _, s := range stops {
		// ORS expects [lon, lat].
		coords = append(coords, []float64{s.Longitude, s.Latitude})
	}

	var avoidFeatures []string
	if avoid.Tolls {
		avoidFeatures = append(avoidFeatures, "tollways")
	}
	if avoid.Highways {
		avoidFeatures = append(avoidFeatures, "highways")
	}

	payload, err := json.Marshal(directionsRequest{
		Coordinates: coords,
		Options:     directionsOptions{AvoidFeatures: avoidFeatures},
	})
	if err != nil {
		return ports.RouteResult{}, fmt.Errorf("marshal directions request: %w", err)
	}

	resp, err := o.postJSON(ctx, endpoint, payload)
	if err != nil {
		return ports.RouteResult{}, apperr.Provider("directions request failed", err)
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return ports.RouteResult{}, apperr.Provider("decode directions response", err)
	}

	if len(dr.Routes) == 0 {
		return ports.RouteResult{}, apperr.Provider("directions response contains no routes", nil)
	}

	route := dr.Routes[0]
	if len(route.Segments) != len(stops)-1 {
		return ports.RouteResult{}, apperr.Provider(
			fmt.Sprintf("directions returned %d segments for %d stops", len(route.Segments), len(stops)),
			nil,
		)
	}

	legs := make([]ports.RouteLeg, 0, len(route.Segments))
	for _, seg := range route.Segments {
		legs = append(legs, ports.RouteLeg{
			DistanceMeters:  seg.Distance,
			DurationSeconds: seg.Duration,
		})
	}

	return ports.RouteResult{
		Legs:        legs,
		EncodedPath: route.Geometry,
	}, nil
}

// cacheKey identifies one directions call by profile, avoidance flags
// and the exact coordinate sequence.
func (o *ORSRouteProvider) cacheKey(stops []domain.Stop, avoid ports.AvoidFlags) string {
	var b strings.Builder
	b.WriteString("directions|")
	b.WriteString(o.profile)
	b.WriteString("|t=")
	b.WriteString(strconv.FormatBool(avoid.Tolls))
	b.WriteString("|h=")
	b.WriteString(strconv.FormatBool(avoid.Highways))
	for _, s := range stops {
		b.WriteString("|")
		b.WriteString(strconv.FormatFloat(s.Latitude, 'f', 6, 64))
		b.WriteString(",")
		b.WriteString(strconv.FormatFloat(s.Longitude, 'f', 6, 64))
	}
	return b.String()
}
