package impl

import (
	"context"
	"log/slog"
	"math"

	"greenroute/config"
	deliverycontext "greenroute/internal/delivery/context"
	"greenroute/internal/domain/entity"
	domainerrors "greenroute/internal/domain/errors"
	"greenroute/internal/domain/service"
	"greenroute/internal/infra/routing/graph"
	"greenroute/internal/infra/routing/planner"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// StationSearchResult is the outcome of a station search along a route
type StationSearchResult struct {
	Stations []entity.Station
	Queried  int // provider calls made
	Failed   int // provider calls that returned an error
}

// Degraded reports whether some provider calls failed
func (r StationSearchResult) Degraded() bool {
	return r.Failed > 0
}

// StationLocator searches fuel and charging stations around sampled route points
type StationLocator struct {
	provider     service.FeatureProvider
	radiusMeters float64
	sampleStep   int
	logger       *slog.Logger
}

// NewStationLocator creates a station locator backed by a feature provider
func NewStationLocator(provider service.FeatureProvider, cfg *config.StationsConfig, logger *slog.Logger) *StationLocator {
	radius := cfg.RadiusMeters
	if radius <= 0 {
		radius = config.DefaultStationRadiusMeters
	}

	step := cfg.SampleStep
	if step <= 0 {
		step = config.DefaultStationSampleStep
	}

	return &StationLocator{
		provider:     provider,
		radiusMeters: radius,
		sampleStep:   step,
		logger:       logger,
	}
}

// Locate queries the provider within radiusMeters of every sampleStep-th point
// of the polyline, starting with the first. A non-positive radius falls back to
// the configured one. A failing query is counted and skipped. Stations are
// deduplicated by coordinate, the first occurrence winning.
func (l *StationLocator) Locate(ctx context.Context, polyline []entity.RoutePoint, stationType entity.StationType, radiusMeters float64) StationSearchResult {
	result := StationSearchResult{Stations: []entity.Station{}}
	if len(polyline) == 0 {
		return result
	}

	if radiusMeters <= 0 {
		radiusMeters = l.radiusMeters
	}

	logger := deliverycontext.GetLoggerOrDefault(ctx, l.logger)

	type coordinate struct{ lat, lon float64 }
	seen := make(map[coordinate]struct{})

	for i := 0; i < len(polyline); i += l.sampleStep {
		if ctx.Err() != nil {
			logger.Debug("Station search interrupted",
				slog.Int("queried", result.Queried),
				slog.Any("error", ctx.Err()),
			)

			break
		}

		point := polyline[i]
		center := orb.Point{point.Lon, point.Lat}

		result.Queried++
		features, err := l.provider.QueryFeatures(ctx, center, radiusMeters, stationType)
		if err != nil {
			result.Failed++
			logger.Warn("Station query failed",
				slog.String("error_code", domainerrors.ErrFeatureQueryFailed.ErrorCode()),
				slog.Int("point_index", i),
				slog.Float64("lat", point.Lat),
				slog.Float64("lon", point.Lon),
				slog.Any("error", err),
			)

			continue
		}

		for _, feature := range features {
			location, ok := featureLocation(feature.Geometry)
			if !ok {
				continue
			}

			key := coordinate{lat: location.Lat(), lon: location.Lon()}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			name := feature.Name
			if name == "" {
				name = entity.UnknownStationName
			}

			result.Stations = append(result.Stations, entity.Station{
				Name:                name,
				Lat:                 location.Lat(),
				Lon:                 location.Lon(),
				DistanceFromRouteKm: distanceFromRouteKm(location, polyline),
				StationType:         stationType,
			})
		}
	}

	return result
}

// featureLocation reduces a feature geometry to one coordinate
func featureLocation(geometry orb.Geometry) (orb.Point, bool) {
	switch geom := geometry.(type) {
	case nil:
		return orb.Point{}, false
	case orb.Point:
		return geom, true
	case orb.Polygon, orb.MultiPolygon:
		centroid, area := planar.CentroidArea(geom)
		if area == 0 {
			return geom.Bound().Center(), true
		}

		return centroid, true
	case orb.LineString, orb.MultiLineString, orb.Ring, orb.MultiPoint:
		centroid, _ := planar.CentroidArea(geom)

		return centroid, true
	default:
		return geometry.Bound().Center(), true
	}
}

// distanceFromRouteKm is the minimum great-circle distance from a point to any polyline vertex
func distanceFromRouteKm(location orb.Point, polyline []entity.RoutePoint) float64 {
	best := math.Inf(1)
	for _, p := range polyline {
		if d := graph.HaversineMeters(location.Lat(), location.Lon(), p.Lat, p.Lon); d < best {
			best = d
		}
	}

	return planner.Round2(best / 1000)
}
