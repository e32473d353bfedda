package impl

import (
	"greenroute/internal/domain/entity"
	"greenroute/internal/errors"
	"greenroute/internal/infra/routing/graph"
	"greenroute/internal/infra/routing/planner"
)

// routeFigures is the planner output a route object is built from
type routeFigures struct {
	DistanceMeters   float64
	DistanceKm       float64
	ElevationPenalty float64
	IdlePenalty      float64
	GreenCost        float64
}

// BuildPolyline resolves a node path into coordinates, preserving traversal order
func BuildPolyline(g *graph.Graph, path []graph.NodeID) ([]entity.RoutePoint, error) {
	polyline := make([]entity.RoutePoint, 0, len(path))

	for _, id := range path {
		node, ok := g.Node(id)
		if !ok {
			return nil, errors.Wrapf(graph.ErrUnknownNode, "polyline node %d", id)
		}

		point := entity.RoutePoint{Lat: node.Lat, Lon: node.Lng}
		if node.HasElevation() {
			elevation := *node.Elevation
			point.Elevation = &elevation
		}

		polyline = append(polyline, point)
	}

	return polyline, nil
}

// EstimatedTimeMin converts a distance into minutes at speedKmh scaled by the traffic factor
func EstimatedTimeMin(distanceKm, speedKmh, trafficFactor float64) float64 {
	if speedKmh <= 0 {
		return 0
	}
	if trafficFactor <= 0 {
		trafficFactor = 1
	}

	return planner.Round2(distanceKm / speedKmh * 60 * trafficFactor)
}

// ElevationGain sums the uphill differences between consecutive points.
// It returns nil when no consecutive pair carries elevation on both ends.
func ElevationGain(polyline []entity.RoutePoint) *float64 {
	var (
		gain  float64
		known bool
	)

	for i := 1; i < len(polyline); i++ {
		prev, curr := polyline[i-1].Elevation, polyline[i].Elevation
		if prev == nil || curr == nil {
			continue
		}

		known = true
		if diff := *curr - *prev; diff > 0 {
			gain += diff
		}
	}

	if !known {
		return nil
	}

	gain = planner.Round2(gain)

	return &gain
}

// BuildMetrics assembles the metrics of a route. Fuel, cost, carbon and idle
// time stay nil.
func BuildMetrics(figures routeFigures, polyline []entity.RoutePoint, speedKmh, trafficFactor float64) entity.RouteMetrics {
	return entity.RouteMetrics{
		DistanceKm:       figures.DistanceKm,
		EstimatedTimeMin: EstimatedTimeMin(figures.DistanceKm, speedKmh, trafficFactor),
		ElevationGainM:   ElevationGain(polyline),
		DistanceMeters:   figures.DistanceMeters,
		ElevationPenalty: figures.ElevationPenalty,
		IdlePenalty:      figures.IdlePenalty,
		GreenCost:        figures.GreenCost,
	}
}

// BuildRoute turns a planned path into a route object
func BuildRoute(g *graph.Graph, routeType entity.RouteType, path []graph.NodeID, figures routeFigures, speedKmh, trafficFactor float64) (*entity.Route, error) {
	polyline, err := BuildPolyline(g, path)
	if err != nil {
		return nil, err
	}

	return &entity.Route{
		RouteType: routeType,
		Polyline:  polyline,
		Metrics:   BuildMetrics(figures, polyline, speedKmh, trafficFactor),
	}, nil
}

func fastestFigures(result *planner.FastestResult) routeFigures {
	return routeFigures{
		DistanceMeters: result.DistanceMeters,
		DistanceKm:     result.DistanceKm,
	}
}

func greenFigures(result *planner.GreenResult) routeFigures {
	return routeFigures{
		DistanceMeters:   result.DistanceMeters,
		DistanceKm:       result.DistanceKm,
		ElevationPenalty: result.ElevationPenalty,
		IdlePenalty:      result.IdlePenalty,
		GreenCost:        result.GreenCost,
	}
}
