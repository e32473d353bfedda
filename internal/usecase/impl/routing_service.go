package impl

import (
	"context"
	"log/slog"
	"time"

	"greenroute/config"
	deliverycontext "greenroute/internal/delivery/context"
	"greenroute/internal/domain/entity"
	domainerrors "greenroute/internal/domain/errors"
	"greenroute/internal/domain/service"
	"greenroute/internal/errors"
	"greenroute/internal/infra/routing/cache"
	"greenroute/internal/infra/routing/graph"
	"greenroute/internal/infra/routing/loader"
	"greenroute/internal/infra/routing/planner"
	"greenroute/internal/usecase"

	"go.uber.org/fx"
)

const (
	healthStatusHealthy = "healthy"
	serviceName         = "route-optimizer"
)

type routingService struct {
	graphs   GraphStore
	stations *StationLocator
	green    *planner.Green
	routing  *config.RoutingConfig
	alerts   *config.AlertsConfig
	logger   *slog.Logger
}

// RoutingServiceParams holds dependencies for the routing service
type RoutingServiceParams struct {
	fx.In

	Graphs   GraphStore
	Features service.FeatureProvider
	Routing  *config.RoutingConfig
	Stations *config.StationsConfig
	Alerts   *config.AlertsConfig
	Logger   *slog.Logger
}

// NewRoutingService creates a new routing service instance
func NewRoutingService(params RoutingServiceParams) (usecase.RoutingUsecase, error) {
	heuristic, err := planner.ParseHeuristicMode(params.Routing.Heuristic)
	if err != nil {
		return nil, err
	}

	model := planner.CostModel{
		ElevationWeight:    params.Routing.ElevationWeight,
		IdlePenaltyPerNode: params.Routing.IdlePenaltyPerNode,
		Heuristic:          heuristic,
	}

	return &routingService{
		graphs:   params.Graphs,
		stations: NewStationLocator(params.Features, params.Stations, params.Logger),
		green:    planner.NewGreen(model),
		routing:  params.Routing,
		alerts:   params.Alerts,
		logger:   params.Logger,
	}, nil
}

// Optimize computes the requested route variants, compares them and searches
// stations along the green route, or the fastest one when green was not requested
func (s *routingService) Optimize(ctx context.Context, input *usecase.OptimizeInput) (*usecase.OptimizeResult, error) {
	startTime := time.Now()

	if err := validateInput(input); err != nil {
		return nil, err
	}

	mode := input.RouteMode
	if mode == "" {
		mode = entity.RouteModeBoth
	}
	trafficFactor := input.TrafficFactor
	if trafficFactor <= 0 {
		trafficFactor = 1
	}

	region := input.Region
	if region == "" {
		region = s.routing.DefaultRegion
	}
	if region == "" {
		return nil, domainerrors.ErrUnknownRegion.WithDetails("no region requested and no default region configured")
	}

	g, err := s.graphs.Get(ctx, region)
	if err != nil {
		return nil, s.toAppError(ctx, err)
	}

	startNode, err := s.snap(ctx, g, "start", input.StartLat, input.StartLon)
	if err != nil {
		return nil, s.toAppError(ctx, err)
	}
	endNode, err := s.snap(ctx, g, "end", input.EndLat, input.EndLon)
	if err != nil {
		return nil, s.toAppError(ctx, err)
	}

	result := &usecase.OptimizeResult{
		VehicleType: input.VehicleType,
		RouteMode:   mode,
		Region:      region,
		Alerts:      []entity.Alert{},
	}

	var fastestPath []graph.NodeID
	if mode.IncludesFastest() {
		fastest, err := planner.Fastest(g, startNode.ID, endNode.ID)
		if err != nil {
			return nil, s.toAppError(ctx, err)
		}

		fastestPath = fastest.Path
		result.FastestRoute, err = BuildRoute(g, entity.RouteTypeFastest, fastest.Path, fastestFigures(fastest), s.routing.DefaultSpeedKmh, trafficFactor)
		if err != nil {
			return nil, s.toAppError(ctx, err)
		}
	}

	if mode.IncludesGreen() {
		green, err := s.green.Plan(g, startNode.ID, endNode.ID)
		if err != nil {
			return nil, s.toAppError(ctx, err)
		}

		result.GreenRoute, err = BuildRoute(g, entity.RouteTypeGreen, green.Path, greenFigures(green), s.routing.DefaultSpeedKmh, trafficFactor)
		if err != nil {
			return nil, s.toAppError(ctx, err)
		}
	}

	if result.FastestRoute != nil && result.GreenRoute != nil {
		fastestScore, err := s.green.Model().Score(g, fastestPath)
		if err != nil {
			return nil, s.toAppError(ctx, err)
		}

		result.Savings = CompareRoutes(result.FastestRoute, result.GreenRoute, s.routing.UnitMode, fastestScore.GreenCost)
	}

	preferred := result.GreenRoute
	if preferred == nil {
		preferred = result.FastestRoute
	}

	search := s.stations.Locate(ctx, preferred.Polyline, input.VehicleType.StationType(), 0)
	result.NearbyStations = search.Stations
	result.Alerts = BuildAlerts(s.alerts, input.CurrentFuelLevel, trafficFactor, search)

	result.Timestamp = time.Now().UTC()
	result.ComputationTimeMs = planner.Round2(float64(time.Since(startTime).Microseconds()) / 1000)

	s.log(ctx).Info("Route optimized",
		slog.String("region", region),
		slog.String("route_mode", mode.String()),
		slog.String("vehicle_type", input.VehicleType.String()),
		slog.Int("stations", len(search.Stations)),
		slog.Int("station_queries_failed", search.Failed),
		slog.Float64("computation_time_ms", result.ComputationTimeMs),
	)

	return result, nil
}

// snap resolves a coordinate to its nearest graph node. Points far from the
// network are accepted and only logged.
func (s *routingService) snap(ctx context.Context, g *graph.Graph, label string, lat, lon float64) (graph.Node, error) {
	node, distance, err := g.Nearest(lat, lon)
	if err != nil {
		return graph.Node{}, err
	}

	if distance > s.routing.SnapWarnDistanceMeters {
		s.log(ctx).Warn("Coordinate snapped far from the road network",
			slog.String("endpoint", label),
			slog.String("region", g.Region()),
			slog.Float64("lat", lat),
			slog.Float64("lon", lon),
			slog.Int64("node_id", int64(node.ID)),
			slog.Float64("snap_distance_m", planner.Round2(distance)),
		)
	}

	return node, nil
}

// Regions lists the configured regions and their cache state without loading any graph
func (s *routingService) Regions(_ context.Context) ([]usecase.RegionInfo, error) {
	names := s.graphs.Regions()
	regions := make([]usecase.RegionInfo, 0, len(names))

	for _, name := range names {
		info := usecase.RegionInfo{
			Name:    name,
			Default: name == s.routing.DefaultRegion,
		}

		if g, ok := s.graphs.Peek(name); ok {
			info.Loaded = true
			info.NodeCount = g.NodeCount()
			info.EdgeCount = g.EdgeCount()
		}

		regions = append(regions, info)
	}

	return regions, nil
}

// Health reports the static liveness payload
func (s *routingService) Health(_ context.Context) *usecase.HealthStatus {
	return &usecase.HealthStatus{
		Status:  healthStatusHealthy,
		Service: serviceName,
	}
}

// log returns the request-scoped logger when one travels with ctx
func (s *routingService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, s.logger)
}

func validateInput(input *usecase.OptimizeInput) error {
	if input == nil {
		return domainerrors.ErrValidationFailed.WithDetails("empty request")
	}

	if !validLatitude(input.StartLat) || !validLatitude(input.EndLat) {
		return domainerrors.ErrInvalidCoordinate.WithDetails("latitude must be within [-90, 90]")
	}
	if !validLongitude(input.StartLon) || !validLongitude(input.EndLon) {
		return domainerrors.ErrInvalidCoordinate.WithDetails("longitude must be within [-180, 180]")
	}

	if !input.VehicleType.IsValid() {
		return domainerrors.ErrValidationFailed.WithDetails("unknown vehicle_type " + input.VehicleType.String())
	}
	if input.RouteMode != "" && !input.RouteMode.IsValid() {
		return domainerrors.ErrValidationFailed.WithDetails("unknown route_mode " + input.RouteMode.String())
	}

	return nil
}

func validLatitude(v float64) bool {
	return v >= -90 && v <= 90
}

func validLongitude(v float64) bool {
	return v >= -180 && v <= 180
}

// toAppError maps infrastructure errors onto the domain error taxonomy
func (s *routingService) toAppError(ctx context.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	var kind *domainerrors.BaseError
	switch {
	case errors.IsAny(err, cache.ErrUnknownRegion, loader.ErrRegionNotConfigured):
		kind = domainerrors.ErrUnknownRegion
	case errors.Is(err, loader.ErrGraphLoad):
		kind = domainerrors.ErrGraphLoadFailed
	case errors.Is(err, graph.ErrEmptyGraph):
		kind = domainerrors.ErrGraphUnavailable
	case errors.Is(err, planner.ErrNoPath):
		kind = domainerrors.ErrNoPathFound
	default:
		kind = domainerrors.ErrUnexpectedComputation
	}

	s.log(ctx).Debug("Routing error mapped",
		slog.String("error_code", kind.ErrorCode()),
		slog.Any("error", err),
	)

	return domainerrors.NewCauseError(kind, err)
}
