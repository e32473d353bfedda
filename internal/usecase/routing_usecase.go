package usecase

import (
	"context"
	"time"

	"greenroute/internal/domain/entity"
)

// OptimizeInput is a route optimisation request
type OptimizeInput struct {
	StartLat float64
	StartLon float64
	EndLat   float64
	EndLon   float64

	VehicleType entity.VehicleType
	RouteMode   entity.RouteMode

	// CurrentFuelLevel is a percentage in [0, 100]; nil when unknown
	CurrentFuelLevel *float64

	// TrafficFactor scales the estimated travel time; zero means 1.0
	TrafficFactor float64

	// Region overrides the configured default region when set
	Region string
}

// OptimizeResult is the response of a route optimisation
type OptimizeResult struct {
	VehicleType       entity.VehicleType `json:"vehicle_type"`
	RouteMode         entity.RouteMode   `json:"route_mode"`
	Region            string             `json:"region"`
	FastestRoute      *entity.Route      `json:"fastest_route"`
	GreenRoute        *entity.Route      `json:"green_route"`
	Savings           *entity.Savings    `json:"savings"`
	NearbyStations    []entity.Station   `json:"nearby_stations"`
	Alerts            []entity.Alert     `json:"alerts"`
	Timestamp         time.Time          `json:"timestamp"`
	ComputationTimeMs float64            `json:"computation_time_ms"`
}

// RegionInfo describes a configured region
type RegionInfo struct {
	Name      string `json:"name"`
	Default   bool   `json:"default"`
	Loaded    bool   `json:"loaded"`
	NodeCount int    `json:"node_count,omitempty"`
	EdgeCount int    `json:"edge_count,omitempty"`
}

// HealthStatus is the static liveness payload of the routing service
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// RoutingUsecase defines the route optimisation use cases
type RoutingUsecase interface {
	// Optimize computes the requested route variants between two coordinates,
	// compares them and searches stations along the preferred route
	Optimize(ctx context.Context, input *OptimizeInput) (*OptimizeResult, error)

	// Regions lists the configured regions and whether their graphs are cached
	Regions(ctx context.Context) ([]RegionInfo, error)

	// Health reports the service liveness
	Health(ctx context.Context) *HealthStatus
}
