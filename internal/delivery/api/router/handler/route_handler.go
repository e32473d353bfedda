// Package handler contains the HTTP handlers of the route optimizer API.
package handler

import (
	"log/slog"
	"net/http"

	"greenroute/internal/delivery/api/response"
	deliverycontext "greenroute/internal/delivery/context"
	domainerrors "greenroute/internal/domain/errors"
	"greenroute/internal/domain/entity"
	"greenroute/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const (
	apiTitle   = "Green Route Optimizer API"
	apiVersion = "1.0.0"
)

// RouteHandlerParams holds dependencies for RouteHandler, injected by Fx.
type RouteHandlerParams struct {
	fx.In

	RoutingUC usecase.RoutingUsecase
	Logger    *slog.Logger
}

// RouteHandler serves route optimisation endpoints
type RouteHandler struct {
	routingUC usecase.RoutingUsecase
	logger    *slog.Logger
}

// NewRouteHandler is the constructor for RouteHandler
func NewRouteHandler(params RouteHandlerParams) *RouteHandler {
	return &RouteHandler{
		routingUC: params.RoutingUC,
		logger:    params.Logger,
	}
}

// OptimizeRouteRequest is the body of POST /route/optimize
type OptimizeRouteRequest struct {
	StartLat         *float64 `json:"start_lat" validate:"required,latitude"`
	StartLon         *float64 `json:"start_lon" validate:"required,longitude"`
	EndLat           *float64 `json:"end_lat" validate:"required,latitude"`
	EndLon           *float64 `json:"end_lon" validate:"required,longitude"`
	VehicleType      string   `json:"vehicle_type" validate:"required,oneof=bike van truck ev_bike ev_van ev_truck"`
	RouteMode        string   `json:"route_mode" validate:"omitempty,oneof=fastest green both"`
	CurrentFuelLevel *float64 `json:"current_fuel_level" validate:"omitempty,min=0,max=100"`
	TrafficFactor    *float64 `json:"traffic_factor" validate:"omitempty,min=0.5,max=2"`
	Region           string   `json:"region" validate:"omitempty,max=64"`
}

func (r *OptimizeRouteRequest) toInput() *usecase.OptimizeInput {
	input := &usecase.OptimizeInput{
		StartLat:         *r.StartLat,
		StartLon:         *r.StartLon,
		EndLat:           *r.EndLat,
		EndLon:           *r.EndLon,
		VehicleType:      entity.VehicleType(r.VehicleType),
		RouteMode:        entity.RouteMode(r.RouteMode),
		CurrentFuelLevel: r.CurrentFuelLevel,
		TrafficFactor:    1.0,
		Region:           r.Region,
	}

	if input.RouteMode == "" {
		input.RouteMode = entity.RouteModeBoth
	}
	if r.TrafficFactor != nil {
		input.TrafficFactor = *r.TrafficFactor
	}

	return input
}

// OptimizeRoute handles POST /route/optimize
func (h *RouteHandler) OptimizeRoute(c echo.Context) error {
	var req OptimizeRouteRequest
	if err := c.Bind(&req); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("request body must be a JSON object")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	logger := deliverycontext.GetLoggerOrDefault(ctx, h.logger)

	result, err := h.routingUC.Optimize(ctx, req.toInput())
	if err != nil {
		return err
	}

	logger.Debug("Route optimization served",
		slog.String("vehicle_type", req.VehicleType),
		slog.Float64("computation_time_ms", result.ComputationTimeMs),
	)

	return response.Raw(c, http.StatusOK, result)
}

// RouteHealth handles GET /route/health
func (h *RouteHandler) RouteHealth(c echo.Context) error {
	return response.Raw(c, http.StatusOK, h.routingUC.Health(c.Request().Context()))
}

// Regions handles GET /route/regions
func (h *RouteHandler) Regions(c echo.Context) error {
	regions, err := h.routingUC.Regions(c.Request().Context())
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, regions)
}

// Root handles GET /
func Root(c echo.Context) error {
	return response.Raw(c, http.StatusOK, map[string]string{
		"message": apiTitle,
		"version": apiVersion,
		"health":  "/route/health",
	})
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"})
}
