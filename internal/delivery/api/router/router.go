// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"greenroute/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	RouteHandler *handler.RouteHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	routeHandler *handler.RouteHandler
}

// NewRouter is the constructor for the Router.
func NewRouter(params RouterParams) *router {
	return &router{
		routeHandler: params.RouteHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/", handler.Root)
	e.GET("/health", handler.HealthCheck)

	routeGroup := e.Group("/route")
	{
		routeGroup.POST("/optimize", r.routeHandler.OptimizeRoute)
		routeGroup.GET("/health", r.routeHandler.RouteHealth)
		routeGroup.GET("/regions", r.routeHandler.Regions)
	}
}
