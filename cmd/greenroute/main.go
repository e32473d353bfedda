package main

import (
	"context"
	"log/slog"
	"os"

	"greenroute/config"
	"greenroute/internal/delivery"
	"greenroute/internal/delivery/api"
	"greenroute/internal/delivery/api/router/handler"
	"greenroute/internal/domain/service"
	"greenroute/internal/errors"
	"greenroute/internal/infra/geospatial/overpass"
	"greenroute/internal/infra/geospatial/pmtiles"
	logs "greenroute/internal/infra/log"
	"greenroute/internal/infra/routing/cache"
	"greenroute/internal/infra/routing/loader"
	"greenroute/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectConfigSections(),
		injectRouting(),
		injectUsecase(),
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
	)
}

func injectConfigSections() fx.Option {
	return fx.Provide(
		func(cfg *config.Config) *config.RoutingConfig { return cfg.Routing },
		func(cfg *config.Config) *config.StationsConfig { return cfg.Stations },
		func(cfg *config.Config) *config.AlertsConfig { return cfg.Alerts },
	)
}

func injectRouting() fx.Option {
	return fx.Options(
		fx.Provide(
			loader.NewRegistry,
			fx.Annotate(
				cache.NewRegionCache,
				fx.As(new(impl.GraphStore)),
			),
			newFeatureProvider,
		),
	)
}

// newFeatureProvider selects the station feature source configured in stations.provider
func newFeatureProvider(cfg *config.StationsConfig, logger *slog.Logger) (service.FeatureProvider, error) {
	switch cfg.Provider {
	case config.StationProviderOverpass:
		return overpass.NewClient(overpass.ClientParams{Config: cfg, Logger: logger}), nil
	case config.StationProviderPMTiles:
		provider, err := pmtiles.NewProvider(pmtiles.ProviderParams{Config: cfg, Logger: logger})
		if err != nil {
			return nil, errors.Wrap(err, "failed to open pmtiles archive")
		}

		return provider, nil
	default:
		return nil, errors.Errorf("unsupported station provider %q", cfg.Provider)
	}
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewRoutingService,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewRouteHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
