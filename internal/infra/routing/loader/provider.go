// Package loader provides road network graphs for named regions, either from
// prepared CSV files in blob storage or straight from OSM PBF extracts.
package loader

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"greenroute/config"
	"greenroute/internal/errors"
	"greenroute/internal/infra/routing/graph"

	"go.uber.org/fx"
)

// ErrGraphLoad is returned when region data cannot be retrieved or decoded
var ErrGraphLoad = errors.New("failed to load region graph")

// ErrRegionNotConfigured is returned when no source is configured for a region
var ErrRegionNotConfigured = errors.New("region not configured")

// Source loads the graph of one region
type Source interface {
	Load(ctx context.Context, region string) (*graph.Graph, error)
}

// Registry dispatches graph loads to the source configured for each region
type Registry struct {
	sources map[string]Source
	logger  *slog.Logger
}

// RegistryParams holds dependencies for the region registry
type RegistryParams struct {
	fx.In

	Config *config.RoutingConfig
	Logger *slog.Logger
}

// NewRegistry creates a registry from the routing configuration
func NewRegistry(params RegistryParams) (*Registry, error) {
	cfg := params.Config
	registry := &Registry{
		sources: make(map[string]Source, len(cfg.Regions)),
		logger:  params.Logger,
	}

	for name, region := range cfg.Regions {
		switch region.Provider {
		case config.RegionProviderCSV, "":
			registry.sources[name] = NewBlobSource(region.Source, region.Prefix, cfg.GridCellSizeKm, params.Logger)
		case config.RegionProviderPBF:
			registry.sources[name] = NewPBFSource(region.Source, cfg.GridCellSizeKm, params.Logger)
		default:
			return nil, errors.Errorf("region %s: unknown provider %q", name, region.Provider)
		}
	}

	params.Logger.Info("Road network registry initialized", slog.Any("regions", registry.Regions()))

	return registry, nil
}

// NewRegistryWithSources creates a registry from explicit sources
func NewRegistryWithSources(sources map[string]Source, logger *slog.Logger) *Registry {
	return &Registry{sources: sources, logger: logger}
}

// Regions returns the configured region names in lexical order
func (r *Registry) Regions() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// HasRegion reports whether a source is configured for the region
func (r *Registry) HasRegion(region string) bool {
	_, ok := r.sources[region]

	return ok
}

// LoadGraph loads the graph of a region. Every failure wraps ErrGraphLoad
// except an unconfigured region.
func (r *Registry) LoadGraph(ctx context.Context, region string) (*graph.Graph, error) {
	source, ok := r.sources[region]
	if !ok {
		return nil, errors.Wrapf(ErrRegionNotConfigured, "region %q", region)
	}

	start := time.Now()
	g, err := source.Load(ctx, region)
	if err != nil {
		if !errors.Is(err, ErrGraphLoad) {
			err = errors.Wrapf(ErrGraphLoad, "region %s: %v", region, err)
		}

		return nil, err
	}

	r.logger.Info("Region graph loaded",
		slog.String("region", region),
		slog.Int("nodes", g.NodeCount()),
		slog.Int("edges", g.EdgeCount()),
		slog.Duration("elapsed", time.Since(start)),
	)

	return g, nil
}
