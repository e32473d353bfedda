// Package cache keeps recently used region graphs in memory.
package cache

import (
	"context"
	"log/slog"
	"time"

	"greenroute/config"
	"greenroute/internal/errors"
	"greenroute/internal/infra/routing/graph"
	"greenroute/internal/infra/routing/loader"

	"github.com/bluele/gcache"
	"go.uber.org/fx"
	"golang.org/x/sync/singleflight"
)

// DefaultSize is the number of region graphs kept when no size is configured
const DefaultSize = 4

// ErrUnknownRegion is returned for regions the loader does not know about
var ErrUnknownRegion = errors.New("unknown region")

// Loader is the road network source behind the cache
type Loader interface {
	LoadGraph(ctx context.Context, region string) (*graph.Graph, error)
	HasRegion(region string) bool
	Regions() []string
}

// RegionCache is a bounded LRU of region graphs. Concurrent misses for the
// same region share a single load that outlives any one caller's context.
// Cached graphs are immutable and shared between readers without locking.
type RegionCache struct {
	loader      Loader
	lru         gcache.Cache
	group       singleflight.Group
	loadTimeout time.Duration
	logger      *slog.Logger
}

// New creates a region cache holding at most size graphs. A positive
// loadTimeout bounds every shared load.
func New(loader Loader, size int, loadTimeout time.Duration, logger *slog.Logger) *RegionCache {
	if size <= 0 {
		size = DefaultSize
	}

	c := &RegionCache{
		loader:      loader,
		loadTimeout: loadTimeout,
		logger:      logger,
	}

	c.lru = gcache.New(size).
		LRU().
		EvictedFunc(func(key, _ any) {
			logger.Info("Region graph evicted", slog.Any("region", key))
		}).
		Build()

	return c
}

// Params holds dependencies for the region cache
type Params struct {
	fx.In

	Registry *loader.Registry
	Config   *config.RoutingConfig
	Logger   *slog.Logger
}

// NewRegionCache creates the region cache in front of the configured loader registry
func NewRegionCache(params Params) *RegionCache {
	return New(params.Registry, params.Config.CacheSize, params.Config.LoadTimeout, params.Logger)
}

// Get returns the graph of a region, loading it on a miss. Cancelling ctx
// only abandons this caller's wait; the shared load keeps running for the others.
func (c *RegionCache) Get(ctx context.Context, region string) (*graph.Graph, error) {
	if !c.loader.HasRegion(region) {
		return nil, errors.Wrapf(ErrUnknownRegion, "region %q", region)
	}

	if g, ok := c.Peek(region); ok {
		return g, nil
	}

	flight := c.group.DoChan(region, func() (any, error) {
		// A concurrent flight may have filled the entry just before this one started
		if g, ok := c.Peek(region); ok {
			return g, nil
		}

		loadCtx := context.WithoutCancel(ctx)
		if c.loadTimeout > 0 {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithTimeout(loadCtx, c.loadTimeout)
			defer cancel()
		}

		g, err := c.loader.LoadGraph(loadCtx, region)
		if err != nil {
			return nil, err
		}

		if err := c.lru.Set(region, g); err != nil {
			return nil, errors.WithStack(err)
		}

		return g, nil
	})

	select {
	case <-ctx.Done():
		c.logger.Debug("Region graph wait abandoned",
			slog.String("region", region),
			slog.Any("error", ctx.Err()),
		)

		return nil, errors.WithStack(ctx.Err())
	case res := <-flight:
		if res.Err != nil {
			return nil, res.Err
		}

		if res.Shared {
			c.logger.Debug("Region graph load shared", slog.String("region", region))
		}

		return res.Val.(*graph.Graph), nil
	}
}

// Peek returns the cached graph of a region without triggering a load
func (c *RegionCache) Peek(region string) (*graph.Graph, bool) {
	cached, err := c.lru.GetIFPresent(region)
	if err != nil {
		return nil, false
	}

	return cached.(*graph.Graph), true
}

// Contains reports whether a region graph is currently cached
func (c *RegionCache) Contains(region string) bool {
	return c.lru.Has(region)
}

// Regions returns every configured region name
func (c *RegionCache) Regions() []string {
	return c.loader.Regions()
}

// Len returns the number of cached graphs
func (c *RegionCache) Len() int {
	return c.lru.Len(false)
}

// Purge drops every cached graph
func (c *RegionCache) Purge() {
	c.lru.Purge()
}
