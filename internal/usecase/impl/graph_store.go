package impl

import (
	"context"

	"greenroute/internal/infra/routing/graph"
)

// GraphStore hands out region graphs, loading them on demand
type GraphStore interface {
	// Get returns the graph of a region, loading it when it is not in memory
	Get(ctx context.Context, region string) (*graph.Graph, error)

	// Peek returns the graph only when it is already in memory
	Peek(region string) (*graph.Graph, bool)

	// Regions lists every configured region
	Regions() []string
}
