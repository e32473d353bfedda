// Package planner implements the two route searches over a region graph:
// Dijkstra for the fastest route and A* with an environmental cost model for
// the green route.
package planner

import (
	"math"

	"greenroute/internal/errors"
	"greenroute/internal/infra/routing/graph"
)

// ErrNoPath is returned when the destination cannot be reached from the origin
var ErrNoPath = errors.New("no path between origin and destination")

// ErrUnknownNode is returned when an origin or destination is not part of the graph
var ErrUnknownNode = errors.New("node not part of the graph")

const noPredecessor = -1

// resolveEndpoints maps node IDs to graph slots
func resolveEndpoints(g *graph.Graph, from, to graph.NodeID) (int, int, error) {
	source, ok := g.IndexOf(from)
	if !ok {
		return 0, 0, errors.Wrapf(ErrUnknownNode, "origin %d", from)
	}
	target, ok := g.IndexOf(to)
	if !ok {
		return 0, 0, errors.Wrapf(ErrUnknownNode, "destination %d", to)
	}

	return source, target, nil
}

func initCosts(n, source int) ([]float64, []int) {
	costs := make([]float64, n)
	prev := make([]int, n)
	for idx := range costs {
		costs[idx] = math.Inf(1)
		prev[idx] = noPredecessor
	}
	costs[source] = 0

	return costs, prev
}

// reconstructPath walks predecessors back from target and returns node IDs in
// traversal order together with the summed effective lengths.
func reconstructPath(g *graph.Graph, prev []int, source, target int) ([]graph.NodeID, float64) {
	slots := []int{target}
	for cur := target; cur != source; {
		cur = prev[cur]
		slots = append(slots, cur)
	}

	path := make([]graph.NodeID, len(slots))
	distance := 0.0
	for i := range slots {
		slot := slots[len(slots)-1-i]
		path[i] = g.NodeAt(slot).ID
		if i > 0 {
			distance += arcWeight(g, slots[len(slots)-i], slot)
		}
	}

	return path, distance
}

func arcWeight(g *graph.Graph, from, to int) float64 {
	for _, arc := range g.Arcs(from) {
		if arc.To == to {
			return arc.Weight
		}
	}

	return 0
}

// Round2 rounds to two decimals the way every reported figure is rounded
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
