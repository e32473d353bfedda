package planner

import (
	"greenroute/internal/errors"
	"greenroute/internal/infra/routing/graph"
)

// FastestResult is the outcome of a shortest-distance search
type FastestResult struct {
	Path           []graph.NodeID
	DistanceMeters float64
	DistanceKm     float64
}

// Fastest finds the path minimizing cumulative effective edge length using
// Dijkstra's algorithm. Ties between equal-length paths are broken arbitrarily.
func Fastest(g *graph.Graph, from, to graph.NodeID) (*FastestResult, error) {
	source, target, err := resolveEndpoints(g, from, to)
	if err != nil {
		return nil, err
	}

	distances, prev := initCosts(g.NodeCount(), source)
	visited := make([]bool, g.NodeCount())

	queue := make(priorityQueue, 0)
	queue.push(source, 0)

	for queue.Len() > 0 {
		current := queue.pop()

		if visited[current.node] {
			continue
		}
		visited[current.node] = true

		if current.node == target {
			path, meters := reconstructPath(g, prev, source, target)

			return &FastestResult{
				Path:           path,
				DistanceMeters: Round2(meters),
				DistanceKm:     Round2(meters / 1000),
			}, nil
		}

		for _, arc := range g.Arcs(current.node) {
			if visited[arc.To] {
				continue
			}
			newDist := distances[current.node] + arc.Weight
			if newDist < distances[arc.To] {
				distances[arc.To] = newDist
				prev[arc.To] = current.node
				queue.push(arc.To, newDist)
			}
		}
	}

	return nil, errors.Wrapf(ErrNoPath, "%d -> %d", from, to)
}
