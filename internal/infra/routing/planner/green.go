package planner

import (
	"math"

	"greenroute/internal/errors"
	"greenroute/internal/infra/routing/graph"
)

// HeuristicMode selects the A* distance estimate
type HeuristicMode string

const (
	// HeuristicLiteral is the Euclidean distance over raw latitude/longitude
	// degrees. It is not in the same unit as edge costs.
	HeuristicLiteral HeuristicMode = "literal"
	// HeuristicMetric is the haversine distance in meters, consistent with edge costs.
	HeuristicMetric HeuristicMode = "metric"
)

// Default cost model parameters
const (
	DefaultElevationWeight    = 0.5
	DefaultIdlePenaltyPerNode = 2.0
)

// CostModel parameterizes the green route cost
type CostModel struct {
	// ElevationWeight is applied to each meter climbed on an edge
	ElevationWeight float64
	// IdlePenaltyPerNode is charged once for every node of the final path
	IdlePenaltyPerNode float64
	Heuristic          HeuristicMode
}

// DefaultCostModel returns the default green cost model
func DefaultCostModel() CostModel {
	return CostModel{
		ElevationWeight:    DefaultElevationWeight,
		IdlePenaltyPerNode: DefaultIdlePenaltyPerNode,
		Heuristic:          HeuristicLiteral,
	}
}

// ParseHeuristicMode converts a config value into a HeuristicMode
func ParseHeuristicMode(value string) (HeuristicMode, error) {
	switch HeuristicMode(value) {
	case HeuristicLiteral, HeuristicMetric:
		return HeuristicMode(value), nil
	default:
		return "", errors.Errorf("unknown heuristic mode %q", value)
	}
}

// PathScore breaks a path down into the terms of the green cost
type PathScore struct {
	DistanceMeters   float64
	ElevationPenalty float64
	IdlePenalty      float64
	GreenCost        float64
}

// GreenResult is the outcome of a green route search
type GreenResult struct {
	Path             []graph.NodeID
	DistanceMeters   float64
	DistanceKm       float64
	ElevationPenalty float64
	IdlePenalty      float64
	GreenCost        float64
}

// Green plans routes minimizing distance plus elevation and idle penalties
type Green struct {
	model CostModel
}

// NewGreen creates a green planner for the given cost model
func NewGreen(model CostModel) *Green {
	if model.Heuristic == "" {
		model.Heuristic = HeuristicLiteral
	}

	return &Green{model: model}
}

// Model returns the cost model used by the planner
func (p *Green) Model() CostModel {
	return p.model
}

// Plan runs A* from one node to another. Edge costs during the search include
// the elevation penalty; the idle penalty only depends on the number of nodes
// and is added to the final path.
func (p *Green) Plan(g *graph.Graph, from, to graph.NodeID) (*GreenResult, error) {
	source, target, err := resolveEndpoints(g, from, to)
	if err != nil {
		return nil, err
	}

	goal := g.NodeAt(target)
	costs, prev := initCosts(g.NodeCount(), source)
	closed := make([]bool, g.NodeCount())

	queue := make(priorityQueue, 0)
	queue.push(source, p.heuristic(g.NodeAt(source), goal))

	for queue.Len() > 0 {
		current := queue.pop()

		if closed[current.node] {
			continue
		}
		closed[current.node] = true

		if current.node == target {
			return p.result(g, prev, source, target)
		}

		currentNode := g.NodeAt(current.node)
		for _, arc := range g.Arcs(current.node) {
			next := g.NodeAt(arc.To)
			tentative := costs[current.node] + arc.Weight + p.model.elevationPenalty(currentNode, next)
			if tentative >= costs[arc.To] {
				continue
			}

			// A cheaper way into a closed node reopens it; the literal
			// heuristic is not guaranteed to be consistent.
			costs[arc.To] = tentative
			prev[arc.To] = current.node
			closed[arc.To] = false
			queue.push(arc.To, tentative+p.heuristic(next, goal))
		}
	}

	return nil, errors.Wrapf(ErrNoPath, "%d -> %d", from, to)
}

func (p *Green) result(g *graph.Graph, prev []int, source, target int) (*GreenResult, error) {
	path, _ := reconstructPath(g, prev, source, target)

	score, err := p.model.Score(g, path)
	if err != nil {
		return nil, err
	}

	return &GreenResult{
		Path:             path,
		DistanceMeters:   score.DistanceMeters,
		DistanceKm:       Round2(score.DistanceMeters / 1000),
		ElevationPenalty: score.ElevationPenalty,
		IdlePenalty:      score.IdlePenalty,
		GreenCost:        score.GreenCost,
	}, nil
}

func (p *Green) heuristic(from, goal graph.Node) float64 {
	if p.model.Heuristic == HeuristicMetric {
		return graph.HaversineMeters(from.Lat, from.Lng, goal.Lat, goal.Lng)
	}

	return math.Hypot(from.Lat-goal.Lat, from.Lng-goal.Lng)
}

func (m CostModel) elevationPenalty(from, to graph.Node) float64 {
	if !from.HasElevation() || !to.HasElevation() {
		return 0
	}

	gain := *to.Elevation - *from.Elevation
	if gain <= 0 {
		return 0
	}

	return m.ElevationWeight * gain
}

// Score evaluates any path of the graph under the cost model. It lets the
// fastest route be compared with the green route on the same scale.
func (m CostModel) Score(g *graph.Graph, path []graph.NodeID) (PathScore, error) {
	distance := 0.0
	elevation := 0.0

	for i := 1; i < len(path); i++ {
		weight, ok := g.EffectiveWeight(path[i-1], path[i])
		if !ok {
			return PathScore{}, errors.Wrapf(ErrNoPath, "no edge %d -> %d", path[i-1], path[i])
		}
		distance += weight

		from, _ := g.Node(path[i-1])
		to, _ := g.Node(path[i])
		elevation += m.elevationPenalty(from, to)
	}

	idle := float64(len(path)) * m.IdlePenaltyPerNode

	return PathScore{
		DistanceMeters:   Round2(distance),
		ElevationPenalty: Round2(elevation),
		IdlePenalty:      Round2(idle),
		GreenCost:        Round2(distance + elevation + idle),
	}, nil
}
