// Package graph holds the immutable road network model of one region: nodes,
// directed edges collapsed to their effective weights, and a spatial index
// used to snap arbitrary coordinates onto the network.
package graph

import (
	"math"

	"greenroute/internal/errors"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// ErrEmptyGraph is returned when a lookup is made against a graph without nodes
var ErrEmptyGraph = errors.New("road network graph has no nodes")

// ErrUnknownNode is returned when a node ID is not part of the graph
var ErrUnknownNode = errors.New("node not found in road network graph")

// ErrDanglingEdge is returned when an edge references a node missing from the node set
var ErrDanglingEdge = errors.New("edge endpoint not found in node set")

// ErrNegativeLength is returned when an edge carries a negative length
var ErrNegativeLength = errors.New("edge length must be non-negative")

// ErrDuplicateNode is returned when two nodes share the same ID
var ErrDuplicateNode = errors.New("duplicate node id")

// DefaultCellSizeKm is the spatial index cell size used when none is configured
const DefaultCellSizeKm = 1.0

// NodeID identifies a node within a region graph (usually the OSM node id)
type NodeID int64

// Node is a road network vertex. Elevation is nil when unknown.
type Node struct {
	ID        NodeID
	Lat       float64
	Lng       float64
	Elevation *float64
}

// HasElevation reports whether the node carries an elevation value
func (n Node) HasElevation() bool {
	return n.Elevation != nil && !math.IsNaN(*n.Elevation)
}

// Edge is a directed road segment. Several edges may connect the same ordered pair.
type Edge struct {
	From   NodeID
	To     NodeID
	Length float64 // meters
}

// Arc is an adjacency entry between node slots, weighted by the effective length
type Arc struct {
	To     int
	Weight float64
}

// Graph is the road network of one region. It is read-only once built and safe
// for concurrent use.
type Graph struct {
	region    string
	nodes     []Node
	index     map[NodeID]int
	adjList   [][]Arc
	edgeCount int
	spatial   *GridIndex
}

// New builds a graph from raw nodes and edges. Parallel edges between the same
// ordered pair are collapsed into one arc carrying the minimum length.
func New(region string, nodes []Node, edges []Edge, cellSizeKm float64) (*Graph, error) {
	if cellSizeKm <= 0 {
		cellSizeKm = DefaultCellSizeKm
	}

	g := &Graph{
		region: region,
		nodes:  make([]Node, len(nodes)),
		index:  make(map[NodeID]int, len(nodes)),
	}
	copy(g.nodes, nodes)

	for idx, node := range g.nodes {
		if _, exists := g.index[node.ID]; exists {
			return nil, errors.Wrapf(ErrDuplicateNode, "node %d", node.ID)
		}
		g.index[node.ID] = idx
	}

	if err := g.buildAdjacencyList(edges); err != nil {
		return nil, err
	}

	g.spatial = NewGridIndex(cellSizeKm)
	g.spatial.Build(g.nodes)

	return g, nil
}

func (g *Graph) buildAdjacencyList(edges []Edge) error {
	g.adjList = make([][]Arc, len(g.nodes))

	// slot[from][to] remembers where the arc for an ordered pair lives in adjList[from]
	slot := make([]map[int]int, len(g.nodes))

	for _, edge := range edges {
		from, ok := g.index[edge.From]
		if !ok {
			return errors.Wrapf(ErrDanglingEdge, "edge %d->%d: from", edge.From, edge.To)
		}
		toNode, ok := g.index[edge.To]
		if !ok {
			return errors.Wrapf(ErrDanglingEdge, "edge %d->%d: to", edge.From, edge.To)
		}
		if edge.Length < 0 || math.IsNaN(edge.Length) {
			return errors.Wrapf(ErrNegativeLength, "edge %d->%d: %f", edge.From, edge.To, edge.Length)
		}

		g.edgeCount++

		if slot[from] == nil {
			slot[from] = make(map[int]int)
		}
		if pos, exists := slot[from][toNode]; exists {
			if edge.Length < g.adjList[from][pos].Weight {
				g.adjList[from][pos].Weight = edge.Length
			}

			continue
		}

		slot[from][toNode] = len(g.adjList[from])
		g.adjList[from] = append(g.adjList[from], Arc{To: toNode, Weight: edge.Length})
	}

	return nil
}

// Region returns the region name the graph was loaded for
func (g *Graph) Region() string {
	return g.region
}

// NodeCount returns the number of nodes
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of raw edges, parallel edges included
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

// Node returns the node with the given ID
func (g *Graph) Node(id NodeID) (Node, bool) {
	idx, ok := g.index[id]
	if !ok {
		return Node{}, false
	}

	return g.nodes[idx], true
}

// IndexOf returns the internal slot of a node ID
func (g *Graph) IndexOf(id NodeID) (int, bool) {
	idx, ok := g.index[id]

	return idx, ok
}

// NodeAt returns the node stored in the given slot
func (g *Graph) NodeAt(idx int) Node {
	return g.nodes[idx]
}

// Arcs returns the outgoing arcs of the node in the given slot.
// The returned slice must not be modified.
func (g *Graph) Arcs(idx int) []Arc {
	return g.adjList[idx]
}

// EffectiveWeight returns the minimum length among the parallel edges from -> to
func (g *Graph) EffectiveWeight(from, to NodeID) (float64, bool) {
	fromIdx, ok := g.index[from]
	if !ok {
		return 0, false
	}
	toIdx, ok := g.index[to]
	if !ok {
		return 0, false
	}

	for _, arc := range g.adjList[fromIdx] {
		if arc.To == toIdx {
			return arc.Weight, true
		}
	}

	return 0, false
}

// Nearest snaps a coordinate to the closest node of the graph. The second
// return value is the great-circle distance between the coordinate and the
// node in meters. Points outside the region are not rejected; they snap to
// the globally nearest node.
func (g *Graph) Nearest(lat, lng float64) (Node, float64, error) {
	if len(g.nodes) == 0 {
		return Node{}, 0, ErrEmptyGraph
	}

	idx, distance, ok := g.spatial.Nearest(lat, lng)
	if !ok {
		return Node{}, 0, ErrEmptyGraph
	}

	return g.nodes[idx], distance, nil
}

// HaversineMeters calculates the great circle distance between two points in meters
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	return geo.DistanceHaversine(orb.Point{lng1, lat1}, orb.Point{lng2, lat2})
}
