package graph

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func elev(v float64) *float64 {
	return &v
}

func testNodes() []Node {
	return []Node{
		{ID: 1, Lat: 12.9716, Lng: 77.5946, Elevation: elev(920)},
		{ID: 2, Lat: 12.9000, Lng: 77.4000, Elevation: elev(880)},
		{ID: 3, Lat: 12.2958, Lng: 76.6394},
	}
}

func TestNew_CollapsesParallelEdges(t *testing.T) {
	edges := []Edge{
		{From: 1, To: 2, Length: 120},
		{From: 1, To: 2, Length: 95},
		{From: 1, To: 2, Length: 140},
		{From: 2, To: 3, Length: 500},
	}

	g, err := New("karnataka", testNodes(), edges, 0)
	require.NoError(t, err)

	assert.Equal(t, "karnataka", g.Region())
	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 4, g.EdgeCount())

	weight, ok := g.EffectiveWeight(1, 2)
	require.True(t, ok)
	assert.Equal(t, 95.0, weight)

	idx, ok := g.IndexOf(1)
	require.True(t, ok)
	assert.Len(t, g.Arcs(idx), 1)

	_, ok = g.EffectiveWeight(2, 1)
	assert.False(t, ok, "edges are directed")
}

func TestNew_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []Node
		edges   []Edge
		wantErr error
	}{
		{
			name:    "dangling edge",
			nodes:   testNodes(),
			edges:   []Edge{{From: 1, To: 99, Length: 10}},
			wantErr: ErrDanglingEdge,
		},
		{
			name:    "negative length",
			nodes:   testNodes(),
			edges:   []Edge{{From: 1, To: 2, Length: -1}},
			wantErr: ErrNegativeLength,
		},
		{
			name:    "duplicate node",
			nodes:   append(testNodes(), Node{ID: 1, Lat: 0, Lng: 0}),
			wantErr: ErrDuplicateNode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("test", tt.nodes, tt.edges, 1.0)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestGraph_Nearest(t *testing.T) {
	g, err := New("karnataka", testNodes(), nil, 1.0)
	require.NoError(t, err)

	node, dist, err := g.Nearest(12.9710, 77.5940)
	require.NoError(t, err)
	assert.Equal(t, NodeID(1), node.ID)
	assert.Less(t, dist, 200.0)

	node, _, err = g.Nearest(12.3, 76.64)
	require.NoError(t, err)
	assert.Equal(t, NodeID(3), node.ID)
	assert.False(t, node.HasElevation())
}

func TestGraph_Nearest_Empty(t *testing.T) {
	g, err := New("empty", nil, nil, 1.0)
	require.NoError(t, err)

	_, _, err = g.Nearest(12.97, 77.59)
	assert.ErrorIs(t, err, ErrEmptyGraph)
}

func TestGraph_Node(t *testing.T) {
	g, err := New("karnataka", testNodes(), nil, 1.0)
	require.NoError(t, err)

	node, ok := g.Node(2)
	require.True(t, ok)
	assert.True(t, node.HasElevation())
	assert.Equal(t, 880.0, *node.Elevation)

	_, ok = g.Node(42)
	assert.False(t, ok)
}

func TestHaversineMeters(t *testing.T) {
	// Bengaluru to Mysuru, roughly 128 km as the crow flies
	d := HaversineMeters(12.9716, 77.5946, 12.2958, 76.6394)
	assert.InDelta(t, 128_000, d, 3_000)

	assert.Equal(t, 0.0, HaversineMeters(12.9716, 77.5946, 12.9716, 77.5946))
}
