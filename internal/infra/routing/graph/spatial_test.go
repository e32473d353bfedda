package graph

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridIndex_Build(t *testing.T) {
	nodes := []Node{
		{ID: 0, Lat: 12.9716, Lng: 77.5946}, // Bengaluru
		{ID: 1, Lat: 12.9784, Lng: 77.6408}, // Indiranagar
		{ID: 2, Lat: 12.2958, Lng: 76.6394}, // Mysuru
	}

	index := NewGridIndex(1.0)
	index.Build(nodes)

	assert.Equal(t, 3, index.Size())
}

func TestGridIndex_Nearest(t *testing.T) {
	nodes := []Node{
		{ID: 0, Lat: 12.9716, Lng: 77.5946},
		{ID: 1, Lat: 12.9784, Lng: 77.6408},
		{ID: 2, Lat: 12.2958, Lng: 76.6394},
	}

	index := NewGridIndex(1.0)
	index.Build(nodes)

	idx, dist, ok := index.Nearest(12.9720, 77.5950)
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Less(t, dist, 100.0)

	idx, _, ok = index.Nearest(12.9780, 77.6400)
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	idx, _, ok = index.Nearest(12.3000, 76.6400)
	assert.True(t, ok)
	assert.Equal(t, 2, idx)
}

func TestGridIndex_Nearest_Empty(t *testing.T) {
	index := NewGridIndex(1.0)
	index.Build([]Node{})

	idx, _, ok := index.Nearest(12.9, 77.5)
	assert.False(t, ok)
	assert.Equal(t, -1, idx)
}

func TestGridIndex_Nearest_OutsideBounds(t *testing.T) {
	nodes := []Node{
		{ID: 0, Lat: 12.9716, Lng: 77.5946},
		{ID: 1, Lat: 12.2958, Lng: 76.6394},
	}

	index := NewGridIndex(1.0)
	index.Build(nodes)

	// Delhi is far north of the indexed box and still snaps to the closer node
	idx, dist, ok := index.Nearest(28.6139, 77.2090)
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Greater(t, dist, 1_000_000.0)
}

func TestGridIndex_Nearest_MatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	nodes := make([]Node, 500)
	for i := range nodes {
		nodes[i] = Node{
			ID:  NodeID(i),
			Lat: 12.2 + rng.Float64()*0.9,
			Lng: 76.5 + rng.Float64()*1.2,
		}
	}

	index := NewGridIndex(0.5)
	index.Build(nodes)

	for range 200 {
		lat := 12.0 + rng.Float64()*1.3
		lng := 76.3 + rng.Float64()*1.6

		gotIdx, gotDist, ok := index.Nearest(lat, lng)
		require.True(t, ok)

		wantIdx, wantDist, _ := index.linearNearest(lat, lng)
		assert.InDelta(t, wantDist, gotDist, 1e-6, "query (%f, %f)", lat, lng)
		if gotIdx != wantIdx {
			// ties are acceptable, distances already matched
			assert.InDelta(t, HaversineMeters(lat, lng, nodes[gotIdx].Lat, nodes[gotIdx].Lng), wantDist, 1e-6)
		}
	}
}
