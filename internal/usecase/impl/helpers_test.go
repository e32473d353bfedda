package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"greenroute/internal/domain/entity"
	"greenroute/internal/domain/service"
	"greenroute/internal/infra/routing/cache"
	"greenroute/internal/infra/routing/graph"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func elev(v float64) *float64 {
	return &v
}

type mockFeatureProvider struct {
	mock.Mock
}

func (m *mockFeatureProvider) QueryFeatures(ctx context.Context, center orb.Point, radiusMeters float64, stationType entity.StationType) ([]service.Feature, error) {
	args := m.Called(ctx, center, radiusMeters, stationType)

	features, _ := args.Get(0).([]service.Feature)

	return features, args.Error(1)
}

// fakeGraphStore serves prebuilt graphs; loadErr is returned for every region in it.
// Only regions marked loaded are visible to Peek.
type fakeGraphStore struct {
	graphs  map[string]*graph.Graph
	loaded  map[string]bool
	loadErr error
	gets    int
}

func (f *fakeGraphStore) Get(_ context.Context, region string) (*graph.Graph, error) {
	f.gets++
	if f.loadErr != nil {
		return nil, f.loadErr
	}

	g, ok := f.graphs[region]
	if !ok {
		return nil, cache.ErrUnknownRegion
	}

	return g, nil
}

func (f *fakeGraphStore) Peek(region string) (*graph.Graph, bool) {
	if !f.loaded[region] {
		return nil, false
	}

	g, ok := f.graphs[region]

	return g, ok
}

func (f *fakeGraphStore) Regions() []string {
	return []string{"bengaluru", "karnataka"}
}

// karnatakaGraph is a coarse Bengaluru to Mysuru corridor. The highway climbs
// over a ridge near Bidadi; a flatter detour runs through Kanakapura.
func karnatakaGraph(t *testing.T) *graph.Graph {
	t.Helper()

	nodes := []graph.Node{
		{ID: 1, Lat: 12.9716, Lng: 77.5946, Elevation: elev(920)},  // MG Road
		{ID: 2, Lat: 12.9066, Lng: 77.4826, Elevation: elev(880)},  // Kengeri
		{ID: 3, Lat: 12.7970, Lng: 77.3880, Elevation: elev(1050)}, // Bidadi ridge
		{ID: 4, Lat: 12.7217, Lng: 77.2812, Elevation: elev(747)},  // Ramanagara
		{ID: 5, Lat: 12.5223, Lng: 76.8977, Elevation: elev(678)},  // Mandya
		{ID: 6, Lat: 12.2958, Lng: 76.6394, Elevation: elev(770)},  // Mysuru
		{ID: 7, Lat: 12.8100, Lng: 77.4500, Elevation: elev(860)},  // Kanakapura road
		{ID: 8, Lat: 12.3000, Lng: 77.9000},                        // isolated
	}

	byID := make(map[graph.NodeID]graph.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	var edges []graph.Edge
	link := func(a, b graph.NodeID) {
		length := graph.HaversineMeters(byID[a].Lat, byID[a].Lng, byID[b].Lat, byID[b].Lng) * 1.2
		edges = append(edges, graph.Edge{From: a, To: b, Length: length}, graph.Edge{From: b, To: a, Length: length})
	}

	link(1, 2)
	link(2, 3)
	link(3, 4)
	link(4, 5)
	link(5, 6)
	link(2, 7)
	link(7, 4)

	g, err := graph.New("karnataka", nodes, edges, 0)
	require.NoError(t, err)

	return g
}
