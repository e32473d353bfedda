package impl

import (
	"testing"

	"greenroute/internal/domain/entity"
	"greenroute/internal/infra/routing/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPolyline(t *testing.T) {
	g := karnatakaGraph(t)

	polyline, err := BuildPolyline(g, []graph.NodeID{1, 2, 7, 4, 8})
	require.NoError(t, err)
	require.Len(t, polyline, 5)

	assert.Equal(t, 12.9716, polyline[0].Lat)
	assert.Equal(t, 77.5946, polyline[0].Lon)
	require.NotNil(t, polyline[0].Elevation)
	assert.Equal(t, 920.0, *polyline[0].Elevation)
	assert.Equal(t, 12.81, polyline[2].Lat)
	assert.Nil(t, polyline[4].Elevation)

	_, err = BuildPolyline(g, []graph.NodeID{1, 42})
	assert.ErrorIs(t, err, graph.ErrUnknownNode)
}

func TestEstimatedTimeMin(t *testing.T) {
	tests := []struct {
		name          string
		distanceKm    float64
		speedKmh      float64
		trafficFactor float64
		expected      float64
	}{
		{"free flow", 10, 40, 1, 15},
		{"heavy traffic", 10, 40, 1.5, 22.5},
		{"unset traffic", 10, 40, 0, 15},
		{"rounded", 10, 35, 1, 17.14},
		{"no speed", 10, 0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, EstimatedTimeMin(tt.distanceKm, tt.speedKmh, tt.trafficFactor), 1e-9)
		})
	}
}

func TestElevationGain(t *testing.T) {
	polyline := []entity.RoutePoint{
		{Elevation: elev(900)},
		{Elevation: elev(950)},
		{Elevation: elev(920)},
		{Elevation: nil},
		{Elevation: elev(1000)},
		{Elevation: elev(1080.5)},
	}

	gain := ElevationGain(polyline)
	require.NotNil(t, gain)
	assert.InDelta(t, 130.5, *gain, 1e-9)

	assert.Nil(t, ElevationGain([]entity.RoutePoint{{}, {}, {}}))
	assert.Nil(t, ElevationGain(nil))
}

func TestBuildMetrics_PlaceholdersStayNull(t *testing.T) {
	figures := routeFigures{DistanceMeters: 3400, DistanceKm: 3.4, IdlePenalty: 6, GreenCost: 3406}
	metrics := BuildMetrics(figures, []entity.RoutePoint{{}, {}, {}}, 40, 1)

	assert.Equal(t, 3.4, metrics.DistanceKm)
	assert.Equal(t, 3400.0, metrics.DistanceMeters)
	assert.InDelta(t, 5.1, metrics.EstimatedTimeMin, 1e-9)
	assert.Equal(t, 3406.0, metrics.GreenCost)
	assert.Nil(t, metrics.FuelConsumption)
	assert.Nil(t, metrics.CostEstimate)
	assert.Nil(t, metrics.CarbonEmissionKg)
	assert.Nil(t, metrics.IdleTimeMin)
	assert.Nil(t, metrics.ElevationGainM)
}
