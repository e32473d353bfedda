package pmtiles

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPOIParser_ParseTile(t *testing.T) {
	tile := maptile.At(mgRoad, 14)
	center := tile.Bound().Center()

	data := encodeTile(t, tile, "poi", false,
		poiFeature(center, map[string]any{"kind": "charging_station", "name:en": "Ather Grid"}),
		poiFeature(center, map[string]any{"name": "No amenity"}),
	)

	pois, err := NewPOIParser("poi").ParseTile(data, tile)
	require.NoError(t, err)
	require.Len(t, pois, 1)
	assert.Equal(t, "charging_station", pois[0].Amenity)
	assert.Equal(t, "Ather Grid", pois[0].Name)

	point, ok := pois[0].Geometry.(orb.Point)
	require.True(t, ok)
	assert.InDelta(t, center.Lon(), point.Lon(), 1e-4)
	assert.InDelta(t, center.Lat(), point.Lat(), 1e-4)
}

func TestPOIParser_ParseTile_MissingLayer(t *testing.T) {
	tile := maptile.At(mgRoad, 14)
	data := encodeTile(t, tile, "transportation", true,
		poiFeature(tile.Bound().Center(), map[string]any{"class": "fuel"}),
	)

	pois, err := NewPOIParser("poi").ParseTile(data, tile)
	require.NoError(t, err)
	assert.Empty(t, pois)
}

func TestPOIParser_ParseTile_Garbage(t *testing.T) {
	_, err := NewPOIParser("poi").ParseTile([]byte{0xff, 0x00, 0x13}, maptile.New(0, 0, 14))
	assert.Error(t, err)
}

func TestGetStringProperty(t *testing.T) {
	tests := []struct {
		name       string
		properties map[string]any
		keys       []string
		expected   string
	}{
		{"first key wins", map[string]any{"amenity": "fuel", "class": "shop"}, []string{"amenity", "class"}, "fuel"},
		{"falls through empty", map[string]any{"amenity": "", "class": "fuel"}, []string{"amenity", "class"}, "fuel"},
		{"non-string ignored", map[string]any{"amenity": 7}, []string{"amenity"}, ""},
		{"missing", map[string]any{}, []string{"amenity"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feature := geojson.NewFeature(orb.Point{0, 0})
			feature.Properties = tt.properties
			assert.Equal(t, tt.expected, getStringProperty(feature, tt.keys...))
		})
	}
}
