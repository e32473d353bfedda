package pmtiles

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"

	"greenroute/internal/domain/entity"
	"greenroute/internal/errors"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mgRoad = orb.Point{77.6070, 12.9756}

func poiFeature(geometry orb.Geometry, props map[string]any) *geojson.Feature {
	feature := geojson.NewFeature(geometry)
	for key, value := range props {
		feature.Properties[key] = value
	}

	return feature
}

// encodeTile renders WGS84 features into an MVT tile of the given layer
func encodeTile(t *testing.T, tile maptile.Tile, layer string, gzipped bool, features ...*geojson.Feature) []byte {
	t.Helper()

	fc := geojson.NewFeatureCollection()
	fc.Features = append(fc.Features, features...)

	layers := mvt.Layers{mvt.NewLayer(layer, fc)}
	layers.ProjectToTile(tile)

	var (
		data []byte
		err  error
	)
	if gzipped {
		data, err = mvt.MarshalGzipped(layers)
	} else {
		data, err = mvt.Marshal(layers)
	}
	require.NoError(t, err)

	return data
}

type fakeArchive struct {
	tiles map[string][]byte
	calls atomic.Int32
}

func (f *fakeArchive) fetch(_ context.Context, path string) (int, []byte) {
	f.calls.Add(1)

	data, ok := f.tiles[path]
	if !ok {
		return http.StatusNotFound, nil
	}

	return http.StatusOK, data
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func tilePath(tile maptile.Tile) string {
	return fmt.Sprintf("/poi/%d/%d/%d.mvt", tile.Z, tile.X, tile.Y)
}

func TestProvider_QueryFeatures(t *testing.T) {
	tile := maptile.At(mgRoad, 14)
	center := tile.Bound().Center()

	nearFuel := orb.Point{center.Lon() + 0.001, center.Lat()}
	farFuel := orb.Point{center.Lon() + 0.009, center.Lat()}
	charger := orb.Point{center.Lon(), center.Lat() + 0.0005}
	forecourt := orb.Polygon{orb.Ring{
		{center.Lon() - 0.0005, center.Lat() - 0.0015},
		{center.Lon() + 0.0005, center.Lat() - 0.0015},
		{center.Lon() + 0.0005, center.Lat() - 0.0005},
		{center.Lon() - 0.0005, center.Lat() - 0.0005},
		{center.Lon() - 0.0005, center.Lat() - 0.0015},
	}}

	archive := &fakeArchive{tiles: map[string][]byte{
		tilePath(tile): encodeTile(t, tile, "poi", false,
			poiFeature(nearFuel, map[string]any{"class": "fuel", "name": "HP Petrol Pump"}),
			poiFeature(farFuel, map[string]any{"class": "fuel", "name": "Too Far"}),
			poiFeature(charger, map[string]any{"subclass": "charging_station", "name": "Tata Power EZ"}),
			poiFeature(forecourt, map[string]any{"amenity": "fuel"}),
			poiFeature(center, map[string]any{"class": "cafe", "name": "Brew"}),
		),
	}}

	provider := newProvider("poi", "poi", 14, archive.fetch, testLogger())

	fuel, err := provider.QueryFeatures(context.Background(), center, 500, entity.StationFuel)
	require.NoError(t, err)
	require.Len(t, fuel, 2)

	names := []string{fuel[0].Name, fuel[1].Name}
	assert.ElementsMatch(t, []string{"HP Petrol Pump", ""}, names)

	for _, feature := range fuel {
		if feature.Name == "HP Petrol Pump" {
			point, ok := feature.Geometry.(orb.Point)
			require.True(t, ok)
			assert.InDelta(t, 0, geo.Distance(point, nearFuel), 5)
		} else {
			assert.Equal(t, 2, feature.Geometry.Dimensions(), "area features keep their polygon")
		}
	}

	charging, err := provider.QueryFeatures(context.Background(), center, 500, entity.StationCharging)
	require.NoError(t, err)
	require.Len(t, charging, 1)
	assert.Equal(t, "Tata Power EZ", charging[0].Name)

	wide, err := provider.QueryFeatures(context.Background(), center, 1500, entity.StationFuel)
	require.NoError(t, err)
	assert.Len(t, wide, 3)
}

func TestProvider_QueryFeatures_CachesTiles(t *testing.T) {
	tile := maptile.At(mgRoad, 14)
	center := tile.Bound().Center()

	archive := &fakeArchive{tiles: map[string][]byte{
		tilePath(tile): encodeTile(t, tile, "poi", true,
			poiFeature(center, map[string]any{"amenity": "fuel", "name": "Shell"}),
		),
	}}

	provider := newProvider("poi", "", 0, archive.fetch, testLogger())

	first, err := provider.QueryFeatures(context.Background(), center, 200, entity.StationFuel)
	require.NoError(t, err)
	require.Len(t, first, 1)
	calls := archive.calls.Load()
	require.Positive(t, calls)

	second, err := provider.QueryFeatures(context.Background(), center, 200, entity.StationFuel)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, calls, archive.calls.Load(), "tiles are served from cache")
}

func TestProvider_QueryFeatures_MissingTiles(t *testing.T) {
	archive := &fakeArchive{tiles: map[string][]byte{}}
	provider := newProvider("poi", "poi", 14, archive.fetch, testLogger())

	features, err := provider.QueryFeatures(context.Background(), mgRoad, 300, entity.StationFuel)
	require.NoError(t, err)
	assert.Empty(t, features)
}

func TestProvider_QueryFeatures_ServerError(t *testing.T) {
	failing := func(context.Context, string) (int, []byte) {
		return http.StatusInternalServerError, nil
	}
	provider := newProvider("poi", "poi", 14, failing, testLogger())

	_, err := provider.QueryFeatures(context.Background(), mgRoad, 300, entity.StationFuel)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code 500")
}

func TestProvider_QueryFeatures_TooManyTiles(t *testing.T) {
	archive := &fakeArchive{tiles: map[string][]byte{}}
	provider := newProvider("poi", "poi", 16, archive.fetch, testLogger())

	_, err := provider.QueryFeatures(context.Background(), mgRoad, 50000, entity.StationFuel)
	assert.True(t, errors.Is(err, ErrTooManyTiles))
	assert.Zero(t, archive.calls.Load())
}

func TestProvider_QueryFeatures_Canceled(t *testing.T) {
	archive := &fakeArchive{tiles: map[string][]byte{}}
	provider := newProvider("poi", "poi", 14, archive.fetch, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := provider.QueryFeatures(ctx, mgRoad, 300, entity.StationFuel)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestParseSourcePath(t *testing.T) {
	tests := []struct {
		source      string
		wantBucket  string
		wantTileset string
	}{
		{"file:///data/tiles/poi.pmtiles", "file:///data/tiles", "poi"},
		{"/data/tiles/india.pmtiles", "file:///data/tiles", "india"},
		{"https://tiles.example.com/in/poi.pmtiles", "https://tiles.example.com/in", "poi"},
		{"gs://greenroute-tiles/poi.pmtiles", "gs://greenroute-tiles", "poi"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			bucket, tileset := parseSourcePath(tt.source)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantTileset, tileset)
		})
	}
}

func TestGetTilesForBounds(t *testing.T) {
	tile := maptile.At(mgRoad, 14)
	bound := tile.Bound()
	center := bound.Center()

	single := getTilesForBounds(center.Lat()-0.0001, center.Lat()+0.0001, center.Lon()-0.0001, center.Lon()+0.0001, 14)
	assert.Equal(t, []maptile.Tile{tile}, single)

	// Spanning the tile edge in both axes touches a 2x2 block
	corner := bound.Max
	block := getTilesForBounds(corner.Lat()-0.001, corner.Lat()+0.001, corner.Lon()-0.001, corner.Lon()+0.001, 14)
	assert.Len(t, block, 4)
}
