// Package pmtiles serves station features from a PMTiles archive of POI vector tiles.
package pmtiles

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"greenroute/config"
	"greenroute/internal/domain/entity"
	"greenroute/internal/domain/service"
	"greenroute/internal/errors"

	"github.com/bluele/gcache"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/maptile"
	"github.com/paulmach/orb/planar"
	"github.com/protomaps/go-pmtiles/pmtiles"
	"go.uber.org/fx"
)

const (
	defaultLayer     = "poi"
	defaultZoomLevel = 14
	serverCacheSize  = 64
	tileCacheSize    = 256

	// Radius queries touching more tiles than this are rejected
	maxTilesPerQuery = 64
)

// ErrTileNotFound is returned by the fetcher when the archive has no tile at a position
var ErrTileNotFound = errors.New("tile not found")

// ErrTooManyTiles is returned when a radius covers too many tiles at the configured zoom
var ErrTooManyTiles = errors.New("query area covers too many tiles")

// tileFetcher reads a tile by its server path and returns the HTTP-like status
type tileFetcher func(ctx context.Context, path string) (int, []byte)

// Provider implements service.FeatureProvider on top of a PMTiles archive
type Provider struct {
	tilesetName string
	zoomLevel   maptile.Zoom
	parser      *POIParser
	fetch       tileFetcher
	tiles       gcache.Cache
	logger      *slog.Logger
}

// ProviderParams holds dependencies for the PMTiles POI provider
type ProviderParams struct {
	fx.In

	Config *config.StationsConfig
	Logger *slog.Logger
}

// NewProvider opens the PMTiles archive named in the station configuration
func NewProvider(params ProviderParams) (*Provider, error) {
	cfg := params.Config.PMTiles
	if cfg == nil || cfg.Source == "" {
		return nil, errors.New("PMTiles source is required for the pmtiles station provider")
	}

	// The server expects a bucket directory and resolves {name}.pmtiles inside it
	bucketPath, tilesetName := parseSourcePath(cfg.Source)

	server, err := pmtiles.NewServer(bucketPath, "", log.New(io.Discard, "", 0), serverCacheSize, "")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create PMTiles server")
	}
	server.Start()

	fetch := func(ctx context.Context, path string) (int, []byte) {
		status, _, data := server.Get(ctx, path)

		return status, data
	}

	provider := newProvider(tilesetName, cfg.Layer, cfg.ZoomLevel, fetch, params.Logger)

	params.Logger.Info("PMTiles station provider initialized",
		slog.String("source", cfg.Source),
		slog.String("tileset", tilesetName),
		slog.String("layer", provider.parser.layerName),
		slog.Int("zoom_level", int(provider.zoomLevel)),
	)

	return provider, nil
}

func newProvider(tilesetName, layer string, zoom int, fetch tileFetcher, logger *slog.Logger) *Provider {
	if layer == "" {
		layer = defaultLayer
	}
	if zoom <= 0 {
		zoom = defaultZoomLevel
	}

	return &Provider{
		tilesetName: tilesetName,
		zoomLevel:   maptile.Zoom(zoom),
		parser:      NewPOIParser(layer),
		fetch:       fetch,
		tiles:       gcache.New(tileCacheSize).LRU().Build(),
		logger:      logger,
	}
}

var _ service.FeatureProvider = (*Provider)(nil)

// QueryFeatures returns POIs of the station type whose representative point
// lies within radiusMeters of center
func (p *Provider) QueryFeatures(ctx context.Context, center orb.Point, radiusMeters float64, stationType entity.StationType) ([]service.Feature, error) {
	bound := geo.NewBoundAroundPoint(center, radiusMeters)
	tiles := getTilesForBounds(bound.Min.Lat(), bound.Max.Lat(), bound.Min.Lon(), bound.Max.Lon(), p.zoomLevel)
	if len(tiles) > maxTilesPerQuery {
		return nil, errors.Wrapf(ErrTooManyTiles, "%d tiles at zoom %d", len(tiles), p.zoomLevel)
	}

	amenity := stationType.Amenity()
	features := make([]service.Feature, 0)

	for _, tile := range tiles {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}

		pois, err := p.loadTile(ctx, tile)
		if err != nil {
			return nil, err
		}

		for _, poi := range pois {
			if poi.Amenity != amenity {
				continue
			}
			if geo.Distance(center, representativePoint(poi.Geometry)) > radiusMeters {
				continue
			}

			features = append(features, service.Feature{Geometry: poi.Geometry, Name: poi.Name})
		}
	}

	return features, nil
}

// loadTile returns the parsed POIs of a tile, reading through the tile cache
func (p *Provider) loadTile(ctx context.Context, tile maptile.Tile) ([]POI, error) {
	key := tileKey(tile)

	if cached, err := p.tiles.Get(key); err == nil {
		if pois, ok := cached.([]POI); ok {
			return pois, nil
		}
	}

	data, err := p.fetchTile(ctx, tile)
	if errors.Is(err, ErrTileNotFound) {
		// Empty ocean or outside the archive
		_ = p.tiles.Set(key, []POI{})

		return []POI{}, nil
	}
	if err != nil {
		return nil, err
	}

	pois, err := p.parser.ParseTile(data, tile)
	if err != nil {
		return nil, errors.Wrapf(err, "parse tile %s", key)
	}

	_ = p.tiles.Set(key, pois)

	p.logger.Debug("Loaded POI tile",
		slog.String("tile", key),
		slog.Int("pois", len(pois)),
	)

	return pois, nil
}

func (p *Provider) fetchTile(ctx context.Context, tile maptile.Tile) ([]byte, error) {
	// Format: /{tileset}/{z}/{x}/{y}.mvt
	tilePath := fmt.Sprintf("/%s/%d/%d/%d.mvt", p.tilesetName, tile.Z, tile.X, tile.Y)

	statusCode, data := p.fetch(ctx, tilePath)

	if statusCode == http.StatusNotFound || (statusCode == http.StatusNoContent && len(data) == 0) {
		return nil, errors.Wrap(ErrTileNotFound, tilePath)
	}

	if statusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected status code %d for %s", statusCode, tilePath)
	}

	return data, nil
}

// representativePoint reduces a geometry to the point used for distance checks
func representativePoint(geometry orb.Geometry) orb.Point {
	switch geom := geometry.(type) {
	case orb.Point:
		return geom
	case orb.Polygon, orb.MultiPolygon:
		centroid, _ := planar.CentroidArea(geom)

		return centroid
	default:
		return geometry.Bound().Center()
	}
}

// tileKey creates a string key for a tile
func tileKey(tile maptile.Tile) string {
	return fmt.Sprintf("%d/%d/%d", tile.Z, tile.X, tile.Y)
}

// parseSourcePath extracts the bucket directory and tileset name from a source path.
// Examples:
//   - "file:///data/poi.pmtiles" -> ("file:///data", "poi")
//   - "/data/poi.pmtiles" -> ("file:///data", "poi")
//   - "https://tiles.example.com/in/poi.pmtiles" -> ("https://tiles.example.com/in", "poi")
func parseSourcePath(source string) (bucketPath, tilesetName string) {
	if path, ok := strings.CutPrefix(source, "file://"); ok {
		return "file://" + filepath.Dir(path), strings.TrimSuffix(filepath.Base(path), ".pmtiles")
	}

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") ||
		strings.HasPrefix(source, "s3://") || strings.HasPrefix(source, "gs://") {
		if lastSlash := strings.LastIndex(source, "/"); lastSlash > 0 {
			return source[:lastSlash], strings.TrimSuffix(source[lastSlash+1:], ".pmtiles")
		}
	}

	return "file://" + filepath.Dir(source), strings.TrimSuffix(filepath.Base(source), ".pmtiles")
}

// getTilesForBounds returns all tiles that cover the given bounds
func getTilesForBounds(minLat, maxLat, minLng, maxLng float64, zoom maptile.Zoom) []maptile.Tile {
	minTile := maptile.At(orb.Point{minLng, maxLat}, zoom)
	maxTile := maptile.At(orb.Point{maxLng, minLat}, zoom)

	tiles := make([]maptile.Tile, 0)
	for x := minTile.X; x <= maxTile.X; x++ {
		for y := minTile.Y; y <= maxTile.Y; y++ {
			tiles = append(tiles, maptile.Tile{X: x, Y: y, Z: zoom})
		}
	}

	return tiles
}
