package pmtiles

import (
	"greenroute/internal/errors"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
)

// POI is a point of interest decoded from a vector tile
type POI struct {
	Geometry orb.Geometry
	Amenity  string
	Name     string
}

// POIParser extracts amenity features from one layer of MVT tiles
type POIParser struct {
	layerName string
}

// NewPOIParser creates a parser reading the named layer
func NewPOIParser(layerName string) *POIParser {
	return &POIParser{layerName: layerName}
}

// ParseTile decodes MVT data, gzipped or not, and returns the POIs of the layer
// in WGS84 coordinates. A tile without the layer yields no POIs.
func (p *POIParser) ParseTile(data []byte, tile maptile.Tile) ([]POI, error) {
	layers, err := mvt.UnmarshalGzipped(data)
	if err != nil {
		layers, err = mvt.Unmarshal(data)
		if err != nil {
			return nil, errors.WithStack(err)
		}
	}

	var layer *mvt.Layer
	for _, l := range layers {
		if l.Name == p.layerName {
			layer = l

			break
		}
	}

	if layer == nil {
		return []POI{}, nil
	}

	layer.ProjectToWGS84(tile)

	pois := make([]POI, 0, len(layer.Features))
	for _, feature := range layer.Features {
		if feature.Geometry == nil {
			continue
		}

		amenity := getStringProperty(feature, "amenity", "subclass", "kind", "class")
		if amenity == "" {
			continue
		}

		pois = append(pois, POI{
			Geometry: feature.Geometry,
			Amenity:  amenity,
			Name:     getStringProperty(feature, "name", "name:en", "name_en"),
		})
	}

	return pois, nil
}

// getStringProperty returns the first non-empty string property among keys
func getStringProperty(feature *geojson.Feature, keys ...string) string {
	for _, key := range keys {
		if val, ok := feature.Properties[key]; ok {
			if str, ok := val.(string); ok && str != "" {
				return str
			}
		}
	}

	return ""
}
