package service

import (
	"context"

	"greenroute/internal/domain/entity"

	"github.com/paulmach/orb"
)

// Feature is a tagged map feature returned by a geospatial provider.
// Geometry is a point, a polygon or a line.
type Feature struct {
	Geometry orb.Geometry
	Name     string
}

// FeatureProvider queries map features of a station type around a point
type FeatureProvider interface {
	// QueryFeatures returns the features within radiusMeters of center
	QueryFeatures(ctx context.Context, center orb.Point, radiusMeters float64, stationType entity.StationType) ([]Feature, error)
}
