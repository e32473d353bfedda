// Package overpass queries OpenStreetMap features through the Overpass API.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"greenroute/config"
	"greenroute/internal/domain/entity"
	"greenroute/internal/domain/service"
	"greenroute/internal/errors"

	"github.com/paulmach/orb"
	"go.uber.org/fx"
)

// DefaultEndpoint is the public Overpass API interpreter
const DefaultEndpoint = "https://overpass-api.de/api/interpreter"

const maxErrorBodyBytes = 512

// ErrQueryFailed is returned when the Overpass API cannot answer a query
var ErrQueryFailed = errors.New("overpass query failed")

// Client implements service.FeatureProvider against the Overpass API
type Client struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientParams holds dependencies for the Overpass client
type ClientParams struct {
	fx.In

	Config *config.StationsConfig
	Logger *slog.Logger
}

// NewClient creates an Overpass feature provider
func NewClient(params ClientParams) *Client {
	endpoint := params.Config.OverpassEndpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	return &Client{
		endpoint:   endpoint,
		timeout:    params.Config.Timeout,
		httpClient: &http.Client{Timeout: params.Config.Timeout},
		logger:     params.Logger,
	}
}

var _ service.FeatureProvider = (*Client)(nil)

type response struct {
	Elements []element `json:"elements"`
}

type element struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id"`
	Lat      float64           `json:"lat"`
	Lon      float64           `json:"lon"`
	Center   *latLon           `json:"center"`
	Geometry []latLon          `json:"geometry"`
	Tags     map[string]string `json:"tags"`
}

type latLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// QueryFeatures returns nodes and ways tagged with the station amenity within
// radiusMeters of center
func (c *Client) QueryFeatures(ctx context.Context, center orb.Point, radiusMeters float64, stationType entity.StationType) ([]service.Feature, error) {
	query := BuildQuery(center, radiusMeters, stationType, c.timeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader("data="+url.QueryEscape(query)))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(ErrQueryFailed, "request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

		return nil, errors.Wrapf(ErrQueryFailed, "status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.Wrapf(ErrQueryFailed, "decode response: %v", err)
	}

	features := make([]service.Feature, 0, len(decoded.Elements))
	for _, el := range decoded.Elements {
		geometry, ok := el.geometry()
		if !ok {
			continue
		}

		features = append(features, service.Feature{
			Geometry: geometry,
			Name:     el.Tags["name"],
		})
	}

	c.logger.Debug("Overpass query completed",
		slog.String("station_type", stationType.String()),
		slog.Int("elements", len(decoded.Elements)),
		slog.Int("features", len(features)),
	)

	return features, nil
}

// BuildQuery renders the Overpass QL query for stations around a point
func BuildQuery(center orb.Point, radiusMeters float64, stationType entity.StationType, timeout time.Duration) string {
	seconds := int(math.Ceil(timeout.Seconds()))
	if seconds <= 0 {
		seconds = 25
	}

	around := fmt.Sprintf("(around:%.0f,%.7f,%.7f)", radiusMeters, center.Lat(), center.Lon())
	filter := fmt.Sprintf(`["amenity"=%q]`, stationType.Amenity())

	var query strings.Builder
	fmt.Fprintf(&query, "[out:json][timeout:%d];\n", seconds)
	query.WriteString("(\n")
	fmt.Fprintf(&query, "  node%s%s;\n", filter, around)
	fmt.Fprintf(&query, "  way%s%s;\n", filter, around)
	query.WriteString(");\n")
	query.WriteString("out geom;\n")

	return query.String()
}

// geometry converts an element into a point, a polygon for closed ways, or a line
func (el element) geometry() (orb.Geometry, bool) {
	switch el.Type {
	case "node":
		return orb.Point{el.Lon, el.Lat}, true
	case "way":
		if len(el.Geometry) == 0 {
			if el.Center != nil {
				return orb.Point{el.Center.Lon, el.Center.Lat}, true
			}

			return nil, false
		}

		line := make(orb.LineString, len(el.Geometry))
		for i, p := range el.Geometry {
			line[i] = orb.Point{p.Lon, p.Lat}
		}

		if len(line) >= 4 && line[0].Equal(line[len(line)-1]) {
			return orb.Polygon{orb.Ring(line)}, true
		}
		if len(line) == 1 {
			return line[0], true
		}

		return line, true
	default:
		return nil, false
	}
}
