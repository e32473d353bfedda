package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "100KB"

	defaultCacheSize              = 4
	defaultSpeedKmh               = 40.0
	defaultElevationWeight        = 0.5
	defaultIdlePenaltyPerNode     = 2.0
	defaultSnapWarnDistanceMeters = 5000.0
	defaultGridCellSizeKm         = 1.0
	defaultGraphLoadTimeout       = 5 * time.Minute

	defaultStationProvider  = StationProviderOverpass
	defaultOverpassEndpoint = "https://overpass-api.de/api/interpreter"
	defaultStationTimeout   = 25 * time.Second
	defaultPOILayer         = "poi"
	defaultPOIZoomLevel     = 14

	defaultLowFuelPercent     = 20.0
	defaultHeavyTrafficFactor = 1.5
)

// Station search defaults
const (
	DefaultStationRadiusMeters = 2500.0
	DefaultStationSampleStep   = 3
)

// Unit modes select how green cost is compared with the fastest route
const (
	UnitModeLiteral    = "literal"
	UnitModeConsistent = "consistent"
)

// Road network provider kinds
const (
	RegionProviderCSV = "csv"
	RegionProviderPBF = "pbf"
)

// Station feature provider kinds
const (
	StationProviderOverpass = "overpass"
	StationProviderPMTiles  = "pmtiles"
)

type Config struct {
	Env EnvConfig `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	// Routing configuration for region graphs and both planners
	Routing *RoutingConfig `json:"routing" yaml:"routing"`

	// Stations configuration for the fuel/charging station search
	Stations *StationsConfig `json:"stations" yaml:"stations"`

	// Alerts thresholds attached to route responses
	Alerts *AlertsConfig `json:"alerts" yaml:"alerts"`
}

// EnvConfig identifies the running service and controls its logging
type EnvConfig struct {
	Env         string `json:"env" yaml:"env"`
	ServiceName string `json:"serviceName" yaml:"serviceName"`
	Debug       bool   `json:"debug" yaml:"debug"`
	Log         Log    `json:"log" yaml:"log"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// RoutingConfig defines routing engine configuration
type RoutingConfig struct {
	// Region used when a request does not name one
	DefaultRegion string `json:"defaultRegion" yaml:"defaultRegion"`

	// Number of region graphs kept in memory
	CacheSize int `json:"cacheSize" yaml:"cacheSize"`

	// Upper bound on one region graph load, shared by every waiting request
	LoadTimeout time.Duration `json:"loadTimeout" yaml:"loadTimeout"`

	// Vehicle speed in km/h used for travel time estimation
	DefaultSpeedKmh float64 `json:"defaultSpeedKmh" yaml:"defaultSpeedKmh"`

	// Green cost per meter climbed
	ElevationWeight float64 `json:"elevationWeight" yaml:"elevationWeight"`

	// Green cost per node of the final path
	IdlePenaltyPerNode float64 `json:"idlePenaltyPerNode" yaml:"idlePenaltyPerNode"`

	// "literal" or "consistent"
	UnitMode string `json:"unitMode" yaml:"unitMode"`

	// "literal" or "metric"; derived from UnitMode when empty
	Heuristic string `json:"heuristic" yaml:"heuristic"`

	// Snap distances above this are logged as warnings
	SnapWarnDistanceMeters float64 `json:"snapWarnDistanceMeters" yaml:"snapWarnDistanceMeters"`

	// Grid cell size in kilometers for spatial index
	GridCellSizeKm float64 `json:"gridCellSizeKm" yaml:"gridCellSizeKm"`

	Regions map[string]RegionConfig `json:"regions" yaml:"regions"`
}

// RegionConfig describes where the road network of one region comes from
type RegionConfig struct {
	// "csv" or "pbf"
	Provider string `json:"provider" yaml:"provider"`

	// Bucket URL for csv (file://, gs://, s3://), .osm.pbf path for pbf
	Source string `json:"source" yaml:"source"`

	// Key prefix of nodes.csv/edges.csv inside the bucket
	Prefix string `json:"prefix" yaml:"prefix"`
}

// StationsConfig defines the station search along a route
type StationsConfig struct {
	// "overpass" or "pmtiles"
	Provider string `json:"provider" yaml:"provider"`

	OverpassEndpoint string        `json:"overpassEndpoint" yaml:"overpassEndpoint"`
	Timeout          time.Duration `json:"timeout" yaml:"timeout"`

	RadiusMeters float64 `json:"radiusMeters" yaml:"radiusMeters"`

	// Every SampleStep-th polyline point is queried
	SampleStep int `json:"sampleStep" yaml:"sampleStep"`

	PMTiles *PMTilesConfig `json:"pmtiles" yaml:"pmtiles"`
}

// PMTilesConfig defines the PMTiles POI archive
type PMTilesConfig struct {
	// PMTiles source URL (local file path, HTTP URL, or GCS URL)
	Source string `json:"source" yaml:"source"`

	// POI layer name in the MVT tiles
	Layer string `json:"layer" yaml:"layer"`

	// Zoom level for tile queries
	ZoomLevel int `json:"zoomLevel" yaml:"zoomLevel"`
}

// AlertsConfig defines the thresholds of route alerts
type AlertsConfig struct {
	LowFuelPercent     float64 `json:"lowFuelPercent" yaml:"lowFuelPercent"`
	HeavyTrafficFactor float64 `json:"heavyTrafficFactor" yaml:"heavyTrafficFactor"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: POSTGRES_SSLMODE -> postgres.sslMode (not postgres.sslmode)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyDefaults fills every unset section and value with its default
func (c *Config) ApplyDefaults() {
	if strings.TrimSpace(c.HTTP.MaxRequestBodySize) == "" {
		c.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	if c.Routing == nil {
		c.Routing = &RoutingConfig{}
	}
	c.Routing.applyDefaults()

	if c.Stations == nil {
		c.Stations = &StationsConfig{}
	}
	c.Stations.applyDefaults()

	if c.Alerts == nil {
		c.Alerts = &AlertsConfig{}
	}
	if c.Alerts.LowFuelPercent == 0 {
		c.Alerts.LowFuelPercent = defaultLowFuelPercent
	}
	if c.Alerts.HeavyTrafficFactor == 0 {
		c.Alerts.HeavyTrafficFactor = defaultHeavyTrafficFactor
	}
}

func (r *RoutingConfig) applyDefaults() {
	if r.CacheSize <= 0 {
		r.CacheSize = defaultCacheSize
	}
	if r.LoadTimeout <= 0 {
		r.LoadTimeout = defaultGraphLoadTimeout
	}
	if r.DefaultSpeedKmh <= 0 {
		r.DefaultSpeedKmh = defaultSpeedKmh
	}
	if r.ElevationWeight == 0 {
		r.ElevationWeight = defaultElevationWeight
	}
	if r.IdlePenaltyPerNode == 0 {
		r.IdlePenaltyPerNode = defaultIdlePenaltyPerNode
	}
	if r.UnitMode == "" {
		r.UnitMode = UnitModeLiteral
	}
	if r.Heuristic == "" {
		r.Heuristic = "literal"
		if r.UnitMode == UnitModeConsistent {
			r.Heuristic = "metric"
		}
	}
	if r.SnapWarnDistanceMeters <= 0 {
		r.SnapWarnDistanceMeters = defaultSnapWarnDistanceMeters
	}
	if r.GridCellSizeKm <= 0 {
		r.GridCellSizeKm = defaultGridCellSizeKm
	}
	for name, region := range r.Regions {
		if region.Provider == "" {
			region.Provider = RegionProviderCSV
			r.Regions[name] = region
		}
	}
	if r.DefaultRegion == "" && len(r.Regions) == 1 {
		for name := range r.Regions {
			r.DefaultRegion = name
		}
	}
}

func (s *StationsConfig) applyDefaults() {
	if s.Provider == "" {
		s.Provider = defaultStationProvider
	}
	if s.OverpassEndpoint == "" {
		s.OverpassEndpoint = defaultOverpassEndpoint
	}
	if s.Timeout <= 0 {
		s.Timeout = defaultStationTimeout
	}
	if s.RadiusMeters <= 0 {
		s.RadiusMeters = DefaultStationRadiusMeters
	}
	if s.SampleStep <= 0 {
		s.SampleStep = DefaultStationSampleStep
	}
	if s.PMTiles == nil {
		s.PMTiles = &PMTilesConfig{}
	}
	if s.PMTiles.Layer == "" {
		s.PMTiles.Layer = defaultPOILayer
	}
	if s.PMTiles.ZoomLevel == 0 {
		s.PMTiles.ZoomLevel = defaultPOIZoomLevel
	}
}

// Validate rejects settings the service cannot start with
func (c *Config) Validate() error {
	switch c.Routing.UnitMode {
	case UnitModeLiteral, UnitModeConsistent:
	default:
		return errors.Errorf("routing.unitMode must be %q or %q, got %q", UnitModeLiteral, UnitModeConsistent, c.Routing.UnitMode)
	}

	if c.Routing.DefaultRegion != "" {
		if _, ok := c.Routing.Regions[c.Routing.DefaultRegion]; !ok {
			return errors.Errorf("routing.defaultRegion %q is not configured", c.Routing.DefaultRegion)
		}
	}

	for name, region := range c.Routing.Regions {
		switch region.Provider {
		case RegionProviderCSV, RegionProviderPBF:
		default:
			return errors.Errorf("routing.regions.%s.provider must be csv or pbf, got %q", name, region.Provider)
		}
		if region.Source == "" {
			return errors.Errorf("routing.regions.%s.source is required", name)
		}
	}

	switch c.Stations.Provider {
	case StationProviderOverpass:
	case StationProviderPMTiles:
		if c.Stations.PMTiles.Source == "" {
			return errors.New("stations.pmtiles.source is required when the pmtiles provider is selected")
		}
	default:
		return errors.Errorf("stations.provider must be overpass or pmtiles, got %q", c.Stations.Provider)
	}

	return nil
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
