package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
env:
  env: test
  serviceName: route-optimizer
http:
  port: 8000
routing:
  defaultRegion: bengaluru
  cacheSize: 2
  regions:
    bengaluru:
      source: file:///srv/regions
      prefix: bengaluru
stations:
  timeout: 5s
`

func TestLoadWithEnv_AppliesEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(testConfigYAML), 0o644))
	t.Chdir(dir)
	t.Setenv("ROUTING_CACHESIZE", "7")
	t.Setenv("STATIONS_TIMEOUT", "9s")

	cfg, err := LoadWithEnv[Config]("config")
	require.NoError(t, err)

	assert.Equal(t, "route-optimizer", cfg.Env.ServiceName)
	require.NotNil(t, cfg.Routing)
	assert.Equal(t, 7, cfg.Routing.CacheSize)
	assert.Equal(t, "file:///srv/regions", cfg.Routing.Regions["bengaluru"].Source)
	assert.Equal(t, 9*time.Second, cfg.Stations.Timeout)
}

func TestLoadWithEnv_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadWithEnv[Config]("config")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	assert.Equal(t, defaultMaxRequestBodySize, cfg.HTTP.MaxRequestBodySize)
	assert.Equal(t, 4, cfg.Routing.CacheSize)
	assert.Equal(t, 5*time.Minute, cfg.Routing.LoadTimeout)
	assert.Equal(t, 0.5, cfg.Routing.ElevationWeight)
	assert.Equal(t, 2.0, cfg.Routing.IdlePenaltyPerNode)
	assert.Equal(t, UnitModeLiteral, cfg.Routing.UnitMode)
	assert.Equal(t, "literal", cfg.Routing.Heuristic)
	assert.Equal(t, 5000.0, cfg.Routing.SnapWarnDistanceMeters)
	assert.Equal(t, StationProviderOverpass, cfg.Stations.Provider)
	assert.Equal(t, 2500.0, cfg.Stations.RadiusMeters)
	assert.Equal(t, 3, cfg.Stations.SampleStep)
	assert.Equal(t, "poi", cfg.Stations.PMTiles.Layer)
	assert.Equal(t, 20.0, cfg.Alerts.LowFuelPercent)
	assert.Equal(t, 1.5, cfg.Alerts.HeavyTrafficFactor)
}

func TestConfig_ApplyDefaults_ConsistentUnitsUseMetricHeuristic(t *testing.T) {
	cfg := &Config{Routing: &RoutingConfig{UnitMode: UnitModeConsistent}}
	cfg.ApplyDefaults()

	assert.Equal(t, "metric", cfg.Routing.Heuristic)

	cfg = &Config{Routing: &RoutingConfig{UnitMode: UnitModeConsistent, Heuristic: "literal"}}
	cfg.ApplyDefaults()

	assert.Equal(t, "literal", cfg.Routing.Heuristic, "explicit heuristic wins")
}

func TestConfig_ApplyDefaults_SingleRegionBecomesDefault(t *testing.T) {
	cfg := &Config{Routing: &RoutingConfig{
		Regions: map[string]RegionConfig{"mysuru": {Source: "file:///data"}},
	}}
	cfg.ApplyDefaults()

	assert.Equal(t, "mysuru", cfg.Routing.DefaultRegion)
	assert.Equal(t, RegionProviderCSV, cfg.Routing.Regions["mysuru"].Provider)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{
			name:   "valid",
			mutate: func(_ *Config) {},
		},
		{
			name:   "unknown unit mode",
			mutate: func(c *Config) { c.Routing.UnitMode = "imperial" },
			errMsg: "unitMode",
		},
		{
			name:   "default region not configured",
			mutate: func(c *Config) { c.Routing.DefaultRegion = "goa" },
			errMsg: "defaultRegion",
		},
		{
			name: "unknown region provider",
			mutate: func(c *Config) {
				c.Routing.Regions["bengaluru"] = RegionConfig{Provider: "shapefile", Source: "x"}
			},
			errMsg: "provider",
		},
		{
			name: "missing region source",
			mutate: func(c *Config) {
				c.Routing.Regions["bengaluru"] = RegionConfig{Provider: RegionProviderCSV}
			},
			errMsg: "source",
		},
		{
			name:   "pmtiles without source",
			mutate: func(c *Config) { c.Stations.Provider = StationProviderPMTiles },
			errMsg: "pmtiles.source",
		},
		{
			name:   "unknown station provider",
			mutate: func(c *Config) { c.Stations.Provider = "nominatim" },
			errMsg: "stations.provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Routing: &RoutingConfig{
				DefaultRegion: "bengaluru",
				Regions: map[string]RegionConfig{
					"bengaluru": {Provider: RegionProviderCSV, Source: "file:///data"},
				},
			}}
			cfg.ApplyDefaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)

				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
