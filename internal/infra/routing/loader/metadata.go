package loader

import (
	"encoding/json"
	"time"

	"greenroute/internal/errors"
)

// RoutingMetadata represents the metadata for a prepared region
// This tracks the provenance and version of the OSM extract the CSV files were built from
type RoutingMetadata struct {
	Version    string         `json:"version"`
	Source     SourceInfo     `json:"source"`
	Processing ProcessingInfo `json:"processing"`
	Output     OutputInfo     `json:"output"`
}

// SourceInfo contains information about the source OSM data
type SourceInfo struct {
	Region       string    `json:"region"`
	URL          string    `json:"url,omitempty"`
	Filename     string    `json:"filename"`
	SizeBytes    int64     `json:"size_bytes"`
	SHA256       string    `json:"sha256,omitempty"`
	OSMTimestamp time.Time `json:"osm_timestamp,omitzero"`
}

// ProcessingInfo contains information about the preprocessing run
type ProcessingInfo struct {
	GeneratedAt    time.Time `json:"generated_at"`
	CLIVersion     string    `json:"cli_version"`
	Profile        string    `json:"profile"`
	HighwayClasses []string  `json:"highway_classes,omitempty"`
}

// OutputInfo contains information about the generated output files
type OutputInfo struct {
	NodesCount         int64                `json:"nodes_count"`
	EdgesCount         int64                `json:"edges_count"`
	NodesWithElevation int64                `json:"nodes_with_elevation"`
	Files              map[string]*FileInfo `json:"files,omitempty"`
}

// FileInfo contains checksum information for a single output file
type FileInfo struct {
	SizeBytes int64  `json:"size_bytes"`
	SHA256    string `json:"sha256,omitempty"`
}

// ParseMetadata decodes a metadata.json document
func ParseMetadata(data []byte) (*RoutingMetadata, error) {
	var metadata RoutingMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, errors.Wrap(err, "failed to parse metadata.json")
	}

	return &metadata, nil
}

// Validate checks if the metadata is valid and complete
func (m *RoutingMetadata) Validate() error {
	if m.Version == "" {
		return errors.New("metadata version is required")
	}

	if m.Source.Region == "" {
		return errors.New("source region is required")
	}

	if m.Processing.GeneratedAt.IsZero() {
		return errors.New("processing generated_at timestamp is required")
	}

	if m.Output.NodesCount <= 0 {
		return errors.New("output nodes_count must be positive")
	}

	if m.Output.EdgesCount <= 0 {
		return errors.New("output edges_count must be positive")
	}

	if m.Output.NodesWithElevation > m.Output.NodesCount {
		return errors.New("output nodes_with_elevation exceeds nodes_count")
	}

	return nil
}

// GetAge returns the age of the routing data since generation
func (m *RoutingMetadata) GetAge() time.Duration {
	return time.Since(m.Processing.GeneratedAt)
}

// Summary returns a brief summary of the metadata for logging
func (m *RoutingMetadata) Summary() []any {
	return []any{
		"region", m.Source.Region,
		"osm_timestamp", m.Source.OSMTimestamp,
		"generated_at", m.Processing.GeneratedAt,
		"profile", m.Processing.Profile,
		"nodes_count", m.Output.NodesCount,
		"edges_count", m.Output.EdgesCount,
		"nodes_with_elevation", m.Output.NodesWithElevation,
	}
}
