package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"greenroute/internal/errors"
	"greenroute/internal/infra/routing/loader"
	"greenroute/internal/util"
)

const (
	metadataVersion = "1.0"
	cliVersion      = "graphprep/1.0"
	driveProfile    = "drive"
)

// buildMetadata describes a converted region: the source extract, the run
// that produced it and checksums of every output file.
func buildMetadata(inputFile, outputDir, region string, network *loader.Network) (*loader.RoutingMetadata, error) {
	source, err := util.DigestFile(inputFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to checksum source")
	}

	info, err := os.Stat(inputFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat source")
	}

	var url string
	if extract, ok := extractForFile(inputFile); ok {
		url = extract.URL
	}

	metadata := &loader.RoutingMetadata{
		Version: metadataVersion,
		Source: loader.SourceInfo{
			Region:       region,
			URL:          url,
			Filename:     filepath.Base(inputFile),
			SizeBytes:    source.SizeBytes,
			SHA256:       source.SHA256,
			OSMTimestamp: info.ModTime().UTC(),
		},
		Processing: loader.ProcessingInfo{
			GeneratedAt:    time.Now().UTC(),
			CLIVersion:     cliVersion,
			Profile:        driveProfile,
			HighwayClasses: network.HighwayClasses,
		},
		Output: loader.OutputInfo{
			NodesCount:         int64(len(network.Nodes)),
			EdgesCount:         int64(len(network.Edges)),
			NodesWithElevation: network.NodesWithElevation(),
			Files:              make(map[string]*loader.FileInfo),
		},
	}

	for _, name := range []string{loader.NodesFile, loader.EdgesFile} {
		digest, err := util.DigestFile(filepath.Join(outputDir, name))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to checksum %s", name)
		}
		metadata.Output.Files[name] = &loader.FileInfo{
			SizeBytes: digest.SizeBytes,
			SHA256:    digest.SHA256,
		}
	}

	return metadata, nil
}

func extractForFile(path string) (Extract, bool) {
	name := filepath.Base(path)
	for _, extract := range supportedExtracts {
		if extract.Filename == name {
			return extract, true
		}
	}

	return Extract{}, false
}

func writeMetadata(metadata *loader.RoutingMetadata, path string) error {
	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode metadata")
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.Wrap(err, "failed to write metadata file")
	}

	return nil
}

func loadMetadata(path string) (*loader.RoutingMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read metadata file")
	}

	return loader.ParseMetadata(data)
}
