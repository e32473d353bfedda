package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"greenroute/internal/errors"
	"greenroute/internal/infra/routing/graph"
	"greenroute/internal/infra/routing/loader"
	"greenroute/internal/util"
)

func runConvert(ctx context.Context, out io.Writer, input, output, region string) error {
	if region == "" {
		region = regionFromPath(output)
	}

	fmt.Fprintf(out, "Converting OSM data from %s to %s\n", input, output)
	fmt.Fprintf(out, "Region: %s\n\n", region)

	file, err := os.Open(input)
	if err != nil {
		return errors.Wrap(err, "failed to open input file")
	}
	defer file.Close()

	startedAt := time.Now()

	network, err := loader.ExtractDriveNetwork(ctx, file)
	if err != nil {
		return errors.Wrap(err, "failed to extract drive network")
	}

	fmt.Fprintf(out, "Extracted %d nodes and %d edges from %d ways in %s\n",
		len(network.Nodes), len(network.Edges), network.WaysUsed, util.FormatDuration(time.Since(startedAt)))
	if network.MissingNodes > 0 {
		fmt.Fprintf(out, "Warning: %d way nodes are missing from the extract\n", network.MissingNodes)
	}

	if err := writeRegion(out, input, output, region, network); err != nil {
		return err
	}

	fmt.Fprintln(out, "Conversion completed successfully!")

	return nil
}

// writeRegion writes nodes.csv, edges.csv and metadata.json for a network.
// The network is built into a graph first so that unusable output is never written.
func writeRegion(out io.Writer, input, output, region string, network *loader.Network) error {
	if len(network.Nodes) == 0 {
		return errors.New("extract contains no drivable roads")
	}
	if _, err := graph.New(region, network.Nodes, network.Edges, 0); err != nil {
		return errors.Wrap(err, "extracted network is inconsistent")
	}

	if err := os.MkdirAll(output, 0o755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}

	if err := writeFile(filepath.Join(output, loader.NodesFile), func(w io.Writer) error {
		return loader.WriteNodes(w, network.Nodes)
	}); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(output, loader.EdgesFile), func(w io.Writer) error {
		return loader.WriteEdges(w, network.Edges)
	}); err != nil {
		return err
	}

	metadata, err := buildMetadata(input, output, region, network)
	if err != nil {
		return errors.Wrap(err, "failed to generate metadata")
	}

	metadataPath := filepath.Join(output, loader.MetadataFile)
	if err := writeMetadata(metadata, metadataPath); err != nil {
		return err
	}

	fmt.Fprintf(out, "Metadata written to: %s\n", metadataPath)

	return nil
}

func writeFile(path string, encode func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}

	if err := encode(file); err != nil {
		_ = file.Close()

		return errors.Wrapf(err, "failed to write %s", path)
	}

	return errors.WithStack(file.Close())
}

func regionFromPath(output string) string {
	name := filepath.Base(filepath.Clean(output))
	if name == "." || name == string(filepath.Separator) {
		return "unknown"
	}

	return strings.ToLower(name)
}
