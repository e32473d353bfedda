package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"greenroute/internal/errors"
	"greenroute/internal/infra/routing/graph"
	"greenroute/internal/infra/routing/loader"
	"greenroute/internal/util"
)

func runValidate(out io.Writer, dir string) error {
	fmt.Fprintf(out, "Validating region data in directory: %s\n", dir)

	if err := validateRegionDir(out, dir); err != nil {
		fmt.Fprintf(out, "❌ Validation failed: %v\n", err)

		return err
	}

	fmt.Fprintln(out, "✅ Validation passed!")

	return nil
}

func validateRegionDir(out io.Writer, dir string) error {
	if _, err := os.Stat(dir); err != nil {
		return errors.Wrapf(err, "directory not usable: %s", dir)
	}

	fmt.Fprintln(out, "Checking required files...")
	for _, name := range []string{loader.MetadataFile, loader.NodesFile, loader.EdgesFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return errors.Errorf("required file missing: %s", name)
		}
		fmt.Fprintf(out, "  ✅ %s\n", name)
	}

	fmt.Fprintln(out, "\nValidating metadata...")
	metadata, err := loadMetadata(filepath.Join(dir, loader.MetadataFile))
	if err != nil {
		return err
	}
	if err := metadata.Validate(); err != nil {
		return errors.Wrap(err, "invalid metadata")
	}
	if metadata.Version != metadataVersion {
		return errors.Errorf("unsupported metadata version: %s", metadata.Version)
	}

	fmt.Fprintf(out, "  ✅ Version: %s\n", metadata.Version)
	fmt.Fprintf(out, "  ✅ Source: %s (%s)\n", metadata.Source.Filename, util.FormatBytes(metadata.Source.SizeBytes))
	fmt.Fprintf(out, "  ✅ Generated: %s\n", metadata.Processing.GeneratedAt.Format("2006-01-02 15:04:05"))

	fmt.Fprintln(out, "\nValidating output files...")
	if err := validateFilesAgainstMetadata(dir, metadata); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nBuilding graph...")
	g, err := buildGraph(dir, metadata.Source.Region)
	if err != nil {
		return err
	}

	if int64(g.NodeCount()) != metadata.Output.NodesCount {
		return errors.Errorf("nodes count mismatch: metadata %d, file %d", metadata.Output.NodesCount, g.NodeCount())
	}
	if int64(g.EdgeCount()) != metadata.Output.EdgesCount {
		return errors.Errorf("edges count mismatch: metadata %d, file %d", metadata.Output.EdgesCount, g.EdgeCount())
	}

	fmt.Fprintf(out, "  ✅ Nodes: %d (%d with elevation)\n", g.NodeCount(), metadata.Output.NodesWithElevation)
	fmt.Fprintf(out, "  ✅ Edges: %d\n", g.EdgeCount())

	return nil
}

// validateFilesAgainstMetadata checks every output file recorded in the
// metadata for size and checksum.
func validateFilesAgainstMetadata(dir string, metadata *loader.RoutingMetadata) error {
	for name, expected := range metadata.Output.Files {
		digest, err := util.DigestFile(filepath.Join(dir, name))
		if err != nil {
			return errors.Wrapf(err, "output file not readable: %s", name)
		}

		if digest.SizeBytes != expected.SizeBytes {
			return errors.Errorf("file size mismatch for %s: expected %d, got %d", name, expected.SizeBytes, digest.SizeBytes)
		}
		if expected.SHA256 != "" && digest.SHA256 != expected.SHA256 {
			return errors.Errorf("checksum mismatch for %s", name)
		}
	}

	return nil
}

func buildGraph(dir, region string) (*graph.Graph, error) {
	var nodes []graph.Node
	if err := readFile(filepath.Join(dir, loader.NodesFile), func(r io.Reader) (err error) {
		nodes, err = loader.ReadNodes(r)

		return err
	}); err != nil {
		return nil, err
	}

	var edges []graph.Edge
	if err := readFile(filepath.Join(dir, loader.EdgesFile), func(r io.Reader) (err error) {
		edges, err = loader.ReadEdges(r)

		return err
	}); err != nil {
		return nil, err
	}

	g, err := graph.New(region, nodes, edges, 0)
	if err != nil {
		return nil, errors.Wrap(err, "region files do not form a graph")
	}

	return g, nil
}

func readFile(path string, decode func(io.Reader) error) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", path)
	}
	defer file.Close()

	if err := decode(file); err != nil {
		return errors.Wrapf(err, "failed to parse %s", filepath.Base(path))
	}

	return nil
}
