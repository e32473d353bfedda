package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"greenroute/internal/errors"
	"greenroute/internal/infra/routing/loader"
	"greenroute/internal/util"
)

func runPrepare(ctx context.Context, out io.Writer, extractName, region, cacheDir, output string) error {
	if region == "" {
		region = extractName
	}

	fmt.Fprintf(out, "Preparing region %s from extract %s\n", region, extractName)
	fmt.Fprintf(out, "Output directory: %s\n\n", output)

	startedAt := time.Now()

	fmt.Fprintln(out, "=== Step 1: Downloading OSM data ===")
	inputFile, err := runDownload(ctx, out, extractName, cacheDir)
	if err != nil {
		return errors.Wrap(err, "download failed")
	}

	if ok, reason := canSkipConversion(inputFile, output); ok {
		fmt.Fprintf(out, "\nCache hit: %s\n", reason)
		fmt.Fprintf(out, "\n✅ Preparation completed in %s\n", util.FormatDuration(time.Since(startedAt)))

		return nil
	}

	fmt.Fprintln(out, "\n=== Step 2: Extracting the drive network ===")
	if err := runConvert(ctx, out, inputFile, output, region); err != nil {
		return errors.Wrap(err, "conversion failed")
	}

	fmt.Fprintln(out, "\n=== Step 3: Validating results ===")
	if err := validateRegionDir(out, output); err != nil {
		return errors.Wrap(err, "validation failed")
	}

	fmt.Fprintf(out, "\n✅ Preparation completed in %s\n", util.FormatDuration(time.Since(startedAt)))
	fmt.Fprintf(out, "Metadata: %s\n", filepath.Join(output, loader.MetadataFile))

	return nil
}

// canSkipConversion reports whether the outputs in outputDir were already
// produced from the same source file and are still intact.
func canSkipConversion(inputFile, outputDir string) (bool, string) {
	metadata, err := loadMetadata(filepath.Join(outputDir, loader.MetadataFile))
	if err != nil {
		return false, fmt.Sprintf("metadata not usable (%v)", err)
	}

	if metadata.Source.SHA256 == "" {
		return false, "metadata missing source checksum"
	}

	source, err := util.DigestFile(inputFile)
	if err != nil {
		return false, fmt.Sprintf("failed to checksum source: %v", err)
	}

	if source.SHA256 != metadata.Source.SHA256 {
		return false, "source checksum differs from metadata"
	}

	if err := validateFilesAgainstMetadata(outputDir, metadata); err != nil {
		return false, fmt.Sprintf("output files failed validation: %v", err)
	}

	return true, "source and outputs already match metadata"
}
