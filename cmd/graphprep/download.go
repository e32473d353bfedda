package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"greenroute/internal/errors"
	"greenroute/internal/util"
)

const downloadTimeout = 30 * time.Minute

func runDownload(ctx context.Context, out io.Writer, region, outputDir string) (string, error) {
	extract, ok := lookupExtract(region)
	if !ok {
		return "", errors.Errorf("unsupported extract %q (supported: %s)", region, extractNames())
	}

	fmt.Fprintf(out, "Downloading OSM data for %s\n", extract.Name)
	fmt.Fprintf(out, "Source: %s\n", extract.URL)
	fmt.Fprintf(out, "Output: %s\n", filepath.Join(outputDir, extract.Filename))
	fmt.Fprintf(out, "Description: %s\n\n", extract.Description)

	client := &http.Client{Timeout: downloadTimeout}

	path, err := downloadExtract(ctx, out, client, extract, outputDir)
	if err != nil {
		return "", errors.Wrap(err, "failed to download extract")
	}

	fmt.Fprintln(out, "\nDownload completed successfully!")

	return path, nil
}

// downloadExtract fetches the extract into outputDir, resuming a partial file
// when the server honours range requests.
func downloadExtract(ctx context.Context, out io.Writer, client *http.Client, extract Extract, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create output directory")
	}

	outputPath := filepath.Join(outputDir, extract.Filename)

	var existingSize int64
	if info, err := os.Stat(outputPath); err == nil {
		existingSize = info.Size()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, extract.URL, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}
	if existingSize > 0 {
		fmt.Fprintf(out, "Resuming download from %s\n", util.FormatBytes(existingSize))
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", existingSize))
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusRequestedRangeNotSatisfiable:
		fmt.Fprintln(out, "File is already complete")

		return outputPath, printDigest(out, outputPath)
	case http.StatusOK, http.StatusPartialContent:
	default:
		return "", errors.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if resp.StatusCode == http.StatusPartialContent {
		flags = os.O_APPEND | os.O_WRONLY
	} else {
		existingSize = 0
	}

	file, err := os.OpenFile(outputPath, flags, 0o644)
	if err != nil {
		return "", errors.Wrap(err, "failed to open output file")
	}
	defer file.Close()

	total := int64(-1)
	if resp.ContentLength > 0 {
		total = existingSize + resp.ContentLength
	}

	progress := &downloadProgress{
		out:        out,
		total:      total,
		downloaded: existingSize,
		startedAt:  time.Now(),
	}

	if _, err := io.Copy(io.MultiWriter(file, progress), resp.Body); err != nil {
		return "", errors.Wrap(err, "failed to write extract")
	}
	fmt.Fprintln(out)

	if err := file.Sync(); err != nil {
		return "", errors.WithStack(err)
	}

	return outputPath, printDigest(out, outputPath)
}

func printDigest(out io.Writer, path string) error {
	digest, err := util.DigestFile(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Size:   %s\n", util.FormatBytes(digest.SizeBytes))
	fmt.Fprintf(out, "SHA256: %s\n", digest.SHA256)

	return nil
}

// downloadProgress renders a progress bar as bytes flow through it
type downloadProgress struct {
	out        io.Writer
	total      int64
	downloaded int64
	startedAt  time.Time
	lastDrawn  time.Time
}

func (p *downloadProgress) Write(b []byte) (int, error) {
	p.downloaded += int64(len(b))

	// Redraw at most a few times per second
	if now := time.Now(); now.Sub(p.lastDrawn) >= 200*time.Millisecond || p.downloaded == p.total {
		p.lastDrawn = now
		p.draw()
	}

	return len(b), nil
}

func (p *downloadProgress) draw() {
	if p.total <= 0 {
		fmt.Fprintf(p.out, "\rDownloaded: %s", util.FormatBytes(p.downloaded))

		return
	}

	const width = 50
	ratio := min(float64(p.downloaded)/float64(p.total), 1)
	filled := int(ratio * width)
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", width-filled)

	elapsed := time.Since(p.startedAt).Seconds()
	speed := float64(p.downloaded) / max(elapsed, 0.001)
	eta := time.Duration(float64(p.total-p.downloaded)/max(speed, 1)) * time.Second

	fmt.Fprintf(p.out, "\r[%s] %3d%% | %s/%s | %s/s | ETA: %s",
		bar,
		int(ratio*100),
		util.FormatBytes(p.downloaded),
		util.FormatBytes(p.total),
		util.FormatBytes(int64(speed)),
		util.FormatDuration(eta),
	)
}
