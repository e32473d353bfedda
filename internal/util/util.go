// Package util holds small helpers shared by the command line tools.
package util

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"greenroute/internal/errors"
)

// FileDigest is the size and SHA256 checksum of a file
type FileDigest struct {
	SizeBytes int64
	SHA256    string
}

// DigestFile reads a file once and returns its size and SHA256 checksum
func DigestFile(filePath string) (FileDigest, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return FileDigest{}, errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	hash := sha256.New()
	size, err := io.Copy(hash, file)
	if err != nil {
		return FileDigest{}, errors.Wrapf(err, "failed to checksum %s", filePath)
	}

	return FileDigest{
		SizeBytes: size,
		SHA256:    hex.EncodeToString(hash.Sum(nil)),
	}, nil
}

// FormatBytes formats bytes into human readable format.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	const units = "KMGTPEZY"
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit && exp < len(units)-1; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), units[exp])
}

// FormatDuration formats a duration as "1h30m", "5m10s" or "45s".
func FormatDuration(duration time.Duration) string {
	duration = duration.Round(time.Second)

	switch {
	case duration < time.Minute:
		return fmt.Sprintf("%ds", int(duration.Seconds()))
	case duration < time.Hour:
		return fmt.Sprintf("%dm%ds", int(duration.Minutes()), int(duration.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(duration.Hours()), int(duration.Minutes())%60)
	}
}
