package loader

import (
	"context"
	"io"
	"log/slog"
	"path"
	"time"

	"greenroute/internal/errors"
	"greenroute/internal/infra/routing/graph"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// buckets
	_ "gocloud.dev/blob/gcsblob"  // gs:// buckets
	_ "gocloud.dev/blob/s3blob"   // s3:// buckets
	"gocloud.dev/gcerrors"
)

// BlobSource reads prepared region CSV files from a gocloud.dev bucket
type BlobSource struct {
	bucketURL  string
	prefix     string
	cellSizeKm float64
	logger     *slog.Logger
}

// NewBlobSource creates a source reading <prefix>/nodes.csv and <prefix>/edges.csv
func NewBlobSource(bucketURL, prefix string, cellSizeKm float64, logger *slog.Logger) *BlobSource {
	return &BlobSource{
		bucketURL:  bucketURL,
		prefix:     prefix,
		cellSizeKm: cellSizeKm,
		logger:     logger,
	}
}

// Load reads and builds the region graph
func (s *BlobSource) Load(ctx context.Context, region string) (*graph.Graph, error) {
	bucket, err := blob.OpenBucket(ctx, s.bucketURL)
	if err != nil {
		return nil, errors.Wrapf(ErrGraphLoad, "open bucket %s: %v", s.bucketURL, err)
	}
	defer bucket.Close()

	s.logMetadata(ctx, bucket, region)

	var nodes []graph.Node
	if err := s.read(ctx, bucket, NodesFile, func(r io.Reader) error {
		nodes, err = ReadNodes(r)

		return err
	}); err != nil {
		return nil, err
	}

	var edges []graph.Edge
	if err := s.read(ctx, bucket, EdgesFile, func(r io.Reader) error {
		edges, err = ReadEdges(r)

		return err
	}); err != nil {
		return nil, err
	}

	g, err := graph.New(region, nodes, edges, s.cellSizeKm)
	if err != nil {
		return nil, errors.Wrapf(ErrGraphLoad, "build graph: %v", err)
	}

	return g, nil
}

func (s *BlobSource) key(name string) string {
	if s.prefix == "" {
		return name
	}

	return path.Join(s.prefix, name)
}

func (s *BlobSource) read(ctx context.Context, bucket *blob.Bucket, name string, decode func(io.Reader) error) error {
	key := s.key(name)

	reader, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		return errors.Wrapf(ErrGraphLoad, "open %s: %v", key, err)
	}
	defer reader.Close()

	if err := decode(reader); err != nil {
		return errors.Wrapf(ErrGraphLoad, "decode %s: %v", key, err)
	}

	return nil
}

// logMetadata logs metadata.json when present. It never fails the load.
func (s *BlobSource) logMetadata(ctx context.Context, bucket *blob.Bucket, region string) {
	key := s.key(MetadataFile)

	data, err := bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) != gcerrors.NotFound {
			s.logger.Warn("Failed to read routing metadata", slog.String("key", key), slog.Any("error", err))
		}

		return
	}

	metadata, err := ParseMetadata(data)
	if err != nil {
		s.logger.Warn("Invalid routing metadata", slog.String("key", key), slog.Any("error", err))

		return
	}

	if err := metadata.Validate(); err != nil {
		s.logger.Warn("Incomplete routing metadata", slog.String("key", key), slog.Any("error", err))
	}

	if metadata.Source.Region != "" && metadata.Source.Region != region {
		s.logger.Warn("Routing metadata region mismatch",
			slog.String("region", region),
			slog.String("metadata_region", metadata.Source.Region),
		)
	}

	attrs := append(metadata.Summary(), "age", metadata.GetAge().Round(time.Hour).String())
	s.logger.Info("Routing data metadata", attrs...)
}
