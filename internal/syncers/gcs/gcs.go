// Package gcssyncer stores each directive as a CSV object in a Google Cloud
// Storage bucket.
package gcssyncer

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"

	"github.com/sightglass-data/sgtool/pkg/syncer"
)

//go:embed manifest.yaml
var ManifestYAML []byte

// Summary is the one-line description shown by syncer listings.
const Summary = "CSV objects in a Google Cloud Storage bucket"

// bucketHandle abstracts a GCS bucket handle for testability.
type bucketHandle interface {
	Object(name string) objectHandle
}

// objectHandle abstracts a GCS object handle.
type objectHandle interface {
	NewReader(ctx context.Context) (io.ReadCloser, error)
	NewWriter(ctx context.Context) io.WriteCloser
}

// realBucketHandle wraps *storage.BucketHandle to satisfy bucketHandle.
type realBucketHandle struct{ bh *storage.BucketHandle }

func (r *realBucketHandle) Object(name string) objectHandle {
	return &realObjectHandle{r.bh.Object(name)}
}

// realObjectHandle wraps *storage.ObjectHandle to satisfy objectHandle.
type realObjectHandle struct{ oh *storage.ObjectHandle }

func (r *realObjectHandle) NewReader(ctx context.Context) (io.ReadCloser, error) {
	return r.oh.NewReader(ctx)
}

func (r *realObjectHandle) NewWriter(ctx context.Context) io.WriteCloser {
	return r.oh.NewWriter(ctx)
}

// Syncer maps directive NAME onto PREFIX/NAME.csv in the configured bucket.
type Syncer struct {
	syncer.Base `mapstructure:",squash"`

	Bucket string `mapstructure:"bucket" validate:"required"`
	Prefix string `mapstructure:"prefix"`

	client     *storage.Client
	testBucket bucketHandle
}

// New returns an unconfigured gcs syncer.
func New() syncer.Syncer {
	return &Syncer{}
}

var (
	_ syncer.Syncer    = (*Syncer)(nil)
	_ syncer.Finalizer = (*Syncer)(nil)
	_ syncer.Closer    = (*Syncer)(nil)
)

// setBucketHandle injects a bucketHandle, used in tests to avoid real GCS
// calls.
func (s *Syncer) setBucketHandle(bh bucketHandle) { s.testBucket = bh }

func (s *Syncer) bucket() bucketHandle {
	if s.testBucket != nil {
		return s.testBucket
	}
	return &realBucketHandle{s.client.Bucket(s.Bucket)}
}

// Finalize builds the GCS client from application default credentials unless
// a bucket handle was injected.
func (s *Syncer) Finalize(ctx context.Context) error {
	if s.testBucket != nil || s.client != nil {
		return nil
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("create gcs client: %w", err)
	}
	s.client = client
	return nil
}

// Close releases the GCS client.
func (s *Syncer) Close(context.Context) error {
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

// Load reads and parses the directive's object.
func (s *Syncer) Load(ctx context.Context, directive string) ([]syncer.Record, error) {
	key := s.key(directive)
	r, err := s.bucket().Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("get gs://%s/%s: %w", s.Bucket, key, err)
	}
	defer r.Close()

	return syncer.ReadCSV(r, ',')
}

// Dump replaces the directive's object with the given rows. An empty dump
// logs a warning and leaves any existing object alone.
func (s *Syncer) Dump(ctx context.Context, directive string, rows []syncer.Record) error {
	if len(rows) == 0 {
		s.Log().Warn().Str("key", s.key(directive)).Msg("no rows to dump")
		return nil
	}

	key := s.key(directive)
	w := s.bucket().Object(key).NewWriter(ctx)
	if err := syncer.WriteCSV(w, rows, ','); err != nil {
		_ = w.Close()
		return fmt.Errorf("write gs://%s/%s: %w", s.Bucket, key, err)
	}
	// GCS surfaces upload errors on Close.
	if err := w.Close(); err != nil {
		return fmt.Errorf("put gs://%s/%s: %w", s.Bucket, key, err)
	}
	return nil
}

func (s *Syncer) key(directive string) string {
	if s.Prefix == "" {
		return directive + ".csv"
	}
	return path.Join(s.Prefix, directive+".csv")
}
