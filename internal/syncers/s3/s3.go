// Package s3syncer stores each directive as a CSV object in an S3 bucket.
// A custom endpoint with path-style addressing supports MinIO and LocalStack.
package s3syncer

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sightglass-data/sgtool/pkg/syncer"
)

//go:embed manifest.yaml
var ManifestYAML []byte

// Summary is the one-line description shown by syncer listings.
const Summary = "CSV objects in an S3 bucket"

// Client is the slice of the S3 API the syncer uses. Tests inject fakes.
type Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Syncer maps directive NAME onto PREFIX/NAME.csv in the configured bucket.
type Syncer struct {
	syncer.Base `mapstructure:",squash"`

	Bucket    string `mapstructure:"bucket" validate:"required"`
	Prefix    string `mapstructure:"prefix"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	PathStyle bool   `mapstructure:"path_style"`

	client Client
}

// New returns an unconfigured s3 syncer.
func New() syncer.Syncer {
	return &Syncer{}
}

var (
	_ syncer.Syncer    = (*Syncer)(nil)
	_ syncer.Finalizer = (*Syncer)(nil)
)

// SetClient injects the S3 client; Finalize keeps an injected client instead
// of building one from the environment.
func (s *Syncer) SetClient(c Client) { s.client = c }

// Finalize builds the S3 client from the default credential chain unless one
// was injected.
func (s *Syncer) Finalize(ctx context.Context) error {
	if s.client != nil {
		return nil
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if s.Region != "" {
		opts = append(opts, awsconfig.WithRegion(s.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	s.client = s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.Endpoint)
		}
		o.UsePathStyle = s.PathStyle
	})
	return nil
}

// Load reads and parses the directive's object.
func (s *Syncer) Load(ctx context.Context, directive string) ([]syncer.Record, error) {
	key := s.key(directive)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.Bucket, key, err)
	}
	defer out.Body.Close()

	return syncer.ReadCSV(out.Body, ',')
}

// Dump replaces the directive's object with the given rows. An empty dump
// logs a warning and leaves any existing object alone.
func (s *Syncer) Dump(ctx context.Context, directive string, rows []syncer.Record) error {
	if len(rows) == 0 {
		s.Log().Warn().Str("key", s.key(directive)).Msg("no rows to dump")
		return nil
	}

	var buf bytes.Buffer
	if err := syncer.WriteCSV(&buf, rows, ','); err != nil {
		return err
	}

	key := s.key(directive)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.Bucket, key, err)
	}
	return nil
}

func (s *Syncer) key(directive string) string {
	if s.Prefix == "" {
		return directive + ".csv"
	}
	return path.Join(s.Prefix, directive+".csv")
}
