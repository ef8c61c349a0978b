// Package redissyncer stores each directive as a JSON array under a prefixed
// redis key.
package redissyncer

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sightglass-data/sgtool/pkg/syncer"
)

//go:embed manifest.yaml
var ManifestYAML []byte

// Summary is the one-line description shown by syncer listings.
const Summary = "redis keys holding JSON arrays"

// defaultPrefix namespaces keys when the configuration does not set one.
const defaultPrefix = "sgtool:"

// Syncer maps directive NAME onto the key PREFIX + NAME. Rows are stored as a
// single JSON array value, so numbers load back as float64.
type Syncer struct {
	syncer.Base `mapstructure:",squash"`

	Address  string `mapstructure:"address" validate:"required"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`

	client *redis.Client
}

// New returns an unconfigured redis syncer.
func New() syncer.Syncer {
	return &Syncer{}
}

var (
	_ syncer.Syncer    = (*Syncer)(nil)
	_ syncer.Finalizer = (*Syncer)(nil)
	_ syncer.Closer    = (*Syncer)(nil)
)

// Finalize connects to redis and verifies the connection with PING. A second
// call on a connected instance is a no-op.
func (s *Syncer) Finalize(ctx context.Context) error {
	if s.client != nil {
		return nil
	}

	opts := &redis.Options{
		Addr: s.Address,
		DB:   s.DB,
	}
	if s.Password != "" {
		opts.Password = s.Password
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("ping redis %s: %w", s.Address, err)
	}

	s.client = client
	s.Log().Debug().Str("address", s.Address).Int("db", s.DB).Msg("connected to redis")
	return nil
}

// Load reads and decodes the directive's key. A missing key is an error that
// wraps redis.Nil.
func (s *Syncer) Load(ctx context.Context, directive string) ([]syncer.Record, error) {
	key := s.key(directive)
	payload, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}

	var rows []syncer.Record
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return rows, nil
}

// Dump replaces the directive's key with the given rows. An empty dump logs a
// warning and leaves any existing value alone.
func (s *Syncer) Dump(ctx context.Context, directive string, rows []syncer.Record) error {
	key := s.key(directive)
	if len(rows) == 0 {
		s.Log().Warn().Str("key", key).Msg("no rows to dump")
		return nil
	}

	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Close releases the connection.
func (s *Syncer) Close(context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *Syncer) key(directive string) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	return prefix + directive
}
