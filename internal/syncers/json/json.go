// Package jsonsyncer stores each directive as a JSON array of objects inside
// a local directory.
package jsonsyncer

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sightglass-data/sgtool/pkg/syncer"
)

//go:embed manifest.yaml
var ManifestYAML []byte

// Summary is the one-line description shown by syncer listings.
const Summary = "directory of JSON files"

// Syncer maps directive NAME onto NAME.json under the configured directory.
// Numbers load back as float64, the usual JSON decoding behavior.
type Syncer struct {
	syncer.Base `mapstructure:",squash"`

	Directory string `mapstructure:"directory" validate:"required"`
	Indent    bool   `mapstructure:"indent"`
}

// New returns an unconfigured json syncer.
func New() syncer.Syncer {
	return &Syncer{}
}

var (
	_ syncer.Syncer    = (*Syncer)(nil)
	_ syncer.Finalizer = (*Syncer)(nil)
)

// Finalize creates the directory if it does not exist yet.
func (s *Syncer) Finalize(context.Context) error {
	if err := os.MkdirAll(s.Directory, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", s.Directory, err)
	}
	return nil
}

// Load reads the directive's file.
func (s *Syncer) Load(_ context.Context, directive string) ([]syncer.Record, error) {
	f, err := os.Open(s.path(directive))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path(directive), err)
	}
	defer f.Close()

	var rows []syncer.Record
	if err := json.NewDecoder(f).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path(directive), err)
	}
	return rows, nil
}

// Dump replaces the directive's file with the given rows. An empty dump logs
// a warning and leaves any existing file alone.
func (s *Syncer) Dump(_ context.Context, directive string, rows []syncer.Record) error {
	if len(rows) == 0 {
		s.Log().Warn().Str("file", filepath.Base(s.path(directive))).Msg("no rows to dump")
		return nil
	}

	f, err := os.Create(s.path(directive))
	if err != nil {
		return fmt.Errorf("create %s: %w", s.path(directive), err)
	}

	encoder := json.NewEncoder(f)
	if s.Indent {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", s.path(directive), err)
	}
	return f.Close()
}

func (s *Syncer) path(directive string) string {
	return filepath.Join(s.Directory, directive+".json")
}
