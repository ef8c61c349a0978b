// Package csvsyncer stores each directive as a CSV file inside a local
// directory.
package csvsyncer

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sightglass-data/sgtool/pkg/syncer"
)

//go:embed manifest.yaml
var ManifestYAML []byte

// Summary is the one-line description shown by syncer listings.
const Summary = "directory of CSV files"

// Syncer maps directive NAME onto NAME.csv under the configured directory.
// Headers are the sorted union of row columns, so output is deterministic
// regardless of map order.
type Syncer struct {
	syncer.Base `mapstructure:",squash"`

	Directory string `mapstructure:"directory" validate:"required"`
	Delimiter string `mapstructure:"delimiter" validate:"omitempty,len=1"`
}

// New returns an unconfigured csv syncer.
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

// Load reads the directive's file. Cell values come back as strings.
func (s *Syncer) Load(_ context.Context, directive string) ([]syncer.Record, error) {
	f, err := os.Open(s.path(directive))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path(directive), err)
	}
	defer f.Close()

	return syncer.ReadCSV(f, s.delimiter())
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
	if err := syncer.WriteCSV(f, rows, s.delimiter()); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", s.path(directive), err)
	}
	return f.Close()
}

func (s *Syncer) path(directive string) string {
	return filepath.Join(s.Directory, directive+".csv")
}

func (s *Syncer) delimiter() rune {
	if s.Delimiter == "" {
		return ','
	}
	return []rune(s.Delimiter)[0]
}
