// Package mocksyncer is the no-op database syncer: it finalizes without a
// store, logging the DDL it would run, and implements neither load nor dump —
// every capability call reports exactly what a plugin missing that operation
// looks like. Useful for wiring checks and as the smallest database-syncer
// example.
package mocksyncer

import (
	"context"
	_ "embed"

	"github.com/sightglass-data/sgtool/pkg/syncer"
)

//go:embed manifest.yaml
var ManifestYAML []byte

// Summary is the one-line description shown by syncer listings.
const Summary = "no-op database syncer for wiring checks"

// Syncer declares models like any database syncer but never opens a store.
type Syncer struct {
	syncer.Database `mapstructure:",squash"`
}

// New returns an unconfigured mock syncer.
func New() syncer.Syncer {
	return &Syncer{}
}

var (
	_ syncer.Syncer    = (*Syncer)(nil)
	_ syncer.Finalizer = (*Syncer)(nil)
)

// Finalize logs the create-table statements a real database syncer would
// issue for the declared models, then stops: no engine, no session.
func (s *Syncer) Finalize(context.Context) error {
	for _, m := range s.Models {
		table := &syncer.Table{Model: m}
		s.Log().Info().
			Str("table", m.Name).
			Str("ddl", syncer.CreateTableSQL(dialect{}, table)).
			Msg("would create table")
	}
	return nil
}

// dialect renders generic SQL for the logged DDL.
type dialect struct{}

func (dialect) QuoteIdent(name string) string { return `"` + name + `"` }

func (dialect) Placeholder(int) string { return "?" }

func (dialect) TypeDDL(t syncer.ColumnType) string {
	switch t {
	case syncer.TypeInteger:
		return "INTEGER"
	case syncer.TypeFloat:
		return "FLOAT"
	case syncer.TypeBool:
		return "BOOLEAN"
	case syncer.TypeTimestamp:
		return "TIMESTAMP"
	case syncer.TypeDate:
		return "DATE"
	default:
		return "TEXT"
	}
}

func (dialect) UpsertSQL(*syncer.Table, int) (string, bool) { return "", false }

func (dialect) MaxParameters() int { return 999 }
