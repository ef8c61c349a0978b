// Package postgressyncer stores rows in a PostgreSQL database through the
// pgx driver's database/sql adapter.
package postgressyncer

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/sightglass-data/sgtool/pkg/syncer"
)

//go:embed manifest.yaml
var ManifestYAML []byte

// Summary is the one-line description shown by syncer listings.
const Summary = "PostgreSQL database"

// maxParameters is the wire protocol's bind-parameter limit (16-bit count).
const maxParameters = 65535

// Syncer reads and writes tables of a PostgreSQL schema.
type Syncer struct {
	syncer.Database `mapstructure:",squash"`

	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username" validate:"required"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"database" validate:"required"`
	Schema   string `mapstructure:"schema" validate:"omitempty,tablename"`
}

// New returns an unconfigured postgres syncer.
func New() syncer.Syncer {
	return &Syncer{}
}

var (
	_ syncer.Syncer    = (*Syncer)(nil)
	_ syncer.Finalizer = (*Syncer)(nil)
	_ syncer.Closer    = (*Syncer)(nil)
)

// Finalize opens the connection pool and runs the shared database setup
// against the configured schema.
func (s *Syncer) Finalize(ctx context.Context) error {
	if s.Engine() != nil {
		return s.Database.Finalize(ctx)
	}

	if s.Port == 0 {
		s.Port = 5432
	}
	if s.Schema == "" {
		s.Schema = "public"
	}

	db, err := sql.Open("pgx", s.dsn())
	if err != nil {
		return fmt.Errorf("open postgres connection: %w", err)
	}

	s.BindEngine(db, &dialect{})
	s.SetSchema(s.Schema)
	return s.Database.Finalize(ctx)
}

// Load reads every row of the directive's table.
func (s *Syncer) Load(ctx context.Context, directive string) ([]syncer.Record, error) {
	return s.ReadRows(ctx, directive)
}

// Dump writes rows into the directive's table under the configured load
// strategy. An empty dump logs a warning and leaves the table untouched.
func (s *Syncer) Dump(ctx context.Context, directive string, rows []syncer.Record) error {
	if len(rows) == 0 {
		s.Log().Warn().Str("table", directive).Msg("no rows to dump")
		return nil
	}
	return s.WriteRows(ctx, directive, rows)
}

func (s *Syncer) dsn() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(s.Username, s.Password),
		Host:   net.JoinHostPort(s.Host, strconv.Itoa(s.Port)),
		Path:   "/" + s.DBName,
	}
	return u.String()
}

type dialect struct{}

func (dialect) QuoteIdent(name string) string { return `"` + name + `"` }

func (dialect) Placeholder(n int) string { return syncer.OrdinalPlaceholder(n) }

func (dialect) TypeDDL(t syncer.ColumnType) string {
	switch t {
	case syncer.TypeInteger:
		return "BIGINT"
	case syncer.TypeFloat:
		return "DOUBLE PRECISION"
	case syncer.TypeBool:
		return "BOOLEAN"
	case syncer.TypeTimestamp:
		return "TIMESTAMPTZ"
	case syncer.TypeDate:
		return "DATE"
	default:
		return "TEXT"
	}
}

// UpsertSQL uses INSERT ... ON CONFLICT, updating non-key columns from the
// excluded row. Models whose columns are all keys degrade to DO NOTHING.
func (d dialect) UpsertSQL(t *syncer.Table, nrows int) (string, bool) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(t.QualifiedName(d))
	b.WriteString(" (")
	for i, name := range t.Model.ColumnNames() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.QuoteIdent(name))
	}
	b.WriteString(") VALUES ")
	b.WriteString(syncer.PlaceholderRows(d, len(t.Model.Columns), nrows))

	b.WriteString(" ON CONFLICT (")
	for i, name := range t.Model.KeyColumns() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.QuoteIdent(name))
	}
	b.WriteString(")")

	nonKeys := t.Model.NonKeyColumns()
	if len(nonKeys) == 0 {
		b.WriteString(" DO NOTHING")
		return b.String(), true
	}

	b.WriteString(" DO UPDATE SET ")
	for i, name := range nonKeys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.QuoteIdent(name))
		b.WriteString(" = EXCLUDED.")
		b.WriteString(d.QuoteIdent(name))
	}
	return b.String(), true
}

func (dialect) MaxParameters() int { return maxParameters }
