// Package redshiftsyncer stores rows in an Amazon Redshift cluster. Redshift
// speaks the postgres wire protocol, so the lib/pq driver carries it, but the
// dialect differs: a small parameter budget and no native upsert form, so
// writes fall back to the generic key-classify algorithm.
package redshiftsyncer

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"net"
	"net/url"
	"strconv"

	_ "github.com/lib/pq"

	"github.com/sightglass-data/sgtool/pkg/syncer"
)

//go:embed manifest.yaml
var ManifestYAML []byte

// Summary is the one-line description shown by syncer listings.
const Summary = "Amazon Redshift cluster"

// maxParameters is deliberately small; wide multi-row statements degrade the
// leader node, so batches stay modest.
const maxParameters = 250

// Syncer reads and writes tables of a Redshift schema.
type Syncer struct {
	syncer.Database `mapstructure:",squash"`

	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username" validate:"required"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"database" validate:"required"`
	Schema   string `mapstructure:"schema" validate:"omitempty,tablename"`
}

// New returns an unconfigured redshift syncer.
func New() syncer.Syncer {
	return &Syncer{}
}

var (
	_ syncer.Syncer    = (*Syncer)(nil)
	_ syncer.Finalizer = (*Syncer)(nil)
	_ syncer.Closer    = (*Syncer)(nil)
)

// Finalize opens the connection pool and runs the shared database setup.
func (s *Syncer) Finalize(ctx context.Context) error {
	if s.Engine() != nil {
		return s.Database.Finalize(ctx)
	}

	if s.Port == 0 {
		s.Port = 5439
	}

	db, err := sql.Open("postgres", s.dsn())
	if err != nil {
		return fmt.Errorf("open redshift connection: %w", err)
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
		return "TIMESTAMP"
	case syncer.TypeDate:
		return "DATE"
	default:
		return "VARCHAR(MAX)"
	}
}

// UpsertSQL reports no native form; Redshift's MERGE needs a staging table,
// which the generic algorithm replaces.
func (dialect) UpsertSQL(*syncer.Table, int) (string, bool) {
	return "", false
}

func (dialect) MaxParameters() int { return maxParameters }
