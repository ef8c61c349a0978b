// Package sqlitesyncer stores rows in a local SQLite database file using the
// pure-Go driver, so it works without a system sqlite installation.
package sqlitesyncer

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/sightglass-data/sgtool/pkg/syncer"
)

//go:embed manifest.yaml
var ManifestYAML []byte

// Summary is the one-line description shown by syncer listings.
const Summary = "local SQLite database file"

// defaultMaxParameters is SQLITE_MAX_VARIABLE_NUMBER for builds that do not
// surface the option in PRAGMA compile_options.
const defaultMaxParameters = 999

// Syncer reads and writes tables of a SQLite database file.
type Syncer struct {
	syncer.Database `mapstructure:",squash"`

	Filepath string `mapstructure:"filepath" validate:"required,endswith=.db"`
}

// New returns an unconfigured sqlite syncer.
func New() syncer.Syncer {
	return &Syncer{}
}

var (
	_ syncer.Syncer    = (*Syncer)(nil)
	_ syncer.Finalizer = (*Syncer)(nil)
	_ syncer.Closer    = (*Syncer)(nil)
)

// Finalize opens the database file, probes the parameter budget the library
// was compiled with, and runs the shared database setup.
func (s *Syncer) Finalize(ctx context.Context) error {
	if s.Engine() != nil {
		return s.Database.Finalize(ctx)
	}

	db, err := sql.Open("sqlite", dsn(s.Filepath))
	if err != nil {
		return fmt.Errorf("open sqlite database %s: %w", s.Filepath, err)
	}
	// One writer connection avoids SQLITE_BUSY between the session and DDL.
	db.SetMaxOpenConns(1)

	d := &dialect{maxParams: defaultMaxParameters}
	if limit, err := compiledParameterLimit(ctx, db); err == nil && limit > 0 {
		d.maxParams = limit
	}

	s.BindEngine(db, d)
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

// dsn appends the pragmas every pooled connection should carry.
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

// compiledParameterLimit reads MAX_VARIABLE_NUMBER from the library's compile
// options. Zero means the option is not surfaced.
func compiledParameterLimit(ctx context.Context, db *sql.DB) (int, error) {
	rows, err := db.QueryContext(ctx, "PRAGMA compile_options")
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	for rows.Next() {
		var option string
		if err := rows.Scan(&option); err != nil {
			return 0, err
		}
		if value, ok := strings.CutPrefix(option, "MAX_VARIABLE_NUMBER="); ok {
			return strconv.Atoi(value)
		}
	}
	return 0, rows.Err()
}

type dialect struct {
	maxParams int
}

func (d *dialect) QuoteIdent(name string) string { return `"` + name + `"` }

func (d *dialect) Placeholder(int) string { return "?" }

func (d *dialect) TypeDDL(t syncer.ColumnType) string {
	switch t {
	case syncer.TypeInteger, syncer.TypeBool:
		return "INTEGER"
	case syncer.TypeFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

// UpsertSQL uses INSERT OR REPLACE, sqlite's native whole-row upsert.
func (d *dialect) UpsertSQL(t *syncer.Table, nrows int) (string, bool) {
	var b strings.Builder
	b.WriteString("INSERT OR REPLACE INTO ")
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
	return b.String(), true
}

func (d *dialect) MaxParameters() int { return d.maxParams }
