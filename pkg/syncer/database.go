package syncer

import (
	"context"
	"database/sql"
	"fmt"

	sgerrors "github.com/sightglass-data/sgtool/pkg/errors"
)

// LoadStrategy selects how a database syncer reconciles dumped rows with rows
// already in the target table. Configuration input is case-insensitive; the
// decoder normalizes to uppercase before validation.
type LoadStrategy string

const (
	// StrategyAppend inserts every row unconditionally; colliding keys are
	// the caller's responsibility.
	StrategyAppend LoadStrategy = "APPEND"
	// StrategyTruncate removes all existing rows first, so the table equals
	// the dumped set afterwards.
	StrategyTruncate LoadStrategy = "TRUNCATE"
	// StrategyUpsert inserts new keys and replaces the non-key columns of
	// existing ones.
	StrategyUpsert LoadStrategy = "UPSERT"
)

// Database is the embeddable specialization for syncers backed by a SQL
// store. A concrete syncer embeds it, opens its connection inside its own
// Finalize, hands it over with BindEngine, and then delegates to
// Database.Finalize, which binds the declared models, issues idempotent
// create-table DDL for exactly those tables, and opens the one session the
// instance keeps for its lifetime.
type Database struct {
	Base     `mapstructure:",squash"`
	Models   []*Model     `mapstructure:"models" validate:"omitempty,dive"`
	Strategy LoadStrategy `mapstructure:"load_strategy" validate:"omitempty,oneof=APPEND TRUNCATE UPSERT"`

	engine  *sql.DB
	dialect Dialect
	schema  string
	tables  map[string]*Table
	session *Session
}

// BindEngine hands the open connection pool and its dialect to the base. The
// concrete syncer must call it before delegating to Finalize; the base takes
// ownership and closes the pool on Close.
func (d *Database) BindEngine(db *sql.DB, dialect Dialect) {
	d.engine = db
	d.dialect = dialect
}

// SetSchema retargets the bound tables to the named schema. Empty keeps the
// store's default.
func (d *Database) SetSchema(schema string) { d.schema = schema }

// Engine returns the bound connection pool, nil before BindEngine.
func (d *Database) Engine() *sql.DB { return d.engine }

// Dialect returns the bound dialect, nil before BindEngine.
func (d *Database) Dialect() Dialect { return d.dialect }

// Session returns the open session, nil before Finalize.
func (d *Database) Session() *Session { return d.session }

// Table resolves a directive against the bound tables.
func (d *Database) Table(name string) (*Table, error) {
	t, ok := d.tables[name]
	if !ok {
		return nil, fmt.Errorf("syncer '%s' has no model declared for table %q", d.Name(), name)
	}
	return t, nil
}

// Finalize performs the database-syncer setup sequence. It requires an engine
// (a syncer that never bound one is mis-authored), binds every declared model
// into the instance's private table map with the schema retarget applied,
// creates exactly those tables if absent, and opens the session. Binding and
// table creation are idempotent, so running it again with unchanged models is
// a no-op apart from reusing the existing session.
func (d *Database) Finalize(ctx context.Context) error {
	if d.engine == nil {
		return sgerrors.NewDefinitionError(d.Name(), "no engine bound; the syncer must open its connection before base setup runs")
	}
	if d.Strategy == "" {
		d.Strategy = StrategyAppend
	}

	if d.tables == nil {
		d.tables = make(map[string]*Table, len(d.Models))
	}
	for _, m := range d.Models {
		d.tables[m.Name] = &Table{Model: m, Schema: d.schema}
	}

	// Rebinding is idempotent; DDL and the session happen on first setup
	// only, so a pool capped at one connection cannot deadlock against the
	// open session.
	if d.session != nil {
		return nil
	}

	for _, m := range d.Models {
		ddl := CreateTableSQL(d.dialect, d.tables[m.Name])
		d.Log().Debug().Str("table", m.Name).Msg("ensuring table exists")
		if _, err := d.engine.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create table %s: %w", m.Name, err)
		}
	}

	session, err := newSession(ctx, d.engine)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	d.session = session
	return nil
}

// Commit ends the session's current transaction and begins a fresh one.
func (d *Database) Commit(ctx context.Context) error {
	if d.session == nil {
		return sgerrors.NewDefinitionError(d.Name(), "commit before finalize")
	}
	return d.session.Commit(ctx)
}

// Rollback discards the session's current transaction and begins a fresh one.
func (d *Database) Rollback(ctx context.Context) error {
	if d.session == nil {
		return sgerrors.NewDefinitionError(d.Name(), "rollback before finalize")
	}
	return d.session.Rollback(ctx)
}

// Close rolls back uncommitted work and releases the session and engine.
func (d *Database) Close(ctx context.Context) error {
	var firstErr error
	if d.session != nil {
		firstErr = d.session.Close()
		d.session = nil
	}
	if d.engine != nil {
		if err := d.engine.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		d.engine = nil
	}
	return firstErr
}

var (
	_ Finalizer  = (*Database)(nil)
	_ Transactor = (*Database)(nil)
	_ Closer     = (*Database)(nil)
)

// Session is the single dedicated connection and open transaction a database
// syncer holds for its lifetime. Commit and Rollback end the current
// transaction and immediately begin a fresh one, so the syncer stays usable;
// the caller decides when either happens.
type Session struct {
	conn *sql.Conn
	tx   *sql.Tx
}

func newSession(ctx context.Context, db *sql.DB) (*Session, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Session{conn: conn, tx: tx}, nil
}

// Tx exposes the open transaction.
func (s *Session) Tx() *sql.Tx { return s.tx }

// Commit commits the open transaction and begins the next one.
func (s *Session) Commit(ctx context.Context) error {
	if err := s.tx.Commit(); err != nil {
		return err
	}
	return s.begin(ctx)
}

// Rollback discards the open transaction and begins the next one.
func (s *Session) Rollback(ctx context.Context) error {
	if err := s.tx.Rollback(); err != nil {
		return err
	}
	return s.begin(ctx)
}

func (s *Session) begin(ctx context.Context) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	s.tx = tx
	return nil
}

// Close rolls back any uncommitted work and releases the connection.
func (s *Session) Close() error {
	if s.tx != nil {
		_ = s.tx.Rollback()
		s.tx = nil
	}
	return s.conn.Close()
}
