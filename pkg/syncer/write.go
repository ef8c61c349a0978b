package syncer

import (
	"context"
	"fmt"
	"strings"

	sgerrors "github.com/sightglass-data/sgtool/pkg/errors"
)

// maxBatchRows caps rows per statement regardless of how generous the
// parameter budget is.
const maxBatchRows = 5000

// BatchSize returns how many rows fit in one statement given the dialect's
// parameter budget and the row width, capped at maxBatchRows with a floor of
// one row.
func BatchSize(maxParams, width int) int {
	if width <= 0 {
		return maxBatchRows
	}
	size := maxParams / width
	if size > maxBatchRows {
		size = maxBatchRows
	}
	if size < 1 {
		size = 1
	}
	return size
}

// WriteRows applies the instance's load strategy for the named table inside
// the open session. Store errors propagate untouched apart from statement
// context.
func (d *Database) WriteRows(ctx context.Context, table string, rows []Record) error {
	t, err := d.Table(table)
	if err != nil {
		return err
	}

	switch d.Strategy {
	case StrategyTruncate:
		if err := d.deleteAll(ctx, t); err != nil {
			return err
		}
		return d.insertRows(ctx, t, rows)
	case StrategyUpsert:
		return d.upsertRows(ctx, t, rows)
	default:
		return d.insertRows(ctx, t, rows)
	}
}

// ReadRows selects every row of the named table in declared column order.
func (d *Database) ReadRows(ctx context.Context, table string) ([]Record, error) {
	t, err := d.Table(table)
	if err != nil {
		return nil, err
	}

	result, err := d.session.Tx().QueryContext(ctx, SelectAllSQL(d.dialect, t))
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", table, err)
	}
	defer result.Close()

	names := t.Model.ColumnNames()
	var rows []Record
	for result.Next() {
		values := make([]any, len(names))
		pointers := make([]any, len(names))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := result.Scan(pointers...); err != nil {
			return nil, err
		}
		row := make(Record, len(names))
		for i, name := range names {
			if raw, ok := values[i].([]byte); ok {
				row[name] = string(raw)
				continue
			}
			row[name] = values[i]
		}
		rows = append(rows, row)
	}
	return rows, result.Err()
}

func (d *Database) insertRows(ctx context.Context, t *Table, rows []Record) error {
	columns := t.Model.ColumnNames()
	size := BatchSize(d.dialect.MaxParameters(), len(columns))

	for start := 0; start < len(rows); start += size {
		chunk := rows[start:min(start+size, len(rows))]
		statement := InsertSQL(d.dialect, t, len(chunk))
		if _, err := d.session.Tx().ExecContext(ctx, statement, flattenRows(chunk, columns)...); err != nil {
			return fmt.Errorf("insert into %s: %w", t.Model.Name, err)
		}
	}
	return nil
}

func (d *Database) deleteAll(ctx context.Context, t *Table) error {
	if _, err := d.session.Tx().ExecContext(ctx, DeleteAllSQL(d.dialect, t)); err != nil {
		return fmt.Errorf("truncate %s: %w", t.Model.Name, err)
	}
	return nil
}

func (d *Database) upsertRows(ctx context.Context, t *Table, rows []Record) error {
	keys := t.Model.KeyColumns()
	if len(keys) == 0 {
		return sgerrors.NewDefinitionError(d.Name(), fmt.Sprintf("model '%s' declares no key columns; UPSERT needs a primary key", t.Model.Name))
	}

	if _, ok := d.dialect.UpsertSQL(t, 1); ok {
		columns := t.Model.ColumnNames()
		size := BatchSize(d.dialect.MaxParameters(), len(columns))
		for start := 0; start < len(rows); start += size {
			chunk := rows[start:min(start+size, len(rows))]
			statement, _ := d.dialect.UpsertSQL(t, len(chunk))
			if _, err := d.session.Tx().ExecContext(ctx, statement, flattenRows(chunk, columns)...); err != nil {
				return fmt.Errorf("upsert into %s: %w", t.Model.Name, err)
			}
		}
		return nil
	}
	return d.genericUpsert(ctx, t, rows)
}

// genericUpsert is the fallback for stores without a native upsert form: read
// the existing key set, insert rows whose key is absent, and update the
// non-key columns of the rest one row at a time through a prepared statement.
func (d *Database) genericUpsert(ctx context.Context, t *Table, rows []Record) error {
	keys := t.Model.KeyColumns()

	existing, err := d.existingKeys(ctx, t, keys)
	if err != nil {
		return err
	}

	var inserts, updates []Record
	for _, row := range rows {
		if existing[compositeKey(row, keys)] {
			updates = append(updates, row)
			continue
		}
		inserts = append(inserts, row)
	}

	if err := d.insertRows(ctx, t, inserts); err != nil {
		return err
	}

	nonKeys := t.Model.NonKeyColumns()
	if len(updates) == 0 || len(nonKeys) == 0 {
		// Nothing to replace when every column is part of the key.
		return nil
	}

	stmt, err := d.session.Tx().PrepareContext(ctx, updateSQL(d.dialect, t, nonKeys, keys))
	if err != nil {
		return fmt.Errorf("prepare update for %s: %w", t.Model.Name, err)
	}
	defer stmt.Close()

	for _, row := range updates {
		args := make([]any, 0, len(nonKeys)+len(keys))
		for _, name := range nonKeys {
			args = append(args, row[name])
		}
		for _, name := range keys {
			args = append(args, row[name])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("update %s: %w", t.Model.Name, err)
		}
	}
	return nil
}

func (d *Database) existingKeys(ctx context.Context, t *Table, keys []string) (map[string]bool, error) {
	statement := "SELECT " + quotedList(d.dialect, keys) + " FROM " + t.QualifiedName(d.dialect)
	result, err := d.session.Tx().QueryContext(ctx, statement)
	if err != nil {
		return nil, fmt.Errorf("read existing keys of %s: %w", t.Model.Name, err)
	}
	defer result.Close()

	existing := make(map[string]bool)
	for result.Next() {
		values := make([]any, len(keys))
		pointers := make([]any, len(keys))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := result.Scan(pointers...); err != nil {
			return nil, err
		}
		row := make(Record, len(keys))
		for i, name := range keys {
			if raw, ok := values[i].([]byte); ok {
				row[name] = string(raw)
				continue
			}
			row[name] = values[i]
		}
		existing[compositeKey(row, keys)] = true
	}
	return existing, result.Err()
}

func updateSQL(d Dialect, t *Table, nonKeys, keys []string) string {
	var b strings.Builder
	b.WriteString("UPDATE ")
	b.WriteString(t.QualifiedName(d))
	b.WriteString(" SET ")
	n := 1
	for i, name := range nonKeys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.QuoteIdent(name))
		b.WriteString(" = ")
		b.WriteString(d.Placeholder(n))
		n++
	}
	b.WriteString(" WHERE ")
	for i, name := range keys {
		if i > 0 {
			b.WriteString(" AND ")
		}
		b.WriteString(d.QuoteIdent(name))
		b.WriteString(" = ")
		b.WriteString(d.Placeholder(n))
		n++
	}
	return b.String()
}

// compositeKey folds a row's key values into one comparable string. Values
// are rendered with %v so int64(1) read back from a store matches int(1)
// supplied by the caller.
func compositeKey(row Record, keys []string) string {
	parts := make([]string, len(keys))
	for i, name := range keys {
		parts[i] = fmt.Sprintf("%v", row[name])
	}
	return strings.Join(parts, "\x1f")
}

func flattenRows(rows []Record, columns []string) []any {
	args := make([]any, 0, len(rows)*len(columns))
	for _, row := range rows {
		for _, name := range columns {
			args = append(args, row[name])
		}
	}
	return args
}
