package syncer

import (
	"strconv"
	"strings"
)

// Dialect captures the store-specific SQL surface a database syncer needs:
// identifier quoting, parameter placeholders, DDL type mapping, the native
// upsert form when one exists, and the statement parameter budget that drives
// batching.
type Dialect interface {
	// QuoteIdent quotes a bare identifier.
	QuoteIdent(name string) string

	// Placeholder renders the parameter placeholder for 1-based position n.
	Placeholder(n int) string

	// TypeDDL maps a portable column type onto the store's DDL type.
	TypeDDL(t ColumnType) string

	// UpsertSQL returns a complete statement inserting nrows rows of t and
	// replacing the non-key columns of rows whose key already exists. ok is
	// false when the store has no native form and the generic key-classify
	// algorithm must run instead.
	UpsertSQL(t *Table, nrows int) (sql string, ok bool)

	// MaxParameters is the per-statement bind-parameter budget.
	MaxParameters() int
}

// CreateTableSQL builds the idempotent DDL for a bound table: every declared
// column with its dialect type and nullability, plus a PRIMARY KEY constraint
// when the model declares key columns.
func CreateTableSQL(d Dialect, t *Table) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(t.QualifiedName(d))
	b.WriteString(" (")

	for i, c := range t.Model.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.QuoteIdent(c.Name))
		b.WriteString(" ")
		b.WriteString(d.TypeDDL(c.Type))
		if !c.Nullable {
			b.WriteString(" NOT NULL")
		}
	}

	if keys := t.Model.KeyColumns(); len(keys) > 0 {
		b.WriteString(", PRIMARY KEY (")
		b.WriteString(quotedList(d, keys))
		b.WriteString(")")
	}

	b.WriteString(")")
	return b.String()
}

// InsertSQL builds a multi-row INSERT for nrows rows of t.
func InsertSQL(d Dialect, t *Table, nrows int) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(t.QualifiedName(d))
	b.WriteString(" (")
	b.WriteString(quotedList(d, t.Model.ColumnNames()))
	b.WriteString(") VALUES ")
	b.WriteString(PlaceholderRows(d, len(t.Model.Columns), nrows))
	return b.String()
}

// DeleteAllSQL builds the statement removing every row of t.
func DeleteAllSQL(d Dialect, t *Table) string {
	return "DELETE FROM " + t.QualifiedName(d)
}

// SelectAllSQL builds the statement reading every row of t in declared column
// order.
func SelectAllSQL(d Dialect, t *Table) string {
	return "SELECT " + quotedList(d, t.Model.ColumnNames()) + " FROM " + t.QualifiedName(d)
}

// PlaceholderRows renders nrows parenthesized placeholder tuples of the given
// width, numbering placeholders sequentially across the whole statement.
func PlaceholderRows(d Dialect, width, nrows int) string {
	var b strings.Builder
	n := 1
	for r := 0; r < nrows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for c := 0; c < width; c++ {
			if c > 0 {
				b.WriteString(", ")
			}
			b.WriteString(d.Placeholder(n))
			n++
		}
		b.WriteString(")")
	}
	return b.String()
}

func quotedList(d Dialect, names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = d.QuoteIdent(name)
	}
	return strings.Join(quoted, ", ")
}

// OrdinalPlaceholder renders "$n" style placeholders; dialects for stores in
// the postgres family delegate to it.
func OrdinalPlaceholder(n int) string {
	return "$" + strconv.Itoa(n)
}
