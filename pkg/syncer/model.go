package syncer

import (
	"fmt"
	"strings"
)

// ColumnType enumerates the portable column types a model may declare.
// Dialects map them onto store-native DDL types.
type ColumnType int

const (
	TypeText ColumnType = iota
	TypeInteger
	TypeFloat
	TypeBool
	TypeTimestamp
	TypeDate
)

var columnTypeNames = map[string]ColumnType{
	"text":      TypeText,
	"integer":   TypeInteger,
	"float":     TypeFloat,
	"bool":      TypeBool,
	"timestamp": TypeTimestamp,
	"date":      TypeDate,
}

// ParseColumnType maps a configuration string onto a ColumnType,
// case-insensitively.
func ParseColumnType(s string) (ColumnType, error) {
	t, ok := columnTypeNames[strings.ToLower(s)]
	if !ok {
		return TypeText, fmt.Errorf("unknown column type %q", s)
	}
	return t, nil
}

// String returns the configuration name of the type.
func (t ColumnType) String() string {
	for name, ct := range columnTypeNames {
		if ct == t {
			return name
		}
	}
	return fmt.Sprintf("ColumnType(%d)", int(t))
}

// Column describes one column of a declared model. Columns marked PrimaryKey
// form the model's key; UPSERT reconciles rows on it.
type Column struct {
	Name       string     `mapstructure:"name"`
	Type       ColumnType `mapstructure:"type"`
	PrimaryKey bool       `mapstructure:"primary_key"`
	Nullable   bool       `mapstructure:"nullable"`
}

// Model declares one table a database syncer persists. Callers pass models in
// under the "models" configuration key; the syncer binds them into its private
// metadata at finalize time.
type Model struct {
	Name    string   `mapstructure:"name" validate:"required,tablename"`
	Columns []Column `mapstructure:"columns"`
}

// ColumnNames returns every column name in declared order.
func (m *Model) ColumnNames() []string {
	names := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		names[i] = c.Name
	}
	return names
}

// KeyColumns returns the primary-key column names in declared order.
func (m *Model) KeyColumns() []string {
	var names []string
	for _, c := range m.Columns {
		if c.PrimaryKey {
			names = append(names, c.Name)
		}
	}
	return names
}

// NonKeyColumns returns the column names outside the primary key in declared
// order.
func (m *Model) NonKeyColumns() []string {
	var names []string
	for _, c := range m.Columns {
		if !c.PrimaryKey {
			names = append(names, c.Name)
		}
	}
	return names
}

// Table is a model bound into one syncer's private metadata, optionally
// retargeted to a schema. Binding never mutates the model, so the same model
// can be declared to several syncers pointed at different schemas.
type Table struct {
	Model  *Model
	Schema string
}

// QualifiedName renders the table reference, schema-qualified when bound to
// one.
func (t *Table) QualifiedName(d Dialect) string {
	if t.Schema != "" {
		return d.QuoteIdent(t.Schema) + "." + d.QuoteIdent(t.Model.Name)
	}
	return d.QuoteIdent(t.Model.Name)
}
