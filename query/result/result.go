// Package result holds the tabular results returned by drivers.
package result

import (
	"fmt"
	"slices"
	"strings"
)

// Table is a column-named, row-major result set
type Table struct {
	Columns []string
	Rows    [][]any
}

// Row is one row of a Table with access by column name
type Row struct {
	Columns []string
	Values  []any
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of column name, or -1. An exact match wins;
// otherwise the first case-insensitive match is used, since some engines
// fold unquoted names to upper case.
func (t *Table) Index(name string) int {
	return index(t.Columns, name)
}

// Row returns row i
func (t *Table) Row(i int) Row {
	return Row{Columns: t.Columns, Values: t.Rows[i]}
}

// Column returns every value of column name in row order
func (t *Table) Column(name string) ([]any, error) {
	idx := t.Index(name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoColumn, name)
	}
	out := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[idx]
	}
	return out, nil
}

// Value returns the value at row i of column name
func (t *Table) Value(i int, name string) (any, error) {
	return t.Row(i).Get(name)
}

// Get returns the value of column name
func (r Row) Get(name string) (any, error) {
	idx := index(r.Columns, name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoColumn, name)
	}
	return r.Values[idx], nil
}

// Map returns the row as a column name to value map
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.Columns))
	for i, c := range r.Columns {
		m[c] = r.Values[i]
	}
	return m
}

func index(columns []string, name string) int {
	if i := slices.Index(columns, name); i >= 0 {
		return i
	}
	return slices.IndexFunc(columns, func(c string) bool { return strings.EqualFold(c, name) })
}
