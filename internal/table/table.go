// Package table holds the structured output of report decoders: typed
// tables with metadata, orbit matrices, and optional sections.
package table

import (
	"fmt"
	"time"
)

// Kind is the scalar type of a column.
type Kind int

const (
	Float Kind = iota
	Int
	String
	Time
)

func (k Kind) String() string {
	switch k {
	case Float:
		return "float"
	case Int:
		return "int"
	case String:
		return "string"
	case Time:
		return "timestamp"
	}
	return "unknown"
}

// Column describes one named, typed column.
type Column struct {
	Name string
	Kind Kind
	Unit string
}

// Table is an ordered set of named columns with row-major cells.
// Cells hold float64, int, string, time.Time or nil for a missing value.
type Table struct {
	Title   string
	Columns []Column
	Meta    Meta

	rows  [][]any
	index map[string]int
}

// New builds an empty table. Column names must be unique.
func New(title string, cols ...Column) (*Table, error) {
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		if _, dup := idx[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q in table %q", c.Name, title)
		}
		idx[c.Name] = i
	}
	return &Table{Title: title, Columns: cols, index: idx}, nil
}

// MustNew is New for column sets fixed at compile time.
func MustNew(title string, cols ...Column) *Table {
	t, err := New(title, cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// AddRow appends a row after checking its width and cell types.
func (t *Table) AddRow(values ...any) error {
	if len(values) != len(t.Columns) {
		return fmt.Errorf("table %q: row has %d cells, want %d", t.Title, len(values), len(t.Columns))
	}
	for i, v := range values {
		if v == nil {
			continue
		}
		if !kindMatches(t.Columns[i].Kind, v) {
			return fmt.Errorf("table %q: column %q wants %s, got %T", t.Title, t.Columns[i].Name, t.Columns[i].Kind, v)
		}
	}
	t.rows = append(t.rows, append([]any(nil), values...))
	return nil
}

func kindMatches(k Kind, v any) bool {
	switch v.(type) {
	case float64:
		return k == Float
	case int:
		return k == Int
	case string:
		return k == String
	case time.Time:
		return k == Time
	}
	return false
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// ColumnIndex returns the position of a column, or -1.
func (t *Table) ColumnIndex(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []any {
	return append([]any(nil), t.rows[i]...)
}

// Value returns the cell at row i of the named column.
func (t *Table) Value(i int, name string) (any, bool) {
	c := t.ColumnIndex(name)
	if c < 0 || i < 0 || i >= len(t.rows) {
		return nil, false
	}
	return t.rows[i][c], true
}

// Float returns a float cell; ok is false for a missing or non-float cell.
func (t *Table) Float(i int, name string) (float64, bool) {
	v, _ := t.Value(i, name)
	f, ok := v.(float64)
	return f, ok
}

// Int returns an int cell.
func (t *Table) Int(i int, name string) (int, bool) {
	v, _ := t.Value(i, name)
	n, ok := v.(int)
	return n, ok
}

// String returns a string cell.
func (t *Table) String(i int, name string) (string, bool) {
	v, _ := t.Value(i, name)
	s, ok := v.(string)
	return s, ok
}

// Time returns a timestamp cell.
func (t *Table) Time(i int, name string) (time.Time, bool) {
	v, _ := t.Value(i, name)
	ts, ok := v.(time.Time)
	return ts, ok
}
