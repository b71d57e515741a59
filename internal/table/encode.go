package table

import "encoding/json"

type columnView struct {
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind" yaml:"kind"`
	Unit string `json:"unit,omitempty" yaml:"unit,omitempty"`
}

type tableView struct {
	Title   string         `json:"title" yaml:"title"`
	Columns []columnView   `json:"columns" yaml:"columns"`
	Rows    [][]any        `json:"rows" yaml:"rows"`
	Meta    Meta           `json:"meta,omitempty" yaml:"meta,omitempty"`
}

type sectionView struct {
	Name   string     `json:"name" yaml:"name"`
	Table  *tableView `json:"table,omitempty" yaml:"table,omitempty"`
	Absent string     `json:"absent,omitempty" yaml:"absent,omitempty"`
}

func (t *Table) view() *tableView {
	cols := make([]columnView, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = columnView{Name: c.Name, Kind: c.Kind.String(), Unit: c.Unit}
	}
	rows := t.rows
	if rows == nil {
		rows = [][]any{}
	}
	return &tableView{Title: t.Title, Columns: cols, Rows: rows, Meta: t.Meta}
}

// MarshalJSON encodes the table with its columns, rows and metadata.
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.view())
}

// MarshalYAML implements yaml.Marshaler.
func (t *Table) MarshalYAML() (any, error) {
	return t.view(), nil
}

func (s Section) view() sectionView {
	v := sectionView{Name: s.Name, Absent: s.Absent}
	if s.Table != nil {
		v.Table = s.Table.view()
	}
	return v
}

// MarshalJSON encodes a present section with its table and an absent one
// with its reason.
func (s Section) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.view())
}

// MarshalYAML implements yaml.Marshaler.
func (s Section) MarshalYAML() (any, error) {
	return s.view(), nil
}
