package table

import "fmt"

// Matrix is a square matrix with named rows and columns, used for orbit
// covariance, correlation and normalization matrices.
type Matrix struct {
	Kind   string
	Labels []string
	Values [][]float64
}

// NewMatrix allocates a zeroed n×n matrix for the given labels.
func NewMatrix(kind string, labels []string) *Matrix {
	v := make([][]float64, len(labels))
	for i := range v {
		v[i] = make([]float64, len(labels))
	}
	return &Matrix{Kind: kind, Labels: append([]string(nil), labels...), Values: v}
}

// Size returns the side length.
func (m *Matrix) Size() int {
	return len(m.Labels)
}

// At returns element (i, j).
func (m *Matrix) At(i, j int) float64 {
	return m.Values[i][j]
}

// SetSymmetric stores v at (i, j) and (j, i).
func (m *Matrix) SetSymmetric(i, j int, v float64) {
	m.Values[i][j] = v
	m.Values[j][i] = v
}

// Get returns the element addressed by row and column labels.
func (m *Matrix) Get(row, col string) (float64, error) {
	i, j := m.label(row), m.label(col)
	if i < 0 || j < 0 {
		return 0, fmt.Errorf("%s matrix has no element (%q, %q)", m.Kind, row, col)
	}
	return m.Values[i][j], nil
}

func (m *Matrix) label(name string) int {
	for i, l := range m.Labels {
		if l == name {
			return i
		}
	}
	return -1
}

// Table renders the matrix as a table whose first column holds the row
// label.
func (m *Matrix) Table() (*Table, error) {
	cols := make([]Column, 0, len(m.Labels)+1)
	cols = append(cols, Column{Name: "Element", Kind: String})
	for _, l := range m.Labels {
		cols = append(cols, Column{Name: l, Kind: Float})
	}
	t, err := New(m.Kind+" matrix", cols...)
	if err != nil {
		return nil, err
	}
	for i, l := range m.Labels {
		row := make([]any, 0, len(cols))
		row = append(row, l)
		for _, v := range m.Values[i] {
			row = append(row, v)
		}
		if err := t.AddRow(row...); err != nil {
			return nil, err
		}
	}
	t.Meta.Set("dimension", len(m.Labels))
	return t, nil
}
