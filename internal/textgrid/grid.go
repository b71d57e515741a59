// Package textgrid views a plain-text report as ordered lines and
// whitespace-separated cells, and locates marker strings inside it.
package textgrid

import (
	"strings"
)

// Pos is the row and cell index of a located marker.
type Pos struct {
	Row int
	Col int
}

// Grid is a decoded report split into lines. It is read-only after New.
type Grid struct {
	lines []string
	cells [][]string
}

// New splits text into lines, strips carriage returns and drops trailing
// blank lines so that offsets counted from the end address content.
func New(text string) *Grid {
	raw := strings.Split(text, "\n")
	for i, l := range raw {
		raw[i] = strings.TrimRight(l, "\r")
	}
	for len(raw) > 0 && strings.TrimSpace(raw[len(raw)-1]) == "" {
		raw = raw[:len(raw)-1]
	}
	cells := make([][]string, len(raw))
	for i, l := range raw {
		cells[i] = strings.Fields(l)
	}
	return &Grid{lines: raw, cells: cells}
}

// Len returns the number of lines.
func (g *Grid) Len() int {
	return len(g.lines)
}

// Line returns line i, or "" when i is out of range.
func (g *Grid) Line(i int) string {
	if i < 0 || i >= len(g.lines) {
		return ""
	}
	return g.lines[i]
}

// Cells returns the whitespace-separated cells of line i.
func (g *Grid) Cells(i int) []string {
	if i < 0 || i >= len(g.cells) {
		return nil
	}
	return g.cells[i]
}

// Cell returns cell j of line i, or "" when absent.
func (g *Grid) Cell(i, j int) string {
	c := g.Cells(i)
	if j < 0 || j >= len(c) {
		return ""
	}
	return c[j]
}

// FromEnd converts a count from the end into a row index: FromEnd(1) is
// the last line.
func (g *Grid) FromEnd(k int) int {
	return len(g.lines) - k
}

// Find returns every position whose cell equals value exactly.
func (g *Grid) Find(value string) []Pos {
	return g.FindFrom(value, 0)
}

// FindFrom is Find restricted to rows >= from.
func (g *Grid) FindFrom(value string, from int) []Pos {
	var out []Pos
	if from < 0 {
		from = 0
	}
	for i := from; i < len(g.cells); i++ {
		for j, c := range g.cells[i] {
			if c == value {
				out = append(out, Pos{Row: i, Col: j})
			}
		}
	}
	return out
}

// First returns the first position of value.
func (g *Grid) First(value string) (Pos, bool) {
	return g.FirstFrom(value, 0)
}

// FirstFrom returns the first position of value at or after row from.
func (g *Grid) FirstFrom(value string, from int) (Pos, bool) {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(g.cells); i++ {
		for j, c := range g.cells[i] {
			if c == value {
				return Pos{Row: i, Col: j}, true
			}
		}
	}
	return Pos{}, false
}

// FirstLinePrefix returns the first row at or after from whose line
// starts with prefix.
func (g *Grid) FirstLinePrefix(prefix string, from int) (int, bool) {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(g.lines); i++ {
		if strings.HasPrefix(g.lines[i], prefix) {
			return i, true
		}
	}
	return 0, false
}

// FindLine returns the first row whose trimmed content equals value.
func (g *Grid) FindLine(value string) (int, bool) {
	for i, l := range g.lines {
		if strings.TrimSpace(l) == value {
			return i, true
		}
	}
	return 0, false
}

// Field returns the trimmed byte window [start, end) of line i. Windows
// past the end of the line are clipped; fully outside yields "".
func (g *Grid) Field(i, start, end int) string {
	l := g.Line(i)
	if start >= len(l) || start < 0 || end <= start {
		return ""
	}
	if end > len(l) {
		end = len(l)
	}
	return strings.TrimSpace(l[start:end])
}

// RowsWithField returns the rows in [from, to) whose byte window
// [start, end) trimmed equals value.
func (g *Grid) RowsWithField(start, end int, value string, from, to int) []int {
	if from < 0 {
		from = 0
	}
	if to > len(g.lines) {
		to = len(g.lines)
	}
	var rows []int
	for i := from; i < to; i++ {
		if g.Field(i, start, end) == value {
			rows = append(rows, i)
		}
	}
	return rows
}
