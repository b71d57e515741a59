package tabs

import (
	"github.com/star/neocc/internal/table"
	"github.com/star/neocc/internal/textgrid"
)

// anchor is the position of one stored matrix value relative to the first
// marker row: line offset and cell index (cell 0 holds the marker).
type anchor struct {
	line int
	cell int
}

// The report stores the upper triangle row by row, three values per
// line. anchorsN[i] lists entries (i, i), (i, i+1), ... (i, N-1).
var anchors6 = [][]anchor{
	{{0, 1}, {0, 2}, {0, 3}, {1, 1}, {1, 2}, {1, 3}},
	{{2, 1}, {2, 2}, {2, 3}, {3, 1}, {3, 2}},
	{{3, 3}, {4, 1}, {4, 2}, {4, 3}},
	{{5, 1}, {5, 2}, {5, 3}},
	{{6, 1}, {6, 2}},
	{{6, 3}},
}

var anchors7 = [][]anchor{
	{{0, 1}, {0, 2}, {0, 3}, {1, 1}, {1, 2}, {1, 3}, {2, 1}},
	{{2, 2}, {2, 3}, {3, 1}, {3, 2}, {3, 3}, {4, 1}},
	{{4, 2}, {4, 3}, {5, 1}, {5, 2}, {5, 3}},
	{{6, 1}, {6, 2}, {6, 3}, {7, 1}},
	{{7, 2}, {7, 3}, {8, 1}},
	{{8, 2}, {8, 3}},
	{{9, 1}},
}

var anchors8 = [][]anchor{
	{{0, 1}, {0, 2}, {0, 3}, {1, 1}, {1, 2}, {1, 3}, {2, 1}, {2, 2}},
	{{2, 3}, {3, 1}, {3, 2}, {3, 3}, {4, 1}, {4, 2}, {4, 3}},
	{{5, 1}, {5, 2}, {5, 3}, {6, 1}, {6, 2}, {6, 3}},
	{{7, 1}, {7, 2}, {7, 3}, {8, 1}, {8, 2}},
	{{8, 3}, {9, 1}, {9, 2}, {9, 3}},
	{{10, 1}, {10, 2}, {10, 3}},
	{{11, 1}, {11, 2}},
	{{11, 3}},
}

func anchorsFor(dim int) [][]anchor {
	switch dim {
	case 6:
		return anchors6
	case 7:
		return anchors7
	case 8:
		return anchors8
	}
	return nil
}

// Matrix kinds by marker.
var matrixNames = map[string]string{
	"COV": "covariance",
	"COR": "correlation",
	"NOR": "normalization",
}

// assembleMatrix reads the kind matrix (COV, COR or NOR) and mirrors the
// stored upper triangle. A missing marker yields an absent section.
func assembleMatrix(g *textgrid.Grid, tab, kind string, labels []string, from int) (table.Section, error) {
	name := matrixNames[kind]
	var pos textgrid.Pos
	found := false
	for _, p := range g.FindFrom(kind, from) {
		// Hits inside comment lines do not start a matrix.
		if p.Col == 0 {
			pos, found = p, true
			break
		}
	}
	if !found {
		return table.Absent(name, kind+" matrix not available"), nil
	}
	rows := anchorsFor(len(labels))
	if rows == nil {
		return table.Section{}, errMalformed(tab, name, "unsupported dimension %d", len(labels))
	}

	m := table.NewMatrix(kind, labels)
	for i, entries := range rows {
		for k, a := range entries {
			j := i + k
			r := pos.Row + a.line
			if g.Cell(r, 0) != kind {
				return table.Section{}, errMalformed(tab, name, "row %d: want %s continuation line for element (%d, %d)", r, kind, i, j)
			}
			raw := g.Cell(r, a.cell)
			v, err := parseFloat(raw)
			if err != nil {
				return table.Section{}, errMalformed(tab, name, "element (%d, %d) %q: %v", i, j, raw, err)
			}
			m.SetSymmetric(i, j, v)
		}
	}

	tb, err := m.Table()
	if err != nil {
		return table.Section{}, err
	}
	tb.Title = name + " matrix"
	return table.Present(name, tb), nil
}
