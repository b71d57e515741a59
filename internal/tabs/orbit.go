package tabs

import (
	"strconv"

	"github.com/star/neocc/internal/table"
	"github.com/star/neocc/internal/textgrid"
)

// Orbital element bases.
const (
	Keplerian   = "keplerian"
	Equinoctial = "equinoctial"
)

const (
	areaToMass = "Area-to-mass ratio"
	yarkovsky  = "Yarkovsky parameter"
)

var elementColumns = map[string][]table.Column{
	Keplerian: {
		{Name: "a", Kind: table.Float, Unit: "au"},
		{Name: "e", Kind: table.Float},
		{Name: "i", Kind: table.Float, Unit: "deg"},
		{Name: "long. node", Kind: table.Float, Unit: "deg"},
		{Name: "arg. peric.", Kind: table.Float, Unit: "deg"},
		{Name: "mean anomaly", Kind: table.Float, Unit: "deg"},
	},
	Equinoctial: {
		{Name: "a", Kind: table.Float, Unit: "au"},
		{Name: "e*sin(LP)", Kind: table.Float},
		{Name: "e*cos(LP)", Kind: table.Float},
		{Name: "tan(i/2)*sin(LN)", Kind: table.Float},
		{Name: "tan(i/2)*cos(LN)", Kind: table.Float},
		{Name: "mean long.", Kind: table.Float, Unit: "deg"},
	},
}

var matrixLabels = map[string][]string{
	Keplerian:   {"a", "e", "i", "long. node", "arg. peric", "M"},
	Equinoctial: {"a", "e*sin(LP)", "e*cos(LP)", "tan(i/2)*sin(LN)", "tan(i/2)*cos(LN)", "mean long."},
}

var elementMarkers = map[string]string{
	Keplerian:   "KEP",
	Equinoctial: "EQU",
}

// derivedFields are the Keplerian comment rows following PERIHELION, in
// report order.
var derivedFields = []struct {
	label string
	col   table.Column
}{
	{"PERIHELION", table.Column{Name: "perihelion", Kind: table.Float, Unit: "au"}},
	{"APHELION", table.Column{Name: "aphelion", Kind: table.Float, Unit: "au"}},
	{"ANODE", table.Column{Name: "ascending node", Kind: table.Float, Unit: "au"}},
	{"DNODE", table.Column{Name: "descending node", Kind: table.Float, Unit: "au"}},
	{"MOID", table.Column{Name: "MOID", Kind: table.Float, Unit: "au"}},
	{"PERIOD", table.Column{Name: "period", Kind: table.Float, Unit: "d"}},
	{"PHA", table.Column{Name: "PHA", Kind: table.String}},
	{"VINFTY", table.Column{Name: "v-infinity", Kind: table.Float, Unit: "km/s"}},
	{"U_PAR", table.Column{Name: "U parameter", Kind: table.Int}},
	{"ORB_TYPE", table.Column{Name: "orbit type", Kind: table.String}},
}

// orbitShape is detected once from the element and LSP rows. Every later
// row position is derived from it.
type orbitShape struct {
	basis   string
	element int
	hasMAG  bool
	dim     int
	extra   string // active parameter when dim is 7
}

func (s orbitShape) magSkip() int {
	if s.hasMAG {
		return 1
	}
	return 0
}

func (s orbitShape) hasNGR() bool {
	return s.dim > 6
}

func (s orbitShape) ngrSkip() int {
	if s.hasNGR() {
		return 1
	}
	return 0
}

func (s orbitShape) epochRow() int { return s.element + 1 }
func (s orbitShape) magRow() int   { return s.element + 2 }
func (s orbitShape) lspRow() int   { return s.element + 3 + s.magSkip() }

// perihelionRow is only meaningful for Keplerian reports.
func (s orbitShape) perihelionRow() int { return s.lspRow() + 1 }

func (s orbitShape) ngrRow() int {
	if s.basis == Keplerian {
		return s.perihelionRow() + len(derivedFields)
	}
	return s.lspRow() + 1
}

func (s orbitShape) rmsRow() int { return s.ngrRow() + s.ngrSkip() }
func (s orbitShape) eigRow() int { return s.rmsRow() + 1 }
func (s orbitShape) weaRow() int { return s.rmsRow() + 2 }

func (s orbitShape) matrixRow() int {
	if s.basis == Equinoctial {
		return s.weaRow() + 1
	}
	return s.rmsRow() + 1
}

// labels returns the matrix labels for the detected dimension.
func (s orbitShape) labels() []string {
	out := append([]string(nil), matrixLabels[s.basis]...)
	switch s.dim {
	case 7:
		out = append(out, s.extra)
	case 8:
		out = append(out, areaToMass, yarkovsky)
	}
	return out
}

func detectOrbitShape(g *textgrid.Grid, basis string) (orbitShape, error) {
	marker, ok := elementMarkers[basis]
	if !ok {
		return orbitShape{}, &InvalidParameterError{Name: ParamOrbitalElements, Value: basis, Allowed: []string{Keplerian, Equinoctial}}
	}
	elem, ok := g.First(marker)
	if !ok || elem.Col != 0 {
		return orbitShape{}, errMalformed(TabOrbitProperties, "elements", "missing %s row", marker)
	}
	s := orbitShape{basis: basis, element: elem.Row}
	s.hasMAG = g.Cell(s.magRow(), 0) == "MAG"

	if err := expectMarker(g, "LSP", s.lspRow(), 0); err != nil {
		return orbitShape{}, err
	}
	lsp := g.Cells(s.lspRow())
	if len(lsp) < 4 {
		return orbitShape{}, errMalformed(TabOrbitProperties, "LSP", "want model, number and dimension, got %v", lsp[1:])
	}
	dim, err := strconv.Atoi(lsp[3])
	if err != nil || dim < 6 || dim > 8 {
		return orbitShape{}, errMalformed(TabOrbitProperties, "LSP", "dimension %q is not 6, 7 or 8", lsp[3])
	}
	s.dim = dim
	s.extra = yarkovsky
	if dim == 7 && len(lsp) > 4 && lsp[4] == "1" {
		s.extra = areaToMass
	}
	return s, nil
}

// expectMarker checks that marker sits at the row the document shape
// predicts. A marker found elsewhere means the offsets would silently
// shift, so it is reported as malformed.
func expectMarker(g *textgrid.Grid, marker string, row, col int) error {
	pos, ok := g.First(marker)
	if !ok {
		return errMalformed(TabOrbitProperties, marker, "missing %s marker", marker)
	}
	if pos.Row != row || pos.Col != col {
		return errMalformed(TabOrbitProperties, marker, "%s found at row %d, expected row %d", marker, pos.Row, row)
	}
	return nil
}

// vectorRow is a per-element row such as RMS, labelled like the matrices.
type vectorRow struct {
	marker string
	name   string
	title  string
	row    int
}

func decodeOrbit(text, basis string) ([]table.Section, error) {
	g := textgrid.New(text)
	header, end, err := readHeader(g, TabOrbitProperties)
	if err != nil {
		return nil, err
	}
	shape, err := detectOrbitShape(g, basis)
	if err != nil {
		return nil, err
	}

	elements, err := floatRow(g, shape.element, "Orbital elements", "elements", elementColumns[basis])
	if err != nil {
		return nil, err
	}
	for _, k := range []string{"format", "rectype", "refsys"} {
		if v, ok := headerValue(header, k); ok {
			elements.Meta.Set(k, v)
		}
	}
	if obj := g.Cell(end+1, 0); obj != "" && obj != "!" {
		elements.Meta.Set("object", obj)
	}
	if err := orbitEpoch(g, shape, &elements.Meta); err != nil {
		return nil, err
	}
	sections := []table.Section{table.Present("elements", elements)}

	if shape.hasMAG {
		mag, err := floatRow(g, shape.magRow(), "Magnitude", "MAG", []table.Column{
			{Name: "H", Kind: table.Float, Unit: "mag"},
			{Name: "G", Kind: table.Float},
		})
		if err != nil {
			return nil, err
		}
		sections = append(sections, table.Present("magnitude", mag))
	} else {
		sections = append(sections, table.Absent("magnitude", "no magnitude parameters"))
	}

	lsp := table.MustNew("Non-gravitational model",
		table.Column{Name: "model used", Kind: table.Int},
		table.Column{Name: "number of parameters", Kind: table.Int},
		table.Column{Name: "dimension", Kind: table.Int},
	)
	cells := g.Cells(shape.lspRow())
	model, err1 := strconv.Atoi(cells[1])
	count, err2 := strconv.Atoi(cells[2])
	if err1 != nil || err2 != nil {
		return nil, errMalformed(TabOrbitProperties, "LSP", "non-numeric model or parameter count in %v", cells)
	}
	if err := lsp.AddRow(model, count, shape.dim); err != nil {
		return nil, err
	}
	sections = append(sections, table.Present("lsp", lsp))

	if basis == Keplerian {
		derived, err := keplerianDerived(g, shape)
		if err != nil {
			return nil, err
		}
		sections = append(sections, table.Present("derived", derived))
	}

	if shape.hasNGR() {
		if err := expectMarker(g, "NGR", shape.ngrRow(), 0); err != nil {
			return nil, err
		}
		ngr, err := floatRow(g, shape.ngrRow(), "Non-gravitational parameters", "NGR", []table.Column{
			{Name: areaToMass, Kind: table.Float, Unit: "m2/t"},
			{Name: yarkovsky, Kind: table.Float},
		})
		if err != nil {
			return nil, err
		}
		sections = append(sections, table.Present("ngr", ngr))
	} else {
		sections = append(sections, table.Absent("ngr", "no non-gravitational parameters"))
	}

	labelCols := make([]table.Column, 0, shape.dim)
	for _, l := range shape.labels() {
		labelCols = append(labelCols, table.Column{Name: l, Kind: table.Float})
	}
	vectors := []vectorRow{
		{"RMS", "rms", "RMS of orbital elements", shape.rmsRow()},
	}
	if basis == Equinoctial {
		vectors = append(vectors,
			vectorRow{"EIG", "eigenvalues", "Eigenvalues", shape.eigRow()},
			vectorRow{"WEA", "weights", "Weak direction", shape.weaRow()},
		)
	}
	for _, v := range vectors {
		if err := expectMarker(g, v.marker, v.row, 0); err != nil {
			return nil, err
		}
		tb, err := floatRow(g, v.row, v.title, v.marker, labelCols)
		if err != nil {
			return nil, err
		}
		sections = append(sections, table.Present(v.name, tb))
	}

	for _, kind := range []string{"COV", "COR", "NOR"} {
		sec, err := assembleMatrix(g, TabOrbitProperties, kind, shape.labels(), shape.matrixRow())
		if err != nil {
			return nil, err
		}
		sections = append(sections, sec)
	}
	return sections, nil
}

// floatRow reads the numeric cells after the marker in cell 0 of row r
// into a one-row table.
func floatRow(g *textgrid.Grid, r int, title, marker string, cols []table.Column) (*table.Table, error) {
	cells := g.Cells(r)
	if len(cells) != len(cols)+1 {
		return nil, errMalformed(TabOrbitProperties, marker, "row %d has %d values, want %d", r, len(cells)-1, len(cols))
	}
	row := make([]any, len(cols))
	for i := range cols {
		v, err := parseFloat(cells[i+1])
		if err != nil {
			return nil, errMalformed(TabOrbitProperties, marker, "row %d value %q: %v", r, cells[i+1], err)
		}
		row[i] = v
	}
	tb, err := table.New(title, cols...)
	if err != nil {
		return nil, err
	}
	if err := tb.AddRow(row...); err != nil {
		return nil, err
	}
	return tb, nil
}

// orbitEpoch reads "MJD <value> <scale>" below the element row.
func orbitEpoch(g *textgrid.Grid, shape orbitShape, meta *table.Meta) error {
	cells := g.Cells(shape.epochRow())
	if len(cells) < 3 || cells[0] != "MJD" {
		return errMalformed(TabOrbitProperties, "epoch", "row %d: want MJD <value> <scale>", shape.epochRow())
	}
	mjd, err := parseFloat(cells[1])
	if err != nil {
		return errMalformed(TabOrbitProperties, "epoch", "MJD %q: %v", cells[1], err)
	}
	meta.Set("epoch", mjdToTime(mjd))
	meta.Set("epoch_mjd", mjd)
	meta.Set("time_scale", cells[2])
	return nil
}

func keplerianDerived(g *textgrid.Grid, shape orbitShape) (*table.Table, error) {
	if err := expectMarker(g, "PERIHELION", shape.perihelionRow(), 1); err != nil {
		return nil, err
	}
	cols := make([]table.Column, len(derivedFields))
	row := make([]any, len(derivedFields))
	for k, f := range derivedFields {
		r := shape.perihelionRow() + k
		if g.Cell(r, 1) != f.label {
			return nil, errMalformed(TabOrbitProperties, "PERIHELION", "row %d: want %s, got %q", r, f.label, g.Cell(r, 1))
		}
		v, err := convert(f.col.Kind, g.Cell(r, 2))
		if err != nil {
			return nil, errMalformed(TabOrbitProperties, "PERIHELION", "%s %q: %v", f.label, g.Cell(r, 2), err)
		}
		cols[k] = f.col
		row[k] = v
	}
	tb := table.MustNew("Derived orbit parameters", cols...)
	if err := tb.AddRow(row...); err != nil {
		return nil, err
	}
	return tb, nil
}
