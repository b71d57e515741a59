package tabs

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/star/neocc/internal/table"
	"github.com/star/neocc/internal/textgrid"
)

const (
	noteMarker        = "<p> </p>"
	defaultNote       = "No additional note."
	impactHeaderRow   = 1
	impactFirstRow    = 5
	impactFooterLines = 12
	impactNoteLines   = 9
)

// impactRename maps raw header tokens to output names. The report header
// splits "exp. en." over two tokens, which shifts every later label by
// one position; the rename undoes that shift.
var impactRename = map[string]string{
	"exp.": "Exp. Energy in MT",
	"en.":  "PS",
	"PS":   "TS",
}

// impactDrop lists raw header tokens whose positional values are dropped.
var impactDrop = map[string]bool{
	"+/-": true,
	"TS":  true,
}

var impactColumns = []table.Column{
	{Name: "date", Kind: table.Time},
	{Name: "MJD", Kind: table.Float, Unit: "d"},
	{Name: "sigma", Kind: table.Float},
	{Name: "sigimp", Kind: table.Float},
	{Name: "dist", Kind: table.Float, Unit: "R_earth"},
	{Name: "width", Kind: table.Float, Unit: "R_earth"},
	{Name: "stretch", Kind: table.Float, Unit: "R_earth"},
	{Name: "p_RE", Kind: table.Float},
	{Name: "Exp. Energy in MT", Kind: table.Float, Unit: "Mt"},
	{Name: "PS", Kind: table.Float},
	{Name: "TS", Kind: table.Float},
}

// impactShape is detected once per report. A trailing additional note
// lengthens the footer and moves every footer field up by noteSkip rows.
type impactShape struct {
	hasNote bool
	noteRow int
}

func detectImpactShape(g *textgrid.Grid) impactShape {
	row, ok := g.FindLine(noteMarker)
	return impactShape{hasNote: ok, noteRow: row}
}

func (s impactShape) noteSkip() int {
	if s.hasNote {
		return impactNoteLines
	}
	return 0
}

func (s impactShape) footerLen() int {
	return impactFooterLines + s.noteSkip()
}

// footerRow returns the row of footer line k (0-based) of the fixed
// 12-line footer.
func (s impactShape) footerRow(g *textgrid.Grid, k int) int {
	return g.FromEnd(s.footerLen()) + k
}

func decodeImpacts(text string) ([]table.Section, error) {
	g := textgrid.New(text)
	shape := detectImpactShape(g)

	last := g.FromEnd(shape.footerLen())
	if last <= impactFirstRow {
		return nil, errEmpty(TabImpacts, "no risk data for this object")
	}

	header := g.Cells(impactHeaderRow)
	if len(header) == 0 || header[0] != "date" {
		return nil, errMalformed(TabImpacts, "header", "row %d does not start with date", impactHeaderRow)
	}
	names := renameImpactHeader(header)

	tb := table.MustNew("Impacts", impactColumns...)
	for r := impactFirstRow; r < last; r++ {
		cells := g.Cells(r)
		if len(cells) == 0 {
			continue
		}
		rec := make(map[string]string, len(names))
		for i, n := range names {
			if n == "" || i >= len(cells) {
				continue
			}
			rec[n] = cells[i]
		}
		row, err := impactRow(rec)
		if err != nil {
			return nil, errMalformed(TabImpacts, "data", "row %d: %v", r, err)
		}
		if err := tb.AddRow(row...); err != nil {
			return nil, err
		}
	}
	if tb.Len() == 0 {
		return nil, errEmpty(TabImpacts, "no risk data for this object")
	}

	if err := impactFooter(g, shape, &tb.Meta); err != nil {
		return nil, err
	}
	return []table.Section{table.Present("impacts", tb)}, nil
}

// renameImpactHeader applies impactRename to every token at once and
// blanks dropped tokens.
func renameImpactHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		switch {
		case impactRename[h] != "":
			out[i] = impactRename[h]
		case impactDrop[h]:
			out[i] = ""
		default:
			out[i] = h
		}
	}
	return out
}

func impactRow(rec map[string]string) ([]any, error) {
	row := make([]any, len(impactColumns))
	for i, c := range impactColumns {
		v, ok := rec[c.Name]
		if !ok {
			row[i] = nil
			continue
		}
		if c.Kind == table.Time {
			ts, err := parseSlashDate(v)
			if err != nil {
				return nil, err
			}
			row[i] = ts
			continue
		}
		f, err := parseFloat(v)
		if err != nil {
			return nil, err
		}
		row[i] = f
	}
	return row, nil
}

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// impactFooter reads the footer fields, all placed relative to the end
// of the report and shifted by the note block when present.
func impactFooter(g *textgrid.Grid, shape impactShape, meta *table.Meta) error {
	value := func(k int) string {
		_, v, _ := strings.Cut(g.Line(shape.footerRow(g, k)), ":")
		return strings.TrimSpace(v)
	}

	start, err := parseSlashDate(value(2))
	if err != nil {
		return errMalformed(TabImpacts, "footer", "arc start: %v", err)
	}
	end, err := parseSlashDate(value(3))
	if err != nil {
		return errMalformed(TabImpacts, "footer", "arc end: %v", err)
	}
	accepted, err := strconv.Atoi(value(4))
	if err != nil {
		return errMalformed(TabImpacts, "footer", "accepted observations: %v", err)
	}
	rejected, err := strconv.Atoi(value(5))
	if err != nil {
		return errMalformed(TabImpacts, "footer", "rejected observations: %v", err)
	}

	info := strings.Join([]string{
		strings.TrimSpace(g.Line(shape.footerRow(g, 10))),
		strings.TrimSpace(g.Line(shape.footerRow(g, 11))),
	}, " ")

	note := defaultNote
	if shape.hasNote {
		var parts []string
		for r := shape.noteRow + 1; r < g.Len(); r++ {
			if l := strings.TrimSpace(htmlTag.ReplaceAllString(g.Line(r), "")); l != "" {
				parts = append(parts, l)
			}
		}
		if len(parts) > 0 {
			note = strings.Join(parts, " ")
		}
	}

	meta.Set("arc_start", start)
	meta.Set("arc_end", end)
	meta.Set("observations_accepted", accepted)
	meta.Set("observations_rejected", rejected)
	meta.Set("computation", value(7))
	meta.Set("info", strings.TrimSpace(info))
	meta.Set("additional_note", note)
	return nil
}
