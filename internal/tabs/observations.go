package tabs

import (
	"strings"

	"github.com/star/neocc/internal/table"
	"github.com/star/neocc/internal/textgrid"
)

const objectMarker = "! Object"

var opticalLayout = fixedLayout{
	{"Design", 1, 10, table.String, ""},
	{"K", 11, 12, table.String, ""},
	{"T", 13, 14, table.String, ""},
	{"N", 15, 16, table.String, ""},
	{"Year", 17, 21, table.Int, ""},
	{"Month", 22, 24, table.Int, ""},
	{"Day", 25, 37, table.Float, ""},
	{"Date Accuracy", 38, 47, table.Float, "d"},
	{"RA HH", 48, 50, table.Int, "h"},
	{"RA MM", 51, 53, table.Int, "min"},
	{"RA SS", 54, 61, table.Float, "s"},
	{"RA Accuracy", 62, 71, table.Float, "s"},
	{"RA RMS", 72, 80, table.Float, "arcsec"},
	{"RA F", 81, 82, table.String, ""},
	{"RA Bias", 83, 91, table.Float, "arcsec"},
	{"RA Resid", 92, 100, table.Float, "arcsec"},
	{"DEC sDD", 101, 104, table.Float, "deg"},
	{"DEC MM", 105, 107, table.Int, "arcmin"},
	{"DEC SS", 108, 114, table.Float, "arcsec"},
	{"DEC Accuracy", 115, 124, table.Float, "arcsec"},
	{"DEC RMS", 125, 133, table.Float, "arcsec"},
	{"DEC F", 134, 135, table.String, ""},
	{"DEC Bias", 136, 144, table.Float, "arcsec"},
	{"DEC Resid", 145, 153, table.Float, "arcsec"},
	{"MAG Val", 154, 158, table.Float, "mag"},
	{"MAG B", 159, 160, table.String, ""},
	{"MAG RMS", 161, 167, table.Float, "mag"},
	{"MAG Resid", 168, 174, table.Float, "mag"},
	{"Ast Cat", 175, 176, table.String, ""},
	{"Obs Code", 177, 180, table.String, ""},
	{"Chi", 181, 189, table.Float, ""},
	{"A", 190, 191, table.Int, ""},
	{"M", 192, 193, table.Int, ""},
}

var satelliteLayout = fixedLayout{
	{"Design", 1, 10, table.String, ""},
	{"K", 11, 12, table.String, ""},
	{"T", 13, 14, table.String, ""},
	{"N", 15, 16, table.String, ""},
	{"Year", 17, 21, table.Int, ""},
	{"Month", 22, 24, table.Int, ""},
	{"Day", 25, 37, table.Float, ""},
	{"Parallax", 38, 39, table.Int, ""},
	{"X", 40, 53, table.Float, ""},
	{"Y", 54, 67, table.Float, ""},
	{"Z", 68, 81, table.Float, ""},
	{"Obs Code", 82, 85, table.String, ""},
}

var rovingLayout = fixedLayout{
	{"Design", 1, 10, table.String, ""},
	{"K", 11, 12, table.String, ""},
	{"T", 13, 14, table.String, ""},
	{"N", 15, 16, table.String, ""},
	{"Year", 17, 21, table.Int, ""},
	{"Month", 22, 24, table.Int, ""},
	{"Day", 25, 37, table.Float, ""},
	{"Lon", 38, 49, table.Float, "deg"},
	{"Lat", 50, 60, table.Float, "deg"},
	{"Alt", 61, 69, table.Float, "m"},
	{"Obs Code", 70, 73, table.String, ""},
}

var radarLayout = fixedLayout{
	{"Design", 1, 10, table.String, ""},
	{"K", 11, 12, table.String, ""},
	{"T", 13, 14, table.String, ""},
	{"N", 15, 16, table.String, ""},
	{"Year", 17, 21, table.Int, ""},
	{"Month", 22, 24, table.Int, ""},
	{"Day", 25, 27, table.Float, ""},
	{"Time", 28, 36, table.String, ""},
	{"Measure", 37, 53, table.Float, ""},
	{"Accuracy", 54, 64, table.Float, ""},
	{"rms", 65, 75, table.Float, ""},
	{"F", 76, 77, table.String, ""},
	{"Bias", 78, 90, table.Float, ""},
	{"Resid", 91, 101, table.Float, ""},
	{"TRX", 102, 105, table.String, ""},
	{"RCX", 106, 109, table.String, ""},
	{"Chi", 110, 118, table.Float, ""},
	{"S", 119, 120, table.String, ""},
}

var observationMetaColumns = []table.Column{
	{Name: "version", Kind: table.String},
	{Name: "errmod", Kind: table.String},
	{Name: "RMSast", Kind: table.Float, Unit: "arcsec"},
	{Name: "RMSmag", Kind: table.Float, Unit: "mag"},
}

// obsBlocks holds the row ranges of one observation report.
type obsBlocks struct {
	optical []int
	radar   []int
}

func decodeObservations(text string) ([]table.Section, error) {
	g := textgrid.New(text)
	header, end, err := readHeader(g, TabObservations)
	if err != nil {
		return nil, err
	}

	meta, err := observationMetadata(header)
	if err != nil {
		return nil, err
	}

	blocks, err := locateObservationBlocks(g, end)
	if err != nil {
		return nil, err
	}
	if len(blocks.optical) == 0 && len(blocks.radar) == 0 {
		return nil, errEmpty(TabObservations, "no observations for this object")
	}

	sections := []table.Section{table.Present("metadata", meta)}

	tStart, tEnd := opticalLayout.span("T")
	var opticalRows, satelliteRows, rovingRows []int
	first, last := end+1, g.Len()
	if len(blocks.optical) > 0 {
		first, last = blocks.optical[0], blocks.optical[len(blocks.optical)-1]+1
	}
	satellite := g.RowsWithField(tStart, tEnd, "s", first, last)
	roving := g.RowsWithField(tStart, tEnd, "v", first, last)
	skip := make(map[int]bool, len(satellite)+len(roving))
	for _, r := range satellite {
		if g.Field(r-1, tStart, tEnd) != "S" {
			return nil, errMalformed(TabObservations, "satellite", "row %d: position record without its S observation", r)
		}
		skip[r] = true
		satelliteRows = append(satelliteRows, r)
	}
	for _, r := range roving {
		skip[r] = true
		rovingRows = append(rovingRows, r)
	}
	for _, r := range blocks.optical {
		if !skip[r] {
			opticalRows = append(opticalRows, r)
		}
	}

	parts := []struct {
		name, title, absent string
		layout              fixedLayout
		rows                []int
	}{
		{"optical", "Optical observations", "no optical observations", opticalLayout, opticalRows},
		{"satellite", "Satellite observations", "no satellite observations", satelliteLayout, satelliteRows},
		{"roving", "Roving observer observations", "no roving observations", rovingLayout, rovingRows},
		{"radar", "Radar observations", "no relevant radar information", radarLayout, blocks.radar},
	}
	for _, p := range parts {
		if len(p.rows) == 0 {
			sections = append(sections, table.Absent(p.name, p.absent))
			continue
		}
		tb, err := readDatedRows(g, p.title, p.name, p.layout, p.rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, table.Present(p.name, tb))
	}
	return sections, nil
}

func observationMetadata(header []headerField) (*table.Table, error) {
	tb := table.MustNew("Observation metadata", observationMetaColumns...)
	row := make([]any, len(observationMetaColumns))
	for i, c := range observationMetaColumns {
		v, _ := headerValue(header, c.Name)
		cell, err := convert(c.Kind, v)
		if err != nil {
			return nil, errMalformed(TabObservations, "header", "%s %q: %v", c.Name, v, err)
		}
		row[i] = cell
		tb.Meta.Set(c.Name, cell)
	}
	if err := tb.AddRow(row...); err != nil {
		return nil, err
	}
	return tb, nil
}

// locateObservationBlocks splits the data rows after the header. The
// first "! Object" line heads the optical block and a second one heads
// the radar block.
func locateObservationBlocks(g *textgrid.Grid, end int) (obsBlocks, error) {
	var b obsBlocks
	opticalHead, hasOptical := g.FirstLinePrefix(objectMarker, end+1)
	opticalEnd := g.Len()
	if hasOptical {
		if radarHead, ok := g.FirstLinePrefix(objectMarker, opticalHead+1); ok {
			opticalEnd = radarHead
			b.radar = dataRows(g, radarHead+1, g.Len())
		}
	}
	b.optical = dataRows(g, end+1, opticalEnd)
	if len(b.optical) > 0 && (!hasOptical || opticalHead > b.optical[0]) {
		return b, errMalformed(TabObservations, "optical", "data rows without a %q header line", objectMarker)
	}
	return b, nil
}

// dataRows returns the non-blank, non-comment rows in [from, to).
func dataRows(g *textgrid.Grid, from, to int) []int {
	var rows []int
	for r := from; r < to; r++ {
		l := strings.TrimSpace(g.Line(r))
		if l == "" || strings.HasPrefix(l, "!") {
			continue
		}
		rows = append(rows, r)
	}
	return rows
}

func readDatedRows(g *textgrid.Grid, title, section string, l fixedLayout, rows []int) (*table.Table, error) {
	tb, err := table.New(title, l.datedColumns()...)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		row, err := l.datedRow(g, r)
		if err != nil {
			return nil, errMalformed(TabObservations, section, "row %d: %v", r, err)
		}
		if err := tb.AddRow(row...); err != nil {
			return nil, err
		}
	}
	return tb, nil
}
