package tabs

import (
	"github.com/star/neocc/internal/table"
	"github.com/star/neocc/internal/textgrid"
)

var closeApproachColumns = []table.Column{
	{Name: "BODY", Kind: table.String},
	{Name: "CALENDAR-TIME", Kind: table.Time},
	{Name: "MJD-TIME", Kind: table.Float, Unit: "d"},
	{Name: "TIME-UNCERT.", Kind: table.Float, Unit: "d"},
	{Name: "NOM.-DISTANCE", Kind: table.Float, Unit: "au"},
	{Name: "MIN.-POSS.-DIST.", Kind: table.Float, Unit: "au"},
	{Name: "DIST.-UNCERT.", Kind: table.Float, Unit: "au"},
	{Name: "STRETCH", Kind: table.Float, Unit: "au"},
	{Name: "WIDTH", Kind: table.Float, Unit: "au"},
	{Name: "PROBABILITY", Kind: table.Float},
}

func decodeCloseApproaches(text string) ([]table.Section, error) {
	g := textgrid.New(text)
	if g.Len() == 0 {
		return nil, errEmpty(TabCloseApproaches, "no close approaches for this object")
	}

	header := g.Cells(0)
	if len(header) != len(closeApproachColumns) || header[0] != "BODY" {
		return nil, errMalformed(TabCloseApproaches, "header", "want %d columns starting with BODY, got %v",
			len(closeApproachColumns), header)
	}

	tb := table.MustNew("Close approaches", closeApproachColumns...)
	for r := 1; r < g.Len(); r++ {
		cells := g.Cells(r)
		if len(cells) == 0 {
			continue
		}
		if len(cells) != len(closeApproachColumns) {
			return nil, errMalformed(TabCloseApproaches, "data", "row %d has %d cells", r, len(cells))
		}
		row := make([]any, len(cells))
		row[0] = cells[0]
		ts, err := parseSlashDate(cells[1])
		if err != nil {
			return nil, errMalformed(TabCloseApproaches, "data", "row %d: %v", r, err)
		}
		row[1] = ts
		for i := 2; i < len(cells); i++ {
			f, err := parseFloat(cells[i])
			if err != nil {
				return nil, errMalformed(TabCloseApproaches, "data", "row %d column %s: %v", r, closeApproachColumns[i].Name, err)
			}
			row[i] = f
		}
		if err := tb.AddRow(row...); err != nil {
			return nil, err
		}
	}
	if tb.Len() == 0 {
		return nil, errEmpty(TabCloseApproaches, "no close approaches for this object")
	}
	return []table.Section{table.Present("close_approaches", tb)}, nil
}
