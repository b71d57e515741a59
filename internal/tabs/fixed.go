package tabs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/star/neocc/internal/table"
	"github.com/star/neocc/internal/textgrid"
)

// fixedField is a typed byte window of a fixed-width record.
type fixedField struct {
	Name  string
	Start int
	End   int
	Kind  table.Kind
	Unit  string
}

// fixedLayout is one fixed-width record format. Fields named Year, Month,
// Day and Time are folded into a single Date column by datedColumns and
// datedRow.
type fixedLayout []fixedField

func (l fixedLayout) spans() textgrid.Layout {
	out := make(textgrid.Layout, len(l))
	for i, f := range l {
		out[i] = textgrid.Span{Name: f.Name, Start: f.Start, End: f.End}
	}
	return out
}

func (l fixedLayout) span(name string) (start, end int) {
	s, ok := l.spans().Span(name)
	if !ok {
		panic(fmt.Sprintf("layout has no field %q", name))
	}
	return s.Start, s.End
}

func isDatePart(name string) bool {
	switch name {
	case "Year", "Month", "Day", "Time":
		return true
	}
	return false
}

// datedColumns returns the output columns of l with the date parts
// replaced by one Date column at the position of Year.
func (l fixedLayout) datedColumns() []table.Column {
	var cols []table.Column
	for _, f := range l {
		if f.Name == "Year" {
			cols = append(cols, table.Column{Name: "Date", Kind: table.Time})
		}
		if isDatePart(f.Name) {
			continue
		}
		cols = append(cols, table.Column{Name: f.Name, Kind: f.Kind, Unit: f.Unit})
	}
	return cols
}

// datedRow reads row i of g with l and converts it to typed cells in the
// order of datedColumns. Blank windows become nil.
func (l fixedLayout) datedRow(g *textgrid.Grid, i int) ([]any, error) {
	raw := l.spans().Read(g, i)

	var year, month int
	var day float64
	var clock string
	for k, f := range l {
		var err error
		switch f.Name {
		case "Year":
			year, err = strconv.Atoi(raw[k])
		case "Month":
			month, err = strconv.Atoi(raw[k])
		case "Day":
			day, err = parseFloat(raw[k])
		case "Time":
			clock = raw[k]
		}
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", f.Name, raw[k], err)
		}
	}
	if clock != "" {
		frac, err := clockFraction(clock)
		if err != nil {
			return nil, err
		}
		day += frac
	}
	date, err := monthDay(year, month, day)
	if err != nil {
		return nil, err
	}

	var row []any
	for k, f := range l {
		if f.Name == "Year" {
			row = append(row, date)
		}
		if isDatePart(f.Name) {
			continue
		}
		v, err := convert(f.Kind, raw[k])
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", f.Name, raw[k], err)
		}
		row = append(row, v)
	}
	return row, nil
}

func convert(k table.Kind, s string) (any, error) {
	switch k {
	case table.Float:
		return optFloat(s)
	case table.Int:
		return optInt(s)
	default:
		return optString(s), nil
	}
}

// clockFraction converts hh:mm:ss[.sss] to a fraction of a day.
func clockFraction(s string) (float64, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid time %q: want hh:mm:ss", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", s, err)
	}
	sec, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid second in %q: %w", s, err)
	}
	return (float64(h)*3600 + float64(m)*60 + sec) / 86400, nil
}
