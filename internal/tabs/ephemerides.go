package tabs

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/soniakeys/unit"

	"github.com/star/neocc/internal/table"
	"github.com/star/neocc/internal/textgrid"
)

const ephemerisHeaderLines = 9

// ephemerisMeta maps the leading "Label: value" lines to metadata keys.
var ephemerisMeta = []string{"object", "observatory", "initial_date", "final_date", "time_step"}

var ephemerisLayout = fixedLayout{
	{"Date", 1, 11, table.String, ""},
	{"Hour", 12, 18, table.Float, "h"},
	{"RA h", 19, 21, table.Int, "h"},
	{"RA m", 22, 24, table.Int, "min"},
	{"RA s", 25, 31, table.Float, "s"},
	{"DEC d", 32, 35, table.Float, "deg"},
	{"DEC '", 36, 38, table.Int, "arcmin"},
	{`DEC "`, 39, 44, table.Float, "arcsec"},
	{"Mag", 45, 50, table.Float, "mag"},
	{"Alt", 51, 56, table.Float, "deg"},
	{"Airmass", 57, 63, table.Float, ""},
	{"Sun elev.", 64, 69, table.Float, "deg"},
	{"SolEl", 70, 76, table.Float, "deg"},
	{"LunEl", 77, 83, table.Float, "deg"},
	{"Phase", 84, 90, table.Float, "deg"},
	{"Glat", 91, 97, table.Float, "deg"},
	{"Glon", 98, 104, table.Float, "deg"},
	{"R", 105, 113, table.Float, "au"},
	{"Delta", 114, 122, table.Float, "au"},
	{"Ra*cosDE", 123, 132, table.Float, "arcsec/min"},
	{"DEC", 133, 142, table.Float, "arcsec/min"},
	{"Vel", 143, 151, table.Float, "arcsec/min"},
	{"PA", 152, 158, table.Float, "deg"},
	{"Err1", 159, 167, table.Float, "arcsec"},
	{"Err2", 168, 176, table.Float, "arcsec"},
	{"AngAx", 177, 183, table.Float, "deg"},
	{"Moon illum", 184, 189, table.Float, "%"},
}

func ephemerisColumns() []table.Column {
	cols := []table.Column{{Name: "Date", Kind: table.Time}}
	for _, f := range ephemerisLayout[2:] {
		cols = append(cols, table.Column{Name: f.Name, Kind: f.Kind, Unit: f.Unit})
	}
	return append(cols,
		table.Column{Name: "RA (deg)", Kind: table.Float, Unit: "deg"},
		table.Column{Name: "DEC (deg)", Kind: table.Float, Unit: "deg"},
	)
}

func decodeEphemerides(text string) ([]table.Section, error) {
	g := textgrid.New(text)
	if g.Len() <= ephemerisHeaderLines {
		return nil, errEmpty(TabEphemerides, "no ephemerides in the requested interval")
	}

	tb, err := table.New("Ephemerides", ephemerisColumns()...)
	if err != nil {
		return nil, err
	}
	for i, key := range ephemerisMeta {
		if _, v, ok := strings.Cut(g.Line(i), ":"); ok {
			tb.Meta.Set(key, strings.TrimSpace(v))
		}
	}

	spans := ephemerisLayout.spans()
	for r := ephemerisHeaderLines; r < g.Len(); r++ {
		if strings.TrimSpace(g.Line(r)) == "" {
			continue
		}
		row, err := ephemerisRow(spans.Read(g, r))
		if err != nil {
			return nil, errMalformed(TabEphemerides, "data", "row %d: %v", r, err)
		}
		if err := tb.AddRow(row...); err != nil {
			return nil, err
		}
	}
	if tb.Len() == 0 {
		return nil, errEmpty(TabEphemerides, "no ephemerides in the requested interval")
	}
	return []table.Section{table.Present("ephemerides", tb)}, nil
}

func ephemerisRow(raw []string) ([]any, error) {
	day, err := time.Parse("2006-01-02", raw[0])
	if err != nil {
		return nil, fmt.Errorf("date %q: %w", raw[0], err)
	}
	hour, err := parseFloat(raw[1])
	if err != nil {
		return nil, fmt.Errorf("hour %q: %w", raw[1], err)
	}
	// The sign may be separated from the degrees ("- 5").
	raw[5] = strings.Join(strings.Fields(raw[5]), "")

	row := []any{day.Add(days(hour / 24))}
	for k, f := range ephemerisLayout[2:] {
		v, err := convert(f.Kind, raw[k+2])
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", f.Name, raw[k+2], err)
		}
		row = append(row, v)
	}

	ra, dec, err := ephemerisAngles(raw[2], raw[3], raw[4], raw[5], raw[6], raw[7])
	if err != nil {
		return nil, err
	}
	return append(row, ra, dec), nil
}

// ephemerisAngles converts sexagesimal RA and declination to degrees. The
// declination sign applies to all three parts, including "-0".
func ephemerisAngles(rh, rm, rs, dd, dm, ds string) (float64, float64, error) {
	h, err1 := strconv.Atoi(rh)
	m, err2 := strconv.Atoi(rm)
	s, err3 := parseFloat(rs)
	if err := firstErr(err1, err2, err3); err != nil {
		return 0, 0, fmt.Errorf("right ascension %s %s %s: %w", rh, rm, rs, err)
	}
	d, err1 := parseFloat(dd)
	am, err2 := strconv.Atoi(dm)
	as, err3 := parseFloat(ds)
	if err := firstErr(err1, err2, err3); err != nil {
		return 0, 0, fmt.Errorf("declination %s %s %s: %w", dd, dm, ds, err)
	}
	var neg byte
	if math.Signbit(d) {
		neg = '-'
	}
	ra := unit.NewRA(h, m, s).Deg()
	dec := unit.NewAngle(neg, int(math.Abs(d)), am, as).Deg()
	return ra, dec, nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
