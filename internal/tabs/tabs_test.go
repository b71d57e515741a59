package tabs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/star/neocc/internal/table"
)

func fixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func section(t *testing.T, sections []table.Section, name string) table.Section {
	t.Helper()
	s, ok := table.Find(sections, name)
	require.True(t, ok, "section %q not found", name)
	return s
}

func present(t *testing.T, sections []table.Section, name string) *table.Table {
	t.Helper()
	s := section(t, sections, name)
	require.True(t, s.IsPresent(), "section %q absent: %s", name, s.Absent)
	return s.Table
}

func meta(t *testing.T, tb *table.Table, key string) any {
	t.Helper()
	v, ok := tb.Meta.Get(key)
	require.True(t, ok, "meta %q missing", key)
	return v
}

func utc(year int, month time.Month, day, hour, min, sec, nsec int) time.Time {
	return time.Date(year, month, day, hour, min, sec, nsec, time.UTC)
}

func TestMonthDay(t *testing.T) {
	got, err := monthDay(2004, 3, 15.104)
	require.NoError(t, err)
	assert.Equal(t, utc(2004, time.March, 15, 2, 29, 45, 600_000_000), got)

	_, err = monthDay(2004, 13, 1)
	assert.Error(t, err)
	_, err = monthDay(2004, 1, 0.5)
	assert.Error(t, err)
}

func TestParseSlashDate(t *testing.T) {
	got, err := parseSlashDate("2029/04/13.907")
	require.NoError(t, err)
	assert.Equal(t, utc(2029, time.April, 13, 21, 46, 4, 800_000_000), got)

	for _, bad := range []string{"2029-04-13", "2029/xx/13.5", "2029/04"} {
		_, err := parseSlashDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseFloatFortranExponent(t *testing.T) {
	v, err := parseFloat("1.5D-03")
	require.NoError(t, err)
	assert.InDelta(t, 1.5e-3, v, 1e-15)
}

func TestClockFraction(t *testing.T) {
	f, err := clockFraction("12:00:00")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, f, 1e-12)

	_, err = clockFraction("12:00")
	assert.Error(t, err)
}

func TestDecodeCloseApproaches(t *testing.T) {
	sections, err := decodeCloseApproaches(fixture(t, "close_approaches.clolin"))
	require.NoError(t, err)
	require.Len(t, sections, 1)

	tb := present(t, sections, "close_approaches")
	assert.Equal(t, 3, tb.Len())
	body, _ := tb.String(1, "BODY")
	assert.Equal(t, "MOON", body)
	ts, _ := tb.Time(0, "CALENDAR-TIME")
	assert.Equal(t, utc(2029, time.April, 13, 21, 46, 4, 800_000_000), ts)
	p, _ := tb.Float(2, "PROBABILITY")
	assert.Equal(t, 1.0, p)
}

func TestDecodeCloseApproachesEmpty(t *testing.T) {
	_, err := decodeCloseApproaches("BODY CALENDAR-TIME MJD-TIME TIME-UNCERT. NOM.-DISTANCE MIN.-POSS.-DIST. DIST.-UNCERT. STRETCH WIDTH PROBABILITY\n")
	var empty *EmptyReportError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, TabCloseApproaches, empty.Tab)
}

func TestDecodePhysicalProperties(t *testing.T) {
	sections, err := decodePhysicalProperties("99942", fixture(t, "physical.phypro"))
	require.NoError(t, err)

	tb := present(t, sections, "physical_properties")
	assert.Equal(t, []string{"Property", "Value", "Error", "Text", "Unit", "Source"}, tb.Names())
	assert.Equal(t, 8, tb.Len())

	h, _ := tb.Float(3, "Value")
	herr, _ := tb.Float(3, "Error")
	assert.InDelta(t, 19.09, h, 1e-12)
	assert.InDelta(t, 0.19, herr, 1e-12)

	src, _ := tb.String(0, "Source")
	assert.Equal(t, "Pravec et al. (2014), Icarus 233, 48-60", src)

	v, _ := tb.Value(7, "Value")
	assert.Nil(t, v)
	text, _ := tb.String(7, "Text")
	assert.Equal(t, "Sq", text)

	unit, _ := tb.Value(1, "Unit")
	assert.Nil(t, unit)
	assert.Len(t, meta(t, tb, "references"), 4)
}

func TestDecodePhysicalPropertiesEmpty(t *testing.T) {
	_, err := decodePhysicalProperties("nothing", "\n\n")
	var notFound *ObjectNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nothing", notFound.Object)
}
