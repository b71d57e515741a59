package textgrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "format  = 'OEF2.0'\r\n" +
	"END_OF_HEADER\n" +
	" COV   1.0  2.0  3.0\n" +
	" COV   4.0  5.0  6.0\n" +
	"! RMS  COV\n" +
	"\n\n"

func TestNewDropsTrailingBlankLines(t *testing.T) {
	g := New(sample)
	require.Equal(t, 5, g.Len())
	assert.Equal(t, "format  = 'OEF2.0'", g.Line(0))
	assert.Equal(t, "! RMS  COV", g.Line(g.FromEnd(1)))
}

func TestFindExactMatchesOnly(t *testing.T) {
	g := New(sample)

	got := g.Find("COV")
	assert.Equal(t, []Pos{{Row: 2, Col: 0}, {Row: 3, Col: 0}, {Row: 4, Col: 2}}, got)

	assert.Empty(t, g.Find("CO"), "partial matches must not be reported")
	assert.Empty(t, g.Find("missing"))
}

func TestFirstFrom(t *testing.T) {
	g := New(sample)

	p, ok := g.FirstFrom("COV", 3)
	require.True(t, ok)
	assert.Equal(t, Pos{Row: 3, Col: 0}, p)

	_, ok = g.FirstFrom("COV", 5)
	assert.False(t, ok)
}

func TestCellAndFieldBounds(t *testing.T) {
	g := New(sample)

	assert.Equal(t, "2.0", g.Cell(2, 2))
	assert.Equal(t, "", g.Cell(2, 9))
	assert.Equal(t, "", g.Cell(-1, 0))

	assert.Equal(t, "COV", g.Field(2, 0, 4))
	assert.Equal(t, "3.0", g.Field(2, 15, 40), "windows past the end are clipped")
	assert.Equal(t, "", g.Field(2, 100, 120))
}

func TestRowsWithField(t *testing.T) {
	g := New(" A x\n B s\n C x\n D s\n")
	assert.Equal(t, []int{1, 3}, g.RowsWithField(3, 4, "s", 0, g.Len()))
	assert.Equal(t, []int{1}, g.RowsWithField(3, 4, "s", 0, 3))
}

func TestLayoutRead(t *testing.T) {
	g := New(" 2024 03 15.5")
	l := Layout{{"Year", 1, 5}, {"Month", 6, 8}, {"Day", 9, 13}}
	assert.Equal(t, []string{"2024", "03", "15.5"}, l.Read(g, 0))
	assert.Equal(t, 1, l.Index("Month"))
	assert.Equal(t, -1, l.Index("Hour"))
}
