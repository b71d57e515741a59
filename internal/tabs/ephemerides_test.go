package tabs

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEphemerides(t *testing.T) {
	sections, err := decodeEphemerides(fixture(t, "ephemerides.txt"))
	require.NoError(t, err)
	require.Len(t, sections, 1)

	tb := present(t, sections, "ephemerides")
	assert.Equal(t, 3, tb.Len())
	assert.Len(t, tb.Columns, len(ephemerisLayout)-1+2)
	assert.Equal(t, "Date", tb.Names()[0])

	assert.Equal(t, "99942 Apophis", meta(t, tb, "object"))
	assert.Equal(t, "500 - Geocentric", meta(t, tb, "observatory"))
	assert.Equal(t, "2029-04-10 00:00", meta(t, tb, "initial_date"))
	assert.Equal(t, "1 days", meta(t, tb, "time_step"))

	d0, _ := tb.Time(0, "Date")
	assert.Equal(t, utc(2029, time.April, 10, 12, 0, 0, 0), d0)
	d1, _ := tb.Time(1, "Date")
	assert.Equal(t, utc(2029, time.April, 11, 6, 0, 0, 0), d1)

	deg, _ := tb.Float(0, "DEC d")
	assert.Equal(t, -5.0, deg)
	ra, _ := tb.Float(0, "RA (deg)")
	assert.InDelta(t, 196.3014375, ra, 1e-9)
	dec, _ := tb.Float(0, "DEC (deg)")
	assert.InDelta(t, -5.125, dec, 1e-9)

	zero, _ := tb.Float(1, "DEC d")
	assert.True(t, math.Signbit(zero))
	dec, _ = tb.Float(1, "DEC (deg)")
	assert.InDelta(t, -0.5, dec, 1e-9)

	dec, _ = tb.Float(2, "DEC (deg)")
	assert.InDelta(t, 12.0, dec, 1e-9)
	ra, _ = tb.Float(2, "RA (deg)")
	assert.InDelta(t, 210.0, ra, 1e-9)

	illum, _ := tb.Float(2, "Moon illum")
	assert.Equal(t, 45.0, illum)
}

func TestDecodeEphemeridesEmpty(t *testing.T) {
	lines := strings.Split(fixture(t, "ephemerides.txt"), "\n")
	_, err := decodeEphemerides(strings.Join(lines[:ephemerisHeaderLines], "\n"))
	var empty *EmptyReportError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, TabEphemerides, empty.Tab)
}

func TestDecodeEphemeridesBadDate(t *testing.T) {
	text := strings.Replace(fixture(t, "ephemerides.txt"), "2029-04-11", "2029-13-11", 1)
	_, err := decodeEphemerides(text)
	var malformed *MalformedSectionError
	require.ErrorAs(t, err, &malformed)
}
