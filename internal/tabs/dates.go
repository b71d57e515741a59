package tabs

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// mjdOffset converts a Modified Julian Date to a Julian Date.
const mjdOffset = 2400000.5

// monthDay converts a calendar year, month and fractional day of month
// to UTC. Day 1.0 is midnight on the first of the month.
func monthDay(year, month int, day float64) (time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month %d out of range", month)
	}
	if day < 1 || day >= 32 {
		return time.Time{}, fmt.Errorf("day %g out of range", day)
	}
	t := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return t.Add(days(day - 1)), nil
}

// days converts a fractional day count to a duration rounded to the
// nearest microsecond.
func days(d float64) time.Duration {
	return time.Duration(math.Round(d*86400e6)) * time.Microsecond
}

// parseSlashDate reads dates of the form YYYY/MM/DD.ddd.
func parseSlashDate(s string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY/MM/DD.ddd", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year in %q: %w", s, err)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month in %q: %w", s, err)
	}
	day, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day in %q: %w", s, err)
	}
	t, err := monthDay(year, month, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// mjdToTime converts a Modified Julian Date to UTC.
func mjdToTime(mjd float64) time.Time {
	return julian.JDToTime(mjd + mjdOffset).UTC()
}

// parseFloat accepts Fortran style D exponents.
func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("D", "E", "d", "e").Replace(s)
	return strconv.ParseFloat(s, 64)
}

// optFloat parses s, mapping blanks to nil.
func optFloat(s string) (any, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	f, err := parseFloat(s)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// optInt parses s, mapping blanks to nil.
func optInt(s string) (any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// optString maps blanks to nil.
func optString(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}
