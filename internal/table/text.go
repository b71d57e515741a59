package table

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
)

// FormatCell renders a single cell for text output.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "--"
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int:
		return strconv.Itoa(x)
	case string:
		return x
	case time.Time:
		return x.UTC().Format("2006-01-02T15:04:05.000")
	}
	return fmt.Sprint(v)
}

// WriteText prints a section as an aligned text table. Lines longer than
// width are cut when width > 0.
func WriteText(w io.Writer, s Section, width int) error {
	if !s.IsPresent() {
		_, err := fmt.Fprintf(w, "== %s: %s\n", s.Name, s.Absent)
		return err
	}
	t := s.Table
	if _, err := fmt.Fprintf(w, "== %s (%s)\n", s.Name, t.Title); err != nil {
		return err
	}
	for _, f := range t.Meta {
		if _, err := fmt.Fprintf(w, "# %s: %s\n", f.Key, FormatCell(f.Value)); err != nil {
			return err
		}
	}

	var buf strings.Builder
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Names(), "\t"))
	for _, row := range t.rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = FormatCell(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if width > 0 && len(line) > width {
			line = line[:width]
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
