package tabs

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/star/neocc/internal/table"
)

const (
	summaryCell     = ".simple-list__cell"
	diameterLabel   = "Diameter"
	taxonomyLabel   = "Taxonomy"
	summaryRowWidth = 3
	shortRowWidth   = 2
)

// The diameter value is rendered outside the list cells.
var diameterSpan = regexp.MustCompile(`<span[^>]*\bid="[^"]*diameter[^"]*"[^>]*>\s*([^<]*?)\s*</span>`)

var summaryColumns = []table.Column{
	{Name: "Property", Kind: table.String},
	{Name: "Value", Kind: table.Float},
	{Name: "Text", Kind: table.String},
	{Name: "Unit", Kind: table.String},
}

// summaryLayout is the cell arrangement of a summary page. Every property
// takes three cells (label, value, unit) except two short rows: Diameter
// (label, unit) and Taxonomy (label, value). Their page order decides the
// offsets of everything after them.
type summaryLayout struct {
	name  string
	short [2]string
}

var (
	diameterFirst = summaryLayout{name: "diameterFirst", short: [2]string{diameterLabel, taxonomyLabel}}
	taxonomyFirst = summaryLayout{name: "taxonomyFirst", short: [2]string{taxonomyLabel, diameterLabel}}
)

// selectSummaryLayout picks the layout from the positions of the two
// short-row labels. A page without taxonomy uses diameterFirst.
func selectSummaryLayout(cells []string) summaryLayout {
	d, t := indexOf(cells, diameterLabel), indexOf(cells, taxonomyLabel)
	if t >= 0 && t < d {
		return taxonomyFirst
	}
	return diameterFirst
}

type summaryRow struct {
	label string
	value string
	unit  string
}

// rows splits cells into property rows. Segments between the short rows
// must be whole triples.
func (l summaryLayout) rows(cells []string, diameter string) ([]summaryRow, error) {
	var out []summaryRow
	start := 0
	triples := func(end int) error {
		if (end-start)%summaryRowWidth != 0 {
			return fmt.Errorf("%s layout: %d cells between offsets %d and %d", l.name, end-start, start, end)
		}
		for i := start; i < end; i += summaryRowWidth {
			out = append(out, summaryRow{label: cells[i], value: cells[i+1], unit: cells[i+2]})
		}
		return nil
	}
	for _, label := range l.short {
		pos := indexOf(cells[start:], label)
		if pos < 0 {
			continue
		}
		pos += start
		if err := triples(pos); err != nil {
			return nil, err
		}
		if pos+shortRowWidth > len(cells) {
			return nil, fmt.Errorf("%s layout: %s row truncated", l.name, label)
		}
		if label == diameterLabel {
			out = append(out, summaryRow{label: label, value: diameter, unit: cells[pos+1]})
		} else {
			out = append(out, summaryRow{label: label, value: cells[pos+1]})
		}
		start = pos + shortRowWidth
	}
	if err := triples(len(cells)); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeSummary(object, html string) ([]table.Section, error) {
	m := diameterSpan.FindStringSubmatch(html)
	if m == nil {
		return nil, &ObjectNotFoundError{Object: object}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errMalformed(TabSummary, "page", "parsing HTML: %v", err)
	}
	var cells []string
	doc.Find(summaryCell).Each(func(_ int, s *goquery.Selection) {
		cells = append(cells, strings.TrimSpace(s.Text()))
	})
	if indexOf(cells, diameterLabel) < 0 {
		return nil, errMalformed(TabSummary, "properties", "diameter value without a %s label", diameterLabel)
	}

	layout := selectSummaryLayout(cells)
	rows, err := layout.rows(cells, strings.TrimSpace(m[1]))
	if err != nil {
		return nil, errMalformed(TabSummary, "properties", "%v", err)
	}

	tb := table.MustNew("Summary", summaryColumns...)
	for _, r := range rows {
		var value any
		if v, err := parseFloat(r.value); err == nil {
			value = v
		}
		if err := tb.AddRow(r.label, value, optString(r.value), optString(r.unit)); err != nil {
			return nil, err
		}
	}

	tb.Meta.Set("layout", layout.name)
	metaText := map[string]string{
		"object":         ".object-name",
		"discovery_date": ".discovery__date",
		"observatory":    ".discovery__observatory",
	}
	for _, key := range []string{"object", "discovery_date", "observatory"} {
		if s := strings.TrimSpace(doc.Find(metaText[key]).First().Text()); s != "" {
			tb.Meta.Set(key, s)
		}
	}
	return []table.Section{table.Present("summary", tb)}, nil
}

func indexOf(cells []string, v string) int {
	for i, c := range cells {
		if c == v {
			return i
		}
	}
	return -1
}
