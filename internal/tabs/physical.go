package tabs

import (
	"strings"

	"github.com/star/neocc/internal/table"
	"github.com/star/neocc/internal/textgrid"
)

const referencesMarker = "REFERENCES"

var physicalColumns = []table.Column{
	{Name: "Property", Kind: table.String},
	{Name: "Value", Kind: table.Float},
	{Name: "Error", Kind: table.Float},
	{Name: "Text", Kind: table.String},
	{Name: "Unit", Kind: table.String},
	{Name: "Source", Kind: table.String},
}

func decodePhysicalProperties(object, text string) ([]table.Section, error) {
	g := textgrid.New(text)
	if g.Len() == 0 {
		return nil, &ObjectNotFoundError{Object: object}
	}

	end := g.Len()
	refs := map[string]string{}
	var refList []string
	if row, ok := g.FindLine(referencesMarker); ok {
		end = row
		for r := row + 1; r < g.Len(); r++ {
			l := strings.TrimSpace(g.Line(r))
			if !strings.HasPrefix(l, "[") {
				continue
			}
			id, desc, found := strings.Cut(l, "]")
			if !found {
				continue
			}
			refs[id+"]"] = strings.TrimSpace(desc)
			refList = append(refList, l)
		}
	}

	tb := table.MustNew("Physical properties", physicalColumns...)
	for r := 0; r < end; r++ {
		l := strings.TrimSpace(g.Line(r))
		if l == "" {
			continue
		}
		f := strings.SplitN(l, ",", 4)
		if len(f) != 4 {
			return nil, errMalformed(TabPhysicalProperties, "property", "row %d: want 4 comma-separated fields, got %d", r, len(f))
		}
		for i := range f {
			f[i] = strings.TrimSpace(f[i])
		}

		var value, uncertainty any
		if vals := strings.Fields(f[1]); len(vals) > 0 {
			if v, err := parseFloat(vals[0]); err == nil {
				value = v
				if len(vals) > 1 {
					if e, err := parseFloat(vals[1]); err == nil {
						uncertainty = e
					}
				}
			}
		}

		source := f[3]
		if desc, ok := refs[source]; ok {
			source = desc
		}
		if err := tb.AddRow(f[0], value, uncertainty, f[1], optString(f[2]), optString(source)); err != nil {
			return nil, err
		}
	}
	if tb.Len() == 0 {
		return nil, &ObjectNotFoundError{Object: object}
	}
	tb.Meta.Set("references", refList)
	return []table.Section{table.Present("physical_properties", tb)}, nil
}
