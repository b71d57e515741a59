package tabs

import (
	"strings"

	"github.com/star/neocc/internal/textgrid"
)

const endOfHeader = "END_OF_HEADER"

// headerField is one "key = value ! comment" line.
type headerField struct {
	Key   string
	Value string
}

// readHeader collects the key/value lines above END_OF_HEADER and returns
// them with the row of the marker. Quotes and trailing comments are
// removed from values.
func readHeader(g *textgrid.Grid, tab string) ([]headerField, int, error) {
	end, ok := g.FindLine(endOfHeader)
	if !ok {
		return nil, 0, errMalformed(tab, "header", "missing %s", endOfHeader)
	}
	var out []headerField
	for r := 0; r < end; r++ {
		key, value, found := strings.Cut(g.Line(r), "=")
		if !found {
			continue
		}
		if i := strings.Index(value, "!"); i >= 0 {
			value = value[:i]
		}
		value = strings.Trim(strings.TrimSpace(value), "'\"")
		out = append(out, headerField{Key: strings.TrimSpace(key), Value: strings.TrimSpace(value)})
	}
	return out, end, nil
}

func headerValue(fields []headerField, key string) (string, bool) {
	for _, f := range fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}
