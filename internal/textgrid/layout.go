package textgrid

// Span is a named byte window of a fixed-width line.
type Span struct {
	Name  string
	Start int
	End   int
}

// Layout is an ordered set of spans describing one fixed-width record.
type Layout []Span

// Read slices row i into one trimmed string per span.
func (l Layout) Read(g *Grid, i int) []string {
	out := make([]string, len(l))
	for k, s := range l {
		out[k] = g.Field(i, s.Start, s.End)
	}
	return out
}

// Index returns the position of the span called name, or -1.
func (l Layout) Index(name string) int {
	for k, s := range l {
		if s.Name == name {
			return k
		}
	}
	return -1
}

// Span returns the span called name.
func (l Layout) Span(name string) (Span, bool) {
	if k := l.Index(name); k >= 0 {
		return l[k], true
	}
	return Span{}, false
}
