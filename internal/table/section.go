package table

// Section is one named result of a decode. Either Table is set, or the
// section is absent and Absent says why. Absence is a normal outcome for
// optional report parts, not an error.
type Section struct {
	Name   string
	Table  *Table
	Absent string
}

// Present wraps a decoded table.
func Present(name string, t *Table) Section {
	return Section{Name: name, Table: t}
}

// Absent records that an optional section is missing from the report.
func Absent(name, reason string) Section {
	return Section{Name: name, Absent: reason}
}

// IsPresent reports whether the section carries a table.
func (s Section) IsPresent() bool {
	return s.Table != nil
}

// Find returns the section called name.
func Find(sections []Section, name string) (Section, bool) {
	for _, s := range sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}
