package tabs

import (
	"fmt"
	"strings"
)

// EmptyReportError indicates a report with no usable data rows.
type EmptyReportError struct {
	Tab     string
	Message string
}

func (e *EmptyReportError) Error() string {
	return fmt.Sprintf("%s: %s", e.Tab, e.Message)
}

// ObjectNotFoundError indicates that the object name did not resolve.
type ObjectNotFoundError struct {
	Object string
}

func (e *ObjectNotFoundError) Error() string {
	return fmt.Sprintf("object not found: %q is wrong or misspelt", e.Object)
}

// MissingParameterError indicates tab-specific parameters were not given.
type MissingParameterError struct {
	Tab      string
	Required []string
	Missing  []string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("tab %s requires %s (missing: %s)",
		e.Tab, strings.Join(e.Required, ", "), strings.Join(e.Missing, ", "))
}

// InvalidParameterError indicates an unknown tab or an unsupported
// parameter value.
type InvalidParameterError struct {
	Name    string
	Value   string
	Allowed []string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid %s %q: valid values are %s", e.Name, e.Value, strings.Join(e.Allowed, ", "))
}

// MalformedSectionError indicates that a section the report format
// guarantees is missing or unreadable.
type MalformedSectionError struct {
	Tab     string
	Section string
	Message string
}

func (e *MalformedSectionError) Error() string {
	return fmt.Sprintf("%s: malformed %s section: %s", e.Tab, e.Section, e.Message)
}

func errEmpty(tab, format string, args ...any) *EmptyReportError {
	return &EmptyReportError{Tab: tab, Message: fmt.Sprintf(format, args...)}
}

func errMalformed(tab, section, format string, args ...any) *MalformedSectionError {
	return &MalformedSectionError{Tab: tab, Section: section, Message: fmt.Sprintf(format, args...)}
}
