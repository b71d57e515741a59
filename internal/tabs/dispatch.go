// Package tabs decodes the per-object reports of the NEOCC portal into
// structured tables. Each tab selects one report format; Client fetches
// the report and dispatches it to the matching decoder.
package tabs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/star/neocc/internal/metrics"
	"github.com/star/neocc/internal/report"
	"github.com/star/neocc/internal/table"
)

// Tab names.
const (
	TabImpacts            = "impacts"
	TabCloseApproaches    = "close_approaches"
	TabObservations       = "observations"
	TabPhysicalProperties = "physical_properties"
	TabOrbitProperties    = "orbit_properties"
	TabEphemerides        = "ephemerides"
	TabSummary            = "summary"
)

// Tab parameter names.
const (
	ParamOrbitalElements = "orbital_elements"
	ParamOrbitEpoch      = "orbit_epoch"
	ParamObservatory     = "observatory"
	ParamStart           = "start"
	ParamStop            = "stop"
	ParamStep            = "step"
	ParamStepUnit        = "step_unit"
)

// Orbit epochs.
const (
	EpochPresent = "present"
	EpochMiddle  = "middle"
)

// TabInfo describes one tab and the parameters it requires.
type TabInfo struct {
	Name     string   `json:"name" yaml:"name"`
	Required []string `json:"required,omitempty" yaml:"required,omitempty"`
}

var tabInfo = []TabInfo{
	{Name: TabImpacts},
	{Name: TabCloseApproaches},
	{Name: TabObservations},
	{Name: TabPhysicalProperties},
	{Name: TabOrbitProperties, Required: []string{ParamOrbitalElements, ParamOrbitEpoch}},
	{Name: TabEphemerides, Required: []string{ParamObservatory, ParamStart, ParamStop, ParamStep, ParamStepUnit}},
	{Name: TabSummary},
}

// Tabs lists the known tabs in a stable order.
func Tabs() []TabInfo {
	out := make([]TabInfo, len(tabInfo))
	copy(out, tabInfo)
	return out
}

func tabNames() []string {
	names := make([]string, len(tabInfo))
	for i, t := range tabInfo {
		names[i] = t.Name
	}
	return names
}

// Params holds the tab-specific query parameters.
type Params struct {
	OrbitalElements string // keplerian or equinoctial
	OrbitEpoch      string // present or middle
	Observatory     string
	Start           string
	Stop            string
	Step            string
	StepUnit        string // days, hours or minutes
}

func (p Params) get(name string) string {
	switch name {
	case ParamOrbitalElements:
		return p.OrbitalElements
	case ParamOrbitEpoch:
		return p.OrbitEpoch
	case ParamObservatory:
		return p.Observatory
	case ParamStart:
		return p.Start
	case ParamStop:
		return p.Stop
	case ParamStep:
		return p.Step
	case ParamStepUnit:
		return p.StepUnit
	}
	return ""
}

var (
	orbitExtensions = map[[2]string]string{
		{Keplerian, EpochPresent}:   ".ke1",
		{Keplerian, EpochMiddle}:    ".ke0",
		{Equinoctial, EpochPresent}: ".eq1",
		{Equinoctial, EpochMiddle}:  ".eq0",
	}
	fileExtensions = map[string]string{
		TabImpacts:            ".risk",
		TabCloseApproaches:    ".clolin",
		TabObservations:       ".rwo",
		TabPhysicalProperties: ".phypro",
	}
	stepUnits = []string{"days", "hours", "minutes"}
)

// Validate checks the tab name and its required parameters without any
// network access.
func Validate(tab string, p Params) error {
	var info *TabInfo
	for i := range tabInfo {
		if tabInfo[i].Name == tab {
			info = &tabInfo[i]
		}
	}
	if info == nil {
		return &InvalidParameterError{Name: "tab", Value: tab, Allowed: tabNames()}
	}

	var missing []string
	for _, name := range info.Required {
		if strings.TrimSpace(p.get(name)) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingParameterError{Tab: tab, Required: info.Required, Missing: missing}
	}

	switch tab {
	case TabOrbitProperties:
		if _, ok := elementColumns[p.OrbitalElements]; !ok {
			return &InvalidParameterError{Name: ParamOrbitalElements, Value: p.OrbitalElements, Allowed: []string{Keplerian, Equinoctial}}
		}
		if p.OrbitEpoch != EpochPresent && p.OrbitEpoch != EpochMiddle {
			return &InvalidParameterError{Name: ParamOrbitEpoch, Value: p.OrbitEpoch, Allowed: []string{EpochPresent, EpochMiddle}}
		}
	case TabEphemerides:
		if indexOf(stepUnits, p.StepUnit) < 0 {
			return &InvalidParameterError{Name: ParamStepUnit, Value: p.StepUnit, Allowed: stepUnits}
		}
		if n, err := strconv.Atoi(p.Step); err != nil || n <= 0 {
			return &InvalidParameterError{Name: ParamStep, Value: p.Step, Allowed: []string{"positive integer"}}
		}
	}
	return nil
}

// URLs are the portal endpoints.
type URLs struct {
	Download    string // file download, queried as <Download>?file=<object><ext>
	Ephemerides string
	Summary     string // object page, queried as <Summary><object>
}

// DefaultURLs returns the public portal endpoints.
func DefaultURLs() URLs {
	return URLs{
		Download:    "https://neo.ssa.esa.int/PSDB-portlet/download",
		Ephemerides: "https://neo.ssa.esa.int/PSDB-portlet/ephemerides",
		Summary:     "https://neo.ssa.esa.int/search-for-asteroids?sum=1&des=",
	}
}

// Client queries object tabs through a report source.
type Client struct {
	source report.Source
	urls   URLs
	logger *slog.Logger
}

// NewClient creates a Client. Empty URL fields fall back to DefaultURLs.
func NewClient(source report.Source, urls URLs, logger *slog.Logger) *Client {
	def := DefaultURLs()
	if urls.Download == "" {
		urls.Download = def.Download
	}
	if urls.Ephemerides == "" {
		urls.Ephemerides = def.Ephemerides
	}
	if urls.Summary == "" {
		urls.Summary = def.Summary
	}
	return &Client{source: source, urls: urls, logger: logger}
}

// RequestURL builds the report URL for a validated query.
func (c *Client) RequestURL(object, tab string, p Params) string {
	name := strings.ReplaceAll(strings.TrimSpace(object), " ", "%20")
	switch tab {
	case TabOrbitProperties:
		return c.urls.Download + "?file=" + name + orbitExtensions[[2]string{p.OrbitalElements, p.OrbitEpoch}]
	case TabEphemerides:
		q := url.Values{}
		q.Set("des", strings.TrimSpace(object))
		q.Set("oc", p.Observatory)
		q.Set("t0", p.Start)
		q.Set("t1", p.Stop)
		q.Set("ti", p.Step)
		q.Set("tiu", p.StepUnit)
		return c.urls.Ephemerides + "?" + q.Encode()
	case TabSummary:
		return c.urls.Summary + name
	}
	return c.urls.Download + "?file=" + name + fileExtensions[tab]
}

// Query fetches and decodes one tab of object. Parameters are validated
// before any request is made. The result always holds at least one
// section.
func (c *Client) Query(ctx context.Context, object, tab string, p Params) ([]table.Section, error) {
	if strings.TrimSpace(object) == "" {
		return nil, &InvalidParameterError{Name: "object", Value: object, Allowed: []string{"non-empty designation"}}
	}
	if err := Validate(tab, p); err != nil {
		return nil, err
	}

	body, err := c.source.Fetch(ctx, report.Request{
		Kind:   tab,
		Object: object,
		URL:    c.RequestURL(object, tab, p),
	})
	if err != nil {
		return nil, err
	}

	sections, err := Decode(object, tab, p, body)
	metrics.RecordDecode(tab, decodeOutcome(err))
	if err != nil {
		c.logger.Warn("report decode failed",
			"object", object,
			"tab", tab,
			"error", err,
		)
		return nil, err
	}
	c.logger.Debug("report decoded",
		"object", object,
		"tab", tab,
		"sections", len(sections),
	)
	return sections, nil
}

// emptyReports holds the message of an empty body per tab. Tabs not
// listed here report an empty body as an unknown object.
var emptyReports = map[string]string{
	TabImpacts:         "no risk data for this object",
	TabCloseApproaches: "no close approaches for this object",
	TabObservations:    "no observations for this object",
	TabOrbitProperties: "no orbit data for this object",
	TabEphemerides:     "no ephemerides in the requested interval",
}

// Decode runs the decoder of tab over a raw report body.
func Decode(object, tab string, p Params, body []byte) ([]table.Section, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		if msg, ok := emptyReports[tab]; ok {
			return nil, errEmpty(tab, "%s", msg)
		}
		if tab == TabSummary {
			return nil, &ObjectNotFoundError{Object: object}
		}
	}
	text := string(body)
	switch tab {
	case TabImpacts:
		return decodeImpacts(text)
	case TabCloseApproaches:
		return decodeCloseApproaches(text)
	case TabObservations:
		return decodeObservations(text)
	case TabPhysicalProperties:
		return decodePhysicalProperties(object, text)
	case TabOrbitProperties:
		return decodeOrbit(text, p.OrbitalElements)
	case TabEphemerides:
		return decodeEphemerides(text)
	case TabSummary:
		return decodeSummary(object, text)
	}
	return nil, &InvalidParameterError{Name: "tab", Value: tab, Allowed: tabNames()}
}

func decodeOutcome(err error) string {
	var (
		empty     *EmptyReportError
		notFound  *ObjectNotFoundError
		malformed *MalformedSectionError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &empty):
		return "empty"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &malformed):
		return "malformed"
	}
	return "error"
}
