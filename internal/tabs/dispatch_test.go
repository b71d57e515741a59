package tabs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/star/neocc/internal/report"
)

type fakeSource struct {
	body     []byte
	err      error
	requests []report.Request
}

func (f *fakeSource) Fetch(_ context.Context, req report.Request) ([]byte, error) {
	f.requests = append(f.requests, req)
	return f.body, f.err
}

func newTestClient(src report.Source) *Client {
	return NewClient(src, URLs{
		Download:    "http://portal.test/download",
		Ephemerides: "http://portal.test/ephemerides",
		Summary:     "http://portal.test/summary?des=",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestQueryOrbitMissingEpoch(t *testing.T) {
	src := &fakeSource{}
	c := newTestClient(src)

	_, err := c.Query(context.Background(), "99942", TabOrbitProperties, Params{OrbitalElements: Keplerian})
	var missing *MissingParameterError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, TabOrbitProperties, missing.Tab)
	assert.Equal(t, []string{ParamOrbitalElements, ParamOrbitEpoch}, missing.Required)
	assert.Equal(t, []string{ParamOrbitEpoch}, missing.Missing)
	assert.Empty(t, src.requests, "no fetch before validation")
}

func TestQueryEphemeridesMissingAll(t *testing.T) {
	src := &fakeSource{}
	_, err := newTestClient(src).Query(context.Background(), "99942", TabEphemerides, Params{})
	var missing *MissingParameterError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, missing.Required, missing.Missing)
	assert.Len(t, missing.Missing, 5)
	assert.Empty(t, src.requests)
}

func TestValidate(t *testing.T) {
	var invalid *InvalidParameterError

	err := Validate("risk_list", Params{})
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "tab", invalid.Name)
	assert.Len(t, invalid.Allowed, 7)

	err = Validate(TabOrbitProperties, Params{OrbitalElements: "cartesian", OrbitEpoch: EpochPresent})
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, ParamOrbitalElements, invalid.Name)

	err = Validate(TabOrbitProperties, Params{OrbitalElements: Equinoctial, OrbitEpoch: "past"})
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, ParamOrbitEpoch, invalid.Name)

	eph := Params{Observatory: "500", Start: "2029-04-10", Stop: "2029-04-12", Step: "1", StepUnit: "weeks"}
	err = Validate(TabEphemerides, eph)
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, ParamStepUnit, invalid.Name)

	eph.StepUnit = "days"
	eph.Step = "-2"
	err = Validate(TabEphemerides, eph)
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, ParamStep, invalid.Name)

	eph.Step = "2"
	assert.NoError(t, Validate(TabEphemerides, eph))
	assert.NoError(t, Validate(TabImpacts, Params{}))
}

func TestRequestURL(t *testing.T) {
	c := newTestClient(&fakeSource{})
	cases := []struct {
		tab    string
		params Params
		want   string
	}{
		{TabImpacts, Params{}, "http://portal.test/download?file=2023%20DW.risk"},
		{TabCloseApproaches, Params{}, "http://portal.test/download?file=2023%20DW.clolin"},
		{TabObservations, Params{}, "http://portal.test/download?file=2023%20DW.rwo"},
		{TabPhysicalProperties, Params{}, "http://portal.test/download?file=2023%20DW.phypro"},
		{TabOrbitProperties, Params{OrbitalElements: Keplerian, OrbitEpoch: EpochPresent}, "http://portal.test/download?file=2023%20DW.ke1"},
		{TabOrbitProperties, Params{OrbitalElements: Keplerian, OrbitEpoch: EpochMiddle}, "http://portal.test/download?file=2023%20DW.ke0"},
		{TabOrbitProperties, Params{OrbitalElements: Equinoctial, OrbitEpoch: EpochPresent}, "http://portal.test/download?file=2023%20DW.eq1"},
		{TabOrbitProperties, Params{OrbitalElements: Equinoctial, OrbitEpoch: EpochMiddle}, "http://portal.test/download?file=2023%20DW.eq0"},
		{TabSummary, Params{}, "http://portal.test/summary?des=2023%20DW"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, c.RequestURL("2023 DW", tc.tab, tc.params), tc.tab)
	}

	got := c.RequestURL("2023 DW", TabEphemerides, Params{
		Observatory: "500", Start: "2029-04-10", Stop: "2029-04-12", Step: "1", StepUnit: "days",
	})
	assert.True(t, strings.HasPrefix(got, "http://portal.test/ephemerides?"))
	for _, part := range []string{"des=2023+DW", "oc=500", "t0=2029-04-10", "t1=2029-04-12", "ti=1", "tiu=days"} {
		assert.Contains(t, got, part)
	}
}

func TestQueryDecodesFetchedReport(t *testing.T) {
	src := &fakeSource{body: []byte(fixture(t, "orbit_kep6.ke1"))}
	c := newTestClient(src)

	sections, err := c.Query(context.Background(), "99942", TabOrbitProperties, Params{
		OrbitalElements: Keplerian,
		OrbitEpoch:      EpochMiddle,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, present(t, sections, "covariance").Len())

	require.Len(t, src.requests, 1)
	assert.Equal(t, TabOrbitProperties, src.requests[0].Kind)
	assert.Equal(t, "99942", src.requests[0].Object)
	assert.Equal(t, "http://portal.test/download?file=99942.ke0", src.requests[0].URL)
}

func TestQueryWrapsSingleTable(t *testing.T) {
	src := &fakeSource{body: []byte(fixture(t, "close_approaches.clolin"))}
	sections, err := newTestClient(src).Query(context.Background(), "99942", TabCloseApproaches, Params{})
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.True(t, sections[0].IsPresent())
}

func TestQueryEmptyBody(t *testing.T) {
	tests := []struct {
		tab      string
		params   Params
		notFound bool
	}{
		{tab: TabImpacts},
		{tab: TabCloseApproaches},
		{tab: TabObservations},
		{tab: TabOrbitProperties, params: Params{OrbitalElements: Keplerian, OrbitEpoch: EpochPresent}},
		{tab: TabEphemerides, params: Params{Observatory: "500", Start: "2024-01-01 00:00", Stop: "2024-01-02 00:00", Step: "1", StepUnit: "days"}},
		{tab: TabPhysicalProperties, notFound: true},
		{tab: TabSummary, notFound: true},
	}
	for _, tt := range tests {
		t.Run(tt.tab, func(t *testing.T) {
			src := &fakeSource{body: []byte("  \n")}
			_, err := newTestClient(src).Query(context.Background(), "99942", tt.tab, tt.params)
			if tt.notFound {
				var notFound *ObjectNotFoundError
				require.ErrorAs(t, err, &notFound)
				assert.Equal(t, "99942", notFound.Object)
				return
			}
			var empty *EmptyReportError
			require.ErrorAs(t, err, &empty)
			assert.Equal(t, tt.tab, empty.Tab)
		})
	}
}

func TestQueryPropagatesFetchError(t *testing.T) {
	connErr := &report.ConnectionError{URL: "http://portal.test", Err: errors.New("connection refused")}
	src := &fakeSource{err: connErr}
	_, err := newTestClient(src).Query(context.Background(), "99942", TabSummary, Params{})
	var got *report.ConnectionError
	require.ErrorAs(t, err, &got)
}

func TestQueryEmptyObject(t *testing.T) {
	src := &fakeSource{}
	_, err := newTestClient(src).Query(context.Background(), " ", TabImpacts, Params{})
	var invalid *InvalidParameterError
	require.ErrorAs(t, err, &invalid)
	assert.Empty(t, src.requests)
}

func TestDecodeOutcome(t *testing.T) {
	assert.Equal(t, "ok", decodeOutcome(nil))
	assert.Equal(t, "empty", decodeOutcome(errEmpty(TabImpacts, "none")))
	assert.Equal(t, "not_found", decodeOutcome(&ObjectNotFoundError{Object: "x"}))
	assert.Equal(t, "malformed", decodeOutcome(errMalformed(TabImpacts, "footer", "bad")))
	assert.Equal(t, "error", decodeOutcome(errors.New("boom")))
}

func TestTabsListing(t *testing.T) {
	tabs := Tabs()
	require.Len(t, tabs, 7)
	tabs[0].Name = "changed"
	assert.Equal(t, TabImpacts, Tabs()[0].Name)
}
