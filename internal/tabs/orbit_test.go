package tabs

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/star/neocc/internal/table"
)

func assertSymmetric(t *testing.T, tb *table.Table, labels []string) {
	t.Helper()
	require.Equal(t, len(labels), tb.Len())
	assert.Equal(t, append([]string{"Element"}, labels...), tb.Names())
	for i, li := range labels {
		for j, lj := range labels {
			a, ok1 := tb.Float(i, lj)
			b, ok2 := tb.Float(j, li)
			require.True(t, ok1 && ok2)
			assert.Equal(t, a, b, "(%s, %s)", li, lj)
		}
	}
}

func TestDecodeKeplerianDim6(t *testing.T) {
	sections, err := decodeOrbit(fixture(t, "orbit_kep6.ke1"), Keplerian)
	require.NoError(t, err)

	elements := present(t, sections, "elements")
	assert.Equal(t, []string{"a", "e", "i", "long. node", "arg. peric.", "mean anomaly"}, elements.Names())
	a, _ := elements.Float(0, "a")
	assert.InDelta(t, 0.922606200637386, a, 1e-15)
	assert.Equal(t, "OEF2.0", meta(t, elements, "format"))
	assert.Equal(t, "ML", meta(t, elements, "rectype"))
	assert.Equal(t, "ECLM J2000", meta(t, elements, "refsys"))
	assert.Equal(t, "99942", meta(t, elements, "object"))
	assert.Equal(t, "TDT", meta(t, elements, "time_scale"))
	epoch, ok := meta(t, elements, "epoch").(time.Time)
	require.True(t, ok)
	assert.WithinDuration(t, utc(2024, time.October, 17, 0, 0, 0, 0), epoch, time.Millisecond)

	mag := present(t, sections, "magnitude")
	h, _ := mag.Float(0, "H")
	assert.Equal(t, 19.09, h)

	lsp := present(t, sections, "lsp")
	dim, _ := lsp.Int(0, "dimension")
	assert.Equal(t, 6, dim)

	derived := present(t, sections, "derived")
	moid, _ := derived.Float(0, "MOID")
	assert.Equal(t, 2.5374e-4, moid)
	pha, _ := derived.String(0, "PHA")
	assert.Equal(t, "T", pha)
	orbitType, _ := derived.String(0, "orbit type")
	assert.Equal(t, "Aten", orbitType)
	u, _ := derived.Int(0, "U parameter")
	assert.Equal(t, 0, u)

	assert.Equal(t, "no non-gravitational parameters", section(t, sections, "ngr").Absent)

	labels := []string{"a", "e", "i", "long. node", "arg. peric", "M"}
	assert.Equal(t, labels, present(t, sections, "rms").Names())

	cov := present(t, sections, "covariance")
	assertSymmetric(t, cov, labels)
	v, _ := cov.Float(1, "a")
	assert.Equal(t, 12.0, v)
	v, _ = cov.Float(5, "i")
	assert.Equal(t, 36.0, v)
	v, _ = cov.Float(5, "M")
	assert.Equal(t, 66.0, v)

	cor := present(t, sections, "correlation")
	assertSymmetric(t, cor, labels)
	diag, _ := cor.Float(3, "long. node")
	assert.Equal(t, 1.0, diag)

	nor := present(t, sections, "normalization")
	assertSymmetric(t, nor, labels)
	v, _ = nor.Float(4, "M")
	assert.Equal(t, 5006.0, v)
	assert.Equal(t, 6, meta(t, nor, "dimension"))
}

func TestDecodeKeplerianDim7AreaToMass(t *testing.T) {
	sections, err := decodeOrbit(fixture(t, "orbit_kep7.ke0"), Keplerian)
	require.NoError(t, err)

	elements := present(t, sections, "elements")
	assert.Len(t, elements.Columns, 6)
	epoch := meta(t, elements, "epoch").(time.Time)
	assert.WithinDuration(t, utc(2024, time.March, 31, 12, 0, 0, 0), epoch, time.Millisecond)

	ngr := present(t, sections, "ngr")
	amr, _ := ngr.Float(0, "Area-to-mass ratio")
	assert.Equal(t, 0.0125, amr)

	labels := []string{"a", "e", "i", "long. node", "arg. peric", "M", "Area-to-mass ratio"}
	cov := present(t, sections, "covariance")
	assertSymmetric(t, cov, labels)
	v, _ := cov.Float(6, "Area-to-mass ratio")
	assert.Equal(t, 77.0, v)
	v, _ = cov.Float(5, "Area-to-mass ratio")
	assert.Equal(t, 67.0, v)

	cor := section(t, sections, "correlation")
	assert.False(t, cor.IsPresent())
	assert.Equal(t, "COR matrix not available", cor.Absent)
	assert.Equal(t, "NOR matrix not available", section(t, sections, "normalization").Absent)
}

func TestDecodeKeplerianDim7Yarkovsky(t *testing.T) {
	base := strings.Replace(fixture(t, "orbit_kep7.ke0"),
		" NGR   1.250000000000E-02   0.000000000000E+00",
		" NGR   0.000000000000E+00  -2.901000000000E-14", 1)
	cases := map[string]string{
		"index 2":  " LSP   1  1    7    2",
		"no index": " LSP   1  1    7",
	}
	for name, lsp := range cases {
		t.Run(name, func(t *testing.T) {
			text := strings.Replace(base, " LSP   1  1    7    1", lsp, 1)
			sections, err := decodeOrbit(text, Keplerian)
			require.NoError(t, err)

			ngr := present(t, sections, "ngr")
			yark, _ := ngr.Float(0, "Yarkovsky parameter")
			assert.Equal(t, -2.901e-14, yark)
			amr, _ := ngr.Float(0, "Area-to-mass ratio")
			assert.Equal(t, 0.0, amr)

			cov := present(t, sections, "covariance")
			names := cov.Names()
			assert.Equal(t, "Yarkovsky parameter", names[len(names)-1])
			assertSymmetric(t, cov, []string{"a", "e", "i", "long. node", "arg. peric", "M", "Yarkovsky parameter"})
			v, _ := cov.Float(6, "Yarkovsky parameter")
			assert.Equal(t, 77.0, v)

			rms := present(t, sections, "rms")
			assert.Equal(t, "Yarkovsky parameter", rms.Names()[6])
		})
	}
}

func TestDecodeEquinoctialDim8(t *testing.T) {
	sections, err := decodeOrbit(fixture(t, "orbit_equ8.eq1"), Equinoctial)
	require.NoError(t, err)

	elements := present(t, sections, "elements")
	assert.Equal(t, []string{"a", "e*sin(LP)", "e*cos(LP)", "tan(i/2)*sin(LN)", "tan(i/2)*cos(LN)", "mean long."}, elements.Names())
	assert.Equal(t, "no magnitude parameters", section(t, sections, "magnitude").Absent)
	_, hasDerived := table.Find(sections, "derived")
	assert.False(t, hasDerived)

	ngr := present(t, sections, "ngr")
	yark, _ := ngr.Float(0, "Yarkovsky parameter")
	assert.Equal(t, -2.901e-14, yark)

	labels := []string{"a", "e*sin(LP)", "e*cos(LP)", "tan(i/2)*sin(LN)", "tan(i/2)*cos(LN)", "mean long.",
		"Area-to-mass ratio", "Yarkovsky parameter"}
	for _, name := range []string{"rms", "eigenvalues", "weights"} {
		assert.Equal(t, labels, present(t, sections, name).Names(), name)
	}
	w, _ := present(t, sections, "weights").Float(0, "Yarkovsky parameter")
	assert.Equal(t, 0.8, w)

	cov := present(t, sections, "covariance")
	assertSymmetric(t, cov, labels)
	v, _ := cov.Float(7, "Yarkovsky parameter")
	assert.Equal(t, 88.0, v)
	v, _ = cov.Float(7, "tan(i/2)*sin(LN)")
	assert.Equal(t, 48.0, v)

	cor := present(t, sections, "correlation")
	assertSymmetric(t, cor, labels)
	v, _ = cor.Float(0, "Yarkovsky parameter")
	assert.InDelta(t, 0.18, v, 1e-15)

	assert.Equal(t, "NOR matrix not available", section(t, sections, "normalization").Absent)
}

func TestMatrixDimensionFollowsLSP(t *testing.T) {
	cases := []struct {
		file  string
		basis string
		dim   int
	}{
		{"orbit_kep6.ke1", Keplerian, 6},
		{"orbit_kep7.ke0", Keplerian, 7},
		{"orbit_equ8.eq1", Equinoctial, 8},
	}
	for _, tc := range cases {
		t.Run(tc.file, func(t *testing.T) {
			sections, err := decodeOrbit(fixture(t, tc.file), tc.basis)
			require.NoError(t, err)
			cov := present(t, sections, "covariance")
			assert.Equal(t, tc.dim, cov.Len())
			assert.Len(t, cov.Columns, tc.dim+1)
			assert.Len(t, present(t, sections, "rms").Columns, tc.dim)
		})
	}
}

func TestMatrixSkipsCommentMentions(t *testing.T) {
	text := strings.Replace(fixture(t, "orbit_kep6.ke1"), " COV ", "! COV follows, units au and rad\n COV ", 1)
	sections, err := decodeOrbit(text, Keplerian)
	require.NoError(t, err)
	cov := present(t, sections, "covariance")
	v, _ := cov.Float(0, "a")
	assert.Equal(t, 11.0, v)
}

func TestDecodeOrbitShiftedLSP(t *testing.T) {
	text := strings.Replace(fixture(t, "orbit_kep6.ke1"), " LSP ", "! extra comment\n LSP ", 1)
	_, err := decodeOrbit(text, Keplerian)
	var malformed *MalformedSectionError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "LSP", malformed.Section)
}

func TestDecodeOrbitMissingDerivedRow(t *testing.T) {
	text := strings.Replace(fixture(t, "orbit_kep6.ke1"), "! ORB_TYPE   Aten\n", "", 1)
	_, err := decodeOrbit(text, Keplerian)
	var malformed *MalformedSectionError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "PERIHELION", malformed.Section)
}

func TestDecodeOrbitMissingRMS(t *testing.T) {
	text := strings.Replace(fixture(t, "orbit_equ8.eq1"), " RMS ", " XXX ", 1)
	_, err := decodeOrbit(text, Equinoctial)
	var malformed *MalformedSectionError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "RMS", malformed.Section)
}

func TestDecodeOrbitBadDimension(t *testing.T) {
	text := strings.Replace(fixture(t, "orbit_kep6.ke1"), " LSP   0  0    6", " LSP   0  0    9", 1)
	_, err := decodeOrbit(text, Keplerian)
	var malformed *MalformedSectionError
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, malformed.Message, "not 6, 7 or 8")
}

func TestDecodeOrbitWrongBasis(t *testing.T) {
	_, err := decodeOrbit(fixture(t, "orbit_kep6.ke1"), Equinoctial)
	var malformed *MalformedSectionError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "elements", malformed.Section)
}

func TestAssembleMatrixTruncated(t *testing.T) {
	lines := strings.Split(fixture(t, "orbit_kep6.ke1"), "\n")
	var kept []string
	dropped := false
	for _, l := range lines {
		if !dropped && strings.HasPrefix(l, " COR ") {
			dropped = true
			continue
		}
		kept = append(kept, l)
	}
	_, err := decodeOrbit(strings.Join(kept, "\n"), Keplerian)
	var malformed *MalformedSectionError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "correlation", malformed.Section)
}
