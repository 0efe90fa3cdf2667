package content

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalogue(t *testing.T) *Catalogue {
	t.Helper()
	bands := []AgeBand{
		WeeksBand("w0", 0, 8),
		WeeksBand("w1", 9, 17),
		MonthsBand("m6", 6, 11),
		MonthsBand("m12", 12, 23),
	}
	questions := []Question{
		{ID: "q-lang", BandID: "w0", Dimension: DimLanguage, OrderIndex: 1, Text: "a"},
		{ID: "q-gross", BandID: "w0", Dimension: DimGrossMotor, OrderIndex: 1, Text: "b"},
		{ID: "q-cog", BandID: "w0", Dimension: DimCognitive, OrderIndex: 0, Text: "c"},
		{ID: "q-w1", BandID: "w1", Dimension: DimSocial, OrderIndex: 1, Text: "d"},
		{ID: "q-m6", BandID: "m6", Dimension: DimSelfCare, OrderIndex: 1, Text: "e"},
		{ID: "q-m12", BandID: "m12", Dimension: DimFineMotor, OrderIndex: 1, Text: "f"},
	}
	c, err := NewCatalogue("1.0.0", bands, questions)
	require.NoError(t, err)
	return c
}

func TestResolve_WeeksTakePrecedenceUnderSixMonths(t *testing.T) {
	c := testCatalogue(t)

	res, err := c.Resolve(Age{Months: 2, Weeks: 8})
	require.NoError(t, err)
	assert.Equal(t, "w0", res.Band.ID)

	res, err = c.Resolve(Age{Months: 3, Weeks: 12})
	require.NoError(t, err)
	assert.Equal(t, "w1", res.Band.ID)
}

func TestResolve_MonthsAtSixAndAbove(t *testing.T) {
	c := testCatalogue(t)

	res, err := c.Resolve(Age{Months: 6, Weeks: 26})
	require.NoError(t, err)
	assert.Equal(t, "m6", res.Band.ID)

	res, err = c.Resolve(MonthsOnly(12))
	require.NoError(t, err)
	assert.Equal(t, "m12", res.Band.ID)
}

func TestResolve_BoundariesInclusive(t *testing.T) {
	c := testCatalogue(t)

	for _, tt := range []struct {
		age  Age
		band string
	}{
		{Age{Months: 0, Weeks: 0}, "w0"},
		{Age{Months: 2, Weeks: 9}, "w1"},
		{Age{Months: 11, Weeks: 48}, "m6"},
		{Age{Months: 23, Weeks: 100}, "m12"},
	} {
		res, err := c.Resolve(tt.age)
		require.NoError(t, err, "age %+v", tt.age)
		assert.Equal(t, tt.band, res.Band.ID, "age %+v", tt.age)
	}
}

func TestResolve_ContentUnavailable(t *testing.T) {
	c := testCatalogue(t)

	_, err := c.Resolve(MonthsOnly(30))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrContentUnavailable))

	// Months-only input under six months cannot use weeks bands.
	_, err = c.Resolve(MonthsOnly(2))
	assert.True(t, errors.Is(err, ErrContentUnavailable))
}

func TestResolve_NegativeAge(t *testing.T) {
	c := testCatalogue(t)
	_, err := c.ResolveQuestionSet(-1)
	assert.True(t, errors.Is(err, ErrInvalidAge))
}

func TestResolve_DeterministicOrder(t *testing.T) {
	c := testCatalogue(t)

	res, err := c.Resolve(Age{Months: 1, Weeks: 4})
	require.NoError(t, err)
	// order_index first, then canonical dimension order.
	assert.Equal(t, []string{"q-cog", "q-gross", "q-lang"}, res.QuestionIDs())

	for range 20 {
		again, err := c.Resolve(Age{Months: 1, Weeks: 4})
		require.NoError(t, err)
		assert.Equal(t, res.QuestionIDs(), again.QuestionIDs())
	}
}

func TestReachedBands(t *testing.T) {
	c := testCatalogue(t)

	ids := func(bs []AgeBand) []string {
		var out []string
		for _, b := range bs {
			out = append(out, b.ID)
		}
		return out
	}

	assert.Equal(t, []string{"w0"}, ids(c.ReachedBands(Age{Months: 2, Weeks: 8})))
	assert.Equal(t, []string{"w0", "w1"}, ids(c.ReachedBands(Age{Months: 3, Weeks: 10})))
	assert.Equal(t, []string{"w0", "w1", "m6"}, ids(c.ReachedBands(Age{Months: 7, Weeks: 30})))
	assert.Equal(t, []string{"w0", "w1", "m6", "m12"}, ids(c.ReachedBands(MonthsOnly(14))))
}

func TestNewCatalogue_ValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		version   string
		bands     []AgeBand
		questions []Question
		wantMsg   string
	}{
		{
			name:    "bad version",
			version: "latest",
			wantMsg: "not a semantic version",
		},
		{
			name:    "overlap",
			version: "1.0.0",
			bands:   []AgeBand{MonthsBand("a", 6, 12), MonthsBand("b", 12, 18)},
			wantMsg: "overlap",
		},
		{
			name:    "inverted range",
			version: "1.0.0",
			bands:   []AgeBand{MonthsBand("a", 9, 6)},
			wantMsg: "invalid range",
		},
		{
			name:      "unknown band",
			version:   "1.0.0",
			bands:     []AgeBand{MonthsBand("a", 6, 9)},
			questions: []Question{{ID: "q", BandID: "zzz", Dimension: DimCognitive, Text: "x"}},
			wantMsg:   "unknown band",
		},
		{
			name:      "unknown dimension",
			version:   "1.0.0",
			bands:     []AgeBand{MonthsBand("a", 6, 9)},
			questions: []Question{{ID: "q", BandID: "a", Dimension: "music", Text: "x"}},
			wantMsg:   "unknown dimension",
		},
		{
			name:    "duplicate question",
			version: "1.0.0",
			bands:   []AgeBand{MonthsBand("a", 6, 9)},
			questions: []Question{
				{ID: "q", BandID: "a", Dimension: DimCognitive, OrderIndex: 1, Text: "x"},
				{ID: "q", BandID: "a", Dimension: DimLanguage, OrderIndex: 2, Text: "y"},
			},
			wantMsg: "duplicate question ID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalogue(tt.version, tt.bands, tt.questions)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestCompareVersion(t *testing.T) {
	assert.Equal(t, -1, CompareVersion("1.2.0", "1.10.0"))
	assert.Equal(t, 0, CompareVersion("v1.2.0", "1.2.0"))
	assert.Equal(t, 1, CompareVersion("2.0.0", "1.9.9"))
}
