package matcher

import (
	"testing"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/catalog"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tieBreakYAML = `first:
  Declaration Grooming:
    B2:
      patterns:
        - \bb\s*2\b
  Zenith:
    B2:
      patterns:
        - zenith.*\bb\s*2\b
  Early:
    Same:
      patterns:
        - same\s*length
  Late:
    Same:
      patterns:
        - same\s*length
second:
  Omega:
    patterns:
      - omega
  Everything:
    Broad:
      patterns:
        - .+
`

func TestFind_LongestSpanWinsWithinSection(t *testing.T) {
	m := New(compileString(t, catalog.KindBrush, tieBreakYAML))

	hit, ok := m.Find("Zenith B2")
	require.True(t, ok)
	assert.Equal(t, "Zenith", hit.Entry.Brand)
	assert.True(t, hit.Covers())

	hit, ok = m.Find("DG B2")
	require.True(t, ok)
	assert.Equal(t, "Declaration Grooming", hit.Entry.Brand)
	assert.False(t, hit.Covers())
}

func TestFind_OptionalPatternDoesNotMatchEverything(t *testing.T) {
	data := "first:\n  Optional:\n    Maybe:\n      patterns:\n        - (?:foo)?\n" +
		"second:\n  Omega:\n    patterns:\n      - omega\n"
	m := New(compileString(t, catalog.KindBrush, data))

	hit, ok := m.Find("Omega 10049")
	require.True(t, ok)
	assert.Equal(t, "Omega", hit.Entry.Brand)

	_, ok = m.Find("unrelated")
	assert.False(t, ok)
}

func TestFind_DeclarationOrderBreaksTies(t *testing.T) {
	m := New(compileString(t, catalog.KindBrush, tieBreakYAML))

	hit, ok := m.Find("same length")
	require.True(t, ok)
	assert.Equal(t, "Early", hit.Entry.Brand)
}

func TestFind_SectionPriorityBeatsSpan(t *testing.T) {
	m := New(compileString(t, catalog.KindBrush, tieBreakYAML), WithSectionInfo(true))

	// "omega b2" hits B2 in the first section; the longer second-section
	// match does not matter.
	res := m.Match("omega b2")
	require.True(t, res.IsMatched())
	assert.Equal(t, "Declaration Grooming", res.Matched.Brand)
	require.True(t, res.HasSectionInfo())
	assert.Equal(t, "first", res.Section)
	assert.Equal(t, 1, res.Priority)

	// Equal spans in the second section: Omega is declared first.
	res = m.Match("omega")
	assert.Equal(t, "Omega", res.Matched.Brand)
	assert.Equal(t, types.MatchBrand, res.MatchType)
	assert.Equal(t, 2, res.Priority)
}

func TestFind_Options(t *testing.T) {
	compiled := compileString(t, catalog.KindBrush, tieBreakYAML)

	m := New(compiled, WithSections("second"))
	hit, ok := m.Find("zenith b2")
	require.True(t, ok)
	assert.Equal(t, "Everything", hit.Entry.Brand)

	m = New(compiled, WithSections("second"), WithBrand("omega"))
	hit, ok = m.Find("omega")
	require.True(t, ok)
	assert.Equal(t, "Omega", hit.Entry.Brand)
	assert.Equal(t, types.MatchBrand, hit.MatchType())

	m = New(compiled, WithSections("missing"))
	_, ok = m.Find("omega")
	assert.False(t, ok)

	// With does not change the original matcher.
	base := New(compiled)
	_ = base.With(WithSections("second"))
	hit, ok = base.Find("zenith b2")
	require.True(t, ok)
	assert.Equal(t, "Zenith", hit.Entry.Brand)
}

func TestMatch_Unmatched(t *testing.T) {
	m := New(builtin(t, catalog.KindRazor))

	for _, text := range []string{"", "   ", "definitely not a razor"} {
		res := m.Match(text)
		assert.Equal(t, types.MatchUnmatched, res.MatchType)
		assert.Nil(t, res.Matched)
		assert.False(t, res.HasSectionInfo())
		assert.Equal(t, text, res.Original)
	}
}

func TestMatch_MatchTypes(t *testing.T) {
	m := New(builtin(t, catalog.KindRazor))

	res := m.Match("Rockwell 6S")
	assert.Equal(t, types.MatchRegex, res.MatchType)
	assert.Equal(t, "6S", res.Matched.Model)
	assert.Equal(t, "DE", res.Matched.Format)
	assert.Equal(t, `rockwell.*6s`, res.Pattern)

	res = m.Match("Rockwell T2")
	assert.Equal(t, types.MatchBrand, res.MatchType)
	assert.Equal(t, "Rockwell", res.Matched.Brand)
	assert.Empty(t, res.Matched.Model)

	res = m.Match("*Shavette*")
	assert.Equal(t, types.MatchAlias, res.MatchType)
	assert.Equal(t, "Straight", res.Matched.Model)
	assert.Equal(t, "Straight", res.Matched.Format)
}

func TestInfoFor(t *testing.T) {
	m := New(builtin(t, catalog.KindKnot), WithSectionInfo(true))

	info := m.InfoFor("Declaration Grooming", "B15")
	require.NotNil(t, info)
	assert.Equal(t, types.SectionInfo{Section: "known_knots", Priority: 1}, *info)

	info = m.InfoFor("Maggard", "Unknown")
	require.NotNil(t, info)
	assert.Equal(t, 2, info.Priority)

	assert.Nil(t, m.InfoFor("Nobody", ""))
	assert.Nil(t, New(builtin(t, catalog.KindKnot)).InfoFor("Maggard", ""))
}

func TestMatch_Idempotent(t *testing.T) {
	m := New(builtin(t, catalog.KindKnot), WithSectionInfo(true))
	for _, text := range []string{"DG B15", "maggard 24mm", "nothing"} {
		assert.Equal(t, m.Match(text), m.Match(text))
	}
}
