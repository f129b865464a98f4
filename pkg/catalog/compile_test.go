package catalog

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileYAML(t *testing.T, kind Kind, data string, opts CompileOptions) (*Compiled, error) {
	t.Helper()
	c, err := NewLoader().Load(kind, []byte(data), "test.yaml")
	require.NoError(t, err)
	return Compile(c, opts)
}

func TestCompile_InvalidPatternCarriesLocation(t *testing.T) {
	data := `DE:
  Astra:
    Superior Platinum:
      patterns:
        - astra
        - astra(plat
`
	_, err := compileYAML(t, KindBlade, data, DefaultCompileOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPattern))

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "test.yaml", ce.File)
	assert.Equal(t, "DE", ce.Section)
	assert.Equal(t, "Astra", ce.Brand)
	assert.Equal(t, "Superior Platinum", ce.Model)
	assert.Equal(t, "astra(plat", ce.Pattern)
	assert.Equal(t, 6, ce.Line)
	assert.True(t, strings.HasPrefix(ce.Error(), "test.yaml:6: invalid pattern:"), ce.Error())
}

func TestCompile_RejectsCatastrophicBacktracking(t *testing.T) {
	data := "Bad:\n  Pattern:\n    patterns:\n      - (a+)+b\n"
	opts := CompileOptions{MatchTimeout: 20 * time.Millisecond, ProbeBacktracking: true}

	_, err := compileYAML(t, KindRazor, data, opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPattern)
	assert.ErrorIs(t, err, errBacktracking)
}

func TestCompile_ProbeDisabled(t *testing.T) {
	data := "Bad:\n  Pattern:\n    patterns:\n      - (a+)+b\n"
	opts := CompileOptions{MatchTimeout: 20 * time.Millisecond}

	compiled, err := compileYAML(t, KindRazor, data, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, compiled.RuleCount())
}

func TestCompile_FallsBackForLookarounds(t *testing.T) {
	data := "Feather:\n  Hi-Stainless:\n    patterns:\n      - feather(?!.*(?:pro|half))\n"
	compiled, err := compileYAML(t, KindRazor, data, DefaultCompileOptions())
	require.NoError(t, err)

	rule := compiled.Sections[0].Rules[0]
	_, ok, err := rule.Longest("feather hi-stainless")
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = rule.Longest("feather pro")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRule_LongestPicksWidestOccurrence(t *testing.T) {
	data := "X:\n  Y:\n    patterns:\n      - b\\w*\n"
	compiled, err := compileYAML(t, KindRazor, data, DefaultCompileOptions())
	require.NoError(t, err)

	span, ok, err := compiled.Sections[0].Rules[0].Longest("b bb bbbb bb")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Span{Start: 5, Length: 4}, span)
}

func TestRule_EmptyMatchesDoNotCount(t *testing.T) {
	data := "X:\n  Y:\n    patterns:\n      - (?:foo)?\n"
	compiled, err := compileYAML(t, KindRazor, data, DefaultCompileOptions())
	require.NoError(t, err)
	rule := compiled.Sections[0].Rules[0]

	_, ok, err := rule.Longest("bar")
	require.NoError(t, err)
	assert.False(t, ok)

	span, ok, err := rule.Longest("a foo")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Span{Start: 2, Length: 3}, span)
}

func TestRule_CaseInsensitive(t *testing.T) {
	data := "Gillette:\n  Tech:\n    patterns:\n      - Gillette.*TECH\n"
	compiled, err := compileYAML(t, KindRazor, data, DefaultCompileOptions())
	require.NoError(t, err)

	_, ok, err := compiled.Sections[0].Rules[0].Longest("gillette fat tech")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRule_AliasMatchesWholeNormalizedText(t *testing.T) {
	data := "Tabac:\n  Original:\n    aliases:\n      - \"  Tabac   Shaving Soap \"\n"
	compiled, err := compileYAML(t, KindSoap, data, DefaultCompileOptions())
	require.NoError(t, err)

	rules := compiled.Sections[0].Rules
	require.Len(t, rules, 1)
	assert.True(t, rules[0].Alias)

	span, ok, err := rules[0].Longest("tabac shaving soap")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 18, span.Length)

	_, ok, _ = rules[0].Longest("tabac shaving soap puck")
	assert.False(t, ok)
}

func TestCompiled_SectionLookup(t *testing.T) {
	c, err := NewLoader().LoadBuiltin(KindBlade)
	require.NoError(t, err)
	compiled, err := Compile(c, DefaultCompileOptions())
	require.NoError(t, err)

	s, ok := compiled.Section("half de")
	require.True(t, ok)
	assert.Equal(t, 2, s.Priority)
	assert.NoError(t, Validate(c, DefaultCompileOptions()))
}
