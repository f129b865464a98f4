package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/catalog"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/config"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/correct"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Builtin(t *testing.T) {
	e := newTestEngine(t)

	for _, kind := range catalog.Kinds {
		c := e.Catalog(kind)
		require.NotNil(t, c, kind)
		assert.Positive(t, c.RuleCount(), kind)
	}
	assert.Positive(t, e.Correct().Len())
	assert.Positive(t, e.Filtered().Len(correct.FilterBrush))
}

func TestNew_MissingCatalogDir(t *testing.T) {
	cfg := testConfig()
	cfg.Catalog.Dir = filepath.Join(t.TempDir(), "missing")

	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog")
}

func TestNew_CorrectMatchesConflict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "correct_matches.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`razor:
  Karve:
    Christopher Bradley:
      - Karve CB
  Rockwell:
    6S:
      - karve cb
`), 0o644))
	cfg := testConfig()
	cfg.Catalog.CorrectMatches = path

	_, err := New(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, correct.ErrConflict)
}

func TestMatch_Fields(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		field types.Field
		text  string
		brand string
		model string
	}{
		{types.FieldRazor, "Karve CB", "Karve", "Christopher Bradley"},
		{types.FieldBlade, "Astra SP", "Astra", "Superior Platinum (Green)"},
		{types.FieldSoap, "Stirling Bay Rum", "Stirling Soap Co.", "Bay Rum"},
		{types.FieldBrush, "Zenith B2", "Zenith", "B2"},
	}
	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			res, err := e.Match(tt.field, tt.text)
			require.NoError(t, err)
			require.True(t, res.IsMatched())
			assert.Equal(t, tt.brand, res.Matched.Brand)
			assert.Equal(t, tt.model, res.Matched.Model)
		})
	}
}

func TestMatch_UnknownField(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Match(types.Field("lather"), "anything")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestMatchRecord_RazorFormatDrivesBlade(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name  string
		razor string
		blade string
		brand string
		model string
	}{
		{"GEM razor", "Gem Micromatic", "Accuforge", "Personna", "GEM PTFE"},
		{"DE razor", "Karve CB", "Accuforge", "Personna", "Lab Blue"},
		{"unmatched razor uses file order", "mystery razor", "Accuforge", "Personna", "Lab Blue"},
		{"Half DE falls back to DE", "Leaf Twig", "Feather", "Feather", "Hi-Stainless"},
		{"Half DE prefers its own section", "Leaf Twig", "Feather half", "Feather", "Hi-Stainless (Half DE)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := e.MatchRecord(&types.Record{ID: "r1", Razor: tt.razor, Blade: tt.blade})
			assert.Equal(t, "r1", out.ID)
			require.NotNil(t, out.Blade)
			require.True(t, out.Blade.IsMatched())
			assert.Equal(t, tt.brand, out.Blade.Matched.Brand)
			assert.Equal(t, tt.model, out.Blade.Matched.Model)
		})
	}
}

func TestMatchRecord_NoFallbackForAC(t *testing.T) {
	e := newTestEngine(t)

	out := e.MatchRecord(&types.Record{ID: "r1", Razor: "Feather DX", Blade: "Feather"})
	require.NotNil(t, out.Razor)
	assert.Equal(t, "AC", out.Razor.Matched.Format)
	require.NotNil(t, out.Blade)
	assert.False(t, out.Blade.IsMatched())
}

func TestMatchRecord_EmptyFieldsAbsent(t *testing.T) {
	e := newTestEngine(t)

	out := e.MatchRecord(&types.Record{ID: "r2", Soap: "B&M Seville", Brush: "  "})
	assert.Nil(t, out.Razor)
	assert.Nil(t, out.Blade)
	assert.Nil(t, out.Brush)
	require.NotNil(t, out.Soap)
	assert.Equal(t, types.MatchExact, out.Soap.MatchType)
}

func TestMatchRecord_PanicDegradesToUnmatched(t *testing.T) {
	var logs bytes.Buffer
	e := newTestEngine(t, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	e.matchers[types.FieldSoap] = panicMatcher{}

	out := e.MatchRecord(&types.Record{ID: "r3", Razor: "Karve CB", Soap: "Tabac"})
	require.NotNil(t, out.Razor)
	assert.True(t, out.Razor.IsMatched())

	require.NotNil(t, out.Soap)
	assert.False(t, out.Soap.IsMatched())
	assert.Contains(t, out.Soap.Error, "boom")
	assert.Contains(t, logs.String(), "matching failed")
	assert.Contains(t, logs.String(), "id=r3")
}

func TestRazorFormat(t *testing.T) {
	assert.Empty(t, RazorFormat(types.Unmatched("x")))
	assert.Equal(t, "DE", RazorFormat(&types.MatchResult{MatchType: types.MatchRegex, Matched: &types.Matched{Brand: "X"}}))
	assert.Equal(t, "GEM", RazorFormat(&types.MatchResult{MatchType: types.MatchRegex, Matched: &types.Matched{Brand: "Gem", Format: "GEM"}}))
}

func TestMatchBatch_PreservesOrder(t *testing.T) {
	e := newTestEngine(t)

	inputs := []string{"Karve CB", "Gem Micromatic", "Leaf Twig", "mystery razor"}
	var records []types.Record
	for i := 0; i < 40; i++ {
		records = append(records, types.Record{ID: fmt.Sprintf("r%02d", i), Razor: inputs[i%len(inputs)]})
	}

	results, err := e.MatchBatch(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, results, len(records))
	for i, res := range results {
		assert.Equal(t, records[i].ID, res.ID)
		assert.Equal(t, records[i].Razor, res.Razor.Original)
	}
}

func TestMatchBatch_MatchesSequentialResults(t *testing.T) {
	e := newTestEngine(t)

	records := []types.Record{
		{ID: "a", Razor: "Leaf Twig", Blade: "Feather", Brush: "DG B15 w/ C&H Zebra", Soap: "Tabac"},
		{ID: "b", Razor: "Feather DX", Blade: "Feather Pro Super", Brush: "Maggard 24mm synthetic"},
		{ID: "c", Blade: "Accuforge", Brush: "C&H v21"},
	}
	results, err := e.MatchBatch(context.Background(), records)
	require.NoError(t, err)
	for i := range records {
		assert.Equal(t, e.MatchRecord(&records[i]), results[i])
	}
}

func TestMatchBatch_ConcurrentMixedRecords(t *testing.T) {
	cfg := testConfig()
	cfg.Batch.Workers = 8
	e, err := New(cfg, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)

	razors := []string{"Karve CB", "Gem Micromatic", "Leaf Twig", "Feather DX", "mystery razor", ""}
	blades := []string{"Accuforge", "Feather", "Feather half", "Astra SP", "Feather Pro Super", ""}
	brushes := []string{
		"DG B15 w/ C&H Zebra", "Maggard 24mm synthetic", "Chisel & Hound Sakura with v21 Fanchurian",
		"Zenith B2", "Omega 10049 - Wolf Whiskers", "Badger + Boar", "Mystery 26mm boar", "C&H v21", "",
	}
	soaps := []string{"Stirling Bay Rum", "B&M Seville", "Tabac", "zzqx unknown", ""}

	records := make([]types.Record, 3000)
	for i := range records {
		records[i] = types.Record{
			ID:    fmt.Sprintf("r%04d", i),
			Razor: razors[i%len(razors)],
			Blade: blades[(i/2)%len(blades)],
			Brush: brushes[(i/3)%len(brushes)],
			Soap:  soaps[(i/5)%len(soaps)],
		}
	}

	want := make([]*types.RecordResult, len(records))
	for i := range records {
		want[i] = e.MatchRecord(&records[i])
	}

	for run := 0; run < 2; run++ {
		got, err := e.MatchBatch(context.Background(), records)
		require.NoError(t, err)
		require.Len(t, got, len(records))
		for i := range records {
			require.Equal(t, want[i], got[i], "record %s", records[i].ID)
		}
	}
}

func TestMatchBatch_Canceled(t *testing.T) {
	e := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.MatchBatch(ctx, []types.Record{{ID: "a", Razor: "Karve CB"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMatchBatch_Empty(t *testing.T) {
	e := newTestEngine(t)

	results, err := e.MatchBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

// =============================================================================
// HELPERS
// =============================================================================

func testConfig() *config.Config {
	return &config.Config{
		Match: config.MatchConfig{RegexTimeout: 100 * time.Millisecond},
		Batch: config.BatchConfig{Workers: 4},
		Log:   config.LogConfig{Level: "info", Format: "text"},
	}
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(testConfig(), opts...)
	require.NoError(t, err)
	return e
}

type panicMatcher struct{}

func (panicMatcher) Match(string) *types.MatchResult { panic("boom") }

func (panicMatcher) MatchWithContext(string, string) *types.MatchResult { panic("boom") }
