package brush

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/catalog"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/correct"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/matcher"
	"github.com/stretchr/testify/require"
)

// === HELPERS ===

func compiled(t *testing.T, kind catalog.Kind) *catalog.Compiled {
	t.Helper()
	c, err := catalog.NewLoader().LoadBuiltin(kind)
	require.NoError(t, err)
	out, err := catalog.Compile(c, catalog.DefaultCompileOptions())
	require.NoError(t, err)
	return out
}

func builtinCatalogs(t *testing.T) Catalogs {
	t.Helper()
	return Catalogs{
		Brushes: compiled(t, catalog.KindBrush),
		Knots:   compiled(t, catalog.KindKnot),
		Handles: compiled(t, catalog.KindHandle),
	}
}

func newTestMatcher(t *testing.T, filtered *correct.Filtered) (*Matcher, *bytes.Buffer) {
	t.Helper()
	idx, err := correct.LoadBuiltin()
	require.NoError(t, err)
	if filtered == nil {
		filtered, err = correct.LoadFilteredPath("")
		require.NoError(t, err)
	}
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(builtinCatalogs(t), idx, filtered, WithLogger(logger)), &buf
}

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	cats := builtinCatalogs(t)
	return NewScorer(matcher.NewHandle(cats.Handles, nil), matcher.NewKnot(cats.Knots, nil))
}
