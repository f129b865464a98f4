package matcher

import (
	"testing"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/catalog"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/correct"
	"github.com/stretchr/testify/require"
)

// === HELPERS ===

func builtin(t *testing.T, kind catalog.Kind) *catalog.Compiled {
	t.Helper()
	c, err := catalog.NewLoader().LoadBuiltin(kind)
	require.NoError(t, err)
	compiled, err := catalog.Compile(c, catalog.DefaultCompileOptions())
	require.NoError(t, err)
	return compiled
}

func compileString(t *testing.T, kind catalog.Kind, data string) *catalog.Compiled {
	t.Helper()
	c, err := catalog.NewLoader().Load(kind, []byte(data), "test.yaml")
	require.NoError(t, err)
	compiled, err := catalog.Compile(c, catalog.DefaultCompileOptions())
	require.NoError(t, err)
	return compiled
}

func builtinCorrect(t *testing.T) *correct.Index {
	t.Helper()
	idx, err := correct.LoadBuiltin()
	require.NoError(t, err)
	return idx
}

func builtinFiltered(t *testing.T) *correct.Filtered {
	t.Helper()
	f, err := correct.LoadFilteredPath("")
	require.NoError(t, err)
	return f
}
