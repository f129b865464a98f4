package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/store"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/types"
)

// cliEnv isolates a test from config files and env overrides in the
// developer's shell.
func cliEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SOTD_CONFIG", "")
	t.Setenv("SOTD_STORE_PATH", "")
	t.Setenv("SOTD_CATALOG_DIR", "")
	t.Setenv("SOTD_LOG_LEVEL", "error")
	configPath = ""
	verbose, quiet = false, false
}

// seedStore writes one run with two records to a new SQLite store.
func seedStore(t *testing.T, dir, name, source string) (string, *store.Run) {
	t.Helper()
	path := filepath.Join(dir, name)
	s, err := store.NewSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	run := store.NewRun(source)
	require.NoError(t, s.CreateRun(run))
	require.NoError(t, s.AddResults(run.ID, []*types.RecordResult{
		{
			ID:    "1",
			Razor: &types.MatchResult{Original: "Karve CB", MatchType: types.MatchRegex, Matched: &types.Matched{Brand: "Karve", Model: "Christopher Bradley"}},
			Soap:  types.Unmatched("mystery puck"),
		},
		{
			ID:    "2",
			Razor: &types.MatchResult{Original: "karve overlander", MatchType: types.MatchRegex, Matched: &types.Matched{Brand: "Karve", Model: "Overlander"}},
		},
	}))
	return path, run
}
