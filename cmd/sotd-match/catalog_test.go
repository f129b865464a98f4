package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/catalog"
)

func TestRunCatalogList_Table(t *testing.T) {
	cliEnv(t)

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	require.NoError(t, runCatalogList(cmd, nil))

	out := buf.String()
	assert.Contains(t, out, "KIND")
	for _, kind := range catalog.Kinds {
		assert.Contains(t, out, string(kind))
	}
	assert.Contains(t, out, "builtin")
	assert.Contains(t, out, "Correct matches:")
}

func TestRunCatalogList_JSON(t *testing.T) {
	cliEnv(t)
	catalogFormat = "json"
	defer func() { catalogFormat = "table" }()

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	require.NoError(t, runCatalogList(cmd, nil))

	var stats []catalogStat
	require.NoError(t, json.Unmarshal(buf.Bytes(), &stats))
	require.Len(t, stats, len(catalog.Kinds))
	for _, s := range stats {
		assert.Equal(t, "builtin", s.Source)
		assert.Positive(t, s.Entries, s.Kind)
		assert.GreaterOrEqual(t, s.Rules, s.Entries, s.Kind)
	}
}

func TestRunCatalogValidate_Builtin(t *testing.T) {
	cliEnv(t)

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	require.NoError(t, runCatalogValidate(cmd, nil))

	out := buf.String()
	assert.Contains(t, out, "ok    razors")
	assert.Contains(t, out, "ok    correct_matches")
	assert.Contains(t, out, "ok    filtered")
	assert.NotContains(t, out, "FAIL")
}

func TestRunCatalogValidate_ReportsBadPattern(t *testing.T) {
	cliEnv(t)
	dir := t.TempDir()
	for _, kind := range catalog.Kinds {
		data, err := os.ReadFile(filepath.Join("..", "..", "pkg", "catalog", "data", string(kind)+".yaml"))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, string(kind)+".yaml"), data, 0o644))
	}
	bad := "Karve:\n  CB:\n    patterns:\n      - \"karve(\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "razors.yaml"), []byte(bad), 0o644))

	catalogDir = dir
	defer func() { catalogDir = "" }()

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	err := runCatalogValidate(cmd, nil)
	assert.ErrorContains(t, err, "1 of 8 files failed validation")

	out := buf.String()
	assert.Contains(t, out, "FAIL  razors")
	assert.Contains(t, out, "karve(")
	assert.Contains(t, out, "ok    blades")
}
