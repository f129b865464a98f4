package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/store"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/types"
)

func runReportCmd(t *testing.T, path, run, format string) (string, error) {
	t.Helper()
	cliEnv(t)
	reportStore, reportRun, reportFormat, reportColor = path, run, format, "never"
	defer func() { reportStore, reportRun, reportFormat, reportColor = "", "", "human", "auto" }()

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	err := runReport(cmd, nil)
	return buf.String(), err
}

func TestRunReport_Human(t *testing.T) {
	path, run := seedStore(t, t.TempDir(), "results.db", "march.jsonl")

	out, err := runReportCmd(t, path, "", "human")
	require.NoError(t, err)

	assert.Contains(t, out, "Run: "+run.ID)
	assert.Contains(t, out, "Source: march.jsonl")
	assert.Contains(t, out, "Records: 2")
	assert.Contains(t, out, "FIELD")
	assert.Contains(t, out, "Top razor brands")
	assert.Contains(t, out, "Karve")
	assert.NotContains(t, out, "Top soap brands")
}

func TestRunReport_JSON(t *testing.T) {
	path, run := seedStore(t, t.TempDir(), "results.db", "march.jsonl")

	out, err := runReportCmd(t, path, run.ID, "json")
	require.NoError(t, err)

	var got struct {
		Run     store.Run     `json:"run"`
		Summary store.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, run.ID, got.Run.ID)
	assert.Equal(t, 2, got.Summary.Records)

	razor, ok := got.Summary.Field(types.FieldRazor)
	require.True(t, ok)
	assert.Equal(t, 2, razor.Matched)
	require.Len(t, razor.Brands, 1)
	assert.Equal(t, store.BrandCount{Brand: "Karve", Count: 2}, razor.Brands[0])

	soap, ok := got.Summary.Field(types.FieldSoap)
	require.True(t, ok)
	assert.Equal(t, 1, soap.Unmatched)
}

func TestRunReport_Errors(t *testing.T) {
	dir := t.TempDir()
	path, _ := seedStore(t, dir, "results.db", "march.jsonl")

	_, err := runReportCmd(t, path, "no-such-run", "human")
	assert.ErrorIs(t, err, store.ErrRunNotFound)

	_, err = runReportCmd(t, filepath.Join(dir, "missing.db"), "", "human")
	assert.ErrorContains(t, err, "opening result store")

	_, err = runReportCmd(t, "", "", "human")
	assert.ErrorContains(t, err, "no result store")

	_, err = runReportCmd(t, path, "", "sarif")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestColorEnabled(t *testing.T) {
	assert.True(t, colorEnabled("always"))
	assert.False(t, colorEnabled("never"))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, colorEnabled("auto"))
}
