package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/types"
)

func runMatchCmd(t *testing.T, format, context string, args ...string) (string, error) {
	t.Helper()
	cliEnv(t)
	matchFormat, matchContext, matchColor = format, context, "never"
	defer func() { matchFormat, matchContext, matchColor = "human", "", "auto" }()

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	err := runMatch(cmd, args)
	return buf.String(), err
}

func TestRunMatch_JSON(t *testing.T) {
	out, err := runMatchCmd(t, "json", "", "brush", "DG", "B15", "w/", "C&H", "Zebra")
	require.NoError(t, err)

	var res types.MatchResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "DG B15 w/ C&H Zebra", res.Original)
	require.NotNil(t, res.Matched)
	assert.Empty(t, res.Matched.Brand)
	require.NotNil(t, res.Matched.Handle)
	assert.Equal(t, "Chisel & Hound", res.Matched.Handle.Brand)
	require.NotNil(t, res.Matched.Knot)
	assert.Equal(t, "Declaration Grooming", res.Matched.Knot.Brand)
}

func TestRunMatch_BladeContext(t *testing.T) {
	out, err := runMatchCmd(t, "json", "GEM", "blade", "Accuforge")
	require.NoError(t, err)

	var res types.MatchResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotNil(t, res.Matched)
	assert.Equal(t, "GEM PTFE", res.Matched.Model)
}

func TestRunMatch_Human(t *testing.T) {
	out, err := runMatchCmd(t, "human", "", "razor", "Karve CB")
	require.NoError(t, err)

	assert.Contains(t, out, "Original: Karve CB")
	assert.Contains(t, out, "Brand: Karve")
	assert.Contains(t, out, "Model: Christopher Bradley")
	assert.NotContains(t, out, "\x1b[", "color must be off with --color=never")
}

func TestRunMatch_HumanComponents(t *testing.T) {
	out, err := runMatchCmd(t, "human", "", "brush", "DG B15 w/ C&H Zebra")
	require.NoError(t, err)

	assert.Contains(t, out, `Handle: Chisel & Hound Zebra [regex] from "C&H Zebra"`)
	assert.Contains(t, out, "Knot: Declaration Grooming B15")
	assert.Contains(t, out, "26mm")
	assert.NotContains(t, out, "Brand:")
}

func TestRunMatch_HumanUnmatched(t *testing.T) {
	out, err := runMatchCmd(t, "human", "", "soap", "zzqx unknown")
	require.NoError(t, err)

	assert.Contains(t, out, "Match: unmatched")
	assert.NotContains(t, out, "Brand:")
}

func TestRunMatch_Errors(t *testing.T) {
	_, err := runMatchCmd(t, "human", "", "lather", "anything")
	assert.ErrorContains(t, err, "unknown field")

	_, err = runMatchCmd(t, "xml", "", "razor", "Karve CB")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "26mm", formatSize(26))
	assert.Equal(t, "25.5mm", formatSize(25.5))
}
