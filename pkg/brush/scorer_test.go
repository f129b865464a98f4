package brush

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreAs(t *testing.T) {
	s := newTestScorer(t)

	tests := []struct {
		role Role
		text string
		want float64
	}{
		{RoleKnot, "DG B15", 15.5},                // first section, whole text
		{RoleKnot, "Maggard", 13},                 // second section, whole text
		{RoleKnot, "Maggard 24mm", 12.5},          // second section, partial
		{RoleHandle, "C&H Zebra", 15.5},
		{RoleHandle, "Omega", 13},
		{RoleKnot, "26mm boar", 4},                // text + fiber + size
		{RoleHandle, "26mm boar", 0.5},            // fiber argues against a handle
		{RoleHandle, "custom handle", 2},
		{RoleKnot, "custom handle", 1},
		{RoleKnot, "ab", 0},
		{RoleHandle, "--", 0},
		{RoleKnot, "", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.ScoreAs(tt.role, tt.text), "%s %q", tt.role, tt.text)
	}
}

// Any catalog hit must outrank the best heuristic score, otherwise the
// splitter could prefer an orientation real matching would reject.
func TestScoreAs_CatalogAlwaysBeatsHeuristics(t *testing.T) {
	s := newTestScorer(t)

	weakestHit := s.ScoreAs(RoleHandle, "Omega 10049") // second section, partial
	bestHeuristic := s.ScoreAs(RoleKnot, "26mm badger boar knot")
	assert.Greater(t, weakestHit, bestHeuristic)
}

func TestEvaluate_ReturnsResolution(t *testing.T) {
	s := newTestScorer(t)

	score := s.Evaluate(RoleKnot, "DG B15")
	if assert.NotNil(t, score.Match) {
		assert.Equal(t, "Declaration Grooming", score.Match.Component.Brand)
		assert.True(t, score.Match.Covers)
	}
	assert.Nil(t, s.Evaluate(RoleKnot, "26mm boar").Match)
}
