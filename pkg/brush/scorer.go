package brush

import (
	"regexp"
	"unicode"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/fiber"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/matcher"
)

// Role is the part of a brush a candidate string is scored as.
type Role string

const (
	RoleHandle Role = "handle"
	RoleKnot   Role = "knot"
)

// Scoring constants. A catalog hit always outranks any heuristic score.
const (
	catalogBase     = 10.0
	priorityBoost   = 5.0
	fullCoverBonus  = 0.5
	textScore       = 1.0
	fiberKnotBonus  = 2.0
	sizeKnotBonus   = 1.0
	fiberHandleCost = 0.5
	handleWordBonus = 1.0
)

var handleWordRe = regexp.MustCompile(`(?i)\bhandle\b`)

// Resolver resolves a string as one brush component. *matcher.Sectioned
// implements it.
type Resolver interface {
	Resolve(text string) (*matcher.Resolution, bool)
}

// Score is the outcome of scoring a candidate in one role.
type Score struct {
	Value float64
	// Match is the catalog resolution the score came from, nil for heuristics.
	Match *matcher.Resolution
}

// Scorer rates candidate strings by running the real handle and knot
// matchers, so scoring and matching cannot disagree.
type Scorer struct {
	handles Resolver
	knots   Resolver
}

// NewScorer creates a scorer backed by the given matchers.
func NewScorer(handles, knots Resolver) *Scorer {
	return &Scorer{handles: handles, knots: knots}
}

// ScoreAs returns how likely text is to be the given role.
func (s *Scorer) ScoreAs(role Role, text string) float64 {
	return s.Evaluate(role, text).Value
}

// Evaluate scores text and returns the resolution used, if any.
func (s *Scorer) Evaluate(role Role, text string) Score {
	r := s.resolver(role)
	if res, ok := r.Resolve(text); ok {
		return Score{Value: catalogScore(res), Match: res}
	}
	return Score{Value: heuristicScore(role, text)}
}

func (s *Scorer) resolver(role Role) Resolver {
	if role == RoleHandle {
		return s.handles
	}
	return s.knots
}

// catalogScore is a high base boosted inversely by section priority.
func catalogScore(res *matcher.Resolution) float64 {
	priority := 1
	if info := res.Component.SectionInfo; info != nil && info.Priority > 0 {
		priority = info.Priority
	}
	score := catalogBase + priorityBoost/float64(priority)
	if res.Covers {
		score += fullCoverBonus
	}
	return score
}

func heuristicScore(role Role, text string) float64 {
	if alnumCount(text) == 0 {
		return 0
	}
	score := 0.0
	if alnumCount(text) >= 3 {
		score = textScore
	}
	hasFiber := fiber.HasFiber(text)
	switch role {
	case RoleKnot:
		if hasFiber {
			score += fiberKnotBonus
		}
		if _, ok := fiber.KnotSize(text); ok {
			score += sizeKnotBonus
		}
	case RoleHandle:
		if hasFiber {
			score -= fiberHandleCost
		}
		if handleWordRe.MatchString(text) {
			score += handleWordBonus
		}
	}
	if score < 0 {
		return 0
	}
	return score
}

func alnumCount(text string) int {
	n := 0
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
