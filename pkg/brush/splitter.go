package brush

import (
	"sort"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/normalize"
)

// Candidate is one (handle, knot) reading of a brush string.
type Candidate struct {
	Handle    string
	Knot      string
	Delimiter Delimiter
	// HandleScore and KnotScore are the scores of each side in its role.
	HandleScore Score
	KnotScore   Score
}

// Score is the combined score of both sides.
func (c Candidate) Score() float64 {
	return c.HandleScore.Value + c.KnotScore.Value
}

// hasCatalogHit reports whether either side resolved in its role.
func (c Candidate) hasCatalogHit() bool {
	return c.HandleScore.Match != nil || c.KnotScore.Match != nil
}

// Splitter produces handle/knot candidates for a brush string.
type Splitter struct {
	scorer *Scorer
}

// NewSplitter creates a splitter.
func NewSplitter(scorer *Scorer) *Splitter {
	return &Splitter{scorer: scorer}
}

// Split returns candidate splits, best first, or nil when text has no
// usable delimiter.
//
// High-tier delimiters split once at the first occurrence and content picks
// the orientation. " in " is positional. Medium-tier delimiters try every
// occurrence in both orientations and keep only candidates with at least one
// catalog hit.
func (s *Splitter) Split(text string) []Candidate {
	work := normalize.Collapse(text)
	tier, delims := Strongest(Classify(work))

	switch tier {
	case TierHigh:
		left, right := delims[0].Sides(work)
		if left == "" || right == "" {
			return nil
		}
		return []Candidate{s.orient(left, right, delims[0])}

	case TierHandlePrimary:
		knot, handle := delims[0].Sides(work)
		if knot == "" || handle == "" {
			return nil
		}
		return []Candidate{s.candidate(handle, knot, delims[0])}

	case TierMedium:
		var out []Candidate
		for _, d := range delims {
			left, right := d.Sides(work)
			if left == "" || right == "" {
				continue
			}
			for _, c := range []Candidate{s.candidate(left, right, d), s.candidate(right, left, d)} {
				if c.hasCatalogHit() {
					out = append(out, c)
				}
			}
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Score() > out[j].Score() })
		return out
	}
	return nil
}

// orient scores both assignments and keeps the better one; ties keep the
// left side as the handle.
func (s *Splitter) orient(left, right string, d Delimiter) Candidate {
	a := s.candidate(left, right, d)
	b := s.candidate(right, left, d)
	if b.Score() > a.Score() {
		return b
	}
	return a
}

func (s *Splitter) candidate(handle, knot string, d Delimiter) Candidate {
	return Candidate{
		Handle:      handle,
		Knot:        knot,
		Delimiter:   d,
		HandleScore: s.scorer.Evaluate(RoleHandle, handle),
		KnotScore:   s.scorer.Evaluate(RoleKnot, knot),
	}
}
