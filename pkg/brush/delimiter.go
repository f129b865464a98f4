package brush

import (
	"regexp"
	"sort"
	"strings"
)

// Tier ranks how strongly a delimiter implies a handle/knot combination.
type Tier int

const (
	TierNone Tier = iota
	// TierMedium delimiters (" + ", " - ") are ambiguous and need content scoring.
	TierMedium
	// TierHandlePrimary (" in ") is positional: knot first, handle second.
	TierHandlePrimary
	// TierHigh delimiters (" w/ ", " with ", "/") always split.
	TierHigh
)

func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "high"
	case TierHandlePrimary:
		return "handle-primary"
	case TierMedium:
		return "medium"
	}
	return "none"
}

// Delimiter is one split point found in a brush string. Start and End are
// byte offsets of the delimiter including its surrounding whitespace.
type Delimiter struct {
	Token string // canonical form: "w/", "with", "/", "in", "+", "-"
	Tier  Tier
	Start int
	End   int
}

type delimiterRule struct {
	token string
	tier  Tier
	re    *regexp.Regexp
}

// Rules are applied in order and earlier rules claim their text first, so
// " w/ " is never re-read as a bare "/".
var delimiterRules = []delimiterRule{
	{"w/", TierHigh, regexp.MustCompile(`(?i)\s+w/\s*`)},
	{"with", TierHigh, regexp.MustCompile(`(?i)\s+with\s+`)},
	{"/", TierHigh, regexp.MustCompile(`\s*/\s*`)},
	{"in", TierHandlePrimary, regexp.MustCompile(`(?i)\s+in\s+`)},
	{"+", TierMedium, regexp.MustCompile(`\s+\+\s+`)},
	{"-", TierMedium, regexp.MustCompile(`\s+-\s+`)},
}

// Classify returns every delimiter in text ordered by position. Delimiters
// inside parentheses and "/" between two digits ("50/50") are skipped;
// " x ", " × " and " & " are never delimiters.
func Classify(text string) []Delimiter {
	depth := parenDepth(text)
	claimed := make([]bool, len(text))

	var out []Delimiter
	for _, rule := range delimiterRules {
		for _, loc := range rule.re.FindAllStringIndex(text, -1) {
			start, end := loc[0], loc[1]
			if start == 0 || end == len(text) {
				continue
			}
			if isClaimed(claimed, start, end) || depth[start] > 0 || depth[end-1] > 0 {
				continue
			}
			if rule.token == "/" && betweenDigits(text, start, end) {
				continue
			}
			for i := start; i < end; i++ {
				claimed[i] = true
			}
			out = append(out, Delimiter{Token: rule.token, Tier: rule.tier, Start: start, End: end})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// Strongest returns the highest tier present in delims and its occurrences,
// in position order.
func Strongest(delims []Delimiter) (Tier, []Delimiter) {
	best := TierNone
	for _, d := range delims {
		if d.Tier > best {
			best = d.Tier
		}
	}
	if best == TierNone {
		return TierNone, nil
	}
	var out []Delimiter
	for _, d := range delims {
		if d.Tier == best {
			out = append(out, d)
		}
	}
	return best, out
}

// Sides splits text around d, trimming whitespace.
func (d Delimiter) Sides(text string) (left, right string) {
	return strings.TrimSpace(text[:d.Start]), strings.TrimSpace(text[d.End:])
}

// =============================================================================
// HELPERS
// =============================================================================

// parenDepth returns the bracket nesting depth at every byte of text.
func parenDepth(text string) []int {
	depth := make([]int, len(text))
	d := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '(', '[':
			d++
			depth[i] = d
			continue
		case ')', ']':
			depth[i] = d
			if d > 0 {
				d--
			}
			continue
		}
		depth[i] = d
	}
	return depth
}

func isClaimed(claimed []bool, start, end int) bool {
	for i := start; i < end; i++ {
		if claimed[i] {
			return true
		}
	}
	return false
}

func betweenDigits(text string, start, end int) bool {
	return isDigit(text[start-1]) && isDigit(text[end])
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
