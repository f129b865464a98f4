package types

import "strings"

// MatchType records how a result was resolved.
type MatchType string

const (
	MatchExact     MatchType = "exact"     // correct-matches override
	MatchRegex     MatchType = "regex"     // model-level catalog pattern
	MatchAlias     MatchType = "alias"     // literal catalog alias
	MatchBrand     MatchType = "brand"     // brand-level pattern only
	MatchFiber     MatchType = "fiber"     // brush resolved to a fiber keyword only
	MatchKnot      MatchType = "knot"      // brush resolved from the knot catalog alone
	MatchArtisan   MatchType = "artisan"   // brush resolved from the handle catalog alone
	MatchUnmatched MatchType = "unmatched" // nothing matched
)

// SectionInfo is present only for results that came from a prioritized,
// sectioned catalog. A nil *SectionInfo means "no section info".
type SectionInfo struct {
	Section  string `json:"section"`
	Priority int    `json:"priority"`
}

// MatchResult is the single result type returned by every matcher.
type MatchResult struct {
	Original  string    `json:"original"`
	Matched   *Matched  `json:"matched"`
	MatchType MatchType `json:"match_type"`
	Pattern   string    `json:"pattern,omitempty"`
	*SectionInfo

	// Filtered marks strings an operator listed as not worth matching.
	Filtered bool `json:"filtered,omitempty"`
	// Error is set when matching this record failed and degraded to unmatched.
	Error string `json:"error,omitempty"`
}

// Matched holds the canonical fields of a resolved product.
// Empty Brand/Model is the null value and is omitted from JSON.
type Matched struct {
	Brand      string          `json:"brand,omitempty"`
	Model      string          `json:"model,omitempty"`
	Format     string          `json:"format,omitempty"`
	Fiber      string          `json:"fiber,omitempty"`
	KnotSizeMM float64         `json:"knot_size_mm,omitempty"`
	Handle     *ComponentMatch `json:"handle,omitempty"`
	Knot       *ComponentMatch `json:"knot,omitempty"`
	Attrs      map[string]any  `json:"attrs,omitempty"`
}

// ComponentMatch is one resolved side of a brush.
type ComponentMatch struct {
	Brand      string    `json:"brand,omitempty"`
	Model      string    `json:"model,omitempty"`
	Fiber      string    `json:"fiber,omitempty"`
	KnotSizeMM float64   `json:"knot_size_mm,omitempty"`
	SourceText string    `json:"source_text"`
	MatchType  MatchType `json:"match_type"`
	Pattern    string    `json:"pattern,omitempty"`
	*SectionInfo
}

// Unmatched returns an unmatched result for text.
func Unmatched(text string) *MatchResult {
	return &MatchResult{
		Original:  text,
		MatchType: MatchUnmatched,
	}
}

// HasSectionInfo reports whether both section and priority are present.
func (r *MatchResult) HasSectionInfo() bool {
	return r != nil && r.SectionInfo != nil
}

// IsMatched reports whether the result resolved to anything.
func (r *MatchResult) IsMatched() bool {
	return r != nil && r.Matched != nil && r.MatchType != MatchUnmatched
}

// IsCombination reports whether handle and knot come from different makers.
func (m *Matched) IsCombination() bool {
	if m == nil || m.Handle == nil || m.Knot == nil {
		return false
	}
	return m.Handle.Brand != "" && m.Knot.Brand != "" && !strings.EqualFold(m.Handle.Brand, m.Knot.Brand)
}

// Normalize enforces the handle/knot combination invariant: a brush whose
// components resolve to different makers never carries a top-level
// brand or model.
func (m *Matched) Normalize() *Matched {
	if m.IsCombination() {
		m.Brand = ""
		m.Model = ""
	}
	return m
}
