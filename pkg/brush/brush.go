// Package brush matches brush strings, which may name a complete brush or a
// handle and a knot from different makers.
//
// The pipeline is: filtered check, correct matches (brush, then handle and
// knot), delimiter split with per-component matching and maker comparison,
// and finally whole-string fallbacks (complete brush, knot only, handle
// only, fiber only).
package brush

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/catalog"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/correct"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/fiber"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/matcher"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/types"
)

// Catalogs are the compiled catalogs the brush matcher needs.
type Catalogs struct {
	Brushes *catalog.Compiled
	Knots   *catalog.Compiled
	Handles *catalog.Compiled
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithLogger sets the logger for handle-matching failures and pattern errors.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Matcher is the brush orchestrator. It is immutable after New and safe for
// concurrent use.
type Matcher struct {
	correct  *correct.Index
	filtered *correct.Filtered
	brushes  *matcher.CatalogMatcher
	knots    *matcher.Sectioned
	handles  *matcher.Sectioned
	splitter *Splitter
	logger   *slog.Logger
}

var _ matcher.Matcher = (*Matcher)(nil)

// New creates a brush matcher.
func New(cats Catalogs, idx *correct.Index, filtered *correct.Filtered, opts ...Option) *Matcher {
	m := &Matcher{
		correct:  idx,
		filtered: filtered,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	withLog := matcher.WithLogger(m.logger)
	m.brushes = matcher.New(cats.Brushes, matcher.WithSectionInfo(true), withLog)
	m.knots = matcher.NewKnot(cats.Knots, idx, withLog)
	m.handles = matcher.NewHandle(cats.Handles, idx, withLog)
	m.splitter = NewSplitter(NewScorer(m.handles, m.knots))
	return m
}

// Splitter returns the splitter used by the matcher.
func (m *Matcher) Splitter() *Splitter {
	return m.splitter
}

// MatchWithContext ignores the context; brushes have no format axis.
func (m *Matcher) MatchWithContext(text, _ string) *types.MatchResult {
	return m.Match(text)
}

// Match resolves a brush string.
func (m *Matcher) Match(text string) *types.MatchResult {
	if strings.TrimSpace(text) == "" {
		return types.Unmatched(text)
	}
	if m.filtered.IsFiltered(correct.FilterBrush, text) {
		res := types.Unmatched(text)
		res.Filtered = true
		return res
	}

	if res, ok := m.matchCorrect(text); ok {
		return finish(res)
	}

	var partial *types.MatchResult
	for _, c := range m.splitter.Split(text) {
		h := m.component(correct.FilterBrushHandle, c.Handle, c.HandleScore)
		k := m.component(correct.FilterBrushKnot, c.Knot, c.KnotScore)
		if h != nil && k != nil {
			return finish(m.combine(text, h, k))
		}
		if partial == nil && (h != nil || k != nil) {
			partial = m.partial(text, c, h, k)
		}
	}

	if res, ok := m.matchComplete(text); ok {
		return finish(res)
	}
	if partial != nil {
		return finish(partial)
	}
	if c, ok := m.knots.Component(text); ok {
		fillFromText(c, text)
		return finish(single(text, types.MatchKnot, nil, c))
	}
	if c, ok := m.handles.Component(text); ok {
		return finish(single(text, types.MatchArtisan, c, nil))
	}
	if f, ok := fiber.Detect(text); ok {
		size, _ := fiber.KnotSize(text)
		return &types.MatchResult{
			Original:  text,
			MatchType: types.MatchFiber,
			Matched: &types.Matched{
				Fiber:      f,
				KnotSizeMM: size,
				Knot:       &types.ComponentMatch{Fiber: f, KnotSizeMM: size, SourceText: text, MatchType: types.MatchFiber},
			},
		}
	}
	return types.Unmatched(text)
}

// matchCorrect checks the brush section, then the handle and knot sections.
func (m *Matcher) matchCorrect(text string) (*types.MatchResult, bool) {
	if res, ok := m.correct.Lookup(types.FieldBrush, text); ok {
		res.SectionInfo = m.brushes.InfoFor(res.Matched.Brand, res.Matched.Model)
		if e, ok := m.brushes.Entry(res.Matched.Brand, res.Matched.Model); ok {
			res.Matched.Fiber = e.StringAttr(matcher.AttrFiber)
			res.Matched.KnotSizeMM = e.FloatAttr(matcher.AttrKnotSizeMM)
		}
		return res, true
	}
	if _, ok := m.correct.LookupHandle(text); ok {
		c, _ := m.handles.Component(text)
		return single(text, types.MatchExact, c, nil), true
	}
	if _, ok := m.correct.LookupKnot(text); ok {
		c, _ := m.knots.Component(text)
		return single(text, types.MatchExact, nil, c), true
	}
	return nil, false
}

// component returns the resolved side of a split, or nil when the side is
// filtered or did not resolve.
func (m *Matcher) component(filterKey, text string, s Score) *types.ComponentMatch {
	if m.filtered.IsFiltered(filterKey, text) || s.Match == nil {
		return nil
	}
	c := *s.Match.Component
	if filterKey == correct.FilterBrushKnot {
		fillFromText(&c, text)
	}
	return &c
}

// combine builds the result of a split whose sides both resolved. The same
// maker on both sides is a complete brush; different makers leave the
// top-level brand and model empty.
func (m *Matcher) combine(text string, h, k *types.ComponentMatch) *types.MatchResult {
	if strings.EqualFold(h.Brand, k.Brand) {
		if hit, ok := m.brushes.Find(text); ok && strings.EqualFold(hit.Entry.Brand, h.Brand) {
			res := m.brushes.Result(text, hit)
			res.Matched.Handle = h
			res.Matched.Knot = k
			fillFromKnot(res.Matched, k)
			return res
		}
	}

	mt := types.MatchRegex
	if h.MatchType == types.MatchExact && k.MatchType == types.MatchExact {
		mt = types.MatchExact
	}
	matched := &types.Matched{Handle: h, Knot: k}
	if strings.EqualFold(h.Brand, k.Brand) {
		matched.Brand = h.Brand
	}
	fillFromKnot(matched, k)
	return &types.MatchResult{Original: text, Matched: matched, MatchType: mt}
}

// partial builds the result of a split where only one side resolved.
func (m *Matcher) partial(text string, c Candidate, h, k *types.ComponentMatch) *types.MatchResult {
	if h == nil {
		h = unresolved(c.Handle)
		return single(text, types.MatchKnot, h, k)
	}
	k = unresolved(c.Knot)
	fillFromText(k, c.Knot)
	return single(text, types.MatchArtisan, h, k)
}

// matchComplete is the whole-string complete-brush fallback, followed by
// handle matching when the entry enables it.
func (m *Matcher) matchComplete(text string) (*types.MatchResult, bool) {
	hit, ok := m.brushes.Find(text)
	if !ok {
		return nil, false
	}
	res := m.brushes.Result(text, hit)
	if res.Matched.Fiber == "" {
		res.Matched.Fiber, _ = fiber.Detect(text)
	}
	if res.Matched.KnotSizeMM == 0 {
		res.Matched.KnotSizeMM, _ = fiber.KnotSize(text)
	}

	if hit.Entry.HandleMatching {
		err := m.matchHandle(text, res, hit.Entry)
		var hmf *HandleMatchingFailure
		if errors.As(err, &hmf) {
			m.logger.Warn("handle matching failed, keeping complete brush match",
				"text", hmf.Text, "brand", hmf.Brand, "model", hmf.Model, "handle_text", hmf.HandleText)
		}
	}
	return res, true
}

// matchHandle re-runs handle matching on the whole text, restricted to the
// brush maker's own handle entries. On success the handle is replaced and the
// complete-brush match becomes the knot. A brand-level handle hit is not
// specific enough and counts as a failure.
func (m *Matcher) matchHandle(text string, res *types.MatchResult, e *types.CatalogEntry) error {
	hm := m.handles.Catalog().With(matcher.WithBrand(e.Brand))
	hit, ok := hm.Find(text)
	if !ok || hit.Entry.BrandLevel() {
		return &HandleMatchingFailure{Text: text, Brand: e.Brand, Model: e.Model, HandleText: text}
	}

	knot := &types.ComponentMatch{
		Brand:      e.Brand,
		Model:      e.Model,
		Fiber:      res.Matched.Fiber,
		KnotSizeMM: res.Matched.KnotSizeMM,
		SourceText: text,
		MatchType:  res.MatchType,
		Pattern:    res.Pattern,
	}
	if res.SectionInfo != nil {
		info := *res.SectionInfo
		knot.SectionInfo = &info
	}
	res.Matched.Handle = hm.Component(text, hit)
	res.Matched.Knot = knot
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// single builds a result with one resolved component; the top level takes
// that component's brand and model.
func single(text string, mt types.MatchType, h, k *types.ComponentMatch) *types.MatchResult {
	src := h
	if mt == types.MatchKnot || (h == nil && k != nil) {
		src = k
	}
	matched := &types.Matched{Brand: src.Brand, Model: src.Model, Handle: h, Knot: k}
	if k != nil {
		fillFromKnot(matched, k)
	}
	res := &types.MatchResult{Original: text, Matched: matched, MatchType: mt, Pattern: src.Pattern}
	if src.SectionInfo != nil {
		info := *src.SectionInfo
		res.SectionInfo = &info
	}
	return res
}

func unresolved(text string) *types.ComponentMatch {
	return &types.ComponentMatch{SourceText: text, MatchType: types.MatchUnmatched}
}

func fillFromText(c *types.ComponentMatch, text string) {
	if c.Fiber == "" {
		c.Fiber, _ = fiber.Detect(text)
	}
	if c.KnotSizeMM == 0 {
		c.KnotSizeMM, _ = fiber.KnotSize(text)
	}
}

func fillFromKnot(m *types.Matched, k *types.ComponentMatch) {
	if m.Fiber == "" {
		m.Fiber = k.Fiber
	}
	if m.KnotSizeMM == 0 {
		m.KnotSizeMM = k.KnotSizeMM
	}
}

// finish enforces the combination invariant on every returned result.
func finish(res *types.MatchResult) *types.MatchResult {
	if res.Matched != nil {
		res.Matched.Normalize()
	}
	return res
}
