package matcher

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/catalog"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/normalize"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/types"
)

// Attribute keys promoted from catalog entries into Matched fields.
const (
	AttrFormat     = "format"
	AttrFiber      = "fiber"
	AttrKnotSizeMM = "knot_size_mm"
)

// Hit is the winning rule of a catalog search.
type Hit struct {
	Entry    *types.CatalogEntry
	Rule     *catalog.Rule
	Span     catalog.Span
	Section  string
	Priority int
	// TextLen is the rune length of the normalized input.
	TextLen int
}

// Covers reports whether the match spans the whole normalized input.
func (h *Hit) Covers() bool {
	return h.Span.Start == 0 && h.Span.Length == h.TextLen
}

// MatchType returns the match type a hit produces.
func (h *Hit) MatchType() types.MatchType {
	switch {
	case h.Rule.Alias:
		return types.MatchAlias
	case h.Entry.BrandLevel():
		return types.MatchBrand
	}
	return types.MatchRegex
}

// Option configures a CatalogMatcher.
type Option func(*CatalogMatcher)

// WithSections restricts the search to the named sections, in the given order.
// Unknown names are ignored; a matcher with no sections finds nothing.
func WithSections(names ...string) Option {
	return func(m *CatalogMatcher) {
		m.sections = m.sections[:0:0]
		for _, name := range names {
			if s, ok := m.compiled.Section(name); ok {
				m.sections = append(m.sections, s)
			}
		}
	}
}

// WithBrand restricts the search to one brand's entries.
func WithBrand(brand string) Option {
	return func(m *CatalogMatcher) {
		m.brand = brand
	}
}

// WithSectionInfo controls whether results carry section and priority.
func WithSectionInfo(on bool) Option {
	return func(m *CatalogMatcher) {
		m.sectionInfo = on
	}
}

// WithLogger sets the logger used for pattern evaluation failures.
func WithLogger(logger *slog.Logger) Option {
	return func(m *CatalogMatcher) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// CatalogMatcher finds the best entry of a compiled catalog for a string.
// Sections are searched in ascending priority and the first section with any
// hit wins. Inside a section the longest matched span wins, then declaration
// order. It is immutable and safe for concurrent use.
type CatalogMatcher struct {
	compiled    *catalog.Compiled
	sections    []*catalog.CompiledSection
	brand       string
	sectionInfo bool
	logger      *slog.Logger
}

// New creates a matcher over every section of compiled.
func New(compiled *catalog.Compiled, opts ...Option) *CatalogMatcher {
	m := &CatalogMatcher{
		compiled: compiled,
		sections: compiled.Sections,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// With returns a copy of m with extra options applied.
func (m *CatalogMatcher) With(opts ...Option) *CatalogMatcher {
	c := *m
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

// Compiled returns the underlying compiled catalog.
func (m *CatalogMatcher) Compiled() *catalog.Compiled {
	return m.compiled
}

// Find returns the best hit for text.
func (m *CatalogMatcher) Find(text string) (*Hit, bool) {
	norm := normalize.Text(text)
	if norm == "" {
		return nil, false
	}
	textLen := utf8.RuneCountInString(norm)

	for _, s := range m.sections {
		var best *Hit
		for _, r := range s.Rules {
			if m.brand != "" && !strings.EqualFold(r.Entry.Brand, m.brand) {
				continue
			}
			span, ok, err := r.Longest(norm)
			if err != nil {
				m.logger.Warn("pattern evaluation failed, skipping rule",
					"section", s.Name, "brand", r.Entry.Brand, "model", r.Entry.Model,
					"pattern", r.Pattern, "error", err)
				continue
			}
			if !ok {
				continue
			}
			// Rules are in declaration order, so only a strictly longer span replaces best.
			if best == nil || span.Length > best.Span.Length {
				best = &Hit{Entry: r.Entry, Rule: r, Span: span, Section: s.Name, Priority: s.Priority, TextLen: textLen}
			}
		}
		if best != nil {
			return best, true
		}
	}
	return nil, false
}

// Match returns the catalog result for text, or an unmatched result.
func (m *CatalogMatcher) Match(text string) *types.MatchResult {
	hit, ok := m.Find(text)
	if !ok {
		return types.Unmatched(text)
	}
	return m.Result(text, hit)
}

// Result builds the MatchResult for a hit.
func (m *CatalogMatcher) Result(original string, hit *Hit) *types.MatchResult {
	res := &types.MatchResult{
		Original:  original,
		Matched:   matchedFromEntry(hit.Entry),
		MatchType: hit.MatchType(),
		Pattern:   hit.Rule.Pattern,
	}
	if m.sectionInfo {
		res.SectionInfo = &types.SectionInfo{Section: hit.Section, Priority: hit.Priority}
	}
	return res
}

// Component builds a brush component from a hit.
func (m *CatalogMatcher) Component(source string, hit *Hit) *types.ComponentMatch {
	return &types.ComponentMatch{
		Brand:       hit.Entry.Brand,
		Model:       hit.Entry.Model,
		Fiber:       hit.Entry.StringAttr(AttrFiber),
		KnotSizeMM:  hit.Entry.FloatAttr(AttrKnotSizeMM),
		SourceText:  source,
		MatchType:   hit.MatchType(),
		Pattern:     hit.Rule.Pattern,
		SectionInfo: &types.SectionInfo{Section: hit.Section, Priority: hit.Priority},
	}
}

// InfoFor returns the section info of the highest-priority entry for brand
// and model, or nil when the matcher does not report section info or the
// catalog has no such entry. A brand-level fallback is used for empty models.
func (m *CatalogMatcher) InfoFor(brand, model string) *types.SectionInfo {
	if !m.sectionInfo {
		return nil
	}
	e, ok := m.compiled.Catalog.Find(brand, model)
	if !ok {
		e, ok = m.compiled.Catalog.FindBrand(brand)
	}
	if !ok {
		return nil
	}
	return &types.SectionInfo{Section: e.Section, Priority: e.Priority}
}

// Entry returns the catalog entry for brand and model.
func (m *CatalogMatcher) Entry(brand, model string) (*types.CatalogEntry, bool) {
	return m.compiled.Catalog.Find(brand, model)
}

// matchedFromEntry promotes format, fiber and knot size out of the entry's
// attributes; the rest is copied into Attrs.
func matchedFromEntry(e *types.CatalogEntry) *types.Matched {
	out := &types.Matched{
		Brand:      e.Brand,
		Model:      e.Model,
		Format:     e.StringAttr(AttrFormat),
		Fiber:      e.StringAttr(AttrFiber),
		KnotSizeMM: e.FloatAttr(AttrKnotSizeMM),
	}
	for k, v := range e.Attrs {
		switch k {
		case AttrFormat, AttrFiber, AttrKnotSizeMM:
			continue
		}
		if out.Attrs == nil {
			out.Attrs = make(map[string]any)
		}
		out.Attrs[k] = v
	}
	return out
}

// enrich fills an exact result with the attributes of its catalog entry.
func enrich(res *types.MatchResult, e *types.CatalogEntry) {
	if e == nil || res.Matched == nil {
		return
	}
	from := matchedFromEntry(e)
	if res.Matched.Format == "" {
		res.Matched.Format = from.Format
	}
	if res.Matched.Fiber == "" {
		res.Matched.Fiber = from.Fiber
	}
	if res.Matched.KnotSizeMM == 0 {
		res.Matched.KnotSizeMM = from.KnotSizeMM
	}
	if res.Matched.Attrs == nil {
		res.Matched.Attrs = from.Attrs
	}
}
