package matcher

import (
	"strings"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/catalog"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/correct"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/normalize"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/types"
)

// Blade formats with special handling.
const (
	FormatDE     = "DE"
	FormatHalfDE = "Half DE"
)

// Blade is the format-aware blade matcher. Catalog sections are formats.
type Blade struct {
	correct  *correct.Index
	filtered *correct.Filtered
	catalog  *CatalogMatcher
}

// NewBlade creates the blade matcher.
func NewBlade(compiled *catalog.Compiled, idx *correct.Index, filtered *correct.Filtered, opts ...Option) *Blade {
	opts = append([]Option{WithSectionInfo(false)}, opts...)
	return &Blade{
		correct:  idx,
		filtered: filtered,
		catalog:  New(compiled, opts...),
	}
}

// Match is the context-free path: correct matches of any format in file
// order, then patterns of every format section in priority order.
func (b *Blade) Match(text string) *types.MatchResult {
	if b.filtered.IsFiltered(correct.FilterBlade, text) {
		return filteredResult(text)
	}
	if res, ok := b.correct.LookupBladeAny(text); ok {
		return b.enrichExact(res)
	}
	return b.search(b.catalog, text)
}

// MatchWithContext restricts the search to the razor's format. A Half DE
// razor also accepts DE blades, so its chain is Half DE correct, Half DE
// patterns, DE correct, DE patterns. Any other format never falls back.
// An empty format uses Match.
func (b *Blade) MatchWithContext(text, format string) *types.MatchResult {
	if strings.TrimSpace(format) == "" {
		return b.Match(text)
	}
	if b.filtered.IsFiltered(correct.FilterBlade, text) {
		return filteredResult(text)
	}

	for _, f := range FormatChain(format) {
		if res, ok := b.correct.LookupBlade(f, text); ok {
			return b.enrichExact(res)
		}
		if res := b.search(b.catalog.With(WithSections(f)), text); res.IsMatched() {
			return res
		}
	}
	return types.Unmatched(text)
}

// FormatChain returns the formats searched for a razor format, in order.
func FormatChain(format string) []string {
	if CanonicalFormat(format) == CanonicalFormat(FormatHalfDE) {
		return []string{FormatHalfDE, FormatDE}
	}
	return []string{format}
}

// CanonicalFormat compares formats case-insensitively and treats "Half-DE"
// like "Half DE".
func CanonicalFormat(format string) string {
	return strings.ReplaceAll(normalize.Format(format), "-", " ")
}

func (b *Blade) search(cm *CatalogMatcher, text string) *types.MatchResult {
	hit, ok := cm.Find(text)
	if !ok {
		return types.Unmatched(text)
	}
	res := cm.Result(text, hit)
	res.Matched.Format = hit.Section
	return res
}

func (b *Blade) enrichExact(res *types.MatchResult) *types.MatchResult {
	if s, ok := b.catalog.Compiled().Catalog.Section(res.Matched.Format); ok {
		for _, e := range s.Entries {
			if strings.EqualFold(e.Brand, res.Matched.Brand) && strings.EqualFold(e.Model, res.Matched.Model) {
				enrich(res, e)
				break
			}
		}
	}
	return res
}
