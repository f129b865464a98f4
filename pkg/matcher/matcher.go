// Package matcher resolves product strings against compiled catalogs.
//
// CatalogMatcher is the generic, priority-ordered search. Simple, Sectioned
// and Blade put the correct-matches index and the filtered list in front of
// it; the brush orchestrator lives in package brush.
package matcher

import (
	"github.com/nmrs/sotd-pipeline-sub007/pkg/catalog"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/correct"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/types"
)

// Matcher is implemented by every field matcher. Context-unaware callers use
// Match; callers that know the razor format use MatchWithContext.
type Matcher interface {
	Match(text string) *types.MatchResult
	MatchWithContext(text, context string) *types.MatchResult
}

// Simple matches razors and soaps: filtered check, correct matches, then
// catalog patterns. Results carry no section info.
type Simple struct {
	field    types.Field
	correct  *correct.Index
	filtered *correct.Filtered
	catalog  *CatalogMatcher
}

// NewSimple creates a matcher for a flat catalog field.
func NewSimple(field types.Field, compiled *catalog.Compiled, idx *correct.Index, filtered *correct.Filtered, opts ...Option) *Simple {
	opts = append([]Option{WithSectionInfo(false)}, opts...)
	return &Simple{
		field:    field,
		correct:  idx,
		filtered: filtered,
		catalog:  New(compiled, opts...),
	}
}

// Match implements Matcher.
func (s *Simple) Match(text string) *types.MatchResult {
	if s.filtered.IsFiltered(string(s.field), text) {
		return filteredResult(text)
	}
	if res, ok := s.correct.Lookup(s.field, text); ok {
		e, _ := s.catalog.Entry(res.Matched.Brand, res.Matched.Model)
		enrich(res, e)
		return res
	}
	return s.catalog.Match(text)
}

// MatchWithContext ignores the context; razors and soaps have no format axis.
func (s *Simple) MatchWithContext(text, _ string) *types.MatchResult {
	return s.Match(text)
}

// Catalog returns the underlying catalog matcher.
func (s *Simple) Catalog() *CatalogMatcher {
	return s.catalog
}

// Sectioned matches brush knots and handles. Results carry section info, and
// exact results borrow it from the catalog entry of the same brand/model.
type Sectioned struct {
	lookup  func(string) (*correct.Entry, bool)
	catalog *CatalogMatcher
}

// NewKnot creates the knot matcher.
func NewKnot(compiled *catalog.Compiled, idx *correct.Index, opts ...Option) *Sectioned {
	return newSectioned(compiled, idx.LookupKnot, opts)
}

// NewHandle creates the handle matcher.
func NewHandle(compiled *catalog.Compiled, idx *correct.Index, opts ...Option) *Sectioned {
	return newSectioned(compiled, idx.LookupHandle, opts)
}

func newSectioned(compiled *catalog.Compiled, lookup func(string) (*correct.Entry, bool), opts []Option) *Sectioned {
	opts = append([]Option{WithSectionInfo(true)}, opts...)
	return &Sectioned{lookup: lookup, catalog: New(compiled, opts...)}
}

// Match implements Matcher.
func (s *Sectioned) Match(text string) *types.MatchResult {
	if e, ok := s.lookup(text); ok {
		res := e.Result(text, s.catalog.InfoFor(e.Brand, e.Model))
		ce, _ := s.catalog.Entry(e.Brand, e.Model)
		enrich(res, ce)
		return res
	}
	return s.catalog.Match(text)
}

// MatchWithContext ignores the context.
func (s *Sectioned) MatchWithContext(text, _ string) *types.MatchResult {
	return s.Match(text)
}

// Resolution is a resolved brush component plus how much of the input the
// match covered.
type Resolution struct {
	Component *types.ComponentMatch
	// Covers is true for exact matches and for patterns spanning the whole text.
	Covers bool
}

// Resolve resolves text as a brush component: correct matches first, then
// the catalog.
func (s *Sectioned) Resolve(text string) (*Resolution, bool) {
	if e, ok := s.lookup(text); ok {
		c := e.Component(text, s.catalog.InfoFor(e.Brand, e.Model))
		if ce, ok := s.catalog.Entry(e.Brand, e.Model); ok {
			if c.Fiber == "" {
				c.Fiber = ce.StringAttr(AttrFiber)
			}
			if c.KnotSizeMM == 0 {
				c.KnotSizeMM = ce.FloatAttr(AttrKnotSizeMM)
			}
		}
		return &Resolution{Component: c, Covers: true}, true
	}
	hit, ok := s.catalog.Find(text)
	if !ok {
		return nil, false
	}
	return &Resolution{Component: s.catalog.Component(text, hit), Covers: hit.Covers()}, true
}

// Component is Resolve without the coverage flag.
func (s *Sectioned) Component(text string) (*types.ComponentMatch, bool) {
	r, ok := s.Resolve(text)
	if !ok {
		return nil, false
	}
	return r.Component, true
}

// Catalog returns the underlying catalog matcher.
func (s *Sectioned) Catalog() *CatalogMatcher {
	return s.catalog
}

func filteredResult(text string) *types.MatchResult {
	res := types.Unmatched(text)
	res.Filtered = true
	return res
}
