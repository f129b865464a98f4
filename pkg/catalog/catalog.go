package catalog

import (
	"fmt"
	"strings"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/normalize"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/types"
)

// Kind identifies a catalog file and its YAML shape.
type Kind string

const (
	KindRazor  Kind = "razors"
	KindBlade  Kind = "blades"
	KindBrush  Kind = "brushes"
	KindKnot   Kind = "knots"
	KindHandle Kind = "handles"
	KindSoap   Kind = "soaps"
)

// Kinds lists every catalog kind.
var Kinds = []Kind{KindRazor, KindBlade, KindBrush, KindKnot, KindHandle, KindSoap}

// ParseKind converts a kind name ("knots", "knot") to a Kind.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds {
		if s == string(k) || s+"s" == string(k) || s+"es" == string(k) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Sectioned reports whether the top level of the file is a list of sections.
// Blades are sectioned by format; razors and soaps are flat brand maps.
func (k Kind) Sectioned() bool {
	switch k {
	case KindBlade, KindBrush, KindKnot, KindHandle:
		return true
	}
	return false
}

// Catalog is a parsed catalog file. Sections are in file order and each
// section's priority equals its 1-based position.
type Catalog struct {
	Kind     Kind
	Path     string
	Sections []*types.Section
}

// Entries returns all entries in section priority and declaration order.
func (c *Catalog) Entries() []*types.CatalogEntry {
	var out []*types.CatalogEntry
	for _, s := range c.Sections {
		out = append(out, s.Entries...)
	}
	return out
}

// Section finds a section by name. Names compare case-insensitively so
// blade formats ("Half DE", "half de") resolve to the same section.
func (c *Catalog) Section(name string) (*types.Section, bool) {
	want := normalize.Format(name)
	for _, s := range c.Sections {
		if normalize.Format(s.Name) == want {
			return s, true
		}
	}
	return nil, false
}

// Find returns the highest-priority entry for brand and model.
// An empty model finds the brand-level entry.
func (c *Catalog) Find(brand, model string) (*types.CatalogEntry, bool) {
	for _, s := range c.Sections {
		for _, e := range s.Entries {
			if strings.EqualFold(e.Brand, brand) && strings.EqualFold(e.Model, model) {
				return e, true
			}
		}
	}
	return nil, false
}

// FindBrand returns the first entry of brand, preferring model-level entries.
func (c *Catalog) FindBrand(brand string) (*types.CatalogEntry, bool) {
	var brandLevel *types.CatalogEntry
	for _, s := range c.Sections {
		for _, e := range s.Entries {
			if !strings.EqualFold(e.Brand, brand) {
				continue
			}
			if !e.BrandLevel() {
				return e, true
			}
			if brandLevel == nil {
				brandLevel = e
			}
		}
	}
	return brandLevel, brandLevel != nil
}

// PatternCount returns the number of patterns across all entries.
func (c *Catalog) PatternCount() int {
	n := 0
	for _, e := range c.Entries() {
		n += len(e.Patterns)
	}
	return n
}
