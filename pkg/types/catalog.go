package types

import "strings"

// Field names a product field of a record.
type Field string

const (
	FieldRazor Field = "razor"
	FieldBlade Field = "blade"
	FieldBrush Field = "brush"
	FieldSoap  Field = "soap"
)

// Fields lists the record fields in pipeline order.
var Fields = []Field{FieldRazor, FieldBlade, FieldBrush, FieldSoap}

// ParseField converts a case-insensitive field name.
func ParseField(s string) (Field, bool) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FieldRazor, FieldBlade, FieldBrush, FieldSoap:
		return f, true
	}
	return "", false
}

// CatalogEntry is one brand/model of a catalog with its patterns.
type CatalogEntry struct {
	Section  string // section name; empty for flat catalogs
	Brand    string
	Model    string // empty for brand-level entries
	Patterns []string
	// PatternLines holds the source line of each pattern, parallel to Patterns.
	PatternLines []int
	Aliases      []string // literal strings, compared after normalization
	Priority     int      // 1-based section rank, 1 = highest
	Order        int      // declaration order within the whole catalog

	// HandleMatching is resolved at load: model setting, else brand default, else false.
	HandleMatching bool
	Attrs          map[string]any // fiber, knot_size_mm, format, plate, gap, ...
}

// BrandLevel reports whether the entry has no model.
func (e *CatalogEntry) BrandLevel() bool {
	return e.Model == ""
}

// StringAttr returns a string attribute or "".
func (e *CatalogEntry) StringAttr(key string) string {
	if v, ok := e.Attrs[key].(string); ok {
		return v
	}
	return ""
}

// FloatAttr returns a numeric attribute or 0.
func (e *CatalogEntry) FloatAttr(key string) float64 {
	switch v := e.Attrs[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// Section is an ordered group of catalog entries.
type Section struct {
	Name     string
	Priority int
	Entries  []*CatalogEntry
}
