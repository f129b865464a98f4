// Package correct holds the manually curated exact-string overrides and the
// filtered-entries list. Every stored string and every lookup key goes through
// normalize.Text, so a string written by the correction tool is always found.
package correct

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/normalize"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/types"
)

// Section names of the correct-matches file.
const (
	SectionRazor  = "razor"
	SectionBlade  = "blade"
	SectionBrush  = "brush"
	SectionSoap   = "soap"
	SectionHandle = "handle"
	SectionKnot   = "knot"
)

// Entry is the product a correct-match string resolves to.
type Entry struct {
	Section    string
	Format     string // blades only, as written in the file
	Brand      string
	Model      string // may be empty for handles
	Fiber      string // knots only
	KnotSizeMM float64
	Line       int
}

// Result converts the entry into an exact MatchResult for original.
// info is nil for simple matchers.
func (e *Entry) Result(original string, info *types.SectionInfo) *types.MatchResult {
	return &types.MatchResult{
		Original:    original,
		Matched:     &types.Matched{Brand: e.Brand, Model: e.Model, Format: e.Format, Fiber: e.Fiber, KnotSizeMM: e.KnotSizeMM},
		MatchType:   types.MatchExact,
		SectionInfo: info,
	}
}

// Component converts the entry into a brush component match.
func (e *Entry) Component(source string, info *types.SectionInfo) *types.ComponentMatch {
	return &types.ComponentMatch{
		Brand:       e.Brand,
		Model:       e.Model,
		Fiber:       e.Fiber,
		KnotSizeMM:  e.KnotSizeMM,
		SourceText:  source,
		MatchType:   types.MatchExact,
		SectionInfo: info,
	}
}

// formatIndex is the blade lookup table of one format.
type formatIndex struct {
	name    string
	entries map[string]*Entry
}

// Index is the read-only correct-matches lookup. The zero value and a nil
// *Index find nothing.
type Index struct {
	Path string

	simple map[string]map[string]*Entry // razor, soap, brush, handle, knot
	blades []*formatIndex               // file order
}

func newIndex(path string) *Index {
	return &Index{Path: path, simple: make(map[string]map[string]*Entry)}
}

// Lookup finds text in the razor, soap or brush section.
func (x *Index) Lookup(field types.Field, text string) (*types.MatchResult, bool) {
	if field == types.FieldBlade {
		return x.LookupBladeAny(text)
	}
	e, ok := x.find(string(field), text)
	if !ok {
		return nil, false
	}
	return e.Result(text, nil), true
}

// LookupBlade finds text among the correct matches of one blade format.
func (x *Index) LookupBlade(format, text string) (*types.MatchResult, bool) {
	if x == nil {
		return nil, false
	}
	fi := x.blade(format)
	if fi == nil {
		return nil, false
	}
	e, ok := fi.entries[normalize.Text(text)]
	if !ok {
		return nil, false
	}
	return e.Result(text, nil), true
}

// LookupBladeAny scans blade formats in file order.
func (x *Index) LookupBladeAny(text string) (*types.MatchResult, bool) {
	if x == nil {
		return nil, false
	}
	key := normalize.Text(text)
	for _, fi := range x.blades {
		if e, ok := fi.entries[key]; ok {
			return e.Result(text, nil), true
		}
	}
	return nil, false
}

// LookupHandle finds text in the brush handle section.
func (x *Index) LookupHandle(text string) (*Entry, bool) {
	return x.find(SectionHandle, text)
}

// LookupKnot finds text in the brush knot section.
func (x *Index) LookupKnot(text string) (*Entry, bool) {
	return x.find(SectionKnot, text)
}

// Entries returns every entry of a section. Blade entries of all formats are
// returned for SectionBlade.
func (x *Index) Entries(section string) map[string]*Entry {
	out := make(map[string]*Entry)
	if x == nil {
		return out
	}
	if section == SectionBlade {
		for _, fi := range x.blades {
			for k, e := range fi.entries {
				out[fi.name+"\x00"+k] = e
			}
		}
		return out
	}
	for k, e := range x.simple[section] {
		out[k] = e
	}
	return out
}

// Len returns the number of stored strings.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	n := 0
	for _, m := range x.simple {
		n += len(m)
	}
	for _, fi := range x.blades {
		n += len(fi.entries)
	}
	return n
}

// Formats returns the blade formats in file order.
func (x *Index) Formats() []string {
	if x == nil {
		return nil
	}
	out := make([]string, 0, len(x.blades))
	for _, fi := range x.blades {
		out = append(out, fi.name)
	}
	return out
}

func (x *Index) find(section, text string) (*Entry, bool) {
	if x == nil {
		return nil, false
	}
	e, ok := x.simple[section][normalize.Text(text)]
	return e, ok
}

func (x *Index) blade(format string) *formatIndex {
	want := normalize.Format(format)
	for _, fi := range x.blades {
		if normalize.Format(fi.name) == want {
			return fi
		}
	}
	return nil
}

// Load parses a correct-matches file. path is only used in error messages.
func Load(data []byte, path string) (*Index, error) {
	return parseIndex(data, path)
}

// LoadFile reads and parses a correct-matches file.
func LoadFile(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read correct matches %s: %w", path, err)
	}
	return Load(data, path)
}

// LoadBuiltin loads the embedded correct-matches file.
func LoadBuiltin() (*Index, error) {
	return loadFS(builtinFS, builtinCorrectPath)
}

// LoadPath loads path, or the builtin file when path is empty.
func LoadPath(path string) (*Index, error) {
	if path == "" {
		return LoadBuiltin()
	}
	return LoadFile(path)
}

func loadFS(fsys fs.FS, path string) (*Index, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Load(data, path)
}
