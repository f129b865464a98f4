package catalog

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/types"
	"gopkg.in/yaml.v3"
)

// Loader handles loading catalogs from YAML files.
type Loader struct {
	fs fs.FS // embedded filesystem for builtin catalogs
}

// NewLoader creates a loader with builtin catalogs from the embedded filesystem.
func NewLoader() *Loader {
	return &Loader{
		fs: builtinCatalogsFS,
	}
}

// NewLoaderWithFS creates a loader with a custom filesystem.
// Builtin catalogs are read from data/<kind>.yaml inside fsys.
func NewLoaderWithFS(fsys fs.FS) *Loader {
	return &Loader{
		fs: fsys,
	}
}

// Load parses catalog YAML. path is only used in error messages.
func (l *Loader) Load(kind Kind, data []byte, path string) (*Catalog, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &StructureError{File: path, Msg: fmt.Sprintf("parsing YAML: %v", err)}
	}

	p := &parser{path: path}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, p.structErr(&doc, "empty catalog")
	}
	root := doc.Content[0]

	c := &Catalog{Kind: kind, Path: path}
	b := &builder{parser: p}

	if !kind.Sectioned() {
		section := &types.Section{Name: "", Priority: 1}
		if err := b.brands(section, root); err != nil {
			return nil, err
		}
		c.Sections = []*types.Section{section}
		return c, nil
	}

	sections, err := p.pairs(root, "catalog")
	if err != nil {
		return nil, err
	}
	for i, sp := range sections {
		section := &types.Section{Name: sp.key.Value, Priority: i + 1}
		if err := b.brands(section, sp.value); err != nil {
			return nil, err
		}
		c.Sections = append(c.Sections, section)
	}

	return c, nil
}

// LoadFile loads a catalog from a YAML file path.
func (l *Loader) LoadFile(kind Kind, path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return l.Load(kind, data, path)
}

// LoadBuiltin loads the builtin catalog for kind.
func (l *Loader) LoadBuiltin(kind Kind) (*Catalog, error) {
	path := builtinPath(kind)
	data, err := fs.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return l.Load(kind, data, path)
}

// LoadPath loads path, or the builtin catalog when path is empty.
func (l *Loader) LoadPath(kind Kind, path string) (*Catalog, error) {
	if path == "" {
		return l.LoadBuiltin(kind)
	}
	return l.LoadFile(kind, path)
}

// =============================================================================
// HELPERS
// =============================================================================

// builder turns brand/model nodes into catalog entries, numbering them in
// declaration order across the whole file.
type builder struct {
	*parser
	order int
}

func (b *builder) brands(section *types.Section, n *yaml.Node) error {
	what := "brands"
	if section.Name != "" {
		what = fmt.Sprintf("section %q", section.Name)
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil
	}
	brands, err := b.pairs(n, what)
	if err != nil {
		return err
	}
	for _, bp := range brands {
		entries, err := b.brand(section, bp.key.Value, bp.value)
		if err != nil {
			return err
		}
		section.Entries = append(section.Entries, entries...)
	}
	return nil
}

// brand parses one brand map. Model entries come first, then the brand-level
// entry, so on an exact tie the more specific model wins.
func (b *builder) brand(section *types.Section, brand string, n *yaml.Node) ([]*types.CatalogEntry, error) {
	fields, err := b.pairs(n, fmt.Sprintf("brand %q", brand))
	if err != nil {
		return nil, err
	}

	brandEntry := &types.CatalogEntry{Section: section.Name, Brand: brand, Priority: section.Priority}
	brandAttrs := make(map[string]any)
	var brandHandleMatching *bool
	var models []pair

	for _, f := range fields {
		switch {
		case f.key.Value == keyPatterns:
			brandEntry.Patterns, brandEntry.PatternLines, err = b.stringList(f.value, "patterns of brand "+brand)
		case f.key.Value == keyAliases:
			brandEntry.Aliases, _, err = b.stringList(f.value, "aliases of brand "+brand)
		case f.key.Value == keyHandleMatching:
			brandHandleMatching, err = b.boolValue(f.value)
		case f.value.Kind == yaml.MappingNode:
			models = append(models, f)
		default:
			brandAttrs[f.key.Value], err = b.attr(f.value)
		}
		if err != nil {
			return nil, err
		}
	}

	var entries []*types.CatalogEntry
	for _, mp := range models {
		e, err := b.model(section, brand, mp.key.Value, mp.value, brandAttrs, brandHandleMatching)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if len(brandEntry.Patterns) > 0 || len(brandEntry.Aliases) > 0 || len(entries) == 0 {
		brandEntry.Attrs = copyAttrs(brandAttrs)
		if brandHandleMatching != nil {
			brandEntry.HandleMatching = *brandHandleMatching
		}
		brandEntry.Order = b.next()
		entries = append(entries, brandEntry)
	}
	return entries, nil
}

func (b *builder) model(section *types.Section, brand, model string, n *yaml.Node, brandAttrs map[string]any, brandHM *bool) (*types.CatalogEntry, error) {
	fields, err := b.pairs(n, fmt.Sprintf("model %q of brand %q", model, brand))
	if err != nil {
		return nil, err
	}

	e := &types.CatalogEntry{
		Section:  section.Name,
		Brand:    brand,
		Model:    model,
		Priority: section.Priority,
		Attrs:    make(map[string]any, len(brandAttrs)),
	}
	for k, v := range brandAttrs {
		e.Attrs[k] = v
	}
	if brandHM != nil {
		e.HandleMatching = *brandHM
	}

	for _, f := range fields {
		switch f.key.Value {
		case keyPatterns:
			e.Patterns, e.PatternLines, err = b.stringList(f.value, fmt.Sprintf("patterns of %s %s", brand, model))
		case keyAliases:
			e.Aliases, _, err = b.stringList(f.value, fmt.Sprintf("aliases of %s %s", brand, model))
		case keyHandleMatching:
			var hm *bool
			if hm, err = b.boolValue(f.value); hm != nil {
				e.HandleMatching = *hm
			}
		default:
			e.Attrs[f.key.Value], err = b.attr(f.value)
		}
		if err != nil {
			return nil, err
		}
	}
	if len(e.Attrs) == 0 {
		e.Attrs = nil
	}

	e.Order = b.next()
	return e, nil
}

func (b *builder) boolValue(n *yaml.Node) (*bool, error) {
	var v bool
	if err := n.Decode(&v); err != nil {
		return nil, b.structErr(n, "%s must be a boolean", keyHandleMatching)
	}
	return &v, nil
}

func (b *builder) next() int {
	b.order++
	return b.order
}

func copyAttrs(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
