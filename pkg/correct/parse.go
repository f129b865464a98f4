package correct

import (
	"errors"
	"fmt"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/catalog"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/normalize"
	"gopkg.in/yaml.v3"
)

// ErrConflict is matched by every *ConflictError.
var ErrConflict = errors.New("conflicting correct match")

// ConflictError reports a string listed under two products of the same
// section (and, for blades, the same format).
type ConflictError struct {
	File    string
	Section string
	Format  string
	Text    string
	Line    int
	First   string // "brand / model" of the earlier entry
	Second  string
}

func (e *ConflictError) Error() string {
	where := e.Section
	if e.Format != "" {
		where += " " + e.Format
	}
	return fmt.Sprintf("%s:%d: %s: %q in %s maps to both %s and %s",
		fileName(e.File), e.Line, ErrConflict, e.Text, where, e.First, e.Second)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

type builder struct {
	path string
	idx  *Index
}

func parseIndex(data []byte, path string) (*Index, error) {
	b := &builder{path: path, idx: newIndex(path)}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &catalog.StructureError{File: path, Msg: fmt.Sprintf("parsing YAML: %v", err)}
	}
	if len(doc.Content) == 0 {
		// An empty file is a valid, empty index.
		return b.idx, nil
	}

	sections, err := b.mapping(doc.Content[0], "correct matches")
	if err != nil {
		return nil, err
	}
	for i := 0; i+1 < len(sections.Content); i += 2 {
		key, value := sections.Content[i], deref(sections.Content[i+1])
		if isNull(value) {
			continue
		}
		switch key.Value {
		case SectionRazor, SectionSoap, SectionBrush, SectionHandle:
			err = b.products(key.Value, "", value, b.idx.table(key.Value))
		case SectionKnot:
			err = b.knots(value)
		case SectionBlade:
			err = b.blades(value)
		default:
			err = b.structErr(key, "unknown section %q", key.Value)
		}
		if err != nil {
			return nil, err
		}
	}
	return b.idx, nil
}

func (x *Index) table(section string) map[string]*Entry {
	t, ok := x.simple[section]
	if !ok {
		t = make(map[string]*Entry)
		x.simple[section] = t
	}
	return t
}

func (b *builder) blades(n *yaml.Node) error {
	formats, err := b.mapping(n, "blade")
	if err != nil {
		return err
	}
	for i := 0; i+1 < len(formats.Content); i += 2 {
		name := formats.Content[i].Value
		fi := b.idx.blade(name)
		if fi == nil {
			fi = &formatIndex{name: name, entries: make(map[string]*Entry)}
			b.idx.blades = append(b.idx.blades, fi)
		}
		if v := deref(formats.Content[i+1]); !isNull(v) {
			if err := b.products(SectionBlade, name, v, fi.entries); err != nil {
				return err
			}
		}
	}
	return nil
}

// products parses brand -> model -> [strings].
func (b *builder) products(section, format string, n *yaml.Node, table map[string]*Entry) error {
	brands, err := b.mapping(n, section)
	if err != nil {
		return err
	}
	for i := 0; i+1 < len(brands.Content); i += 2 {
		brand := brands.Content[i].Value
		models, err := b.mapping(deref(brands.Content[i+1]), fmt.Sprintf("%s brand %q", section, brand))
		if err != nil {
			return err
		}
		for j := 0; j+1 < len(models.Content); j += 2 {
			model := modelName(section, models.Content[j])
			list := deref(models.Content[j+1])
			if isNull(list) {
				continue
			}
			if list.Kind != yaml.SequenceNode {
				return b.structErr(list, "%s %s %s must be a list of strings", section, brand, model)
			}
			proto := Entry{Section: section, Format: format, Brand: brand, Model: model}
			if err := b.add(table, proto, list); err != nil {
				return err
			}
		}
	}
	return nil
}

// knots parses brand -> model -> {strings, fiber, knot_size_mm}. A plain list
// is accepted as the strings.
func (b *builder) knots(n *yaml.Node) error {
	table := b.idx.table(SectionKnot)
	brands, err := b.mapping(n, SectionKnot)
	if err != nil {
		return err
	}
	for i := 0; i+1 < len(brands.Content); i += 2 {
		brand := brands.Content[i].Value
		models, err := b.mapping(deref(brands.Content[i+1]), fmt.Sprintf("knot brand %q", brand))
		if err != nil {
			return err
		}
		for j := 0; j+1 < len(models.Content); j += 2 {
			model := models.Content[j].Value
			body := deref(models.Content[j+1])
			proto := Entry{Section: SectionKnot, Brand: brand, Model: model}

			if body.Kind == yaml.SequenceNode {
				if err := b.add(table, proto, body); err != nil {
					return err
				}
				continue
			}

			var def struct {
				Strings    yaml.Node `yaml:"strings"`
				Fiber      string    `yaml:"fiber"`
				KnotSizeMM float64   `yaml:"knot_size_mm"`
			}
			if body.Kind != yaml.MappingNode {
				return b.structErr(body, "knot %s %s must be a list or a mapping", brand, model)
			}
			if err := body.Decode(&def); err != nil {
				return b.structErr(body, "knot %s %s: %v", brand, model, err)
			}
			proto.Fiber = def.Fiber
			proto.KnotSizeMM = def.KnotSizeMM
			if def.Strings.Kind == 0 || isNull(&def.Strings) {
				continue
			}
			if def.Strings.Kind != yaml.SequenceNode {
				return b.structErr(&def.Strings, "knot %s %s strings must be a list", brand, model)
			}
			if err := b.add(table, proto, &def.Strings); err != nil {
				return err
			}
		}
	}
	return nil
}

// add stores every string of list under proto, rejecting a string that
// already belongs to a different product in the same table.
func (b *builder) add(table map[string]*Entry, proto Entry, list *yaml.Node) error {
	for _, item := range list.Content {
		item = deref(item)
		if item.Kind != yaml.ScalarNode {
			return b.structErr(item, "%s %s %s entries must be strings", proto.Section, proto.Brand, proto.Model)
		}
		key := normalize.Text(item.Value)
		if key == "" {
			continue
		}
		if prev, ok := table[key]; ok {
			if prev.Brand == proto.Brand && prev.Model == proto.Model {
				continue
			}
			return &ConflictError{
				File:    b.path,
				Section: proto.Section,
				Format:  proto.Format,
				Text:    item.Value,
				Line:    item.Line,
				First:   label(prev.Brand, prev.Model),
				Second:  label(proto.Brand, proto.Model),
			}
		}
		e := proto
		e.Line = item.Line
		table[key] = &e
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (b *builder) mapping(n *yaml.Node, what string) (*yaml.Node, error) {
	n = deref(n)
	if n.Kind != yaml.MappingNode {
		return nil, b.structErr(n, "%s must be a mapping", what)
	}
	return n, nil
}

func (b *builder) structErr(n *yaml.Node, format string, args ...any) error {
	return &catalog.StructureError{File: b.path, Line: n.Line, Msg: fmt.Sprintf(format, args...)}
}

// modelName maps the null model keys of handle entries to "".
func modelName(section string, key *yaml.Node) string {
	if section == SectionHandle && (key.Tag == "!!null" || key.Value == "~" || key.Value == "null") {
		return ""
	}
	return key.Value
}

func label(brand, model string) string {
	if model == "" {
		return brand
	}
	return brand + " / " + model
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func fileName(path string) string {
	if path == "" {
		return "<input>"
	}
	return path
}
