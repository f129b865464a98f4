package correct

import (
	"fmt"
	"os"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/catalog"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/normalize"
	"gopkg.in/yaml.v3"
)

// Filter keys of the filtered-entries file.
const (
	FilterRazor       = "razor"
	FilterBlade       = "blade"
	FilterSoap        = "soap"
	FilterBrush       = "brush"
	FilterBrushHandle = "brush_handle"
	FilterBrushKnot   = "brush_knot"
)

var filterKeys = map[string]bool{
	FilterRazor: true, FilterBlade: true, FilterSoap: true,
	FilterBrush: true, FilterBrushHandle: true, FilterBrushKnot: true,
}

// Filtered is the set of strings an operator marked as not worth matching.
// A nil *Filtered filters nothing.
type Filtered struct {
	Path string
	sets map[string]map[string]struct{}
}

// IsFiltered reports whether text is listed under key.
func (f *Filtered) IsFiltered(key, text string) bool {
	if f == nil {
		return false
	}
	_, ok := f.sets[key][normalize.Text(text)]
	return ok
}

// Len returns the number of filtered strings under key.
func (f *Filtered) Len(key string) int {
	if f == nil {
		return 0
	}
	return len(f.sets[key])
}

// LoadFiltered parses a filtered-entries file. Each key holds either a list
// of strings or a mapping whose keys are the strings (values are notes).
func LoadFiltered(data []byte, path string) (*Filtered, error) {
	f := &Filtered{Path: path, sets: make(map[string]map[string]struct{})}
	b := &builder{path: path}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &catalog.StructureError{File: path, Msg: fmt.Sprintf("parsing YAML: %v", err)}
	}
	if len(doc.Content) == 0 {
		return f, nil
	}
	root, err := b.mapping(doc.Content[0], "filtered entries")
	if err != nil {
		return nil, err
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], deref(root.Content[i+1])
		if !filterKeys[key.Value] {
			return nil, b.structErr(key, "unknown filter key %q", key.Value)
		}
		set := make(map[string]struct{})
		switch {
		case isNull(value):
		case value.Kind == yaml.SequenceNode:
			for _, item := range value.Content {
				item = deref(item)
				if item.Kind != yaml.ScalarNode {
					return nil, b.structErr(item, "%s entries must be strings", key.Value)
				}
				set[normalize.Text(item.Value)] = struct{}{}
			}
		case value.Kind == yaml.MappingNode:
			for j := 0; j < len(value.Content); j += 2 {
				set[normalize.Text(value.Content[j].Value)] = struct{}{}
			}
		default:
			return nil, b.structErr(value, "%s must be a list or a mapping", key.Value)
		}
		delete(set, "")
		f.sets[key.Value] = set
	}
	return f, nil
}

// LoadFilteredFile reads and parses a filtered-entries file.
func LoadFilteredFile(path string) (*Filtered, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read filtered entries %s: %w", path, err)
	}
	return LoadFiltered(data, path)
}

// LoadFilteredPath loads path, or the builtin file when path is empty.
func LoadFilteredPath(path string) (*Filtered, error) {
	if path == "" {
		data, err := builtinFS.ReadFile(builtinFilteredPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", builtinFilteredPath, err)
		}
		return LoadFiltered(data, builtinFilteredPath)
	}
	return LoadFilteredFile(path)
}
