package catalog

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Reserved keys inside brand and model maps. Every other mapping-valued key
// of a brand is a model; every other scalar is an attribute.
const (
	keyPatterns       = "patterns"
	keyAliases        = "aliases"
	keyHandleMatching = "handle_matching"
)

// pair is one key/value of a YAML mapping node.
type pair struct {
	key   *yaml.Node
	value *yaml.Node
}

// parser walks a catalog document and remembers which file it came from.
type parser struct {
	path string
}

// pairs returns the key/value pairs of a mapping node, rejecting duplicate keys.
func (p *parser) pairs(n *yaml.Node, what string) ([]pair, error) {
	n = deref(n)
	if n.Kind != yaml.MappingNode {
		return nil, p.structErr(n, "%s must be a mapping, got %s", what, nodeKind(n))
	}
	out := make([]pair, 0, len(n.Content)/2)
	seen := make(map[string]bool, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return nil, p.structErr(k, "%s keys must be scalars", what)
		}
		if seen[k.Value] {
			return nil, p.structErr(k, "duplicate key %q in %s", k.Value, what)
		}
		seen[k.Value] = true
		out = append(out, pair{key: k, value: deref(v)})
	}
	return out, nil
}

// stringList decodes a sequence of scalars, returning each value with its line.
func (p *parser) stringList(n *yaml.Node, what string) ([]string, []int, error) {
	n = deref(n)
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil, nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, nil, p.structErr(n, "%s must be a list, got %s", what, nodeKind(n))
	}
	values := make([]string, 0, len(n.Content))
	lines := make([]int, 0, len(n.Content))
	for _, item := range n.Content {
		if item.Kind != yaml.ScalarNode {
			return nil, nil, p.structErr(item, "%s entries must be strings", what)
		}
		values = append(values, item.Value)
		lines = append(lines, item.Line)
	}
	return values, lines, nil
}

// attr decodes a scalar or list attribute to a plain Go value.
func (p *parser) attr(n *yaml.Node) (any, error) {
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, p.structErr(n, "decoding attribute: %v", err)
	}
	return v, nil
}

func (p *parser) structErr(n *yaml.Node, format string, args ...any) error {
	line := 0
	if n != nil {
		line = n.Line
	}
	return &StructureError{File: p.path, Line: line, Msg: fmt.Sprintf(format, args...)}
}

// deref follows YAML aliases (*anchor) to the anchored node.
func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "list"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return "null"
		}
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
