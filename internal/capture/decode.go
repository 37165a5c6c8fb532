package capture

import (
	"fmt"

	"github.com/vk/execgraph/internal/ast"
	"github.com/vk/execgraph/internal/failure"
	"github.com/vk/execgraph/internal/value"
	"gopkg.in/yaml.v3"
)

type decoder struct {
	file string
}

// pos converts the host's lineno and 0-based col_offset. Nodes without them
// fall back to their place in the capture file.
func (d *decoder) pos(n *yaml.Node) ast.Pos {
	p := ast.Pos{File: d.file, Line: n.Line, Column: n.Column}
	if line := field(n, "lineno"); line != nil {
		var l, c int
		if line.Decode(&l) == nil && l > 0 {
			p.Line = l
			p.Column = 1
			if col := field(n, "col_offset"); col != nil && col.Decode(&c) == nil {
				p.Column = c + 1
			}
		}
	}
	return p
}

func (d *decoder) errorf(n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%s:%d:%d: %s", d.file, n.Line, n.Column, fmt.Sprintf(format, args...))
}

func (d *decoder) unsupported(n *yaml.Node, format string, args ...any) error {
	return failure.At(failure.UnsupportedConstruct, d.pos(n), format, args...)
}

// field returns the value of key in a mapping node, or nil.
func field(n *yaml.Node, key string) *yaml.Node {
	if n == nil {
		return nil
	}
	if n.Kind == yaml.AliasNode {
		return field(n.Alias, key)
	}
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			v := n.Content[i+1]
			if v.Kind == yaml.AliasNode {
				return v.Alias
			}
			return v
		}
	}
	return nil
}

// items returns the elements of a sequence node. A null or missing node has
// no elements.
func items(n *yaml.Node) []*yaml.Node {
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil
	}
	return n.Content
}

func scalar(n *yaml.Node) string {
	if n == nil || n.Kind != yaml.ScalarNode || n.ShortTag() == "!!null" {
		return ""
	}
	return n.Value
}

func isNull(n *yaml.Node) bool {
	return n == nil || n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

// nodeType returns the "type" discriminator of a node.
func nodeType(n *yaml.Node) string {
	return scalar(field(n, "type"))
}

// opName accepts an operator either as a bare name or as a node such as
// {type: Add}.
func opName(n *yaml.Node) string {
	if n != nil && n.Kind == yaml.MappingNode {
		return nodeType(n)
	}
	return scalar(n)
}

// constant decodes a scalar into the Go form ast.Const holds.
func (d *decoder) constant(n *yaml.Node) (any, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.ScalarNode {
		return nil, d.unsupported(n, "constant must be a scalar")
	}
	switch n.ShortTag() {
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, d.errorf(n, "invalid bool: %v", err)
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, d.unsupported(n, "integer %s is out of range", n.Value)
		}
		return i, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, d.errorf(n, "invalid float: %v", err)
		}
		return f, nil
	case "!!str":
		return n.Value, nil
	}
	return nil, d.unsupported(n, "unsupported scalar tag %s", n.ShortTag())
}

// value decodes plain YAML data into a value. Mappings become dicts in
// document order.
func (d *decoder) value(n *yaml.Node) (value.Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return d.value(n.Alias)
	case yaml.SequenceNode:
		elts, err := d.valueList(n)
		if err != nil {
			return value.None, err
		}
		return value.NewList(elts...), nil
	case yaml.MappingNode:
		kv := make([]value.Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := d.value(c)
			if err != nil {
				return value.None, err
			}
			kv = append(kv, v)
		}
		out, err := value.DictOf(kv...)
		if err != nil {
			return value.None, d.errorf(n, "%v", err)
		}
		return out, nil
	}
	c, err := d.constant(n)
	if err != nil {
		return value.None, err
	}
	switch c := c.(type) {
	case bool:
		return value.Bool(c), nil
	case int64:
		return value.Int(c), nil
	case float64:
		return value.Float(c), nil
	case string:
		return value.String(c), nil
	}
	return value.None, nil
}

func (d *decoder) valueList(n *yaml.Node) ([]value.Value, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, d.errorf(n, "expected a sequence of values")
	}
	out := make([]value.Value, 0, len(n.Content))
	for _, c := range n.Content {
		v, err := d.value(c)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (d *decoder) function(n *yaml.Node) (*ast.Function, error) {
	if t := nodeType(n); t != "FunctionDef" {
		return nil, d.unsupported(n, "expected FunctionDef, got %q", t)
	}
	fn := &ast.Function{Name: scalar(field(n, "name")), Pos: d.pos(n)}
	if fn.Name == "" {
		return nil, d.errorf(n, "function has no name")
	}
	params, err := d.params(field(n, "args"))
	if err != nil {
		return nil, err
	}
	fn.Params = params
	if fn.Body, err = d.stmts(field(n, "body")); err != nil {
		return nil, err
	}
	return fn, nil
}

// params accepts a plain list of names, a list of arg nodes, or an
// arguments node holding such a list.
func (d *decoder) params(n *yaml.Node) ([]string, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind == yaml.MappingNode {
		for _, extra := range []string{"vararg", "kwarg", "kwonlyargs", "posonlyargs", "defaults"} {
			if f := field(n, extra); !isNull(f) && (f.Kind != yaml.SequenceNode || len(f.Content) > 0) {
				return nil, d.unsupported(n, "%s parameters are not supported", extra)
			}
		}
		return d.params(field(n, "args"))
	}
	var out []string
	for _, p := range items(n) {
		name := scalar(p)
		if p.Kind == yaml.MappingNode {
			name = scalar(field(p, "arg"))
		}
		if name == "" {
			return nil, d.errorf(p, "parameter has no name")
		}
		out = append(out, name)
	}
	return out, nil
}
