package capture

import (
	"fmt"

	"github.com/vk/execgraph/internal/ast"
	"gopkg.in/yaml.v3"
)

var binaryOps = map[string]ast.BinaryOp{
	"Add":      ast.Add,
	"Sub":      ast.Sub,
	"Mult":     ast.Mul,
	"Div":      ast.Div,
	"FloorDiv": ast.FloorDiv,
	"Mod":      ast.Mod,
	"Pow":      ast.Pow,
}

var unaryOps = map[string]ast.UnaryOp{
	"USub": ast.Neg,
	"UAdd": ast.Plus,
	"Not":  ast.Not,
}

var compareOps = map[string]ast.CompareOp{
	"Eq":    ast.Eq,
	"NotEq": ast.NotEq,
	"Lt":    ast.Lt,
	"LtE":   ast.LtE,
	"Gt":    ast.Gt,
	"GtE":   ast.GtE,
	"In":    ast.In,
	"NotIn": ast.NotIn,
	"Is":    ast.Is,
	"IsNot": ast.IsNot,
}

func (d *decoder) exprs(n *yaml.Node) ([]ast.Expr, error) {
	var out []ast.Expr
	for _, c := range items(n) {
		x, err := d.expr(c)
		if err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, nil
}

// optional decodes an expression that may be absent.
func (d *decoder) optional(n *yaml.Node) (ast.Expr, error) {
	if isNull(n) {
		return nil, nil
	}
	return d.expr(n)
}

func (d *decoder) expr(n *yaml.Node) (ast.Expr, error) {
	if n == nil {
		return nil, fmt.Errorf("%s: missing expression", d.file)
	}
	p := d.pos(n)
	switch t := nodeType(n); t {
	case "Constant":
		v, err := d.constant(field(n, "value"))
		if err != nil {
			return nil, err
		}
		return &ast.Const{Value: v, Pos: p}, nil

	case "Name":
		id := scalar(field(n, "id"))
		if id == "" {
			return nil, d.errorf(n, "name has no id")
		}
		return &ast.Name{ID: id, Pos: p}, nil

	case "Call":
		if len(items(field(n, "keywords"))) > 0 {
			return nil, d.unsupported(n, "keyword arguments are not supported")
		}
		args, err := d.exprs(field(n, "args"))
		if err != nil {
			return nil, err
		}
		fn := field(n, "func")
		switch nodeType(fn) {
		case "Name":
			return &ast.Call{Func: scalar(field(fn, "id")), Args: args, Pos: p}, nil
		case "Attribute":
			recv, err := d.expr(field(fn, "value"))
			if err != nil {
				return nil, err
			}
			return &ast.MethodCall{Recv: recv, Method: scalar(field(fn, "attr")), Args: args, Pos: p}, nil
		}
		return nil, d.unsupported(n, "cannot call %s", nodeType(fn))

	case "BinOp":
		op, ok := binaryOps[opName(field(n, "op"))]
		if !ok {
			return nil, d.unsupported(n, "unsupported operator %s", opName(field(n, "op")))
		}
		left, err := d.expr(field(n, "left"))
		if err != nil {
			return nil, err
		}
		right, err := d.expr(field(n, "right"))
		if err != nil {
			return nil, err
		}
		return &ast.Binary{Op: op, Left: left, Right: right, Pos: p}, nil

	case "UnaryOp":
		op, ok := unaryOps[opName(field(n, "op"))]
		if !ok {
			return nil, d.unsupported(n, "unsupported operator %s", opName(field(n, "op")))
		}
		x, err := d.expr(field(n, "operand"))
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: op, X: x, Pos: p}, nil

	case "Compare":
		return d.compare(n)

	case "BoolOp":
		op := ast.And
		switch opName(field(n, "op")) {
		case "And":
		case "Or":
			op = ast.Or
		default:
			return nil, d.unsupported(n, "unsupported operator %s", opName(field(n, "op")))
		}
		values, err := d.exprs(field(n, "values"))
		if err != nil {
			return nil, err
		}
		return &ast.BoolOp{Op: op, Values: values, Pos: p}, nil

	case "IfExp":
		parts := make([]ast.Expr, 3)
		for i, key := range []string{"test", "body", "orelse"} {
			x, err := d.expr(field(n, key))
			if err != nil {
				return nil, err
			}
			parts[i] = x
		}
		return &ast.IfExp{Cond: parts[0], Then: parts[1], Else: parts[2], Pos: p}, nil

	case "Subscript":
		x, err := d.expr(field(n, "value"))
		if err != nil {
			return nil, err
		}
		idx := field(n, "slice")
		switch nodeType(idx) {
		case "Index":
			idx = field(idx, "value")
		case "Slice":
			s := &ast.Slice{X: x, Pos: p}
			if s.Lo, err = d.optional(field(idx, "lower")); err != nil {
				return nil, err
			}
			if s.Hi, err = d.optional(field(idx, "upper")); err != nil {
				return nil, err
			}
			if s.Step, err = d.optional(field(idx, "step")); err != nil {
				return nil, err
			}
			return s, nil
		}
		key, err := d.expr(idx)
		if err != nil {
			return nil, err
		}
		return &ast.Subscript{X: x, Index: key, Pos: p}, nil

	case "List":
		elts, err := d.exprs(field(n, "elts"))
		if err != nil {
			return nil, err
		}
		return &ast.ListLit{Elts: elts, Pos: p}, nil

	case "Dict":
		keys, values := items(field(n, "keys")), items(field(n, "values"))
		if len(keys) != len(values) {
			return nil, d.errorf(n, "dict has %d keys but %d values", len(keys), len(values))
		}
		out := &ast.DictLit{Pos: p}
		for i := range keys {
			if isNull(keys[i]) {
				return nil, d.unsupported(n, "dict unpacking is not supported")
			}
			k, err := d.expr(keys[i])
			if err != nil {
				return nil, err
			}
			v, err := d.expr(values[i])
			if err != nil {
				return nil, err
			}
			out.Keys = append(out.Keys, k)
			out.Values = append(out.Values, v)
		}
		return out, nil

	case "":
		return nil, d.errorf(n, "expression has no type")
	default:
		return nil, d.unsupported(n, "unsupported expression %s", t)
	}
}

// compare decodes a comparison. A chain a < b < c becomes
// (a < b) and (b < c), which is only equivalent when the middle operands
// can be evaluated twice.
func (d *decoder) compare(n *yaml.Node) (ast.Expr, error) {
	p := d.pos(n)
	ops := items(field(n, "ops"))
	rest, err := d.exprs(field(n, "comparators"))
	if err != nil {
		return nil, err
	}
	if len(ops) == 0 || len(ops) != len(rest) {
		return nil, d.errorf(n, "comparison has %d operators but %d comparators", len(ops), len(rest))
	}
	left, err := d.expr(field(n, "left"))
	if err != nil {
		return nil, err
	}

	var links []ast.Expr
	for i, opNode := range ops {
		op, ok := compareOps[opName(opNode)]
		if !ok {
			return nil, d.unsupported(n, "unsupported comparison %s", opName(opNode))
		}
		if i < len(ops)-1 && !repeatable(rest[i]) {
			return nil, d.unsupported(n, "chained comparison with a complex middle operand is not supported")
		}
		links = append(links, &ast.Compare{Op: op, Left: left, Right: rest[i], Pos: p})
		left = rest[i]
	}
	if len(links) == 1 {
		return links[0], nil
	}
	return &ast.BoolOp{Op: ast.And, Values: links, Pos: p}, nil
}

func repeatable(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Const, *ast.Name:
		return true
	}
	return false
}
