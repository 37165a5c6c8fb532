package capture

import (
	"github.com/vk/execgraph/internal/ast"
	"gopkg.in/yaml.v3"
)

func (d *decoder) stmts(n *yaml.Node) ([]ast.Stmt, error) {
	var out []ast.Stmt
	for _, c := range items(n) {
		s, err := d.stmt(c)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (d *decoder) stmt(n *yaml.Node) (ast.Stmt, error) {
	p := d.pos(n)
	switch t := nodeType(n); t {
	case "Assign":
		targets := items(field(n, "targets"))
		if len(targets) != 1 {
			return nil, d.unsupported(n, "chained assignment is not supported")
		}
		return d.assign(n, targets[0], field(n, "value"))

	case "AnnAssign":
		if isNull(field(n, "value")) {
			return &ast.Pass{Pos: p}, nil
		}
		return d.assign(n, field(n, "target"), field(n, "value"))

	case "AugAssign":
		op, ok := binaryOps[opName(field(n, "op"))]
		if !ok {
			return nil, d.unsupported(n, "unsupported operator %s", opName(field(n, "op")))
		}
		target, err := d.expr(field(n, "target"))
		if err != nil {
			return nil, err
		}
		switch target.(type) {
		case *ast.Name, *ast.Subscript:
		default:
			return nil, d.unsupported(n, "cannot assign to %s", nodeType(field(n, "target")))
		}
		v, err := d.expr(field(n, "value"))
		if err != nil {
			return nil, err
		}
		return &ast.AugAssign{Target: target, Op: op, Value: v, Pos: p}, nil

	case "Expr":
		x, err := d.expr(field(n, "value"))
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{X: x, Pos: p}, nil

	case "If":
		cond, err := d.expr(field(n, "test"))
		if err != nil {
			return nil, err
		}
		s := &ast.If{Cond: cond, Pos: p}
		if s.Then, err = d.stmts(field(n, "body")); err != nil {
			return nil, err
		}
		if s.Else, err = d.stmts(field(n, "orelse")); err != nil {
			return nil, err
		}
		return s, nil

	case "While":
		if len(items(field(n, "orelse"))) > 0 {
			return nil, d.unsupported(n, "loop else clauses are not supported")
		}
		cond, err := d.expr(field(n, "test"))
		if err != nil {
			return nil, err
		}
		body, err := d.stmts(field(n, "body"))
		if err != nil {
			return nil, err
		}
		return &ast.While{Cond: cond, Body: body, Pos: p}, nil

	case "For":
		if len(items(field(n, "orelse"))) > 0 {
			return nil, d.unsupported(n, "loop else clauses are not supported")
		}
		target := field(n, "target")
		if nodeType(target) != "Name" {
			return nil, d.unsupported(n, "for loops must bind a single name")
		}
		iter, err := d.expr(field(n, "iter"))
		if err != nil {
			return nil, err
		}
		body, err := d.stmts(field(n, "body"))
		if err != nil {
			return nil, err
		}
		return &ast.For{Var: scalar(field(target, "id")), Iter: iter, Body: body, Pos: p}, nil

	case "Return":
		s := &ast.Return{Pos: p}
		if v := field(n, "value"); !isNull(v) {
			x, err := d.expr(v)
			if err != nil {
				return nil, err
			}
			s.Value = x
		}
		return s, nil

	case "Break":
		return &ast.Break{Pos: p}, nil
	case "Continue":
		return &ast.Continue{Pos: p}, nil
	case "Pass":
		return &ast.Pass{Pos: p}, nil

	case "":
		return nil, d.errorf(n, "statement has no type")
	default:
		return nil, d.unsupported(n, "unsupported statement %s", t)
	}
}

func (d *decoder) assign(n, target, val *yaml.Node) (ast.Stmt, error) {
	v, err := d.expr(val)
	if err != nil {
		return nil, err
	}
	p := d.pos(n)
	switch nodeType(target) {
	case "Name":
		return &ast.Assign{Target: scalar(field(target, "id")), Value: v, Pos: p}, nil
	case "Subscript":
		x, err := d.expr(target)
		if err != nil {
			return nil, err
		}
		sub, ok := x.(*ast.Subscript)
		if !ok {
			return nil, d.unsupported(target, "slice assignment is not supported")
		}
		return &ast.SetItem{Container: sub.X, Key: sub.Index, Value: v, Pos: p}, nil
	}
	return nil, d.unsupported(n, "cannot assign to %s", nodeType(target))
}
