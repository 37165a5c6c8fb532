package hclsource

import (
	"bytes"
	"math/big"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/execgraph/internal/ast"
	"github.com/vk/execgraph/internal/failure"
	"github.com/zclconf/go-cty/cty"
)

// lowerer translates HCL expressions into syntax tree nodes. src is the file
// the expressions were parsed from; number literals are typed by their
// spelling there.
type lowerer struct {
	src []byte
}

func pos(r hcl.Range) ast.Pos {
	return ast.Pos{File: r.Filename, Line: r.Start.Line, Column: r.Start.Column}
}

func unsupported(r hcl.Range, format string, args ...any) error {
	return failure.At(failure.UnsupportedConstruct, pos(r), format, args...)
}

// statementForms are the calls that only make sense as statements.
var statementForms = map[string]bool{
	"block":    true,
	"define":   true,
	"store":    true,
	"while":    true,
	"for_each": true,
	"return":   true,
	"break":    true,
	"continue": true,
}

// body lowers a function body. The value of a trailing plain expression is
// the function's result, as in a block of the source language.
func (l *lowerer) body(e hclsyntax.Expression) ([]ast.Stmt, error) {
	stmts, err := l.stmt(e)
	if err != nil {
		return nil, err
	}
	if n := len(stmts); n > 0 {
		if last, ok := stmts[n-1].(*ast.ExprStmt); ok {
			stmts[n-1] = &ast.Return{Value: last.X, Pos: last.Pos}
		}
	}
	return stmts, nil
}

func (l *lowerer) stmt(e hclsyntax.Expression) ([]ast.Stmt, error) {
	if p, ok := e.(*hclsyntax.ParenthesesExpr); ok {
		return l.stmt(p.Expression)
	}
	call, ok := e.(*hclsyntax.FunctionCallExpr)
	if !ok || !statementForms[call.Name] && call.Name != "if" {
		x, err := l.expr(e)
		if err != nil {
			return nil, err
		}
		return []ast.Stmt{&ast.ExprStmt{X: x, Pos: x.Position()}}, nil
	}
	if call.ExpandFinal {
		return nil, unsupported(call.SrcRange, "argument expansion is not supported in %s", call.Name)
	}
	p := pos(call.SrcRange)
	args := call.Args

	arity := func(min, max int) error {
		if len(args) < min || len(args) > max {
			return &failure.Error{
				Kind: failure.ArityMismatch,
				Op:   call.Name,
				Pos:  p,
				Msg:  "wrong number of arguments",
			}
		}
		return nil
	}

	switch call.Name {
	case "block":
		var out []ast.Stmt
		for _, a := range args {
			s, err := l.stmt(a)
			if err != nil {
				return nil, err
			}
			out = append(out, s...)
		}
		return out, nil

	case "define":
		if len(args) > 2 {
			return nil, unsupported(call.SrcRange, "function definitions are not supported")
		}
		if err := arity(2, 2); err != nil {
			return nil, err
		}
		name, ok := rootName(args[0])
		if !ok {
			return nil, unsupported(args[0].Range(), "define needs a variable name")
		}
		v, err := l.expr(args[1])
		if err != nil {
			return nil, err
		}
		return []ast.Stmt{&ast.Assign{Target: name, Value: v, Define: true, Pos: p}}, nil

	case "store":
		if err := arity(2, 2); err != nil {
			return nil, err
		}
		v, err := l.expr(args[1])
		if err != nil {
			return nil, err
		}
		if name, ok := rootName(args[0]); ok {
			return []ast.Stmt{&ast.Assign{Target: name, Value: v, Pos: p}}, nil
		}
		target, err := l.expr(args[0])
		if err != nil {
			return nil, err
		}
		sub, ok := target.(*ast.Subscript)
		if !ok {
			return nil, unsupported(args[0].Range(), "cannot store into this expression")
		}
		return []ast.Stmt{&ast.SetItem{Container: sub.X, Key: sub.Index, Value: v, Pos: p}}, nil

	case "if":
		if err := arity(2, 3); err != nil {
			return nil, err
		}
		cond, err := l.expr(args[0])
		if err != nil {
			return nil, err
		}
		then, err := l.stmt(args[1])
		if err != nil {
			return nil, err
		}
		s := &ast.If{Cond: cond, Then: then, Pos: p}
		if len(args) == 3 {
			if s.Else, err = l.stmt(args[2]); err != nil {
				return nil, err
			}
		}
		return []ast.Stmt{s}, nil

	case "while":
		if err := arity(2, 2); err != nil {
			return nil, err
		}
		cond, err := l.expr(args[0])
		if err != nil {
			return nil, err
		}
		body, err := l.stmt(args[1])
		if err != nil {
			return nil, err
		}
		return []ast.Stmt{&ast.While{Cond: cond, Body: body, Pos: p}}, nil

	case "for_each":
		if err := arity(3, 3); err != nil {
			return nil, err
		}
		name, ok := rootName(args[0])
		if !ok {
			return nil, unsupported(args[0].Range(), "for_each needs a loop variable name")
		}
		iter, err := l.expr(args[1])
		if err != nil {
			return nil, err
		}
		body, err := l.stmt(args[2])
		if err != nil {
			return nil, err
		}
		return []ast.Stmt{&ast.For{Var: name, Iter: iter, Body: body, Pos: p}}, nil

	case "return":
		if err := arity(0, 1); err != nil {
			return nil, err
		}
		s := &ast.Return{Pos: p}
		if len(args) == 1 {
			v, err := l.expr(args[0])
			if err != nil {
				return nil, err
			}
			s.Value = v
		}
		return []ast.Stmt{s}, nil

	case "break":
		if err := arity(0, 0); err != nil {
			return nil, err
		}
		return []ast.Stmt{&ast.Break{Pos: p}}, nil

	case "continue":
		if err := arity(0, 0); err != nil {
			return nil, err
		}
		return []ast.Stmt{&ast.Continue{Pos: p}}, nil
	}
	return nil, unsupported(call.SrcRange, "unknown statement %s", call.Name)
}

// rootName returns the variable a bare reference such as `data` names.
func rootName(e hclsyntax.Expression) (string, bool) {
	st, ok := e.(*hclsyntax.ScopeTraversalExpr)
	if !ok || len(st.Traversal) != 1 {
		return "", false
	}
	return st.Traversal.RootName(), true
}

var binaryOps = map[*hclsyntax.Operation]ast.BinaryOp{
	hclsyntax.OpAdd:      ast.Add,
	hclsyntax.OpSubtract: ast.Sub,
	hclsyntax.OpMultiply: ast.Mul,
	hclsyntax.OpDivide:   ast.Div,
	hclsyntax.OpModulo:   ast.Mod,
}

var compareOps = map[*hclsyntax.Operation]ast.CompareOp{
	hclsyntax.OpEqual:              ast.Eq,
	hclsyntax.OpNotEqual:           ast.NotEq,
	hclsyntax.OpLessThan:           ast.Lt,
	hclsyntax.OpLessThanOrEqual:    ast.LtE,
	hclsyntax.OpGreaterThan:        ast.Gt,
	hclsyntax.OpGreaterThanOrEqual: ast.GtE,
}

func (l *lowerer) exprs(es []hclsyntax.Expression) ([]ast.Expr, error) {
	out := make([]ast.Expr, len(es))
	for i, e := range es {
		x, err := l.expr(e)
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}

func (l *lowerer) expr(e hclsyntax.Expression) (ast.Expr, error) {
	switch e := e.(type) {
	case *hclsyntax.ParenthesesExpr:
		return l.expr(e.Expression)

	case *hclsyntax.LiteralValueExpr:
		return l.literal(e.Val, e.SrcRange)

	case *hclsyntax.TemplateExpr:
		return l.template(e)

	case *hclsyntax.TemplateWrapExpr:
		x, err := l.expr(e.Wrapped)
		if err != nil {
			return nil, err
		}
		return &ast.Call{Func: "str", Args: []ast.Expr{x}, Pos: pos(e.SrcRange)}, nil

	case *hclsyntax.ScopeTraversalExpr:
		root := &ast.Name{ID: e.Traversal.RootName(), Pos: pos(e.SrcRange)}
		return l.traverse(root, e.Traversal[1:])

	case *hclsyntax.RelativeTraversalExpr:
		src, err := l.expr(e.Source)
		if err != nil {
			return nil, err
		}
		return l.traverse(src, e.Traversal)

	case *hclsyntax.IndexExpr:
		x, err := l.expr(e.Collection)
		if err != nil {
			return nil, err
		}
		k, err := l.expr(e.Key)
		if err != nil {
			return nil, err
		}
		return &ast.Subscript{X: x, Index: k, Pos: pos(e.SrcRange)}, nil

	case *hclsyntax.FunctionCallExpr:
		return l.call(e)

	case *hclsyntax.BinaryOpExpr:
		left, err := l.expr(e.LHS)
		if err != nil {
			return nil, err
		}
		right, err := l.expr(e.RHS)
		if err != nil {
			return nil, err
		}
		p := pos(e.SrcRange)
		if op, ok := binaryOps[e.Op]; ok {
			return &ast.Binary{Op: op, Left: left, Right: right, Pos: p}, nil
		}
		if op, ok := compareOps[e.Op]; ok {
			return &ast.Compare{Op: op, Left: left, Right: right, Pos: p}, nil
		}
		op := ast.And
		if e.Op == hclsyntax.OpLogicalOr {
			op = ast.Or
		}
		return &ast.BoolOp{Op: op, Values: []ast.Expr{left, right}, Pos: p}, nil

	case *hclsyntax.UnaryOpExpr:
		x, err := l.expr(e.Val)
		if err != nil {
			return nil, err
		}
		op := ast.Neg
		if e.Op == hclsyntax.OpLogicalNot {
			op = ast.Not
		}
		return &ast.Unary{Op: op, X: x, Pos: pos(e.SrcRange)}, nil

	case *hclsyntax.ConditionalExpr:
		parts, err := l.exprs([]hclsyntax.Expression{e.Condition, e.TrueResult, e.FalseResult})
		if err != nil {
			return nil, err
		}
		return &ast.IfExp{Cond: parts[0], Then: parts[1], Else: parts[2], Pos: pos(e.SrcRange)}, nil

	case *hclsyntax.TupleConsExpr:
		elts, err := l.exprs(e.Exprs)
		if err != nil {
			return nil, err
		}
		return &ast.ListLit{Elts: elts, Pos: pos(e.SrcRange)}, nil

	case *hclsyntax.ObjectConsExpr:
		d := &ast.DictLit{Pos: pos(e.SrcRange)}
		for _, item := range e.Items {
			k, err := l.objectKey(item.KeyExpr)
			if err != nil {
				return nil, err
			}
			v, err := l.expr(item.ValueExpr)
			if err != nil {
				return nil, err
			}
			d.Keys = append(d.Keys, k)
			d.Values = append(d.Values, v)
		}
		return d, nil
	}
	return nil, unsupported(e.Range(), "unsupported expression %T", e)
}

// objectKey lowers an object constructor key. A bare identifier is a string
// key, as in HCL itself.
func (l *lowerer) objectKey(e hclsyntax.Expression) (ast.Expr, error) {
	if k, ok := e.(*hclsyntax.ObjectConsKeyExpr); ok {
		if name, bare := rootName(k.Wrapped); bare && !k.ForceNonLiteral {
			return &ast.Const{Value: name, Pos: pos(k.Range())}, nil
		}
		return l.expr(k.Wrapped)
	}
	return l.expr(e)
}

func (l *lowerer) call(e *hclsyntax.FunctionCallExpr) (ast.Expr, error) {
	if e.ExpandFinal {
		return nil, unsupported(e.SrcRange, "argument expansion is not supported in %s", e.Name)
	}
	if statementForms[e.Name] {
		return nil, unsupported(e.SrcRange, "%s is a statement and has no value", e.Name)
	}
	args, err := l.exprs(e.Args)
	if err != nil {
		return nil, err
	}
	p := pos(e.SrcRange)
	if e.Name == "if" {
		if len(args) != 3 {
			return nil, unsupported(e.SrcRange, "if used as a value needs an else branch")
		}
		return &ast.IfExp{Cond: args[0], Then: args[1], Else: args[2], Pos: p}, nil
	}
	return &ast.Call{Func: e.Name, Args: args, Pos: p}, nil
}

func (l *lowerer) traverse(x ast.Expr, steps hcl.Traversal) (ast.Expr, error) {
	for _, step := range steps {
		switch s := step.(type) {
		case hcl.TraverseAttr:
			x = &ast.Subscript{X: x, Index: &ast.Const{Value: s.Name, Pos: pos(s.SrcRange)}, Pos: pos(s.SrcRange)}
		case hcl.TraverseIndex:
			k, err := l.literal(s.Key, s.SrcRange)
			if err != nil {
				return nil, err
			}
			x = &ast.Subscript{X: x, Index: k, Pos: pos(s.SrcRange)}
		default:
			return nil, unsupported(step.SourceRange(), "unsupported traversal step %T", step)
		}
	}
	return x, nil
}

func (l *lowerer) template(e *hclsyntax.TemplateExpr) (ast.Expr, error) {
	p := pos(e.SrcRange)
	if len(e.Parts) == 0 {
		return &ast.Const{Value: "", Pos: p}, nil
	}
	var out ast.Expr
	for _, part := range e.Parts {
		x, err := l.expr(part)
		if err != nil {
			return nil, err
		}
		if c, ok := x.(*ast.Const); !ok || c.Value == nil {
			x = &ast.Call{Func: "str", Args: []ast.Expr{x}, Pos: x.Position()}
		} else if _, isStr := c.Value.(string); !isStr {
			x = &ast.Call{Func: "str", Args: []ast.Expr{x}, Pos: x.Position()}
		}
		if out == nil {
			out = x
			continue
		}
		out = &ast.Binary{Op: ast.Add, Left: out, Right: x, Pos: p}
	}
	return out, nil
}

// literal converts a literal value. Whole numbers spelled without a decimal
// point or exponent become ints; all other numbers become floats.
func (l *lowerer) literal(v cty.Value, r hcl.Range) (ast.Expr, error) {
	p := pos(r)
	if v.IsNull() {
		return &ast.Const{Value: nil, Pos: p}, nil
	}
	switch v.Type() {
	case cty.Bool:
		return &ast.Const{Value: v.True(), Pos: p}, nil
	case cty.String:
		return &ast.Const{Value: v.AsString(), Pos: p}, nil
	case cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() && !l.spelledAsFloat(r) {
			i, acc := bf.Int64()
			if acc != big.Exact {
				return nil, unsupported(r, "integer literal %s is out of range", bf.String())
			}
			return &ast.Const{Value: i, Pos: p}, nil
		}
		f, _ := bf.Float64()
		return &ast.Const{Value: f, Pos: p}, nil
	}
	return nil, unsupported(r, "unsupported literal of type %s", v.Type().FriendlyName())
}

func (l *lowerer) spelledAsFloat(r hcl.Range) bool {
	if r.Start.Byte < 0 || r.End.Byte > len(l.src) || r.Start.Byte >= r.End.Byte {
		return false
	}
	return bytes.ContainsAny(l.src[r.Start.Byte:r.End.Byte], ".eE")
}
