package compiler

import (
	"github.com/vk/execgraph/internal/ast"
	"github.com/vk/execgraph/internal/failure"
	"github.com/vk/execgraph/internal/graph"
	"github.com/vk/execgraph/internal/registry"
	"github.com/vk/execgraph/internal/value"
)

var binaryPrims = map[ast.BinaryOp]string{
	ast.Add:      "__add",
	ast.Sub:      "__sub",
	ast.Mul:      "__mul",
	ast.Div:      "__div",
	ast.FloorDiv: "__floordiv",
	ast.Mod:      "__mod",
	ast.Pow:      "__pow",
}

// inplacePrims are the primitives of augmented assignments that update a
// list operand in place.
var inplacePrims = map[ast.BinaryOp]string{
	ast.Add: "__iadd",
	ast.Mul: "__imul",
}

var unaryPrims = map[ast.UnaryOp]string{
	ast.Neg:  "__neg",
	ast.Plus: "__pos",
	ast.Not:  "__not",
}

var comparePrims = map[ast.CompareOp]string{
	ast.Eq:    "__eq",
	ast.NotEq: "__ne",
	ast.Lt:    "__lt",
	ast.LtE:   "__le",
	ast.Gt:    "__gt",
	ast.GtE:   "__ge",
	ast.In:    "__in",
	ast.NotIn: "__not_in",
	ast.Is:    "__is",
	ast.IsNot: "__is_not",
}

// PrimitiveFor returns the primitive an operator lowers to.
func PrimitiveFor(op any) (string, bool) {
	var name string
	switch op := op.(type) {
	case ast.BinaryOp:
		name = binaryPrims[op]
	case ast.UnaryOp:
		name = unaryPrims[op]
	case ast.CompareOp:
		name = comparePrims[op]
	}
	return name, name != ""
}

func literal(v any) (value.Value, bool) {
	switch v := v.(type) {
	case nil:
		return value.None, true
	case bool:
		return value.Bool(v), true
	case int64:
		return value.Int(v), true
	case int:
		return value.Int(int64(v)), true
	case float64:
		return value.Float(v), true
	case string:
		return value.String(v), true
	}
	return value.None, false
}

func (st *state) exprs(es []ast.Expr) ([]graph.NodeID, error) {
	ids := make([]graph.NodeID, 0, len(es))
	for _, e := range es {
		id, err := st.expr(e)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// invoke lowers a call of the named primitive. When the primitive mutates
// and its target is a plain name, the node records that name's slot.
func (st *state) invoke(name string, args []ast.Expr, pos ast.Pos) (graph.NodeID, error) {
	d, err := st.primitive(name, len(args), pos)
	if err != nil {
		return 0, err
	}
	return st.invokeDescriptor(d, args, pos)
}

func (st *state) invokeDescriptor(d *registry.Descriptor, args []ast.Expr, pos ast.Pos) (graph.NodeID, error) {
	ins, err := st.exprs(args)
	if err != nil {
		return 0, err
	}
	n := graph.Node{Inputs: ins, Pos: pos}
	if d.Effect == registry.Mutates && len(args) > 0 {
		if target, ok := args[0].(*ast.Name); ok {
			ref, _ := st.resolve(target.ID)
			n.Name, n.Slot = target.ID, &ref
		}
	}
	return st.b.Invoke(d, n), nil
}

func (st *state) expr(e ast.Expr) (graph.NodeID, error) {
	switch e := e.(type) {
	case *ast.Const:
		v, ok := literal(e.Value)
		if !ok {
			return 0, failure.At(failure.UnsupportedConstruct, e.Pos, "unsupported literal of type %T", e.Value)
		}
		return st.b.Add(graph.Node{Op: graph.Literal, Literal: v, Pos: e.Pos}), nil

	case *ast.Name:
		ref, ok := st.resolve(e.ID)
		if !ok {
			return 0, failure.At(failure.UnboundName, e.Pos, "name %q is not defined", e.ID)
		}
		return st.b.Add(graph.Node{Op: graph.Load, Name: e.ID, Slot: &ref, Pos: e.Pos}), nil

	case *ast.Call:
		if !st.reg.Has(e.Func) && len(e.Args) > 0 && st.reg.Has("."+e.Func) {
			return st.invoke("."+e.Func, e.Args, e.Pos)
		}
		return st.invoke(e.Func, e.Args, e.Pos)

	case *ast.MethodCall:
		args := append([]ast.Expr{e.Recv}, e.Args...)
		return st.invoke("."+e.Method, args, e.Pos)

	case *ast.Binary:
		name, ok := binaryPrims[e.Op]
		if !ok {
			return 0, failure.At(failure.UnsupportedConstruct, e.Pos, "unsupported operator %d", int(e.Op))
		}
		return st.invoke(name, []ast.Expr{e.Left, e.Right}, e.Pos)

	case *ast.Unary:
		name, ok := unaryPrims[e.Op]
		if !ok {
			return 0, failure.At(failure.UnsupportedConstruct, e.Pos, "unsupported operator %d", int(e.Op))
		}
		return st.invoke(name, []ast.Expr{e.X}, e.Pos)

	case *ast.Compare:
		name, ok := comparePrims[e.Op]
		if !ok {
			return 0, failure.At(failure.UnsupportedConstruct, e.Pos, "unsupported comparison %d", int(e.Op))
		}
		return st.invoke(name, []ast.Expr{e.Left, e.Right}, e.Pos)

	case *ast.BoolOp:
		form, op := "and", graph.And
		if e.Op == ast.Or {
			form, op = "or", graph.Or
		}
		if err := st.control(form, e.Pos); err != nil {
			return 0, err
		}
		if len(e.Values) < 2 {
			return 0, failure.At(failure.UnsupportedConstruct, e.Pos, "%s needs at least two operands", form)
		}
		ins, err := st.exprs(e.Values)
		if err != nil {
			return 0, err
		}
		return st.b.Add(graph.Node{Op: op, Inputs: ins, Pos: e.Pos}), nil

	case *ast.IfExp:
		if err := st.control("if", e.Pos); err != nil {
			return 0, err
		}
		ins, err := st.exprs([]ast.Expr{e.Cond, e.Then, e.Else})
		if err != nil {
			return 0, err
		}
		return st.b.Add(graph.Node{Op: graph.Branch, Inputs: ins, Pos: e.Pos}), nil

	case *ast.Subscript:
		return st.invoke("__getitem", []ast.Expr{e.X, e.Index}, e.Pos)

	case *ast.Slice:
		args := []ast.Expr{e.X, orNone(e.Lo, e.Pos), orNone(e.Hi, e.Pos)}
		if e.Step != nil {
			args = append(args, e.Step)
		}
		return st.invoke("slice", args, e.Pos)

	case *ast.ListLit:
		return st.invoke("list", e.Elts, e.Pos)

	case *ast.DictLit:
		if len(e.Keys) != len(e.Values) {
			return 0, failure.At(failure.UnsupportedConstruct, e.Pos, "dict display has %d keys and %d values", len(e.Keys), len(e.Values))
		}
		kv := make([]ast.Expr, 0, 2*len(e.Keys))
		for i := range e.Keys {
			kv = append(kv, e.Keys[i], e.Values[i])
		}
		return st.invoke("__dict", kv, e.Pos)

	case nil:
		return 0, failure.New(failure.UnsupportedConstruct, "missing expression")
	}
	return 0, failure.At(failure.UnsupportedConstruct, e.Position(), "unsupported expression %T", e)
}

func orNone(e ast.Expr, pos ast.Pos) ast.Expr {
	if e != nil {
		return e
	}
	return &ast.Const{Value: nil, Pos: pos}
}

// pure reports whether evaluating e twice is indistinguishable from
// evaluating it once, so its node may feed more than one consumer.
func pure(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.Const, *ast.Name:
		return true
	case *ast.Subscript:
		return pure(e.X) && pure(e.Index)
	case *ast.Binary:
		return pure(e.Left) && pure(e.Right)
	case *ast.Unary:
		return pure(e.X)
	}
	return false
}
