package hclsource

import (
	"github.com/vk/execgraph/internal/ast"
	"github.com/vk/execgraph/internal/failure"
	"github.com/vk/execgraph/internal/value"
)

// constValue folds a lowered literal expression into a value. Only literals,
// list and dict displays, and signed numbers are constant.
func constValue(e ast.Expr) (value.Value, error) {
	switch e := e.(type) {
	case *ast.Const:
		switch v := e.Value.(type) {
		case nil:
			return value.None, nil
		case bool:
			return value.Bool(v), nil
		case int64:
			return value.Int(v), nil
		case float64:
			return value.Float(v), nil
		case string:
			return value.String(v), nil
		}
	case *ast.Unary:
		x, err := constValue(e.X)
		if err != nil {
			return value.None, err
		}
		switch e.Op {
		case ast.Neg:
			return value.Neg(x)
		case ast.Plus:
			return value.Pos(x)
		}
	case *ast.ListLit:
		items := make([]value.Value, len(e.Elts))
		for i, elt := range e.Elts {
			v, err := constValue(elt)
			if err != nil {
				return value.None, err
			}
			items[i] = v
		}
		return value.NewList(items...), nil
	case *ast.DictLit:
		kv := make([]value.Value, 0, 2*len(e.Keys))
		for i := range e.Keys {
			k, err := constValue(e.Keys[i])
			if err != nil {
				return value.None, err
			}
			v, err := constValue(e.Values[i])
			if err != nil {
				return value.None, err
			}
			kv = append(kv, k, v)
		}
		return value.DictOf(kv...)
	}
	return value.None, failure.At(failure.UnsupportedConstruct, e.Position(), "%s is not a constant", ast.FormatExpr(e))
}
