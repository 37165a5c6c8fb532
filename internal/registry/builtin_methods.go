package registry

import (
	"context"
	"strings"

	"github.com/vk/execgraph/internal/failure"
	"github.com/vk/execgraph/internal/value"
)

// Methods are registered under ".name" and take the receiver as input 0.

var (
	listKind = value.KindsOf(value.ListKind)
	dictKind = value.KindsOf(value.DictKind)
	strKind  = value.KindsOf(value.StringKind)
)

func registerMethods(r *Registry) {
	r.Register(&Descriptor{
		Name:   ".append",
		Arity:  Fixed(2),
		Inputs: []value.KindSet{listKind, value.Any},
		Effect: Mutates,
		Eval: func(_ context.Context, args []value.Value) (value.Value, error) {
			args[0].List().Append(args[1])
			return value.None, nil
		},
	})
	r.Register(&Descriptor{
		Name:   ".extend",
		Arity:  Fixed(2),
		Inputs: []value.KindSet{listKind, value.Container},
		Effect: Mutates,
		Eval: func(_ context.Context, args []value.Value) (value.Value, error) {
			items, err := value.Iterate(args[1])
			if err != nil {
				return value.None, err
			}
			args[0].List().Extend(items...)
			return value.None, nil
		},
	})
	r.Register(&Descriptor{
		Name:   ".insert",
		Arity:  Fixed(3),
		Inputs: []value.KindSet{listKind, value.Integral, value.Any},
		Effect: Mutates,
		Eval: func(_ context.Context, args []value.Value) (value.Value, error) {
			args[0].List().Insert(args[1].AsInt(), args[2])
			return value.None, nil
		},
	})
	r.Register(&Descriptor{
		Name:   ".pop",
		Arity:  Between(1, 3),
		Inputs: []value.KindSet{listOrMap, value.Any},
		Effect: Mutates,
		Doc:    "list.pop([i]) or dict.pop(k[, default])",
		Eval:   pop,
	})
	r.Register(&Descriptor{
		Name:   ".clear",
		Arity:  Fixed(1),
		Inputs: []value.KindSet{listOrMap},
		Effect: Mutates,
		Eval: unary(func(v value.Value) (value.Value, error) {
			if l := v.List(); l != nil {
				l.Clear()
			} else {
				v.Dict().Clear()
			}
			return value.None, nil
		}),
	})
	r.Register(&Descriptor{
		Name:   ".update",
		Arity:  Fixed(2),
		Inputs: []value.KindSet{dictKind, dictKind},
		Effect: Mutates,
		Eval: binary(func(d, other value.Value) (value.Value, error) {
			var err error
			other.Dict().Range(func(k, v value.Value) bool {
				err = d.Dict().Set(k, v)
				return err == nil
			})
			return value.None, err
		}),
	})
	r.Register(&Descriptor{
		Name:   ".get",
		Arity:  Between(2, 3),
		Inputs: []value.KindSet{dictKind, value.Any},
		Doc:    "dict.get(k[, default])",
		Eval: func(_ context.Context, args []value.Value) (value.Value, error) {
			ok, err := args[0].Dict().Has(args[1])
			if err != nil || !ok {
				return optional(args, 2, value.None), err
			}
			return args[0].Dict().Lookup(args[1])
		},
	})
	r.Register(&Descriptor{
		Name:   ".keys",
		Arity:  Fixed(1),
		Inputs: []value.KindSet{dictKind},
		Eval: unary(func(d value.Value) (value.Value, error) {
			return value.NewList(d.Dict().Keys()...), nil
		}),
	})
	r.Register(&Descriptor{
		Name:   ".values",
		Arity:  Fixed(1),
		Inputs: []value.KindSet{dictKind},
		Eval: unary(func(d value.Value) (value.Value, error) {
			return value.NewList(d.Dict().Values()...), nil
		}),
	})
	r.Register(&Descriptor{
		Name:   ".items",
		Arity:  Fixed(1),
		Inputs: []value.KindSet{dictKind},
		Doc:    "list of [key, value] pairs",
		Eval: unary(func(d value.Value) (value.Value, error) {
			var items []value.Value
			d.Dict().Range(func(k, v value.Value) bool {
				items = append(items, value.NewList(k, v))
				return true
			})
			return value.NewList(items...), nil
		}),
	})
	r.Register(&Descriptor{
		Name:   ".copy",
		Arity:  Fixed(1),
		Inputs: []value.KindSet{listOrMap},
		Doc:    "shallow copy",
		Eval: unary(func(v value.Value) (value.Value, error) {
			return value.ShallowCopy(v), nil
		}),
	})
	r.Register(&Descriptor{
		Name:   ".index",
		Arity:  Fixed(2),
		Inputs: []value.KindSet{value.Sequence, value.Any},
		Eval:   binary(indexMethod),
	})
	r.Register(&Descriptor{
		Name:   ".count",
		Arity:  Fixed(2),
		Inputs: []value.KindSet{value.Sequence, value.Any},
		Eval:   binary(countMethod),
	})
	r.Register(&Descriptor{
		Name:   ".join",
		Arity:  Fixed(2),
		Inputs: []value.KindSet{strKind, listKind},
		Eval: binary(func(sep, l value.Value) (value.Value, error) {
			parts := make([]string, 0, l.List().Len())
			for _, item := range l.List().Items() {
				if item.Kind() != value.StringKind {
					return value.None, failure.Mismatch(".join", value.Kinds(sep, item)...)
				}
				parts = append(parts, item.Str())
			}
			return value.String(strings.Join(parts, sep.Str())), nil
		}),
	})
	r.Register(&Descriptor{
		Name:   ".upper",
		Arity:  Fixed(1),
		Inputs: []value.KindSet{strKind},
		Eval: unary(func(s value.Value) (value.Value, error) {
			return value.String(strings.ToUpper(s.Str())), nil
		}),
	})
	r.Register(&Descriptor{
		Name:   ".lower",
		Arity:  Fixed(1),
		Inputs: []value.KindSet{strKind},
		Eval: unary(func(s value.Value) (value.Value, error) {
			return value.String(strings.ToLower(s.Str())), nil
		}),
	})
}

func pop(_ context.Context, args []value.Value) (value.Value, error) {
	recv := args[0]
	if l := recv.List(); l != nil {
		if len(args) > 2 {
			return value.None, &failure.Error{Kind: failure.ArityMismatch, Op: ".pop", Msg: "list.pop takes at most 1 argument"}
		}
		i := optional(args, 1, value.Int(-1))
		if i.Kind() != value.IntKind && i.Kind() != value.BoolKind {
			return value.None, failure.Mismatch(".pop", value.Kinds(args...)...)
		}
		return l.Pop(i.AsInt())
	}
	if len(args) < 2 {
		return value.None, &failure.Error{Kind: failure.ArityMismatch, Op: ".pop", Msg: "dict.pop expects at least 1 argument"}
	}
	d := recv.Dict()
	ok, err := d.Has(args[1])
	if err != nil {
		return value.None, err
	}
	if !ok && len(args) == 3 {
		return args[2], nil
	}
	return d.Pop(args[1])
}

func indexMethod(seq, x value.Value) (value.Value, error) {
	if seq.Kind() == value.StringKind {
		if x.Kind() != value.StringKind {
			return value.None, failure.Mismatch(".index", value.Kinds(seq, x)...)
		}
		i := strings.Index(seq.Str(), x.Str())
		if i < 0 {
			return value.None, failure.New(failure.ValueError, "substring not found")
		}
		return value.Int(int64(len([]rune(seq.Str()[:i])))), nil
	}
	for i, item := range seq.List().Items() {
		if value.Equal(item, x) {
			return value.Int(int64(i)), nil
		}
	}
	return value.None, failure.New(failure.ValueError, "%s is not in list", value.Repr(x))
}

func countMethod(seq, x value.Value) (value.Value, error) {
	if seq.Kind() == value.StringKind {
		if x.Kind() != value.StringKind {
			return value.None, failure.Mismatch(".count", value.Kinds(seq, x)...)
		}
		return value.Int(int64(strings.Count(seq.Str(), x.Str()))), nil
	}
	n := int64(0)
	for _, item := range seq.List().Items() {
		if value.Equal(item, x) {
			n++
		}
	}
	return value.Int(n), nil
}
