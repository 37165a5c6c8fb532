package registry

import (
	"context"
	"strings"

	"github.com/vk/execgraph/internal/failure"
	"github.com/vk/execgraph/internal/value"
)

var (
	bound     = value.KindsOf(value.NilKind, value.BoolKind, value.IntKind)
	listOrMap = value.KindsOf(value.ListKind, value.DictKind)
)

func registerAccess(r *Registry) {
	r.Register(&Descriptor{
		Name:   "__getitem",
		Arity:  Fixed(2),
		Inputs: []value.KindSet{value.Container, value.Any},
		Doc:    "x[k]",
		Eval:   binary(getItem),
	})
	r.Register(&Descriptor{
		Name:   "__setitem",
		Arity:  Fixed(3),
		Inputs: []value.KindSet{listOrMap, value.Any, value.Any},
		Effect: Mutates,
		Doc:    "x[k] = v, in place",
		Eval: func(_ context.Context, args []value.Value) (value.Value, error) {
			return value.None, setItem(args[0], args[1], args[2])
		},
	})
	r.Register(&Descriptor{
		Name:   "__delitem",
		Arity:  Fixed(2),
		Inputs: []value.KindSet{listOrMap, value.Any},
		Effect: Mutates,
		Doc:    "del x[k], in place",
		Eval: func(_ context.Context, args []value.Value) (value.Value, error) {
			return value.None, delItem(args[0], args[1])
		},
	})
	r.Register(&Descriptor{
		Name:   "slice",
		Arity:  Between(3, 4),
		Inputs: []value.KindSet{value.Sequence, bound},
		Doc:    "slice(x, lo, hi[, step]) is x[lo:hi:step]; None bounds take defaults",
		Eval: func(_ context.Context, args []value.Value) (value.Value, error) {
			return sliceOf(args[0], args[1], args[2], optional(args, 3, value.None))
		},
	})
	r.Register(&Descriptor{
		Name:   "len",
		Arity:  Fixed(1),
		Inputs: []value.KindSet{value.Container},
		Doc:    "number of items",
		Eval: unary(func(v value.Value) (value.Value, error) {
			n, err := value.Len(v)
			return value.Int(n), err
		}),
	})
	r.Register(&Descriptor{
		Name:   "__in",
		Arity:  Fixed(2),
		Inputs: []value.KindSet{value.Any, value.Container},
		Doc:    "x in c",
		Eval: binary(func(x, c value.Value) (value.Value, error) {
			ok, err := contains(c, x)
			return value.Bool(ok), err
		}),
	})
	r.Register(&Descriptor{
		Name:   "__not_in",
		Arity:  Fixed(2),
		Inputs: []value.KindSet{value.Any, value.Container},
		Doc:    "x not in c",
		Eval: binary(func(x, c value.Value) (value.Value, error) {
			ok, err := contains(c, x)
			return value.Bool(!ok), err
		}),
	})
}

func indexOf(op string, x, k value.Value) (int64, error) {
	if k.Kind() != value.IntKind && k.Kind() != value.BoolKind {
		return 0, &failure.Error{
			Kind:  failure.TypeMismatch,
			Op:    op,
			Kinds: value.Kinds(x, k),
			Msg:   "indices must be integers",
		}
	}
	return k.AsInt(), nil
}

func getItem(x, k value.Value) (value.Value, error) {
	switch x.Kind() {
	case value.DictKind:
		return x.Dict().Lookup(k)
	case value.ListKind:
		i, err := indexOf("__getitem", x, k)
		if err != nil {
			return value.None, err
		}
		return x.List().Get(i)
	case value.StringKind:
		i, err := indexOf("__getitem", x, k)
		if err != nil {
			return value.None, err
		}
		runes := []rune(x.Str())
		n := int64(len(runes))
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			return value.None, failure.New(failure.IndexError, "string index out of range")
		}
		return value.String(string(runes[i])), nil
	}
	return value.None, failure.Mismatch("__getitem", value.Kinds(x, k)...)
}

func setItem(x, k, v value.Value) error {
	switch x.Kind() {
	case value.DictKind:
		return x.Dict().Set(k, v)
	case value.ListKind:
		i, err := indexOf("__setitem", x, k)
		if err != nil {
			return err
		}
		return x.List().Set(i, v)
	}
	return failure.Mismatch("__setitem", value.Kinds(x, k, v)...)
}

func delItem(x, k value.Value) error {
	switch x.Kind() {
	case value.DictKind:
		return x.Dict().Delete(k)
	case value.ListKind:
		i, err := indexOf("__delitem", x, k)
		if err != nil {
			return err
		}
		return x.List().Delete(i)
	}
	return failure.Mismatch("__delitem", value.Kinds(x, k)...)
}

func contains(c, x value.Value) (bool, error) {
	switch c.Kind() {
	case value.DictKind:
		return c.Dict().Has(x)
	case value.ListKind:
		for _, item := range c.List().Items() {
			if value.Equal(item, x) {
				return true, nil
			}
		}
		return false, nil
	case value.StringKind:
		if x.Kind() != value.StringKind {
			return false, &failure.Error{
				Kind:  failure.TypeMismatch,
				Op:    "__in",
				Kinds: value.Kinds(x, c),
				Msg:   "'in <string>' requires string as left operand",
			}
		}
		return strings.Contains(c.Str(), x.Str()), nil
	}
	return false, failure.Mismatch("__in", value.Kinds(x, c)...)
}

// sliceIndices resolves slice bounds against a sequence of length n the way
// the host does, returning the positions to visit.
func sliceIndices(n int64, lo, hi, step value.Value) ([]int64, error) {
	s := int64(1)
	if !step.IsNil() {
		s = step.AsInt()
	}
	if s == 0 {
		return nil, failure.New(failure.ValueError, "slice step cannot be zero")
	}
	clamp := func(v value.Value, def, floor, ceil int64) int64 {
		if v.IsNil() {
			return def
		}
		i := v.AsInt()
		if i < 0 {
			i += n
		}
		return max(floor, min(i, ceil))
	}
	var out []int64
	if s > 0 {
		start, stop := clamp(lo, 0, 0, n), clamp(hi, n, 0, n)
		for i := start; i < stop; i += s {
			out = append(out, i)
		}
		return out, nil
	}
	start, stop := clamp(lo, n-1, -1, n-1), clamp(hi, -1, -1, n-1)
	for i := start; i > stop; i += s {
		out = append(out, i)
	}
	return out, nil
}

func sliceOf(x, lo, hi, step value.Value) (value.Value, error) {
	switch x.Kind() {
	case value.ListKind:
		items := x.List().Items()
		idx, err := sliceIndices(int64(len(items)), lo, hi, step)
		if err != nil {
			return value.None, err
		}
		out := make([]value.Value, len(idx))
		for i, j := range idx {
			out[i] = items[j]
		}
		return value.NewList(out...), nil
	case value.StringKind:
		runes := []rune(x.Str())
		idx, err := sliceIndices(int64(len(runes)), lo, hi, step)
		if err != nil {
			return value.None, err
		}
		out := make([]rune, len(idx))
		for i, j := range idx {
			out[i] = runes[j]
		}
		return value.String(string(out)), nil
	}
	return value.None, failure.Mismatch("slice", x.Kind().String())
}
