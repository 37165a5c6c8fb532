package registry

import (
	"context"

	"github.com/vk/execgraph/internal/failure"
	"github.com/vk/execgraph/internal/value"
)

// Construction primitives always allocate a fresh aggregate.

func registerConstruct(r *Registry) {
	newList := func(_ context.Context, args []value.Value) (value.Value, error) {
		return value.NewList(args...), nil
	}
	r.Register(&Descriptor{
		Name:  "list",
		Arity: AtLeast(0),
		Doc:   "list(a, b, ...) builds a new list of its inputs",
		Eval:  newList,
	})
	r.Register(&Descriptor{
		Name:  "make_list",
		Arity: AtLeast(0),
		Doc:   "alias of list",
		Eval:  newList,
	})
	r.Register(&Descriptor{
		Name:   "dict",
		Arity:  Between(0, 1),
		Inputs: []value.KindSet{value.KindsOf(value.DictKind, value.ListKind)},
		Doc:    "dict() is empty; dict(d) copies d; dict(pairs) builds from [key, value] pairs",
		Eval:   buildDict,
	})
	r.Register(&Descriptor{
		Name:  "__dict",
		Arity: AtLeast(0),
		Doc:   "builds a dict from alternating keys and values",
		Eval: func(_ context.Context, args []value.Value) (value.Value, error) {
			return value.DictOf(args...)
		},
	})
	r.Register(&Descriptor{
		Name:    "range",
		Arity:   Between(1, 3),
		Inputs:  []value.KindSet{value.Integral},
		Offload: true,
		Doc:     "range(stop) or range(start, stop[, step]) as a list of ints",
		Eval:    buildRange,
	})
}

func buildDict(_ context.Context, args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.NewDict(), nil
	}
	src := args[0]
	if src.Kind() == value.DictKind {
		return value.ShallowCopy(src), nil
	}
	out := value.NewDict()
	for i, item := range src.List().Items() {
		pair := item.List()
		if pair == nil || pair.Len() != 2 {
			return value.None, failure.New(failure.ValueError, "dictionary update sequence element #%d is not a pair", i)
		}
		k, _ := pair.Get(0)
		v, _ := pair.Get(1)
		if err := out.Dict().Set(k, v); err != nil {
			return value.None, err
		}
	}
	return out, nil
}

func buildRange(_ context.Context, args []value.Value) (value.Value, error) {
	start, stop, step := int64(0), args[0].AsInt(), int64(1)
	if len(args) > 1 {
		start, stop = args[0].AsInt(), args[1].AsInt()
	}
	if len(args) > 2 {
		step = args[2].AsInt()
	}
	if step == 0 {
		return value.None, failure.New(failure.ValueError, "range() arg 3 must not be zero")
	}
	var count uint64
	switch {
	case step > 0 && start < stop:
		count = (uint64(stop)-uint64(start)-1)/uint64(step) + 1
	case step < 0 && start > stop:
		count = (uint64(start)-uint64(stop)-1)/(-uint64(step)) + 1
	}
	if err := value.CheckLength("range", count); err != nil {
		return value.None, err
	}
	items := make([]value.Value, count)
	for i := range items {
		items[i] = value.Int(start + int64(i)*step)
	}
	return value.NewList(items...), nil
}
