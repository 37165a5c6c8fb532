package registry

import (
	"context"
	"slices"

	"github.com/vk/execgraph/internal/failure"
	"github.com/vk/execgraph/internal/value"
)

func registerReduce(r *Registry) {
	r.Register(&Descriptor{
		Name:    "min",
		Arity:   AtLeast(1),
		Offload: true,
		Doc:     "min(iterable) or min(a, b, ...)",
		Eval:    extreme("min", func(c int) bool { return c < 0 }),
	})
	r.Register(&Descriptor{
		Name:    "max",
		Arity:   AtLeast(1),
		Offload: true,
		Doc:     "max(iterable) or max(a, b, ...)",
		Eval:    extreme("max", func(c int) bool { return c > 0 }),
	})
	r.Register(&Descriptor{
		Name:    "sum",
		Arity:   Between(1, 2),
		Inputs:  []value.KindSet{value.Container, value.Any},
		Offload: true,
		Doc:     "sum(iterable[, start])",
		Eval: func(_ context.Context, args []value.Value) (value.Value, error) {
			items, err := value.Iterate(args[0])
			if err != nil {
				return value.None, err
			}
			acc := optional(args, 1, value.Int(0))
			for _, item := range items {
				if acc, err = value.Add(acc, item); err != nil {
					return value.None, failure.WithOp(err, "sum")
				}
			}
			return acc, nil
		},
	})
	r.Register(&Descriptor{
		Name:    "sorted",
		Arity:   Fixed(1),
		Inputs:  []value.KindSet{value.Container},
		Offload: true,
		Doc:     "new sorted list of the items",
		Eval: unary(func(v value.Value) (value.Value, error) {
			items, err := value.Iterate(v)
			if err != nil {
				return value.None, err
			}
			if err := sortValues(items); err != nil {
				return value.None, failure.WithOp(err, "sorted")
			}
			return value.NewList(items...), nil
		}),
	})
}

// candidates unpacks the single-iterable form used by min, max and friends.
func candidates(args []value.Value) ([]value.Value, error) {
	if len(args) == 1 {
		return value.Iterate(args[0])
	}
	return args, nil
}

func extreme(name string, better func(c int) bool) EvalFunc {
	return func(_ context.Context, args []value.Value) (value.Value, error) {
		items, err := candidates(args)
		if err != nil {
			return value.None, err
		}
		if len(items) == 0 {
			return value.None, failure.New(failure.ValueError, "%s() arg is an empty sequence", name)
		}
		best := items[0]
		for _, item := range items[1:] {
			c, err := value.Compare(item, best)
			if err != nil {
				return value.None, err
			}
			if better(c) {
				best = item
			}
		}
		return best, nil
	}
}

// sortValues sorts in place with a stable sort. The first comparison error
// is reported.
func sortValues(items []value.Value) error {
	var cmpErr error
	slices.SortStableFunc(items, func(a, b value.Value) int {
		c, err := value.Compare(a, b)
		if err != nil && cmpErr == nil {
			cmpErr = err
		}
		return c
	})
	return cmpErr
}
