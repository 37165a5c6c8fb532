// Package statistics provides reductions over lists of numbers.
package statistics

import (
	"context"
	"math"
	"slices"

	"github.com/vk/execgraph/internal/failure"
	"github.com/vk/execgraph/internal/registry"
	"github.com/vk/execgraph/internal/value"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

var numericList = []value.KindSet{value.KindsOf(value.ListKind)}

// numbers returns the items of a list as floats. Every item must be numeric.
func numbers(op string, list value.Value, min int) ([]float64, error) {
	items := list.List().Items()
	if len(items) < min {
		return nil, &failure.Error{Kind: failure.ValueError, Op: op, Msg: "requires at least " + plural(min)}
	}
	out := make([]float64, len(items))
	for i, item := range items {
		if !value.Numeric.Has(item.Kind()) {
			return nil, failure.Mismatch(op, item.Kind().String())
		}
		out[i] = item.AsFloat()
	}
	return out, nil
}

func plural(n int) string {
	if n == 1 {
		return "one data point"
	}
	return "two data points"
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Mean is the arithmetic mean, always a float.
func Mean(_ context.Context, args []value.Value) (value.Value, error) {
	xs, err := numbers("mean", args[0], 1)
	if err != nil {
		return value.None, err
	}
	return value.Float(mean(xs)), nil
}

// Median is the middle item, or the mean of the two middle items.
func Median(_ context.Context, args []value.Value) (value.Value, error) {
	xs, err := numbers("median", args[0], 1)
	if err != nil {
		return value.None, err
	}
	slices.Sort(xs)
	n := len(xs)
	if n%2 == 1 {
		return value.Float(xs[n/2]), nil
	}
	return value.Float((xs[n/2-1] + xs[n/2]) / 2), nil
}

// Variance is the sample variance.
func Variance(_ context.Context, args []value.Value) (value.Value, error) {
	xs, err := numbers("variance", args[0], 2)
	if err != nil {
		return value.None, err
	}
	return value.Float(variance(xs)), nil
}

// Stdev is the sample standard deviation.
func Stdev(_ context.Context, args []value.Value) (value.Value, error) {
	xs, err := numbers("stdev", args[0], 2)
	if err != nil {
		return value.None, err
	}
	return value.Float(math.Sqrt(variance(xs))), nil
}

func variance(xs []float64) float64 {
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	return ss / float64(len(xs)-1)
}

// arg returns the index of the first item for which better holds against
// every earlier candidate.
func arg(op string, better func(c int) bool) registry.EvalFunc {
	return func(_ context.Context, args []value.Value) (value.Value, error) {
		if _, err := numbers(op, args[0], 1); err != nil {
			return value.None, err
		}
		items := args[0].List().Items()
		best := 0
		for i := 1; i < len(items); i++ {
			c, err := value.Compare(items[i], items[best])
			if err != nil {
				return value.None, failure.WithOp(err, op)
			}
			if better(c) {
				best = i
			}
		}
		return value.Int(int64(best)), nil
	}
}

func truth(all bool) registry.EvalFunc {
	return func(_ context.Context, args []value.Value) (value.Value, error) {
		items, err := value.Iterate(args[0])
		if err != nil {
			return value.None, err
		}
		for _, item := range items {
			if value.Truthy(item) != all {
				return value.Bool(!all), nil
			}
		}
		return value.Bool(all), nil
	}
}

// Register registers the primitives with the registry.
func (m *Module) Register(r *registry.Registry) {
	for _, d := range []*registry.Descriptor{
		{Name: "mean", Doc: "arithmetic mean", Eval: Mean},
		{Name: "median", Doc: "median", Eval: Median},
		{Name: "variance", Doc: "sample variance", Eval: Variance},
		{Name: "stdev", Doc: "sample standard deviation", Eval: Stdev},
		{Name: "argmax", Doc: "index of the first largest item", Eval: arg("argmax", func(c int) bool { return c > 0 })},
		{Name: "argmin", Doc: "index of the first smallest item", Eval: arg("argmin", func(c int) bool { return c < 0 })},
	} {
		d.Arity = registry.Fixed(1)
		d.Inputs = numericList
		d.Offload = true
		r.Register(d)
	}
	r.Register(&registry.Descriptor{
		Name:    "any",
		Arity:   registry.Fixed(1),
		Inputs:  []value.KindSet{value.Container},
		Offload: true,
		Doc:     "whether any item is truthy",
		Eval:    truth(false),
	})
	r.Register(&registry.Descriptor{
		Name:    "all",
		Arity:   registry.Fixed(1),
		Inputs:  []value.KindSet{value.Container},
		Offload: true,
		Doc:     "whether every item is truthy",
		Eval:    truth(true),
	})
}
