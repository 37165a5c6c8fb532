package registry

import (
	"github.com/vk/execgraph/internal/failure"
	"github.com/vk/execgraph/internal/value"
)

func registerCompare(r *Registry) {
	r.Register(&Descriptor{
		Name:    "__eq",
		Arity:   Fixed(2),
		Offload: true,
		Doc:     "structural equality; operands must be of comparable kinds",
		Eval: binary(func(a, b value.Value) (value.Value, error) {
			if err := checkComparable("__eq", a, b); err != nil {
				return value.None, err
			}
			return value.Bool(value.Equal(a, b)), nil
		}),
	})
	r.Register(&Descriptor{
		Name:    "__ne",
		Arity:   Fixed(2),
		Offload: true,
		Eval: binary(func(a, b value.Value) (value.Value, error) {
			if err := checkComparable("__ne", a, b); err != nil {
				return value.None, err
			}
			return value.Bool(!value.Equal(a, b)), nil
		}),
	})
	ordering := []struct {
		name string
		test func(c int) bool
	}{
		{"__lt", func(c int) bool { return c < 0 }},
		{"__le", func(c int) bool { return c <= 0 }},
		{"__gt", func(c int) bool { return c > 0 }},
		{"__ge", func(c int) bool { return c >= 0 }},
	}
	for _, o := range ordering {
		r.Register(&Descriptor{
			Name:    o.name,
			Arity:   Fixed(2),
			Offload: true,
			Eval: binary(func(a, b value.Value) (value.Value, error) {
				c, err := value.Compare(a, b)
				if err != nil {
					return value.None, &failure.Error{Kind: failure.TypeMismatch, Op: o.name, Kinds: value.Kinds(a, b), Msg: "operands are not orderable"}
				}
				return value.Bool(o.test(c)), nil
			}),
		})
	}
	r.Register(&Descriptor{
		Name:  "__is",
		Arity: Fixed(2),
		Doc:   "identity: same aggregate, or equal scalars of the same kind",
		Eval: binary(func(a, b value.Value) (value.Value, error) {
			return value.Bool(value.Same(a, b)), nil
		}),
	})
	r.Register(&Descriptor{
		Name:  "__is_not",
		Arity: Fixed(2),
		Eval: binary(func(a, b value.Value) (value.Value, error) {
			return value.Bool(!value.Same(a, b)), nil
		}),
	})
}

func checkComparable(op string, a, b value.Value) error {
	if value.Comparable(a, b) {
		return nil
	}
	return &failure.Error{
		Kind:  failure.TypeMismatch,
		Op:    op,
		Kinds: value.Kinds(a, b),
		Msg:   "operands are not comparable",
	}
}
