package registry

import (
	"github.com/vk/execgraph/internal/value"
)

func registerArith(r *Registry) {
	binaries := []struct {
		name string
		fn   func(a, b value.Value) (value.Value, error)
		doc  string
	}{
		{"__add", value.Add, "a + b: numbers, string and list concatenation"},
		{"__sub", value.Sub, "a - b"},
		{"__mul", value.Mul, "a * b: numbers, string and list repetition"},
		{"__div", value.Div, "a / b, always a float"},
		{"__floordiv", value.FloorDiv, "a // b"},
		{"__mod", value.Mod, "a % b"},
		{"__pow", value.Pow, "a ** b"},
		{"pow", value.Pow, "pow(a, b)"},
	}
	for _, b := range binaries {
		r.Register(&Descriptor{
			Name:    b.name,
			Arity:   Fixed(2),
			Offload: true,
			Doc:     b.doc,
			Eval:    binary(b.fn),
		})
	}

	for _, b := range []struct {
		name string
		fn   func(a, b value.Value) (value.Value, error)
		doc  string
	}{
		{"__iadd", value.IAdd, "a += b: extends a list in place, otherwise a + b"},
		{"__imul", value.IMul, "a *= b: repeats a list in place, otherwise a * b"},
	} {
		r.Register(&Descriptor{
			Name:   b.name,
			Arity:  Fixed(2),
			Effect: Mutates,
			Doc:    b.doc,
			Eval:   binary(b.fn),
		})
	}

	unaries := []struct {
		name string
		fn   func(v value.Value) (value.Value, error)
	}{
		{"__neg", value.Neg},
		{"__pos", value.Pos},
		{"abs", value.Abs},
		{"__not", func(v value.Value) (value.Value, error) { return value.Bool(!value.Truthy(v)), nil }},
	}
	for _, u := range unaries {
		r.Register(&Descriptor{
			Name:    u.name,
			Arity:   Fixed(1),
			Offload: true,
			Eval:    unary(u.fn),
		})
	}
}
