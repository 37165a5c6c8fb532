package registry

import (
	"context"

	"github.com/vk/execgraph/internal/value"
)

func registerBuiltins(r *Registry) {
	registerControl(r)
	registerConstruct(r)
	registerAccess(r)
	registerMethods(r)
	registerCompare(r)
	registerArith(r)
	registerConvert(r)
	registerReduce(r)
}

var controlDocs = map[string]string{
	"block":    "sequence of statements",
	"define":   "declare a local binding",
	"store":    "assign to a binding or a container element",
	"if":       "conditional statement or expression",
	"while":    "loop while a condition holds",
	"for_each": "loop over the items of a list, string or dict",
	"return":   "leave the function",
	"break":    "leave the innermost loop",
	"continue": "start the next iteration of the innermost loop",
	"and":      "short-circuit conjunction",
	"or":       "short-circuit disjunction",
}

func registerControl(r *Registry) {
	for _, name := range ControlForms {
		r.Register(&Descriptor{
			Name:    name,
			Arity:   AtLeast(0),
			Control: true,
			Doc:     controlDocs[name],
		})
	}
}

func unary(f func(value.Value) (value.Value, error)) EvalFunc {
	return func(_ context.Context, args []value.Value) (value.Value, error) {
		return f(args[0])
	}
}

func binary(f func(a, b value.Value) (value.Value, error)) EvalFunc {
	return func(_ context.Context, args []value.Value) (value.Value, error) {
		return f(args[0], args[1])
	}
}

// optional returns args[i], or def when fewer inputs were given.
func optional(args []value.Value, i int, def value.Value) value.Value {
	if i < len(args) {
		return args[i]
	}
	return def
}
