package registry

import (
	"context"
	"fmt"

	"github.com/vk/execgraph/internal/failure"
	"github.com/vk/execgraph/internal/value"
)

// Variadic marks an unbounded Arity.Max.
const Variadic = -1

// Arity is the accepted input count range.
type Arity struct {
	Min, Max int
}

// Fixed accepts exactly n inputs.
func Fixed(n int) Arity { return Arity{Min: n, Max: n} }

// Between accepts min to max inputs inclusive.
func Between(min, max int) Arity { return Arity{Min: min, Max: max} }

// AtLeast accepts n or more inputs.
func AtLeast(n int) Arity { return Arity{Min: n, Max: Variadic} }

// Accepts reports whether n inputs satisfy the arity.
func (a Arity) Accepts(n int) bool {
	return n >= a.Min && (a.Max == Variadic || n <= a.Max)
}

func (a Arity) String() string {
	switch {
	case a.Max == Variadic:
		return fmt.Sprintf("at least %d", a.Min)
	case a.Min == a.Max:
		return fmt.Sprintf("%d", a.Min)
	}
	return fmt.Sprintf("%d to %d", a.Min, a.Max)
}

// Effect classifies what a primitive does besides returning a value.
type Effect int

const (
	// Pure primitives only compute a result.
	Pure Effect = iota
	// Mutates primitives change the aggregate passed as input 0 in place.
	Mutates
	// Effectful primitives act on the outside world, e.g. printing.
	Effectful
)

func (e Effect) String() string {
	switch e {
	case Mutates:
		return "mutates"
	case Effectful:
		return "effectful"
	}
	return "pure"
}

// EvalFunc evaluates a primitive over already-evaluated inputs.
type EvalFunc func(ctx context.Context, args []value.Value) (value.Value, error)

// Descriptor describes one primitive.
type Descriptor struct {
	Name  string
	Arity Arity
	// Inputs constrains the kind of each input position. The last entry
	// applies to every further input; an empty slice accepts any kinds.
	Inputs []value.KindSet
	Effect Effect
	// Control marks a control form lowered by the compiler itself.
	Control bool
	// Offload allows a remote backend to run the primitive. Only pure
	// primitives are ever offloaded.
	Offload bool
	Doc     string
	Eval    EvalFunc
}

// Check validates input count and kinds before dispatch.
func (d *Descriptor) Check(args []value.Value) error {
	if !d.Arity.Accepts(len(args)) {
		return &failure.Error{
			Kind: failure.ArityMismatch,
			Op:   d.Name,
			Msg:  fmt.Sprintf("expects %s inputs, got %d", d.Arity, len(args)),
		}
	}
	if len(d.Inputs) == 0 {
		return nil
	}
	for i, arg := range args {
		want := d.Inputs[min(i, len(d.Inputs)-1)]
		if !want.Has(arg.Kind()) {
			return &failure.Error{
				Kind:  failure.TypeMismatch,
				Op:    d.Name,
				Kinds: value.Kinds(args...),
				Msg:   fmt.Sprintf("input %d must be %s, got %s", i, want, arg.Kind()),
			}
		}
	}
	return nil
}

// Call checks args and runs the primitive. Errors are annotated with the
// primitive name.
func (d *Descriptor) Call(ctx context.Context, args []value.Value) (value.Value, error) {
	if d.Eval == nil {
		return value.None, &failure.Error{Kind: failure.UnsupportedConstruct, Op: d.Name, Msg: "control form cannot be invoked"}
	}
	if err := d.Check(args); err != nil {
		return value.None, err
	}
	out, err := d.Eval(ctx, args)
	if err != nil {
		return value.None, failure.WithOp(err, d.Name)
	}
	return out, nil
}
