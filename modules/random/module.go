// Package random provides seeded pseudo-random primitives. All primitives of
// one Module share a generator, so set_seed makes later draws repeatable.
package random

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/vk/execgraph/internal/failure"
	"github.com/vk/execgraph/internal/registry"
	"github.com/vk/execgraph/internal/value"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a module seeded with seed.
func New(seed uint64) *Module {
	m := &Module{}
	m.seed(seed)
	return m
}

func (m *Module) seed(seed uint64) {
	m.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (m *Module) with(fn func(r *rand.Rand) (value.Value, error)) (value.Value, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rng == nil {
		m.seed(rand.Uint64())
	}
	return fn(m.rng)
}

// SetSeed reseeds the generator.
func (m *Module) SetSeed(_ context.Context, args []value.Value) (value.Value, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seed(uint64(args[0].AsInt()))
	return value.None, nil
}

// Random returns a float in [0, 1), or a list of n such floats when called
// as random(n).
func (m *Module) Random(_ context.Context, args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return m.with(func(r *rand.Rand) (value.Value, error) {
			return value.Float(r.Float64()), nil
		})
	}
	n := args[0].AsInt()
	if n < 0 {
		return value.None, &failure.Error{Kind: failure.ValueError, Op: "random", Msg: "negative count"}
	}
	if err := value.CheckLength("random", uint64(n)); err != nil {
		return value.None, err
	}
	return m.with(func(r *rand.Rand) (value.Value, error) {
		items := make([]value.Value, n)
		for i := range items {
			items[i] = value.Float(r.Float64())
		}
		return value.NewList(items...), nil
	})
}

// Randint returns an int in [lo, hi], both ends included.
func (m *Module) Randint(_ context.Context, args []value.Value) (value.Value, error) {
	lo, hi := args[0].AsInt(), args[1].AsInt()
	if hi < lo {
		return value.None, &failure.Error{Kind: failure.ValueError, Op: "randint", Msg: "empty range"}
	}
	return m.with(func(r *rand.Rand) (value.Value, error) {
		return value.Int(lo + r.Int64N(hi-lo+1)), nil
	})
}

// Choice returns a random item of a non-empty list or string.
func (m *Module) Choice(_ context.Context, args []value.Value) (value.Value, error) {
	items, err := value.Iterate(args[0])
	if err != nil {
		return value.None, err
	}
	if len(items) == 0 {
		return value.None, &failure.Error{Kind: failure.IndexError, Op: "choice", Msg: "cannot choose from an empty sequence"}
	}
	return m.with(func(r *rand.Rand) (value.Value, error) {
		return items[r.IntN(len(items))], nil
	})
}

// Shuffle permutes a list in place.
func (m *Module) Shuffle(_ context.Context, args []value.Value) (value.Value, error) {
	l := args[0].List()
	items := l.Items()
	_, err := m.with(func(r *rand.Rand) (value.Value, error) {
		r.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
		return value.None, nil
	})
	if err != nil {
		return value.None, err
	}
	l.Clear()
	l.Extend(items...)
	return value.None, nil
}

// Register registers the primitives with the registry.
func (m *Module) Register(r *registry.Registry) {
	integral := value.Integral
	r.Register(&registry.Descriptor{
		Name:   "set_seed",
		Arity:  registry.Fixed(1),
		Inputs: []value.KindSet{integral},
		Effect: registry.Effectful,
		Doc:    "reseed the random generator",
		Eval:   m.SetSeed,
	})
	r.Register(&registry.Descriptor{
		Name:   "random",
		Arity:  registry.Between(0, 1),
		Inputs: []value.KindSet{integral},
		Effect: registry.Effectful,
		Doc:    "random() is a float in [0, 1); random(n) is a list of n",
		Eval:   m.Random,
	})
	r.Register(&registry.Descriptor{
		Name:   "randint",
		Arity:  registry.Fixed(2),
		Inputs: []value.KindSet{integral},
		Effect: registry.Effectful,
		Doc:    "randint(lo, hi) is an int in [lo, hi]",
		Eval:   m.Randint,
	})
	r.Register(&registry.Descriptor{
		Name:   "choice",
		Arity:  registry.Fixed(1),
		Inputs: []value.KindSet{value.Sequence},
		Effect: registry.Effectful,
		Doc:    "random item of a sequence",
		Eval:   m.Choice,
	})
	r.Register(&registry.Descriptor{
		Name:   "shuffle",
		Arity:  registry.Fixed(1),
		Inputs: []value.KindSet{value.KindsOf(value.ListKind)},
		Effect: registry.Mutates,
		Doc:    "shuffle a list in place",
		Eval:   m.Shuffle,
	})
}
