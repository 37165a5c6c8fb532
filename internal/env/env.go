// Package env holds the bindings of one invocation.
//
// An Environment is a stack of scopes. Lookups walk from the innermost scope
// outward, so a nested block can shadow a name while still reaching its
// parent's slots. Slots hold values: scalars are copied into them, while lists
// and dicts are shared by reference, which is how a callee's in-place
// mutation of a parameter becomes visible to the caller.
//
// The evaluator addresses slots by graph.SlotRef, resolved by the compiler.
// The name-based methods serve callers that have no compiled graph.
package env

import (
	"github.com/vk/execgraph/internal/failure"
	"github.com/vk/execgraph/internal/graph"
	"github.com/vk/execgraph/internal/value"
)

// Slot is a named storage location.
type Slot struct {
	Name  string
	Value value.Value
	Bound bool
	// Aliased marks a parameter slot holding an aggregate the caller owns.
	Aliased bool
}

// Scope is one level of bindings.
type Scope struct {
	slots []Slot
	index map[string]int
}

// NewScope creates a scope with one unbound slot per name.
func NewScope(names ...string) *Scope {
	s := &Scope{slots: make([]Slot, len(names)), index: make(map[string]int, len(names))}
	for i, name := range names {
		s.slots[i].Name = name
		s.index[name] = i
	}
	return s
}

// FromGraph creates a scope for a graph block scope.
func FromGraph(gs *graph.Scope) *Scope {
	if gs == nil {
		return NewScope()
	}
	return NewScope(gs.Names...)
}

func (s *Scope) lookup(name string) (*Slot, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return &s.slots[i], true
}

// Environment is the binding stack of one invocation. It is not safe for
// concurrent use; every invocation owns its own.
type Environment struct {
	scopes []*Scope
}

// New creates an Environment whose outermost scope is root.
func New(root *Scope) *Environment {
	return &Environment{scopes: []*Scope{root}}
}

// Push opens a nested scope.
func (e *Environment) Push(s *Scope) { e.scopes = append(e.scopes, s) }

// Pop closes the innermost scope.
func (e *Environment) Pop() {
	if len(e.scopes) <= 1 {
		panic("env: pop of the root scope")
	}
	e.scopes[len(e.scopes)-1] = nil
	e.scopes = e.scopes[:len(e.scopes)-1]
}

// Depth returns the number of open scopes.
func (e *Environment) Depth() int { return len(e.scopes) }

func (e *Environment) innermost() *Scope { return e.scopes[len(e.scopes)-1] }

// Declare binds name in the innermost scope, shadowing outer bindings. A
// name already declared in that scope is rebound.
func (e *Environment) Declare(name string, v value.Value) {
	s := e.innermost()
	if slot, ok := s.lookup(name); ok {
		slot.Value, slot.Bound = v, true
		return
	}
	s.index[name] = len(s.slots)
	s.slots = append(s.slots, Slot{Name: name, Value: v, Bound: true})
}

func (e *Environment) find(name string) (*Slot, error) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if slot, ok := e.scopes[i].lookup(name); ok && slot.Bound {
			return slot, nil
		}
	}
	return nil, failure.New(failure.UnboundName, "name %q is not defined", name)
}

// Resolve returns the value bound to name, innermost scope first.
func (e *Environment) Resolve(name string) (value.Value, error) {
	slot, err := e.find(name)
	if err != nil {
		return value.None, err
	}
	return slot.Value, nil
}

// Update rebinds the nearest binding of name. The previous value, if it was
// an aggregate, is not touched.
func (e *Environment) Update(name string, v value.Value) error {
	slot, err := e.find(name)
	if err != nil {
		return err
	}
	slot.Value = v
	return nil
}

// MutateThrough applies fn to the aggregate bound to name. Scalars cannot be
// mutated in place and fail with TypeMismatch.
func (e *Environment) MutateThrough(name string, fn func(target value.Value) error) error {
	slot, err := e.find(name)
	if err != nil {
		return err
	}
	return mutate(slot, fn)
}

func mutate(slot *Slot, fn func(value.Value) error) error {
	if !slot.Value.Kind().Aggregate() {
		return &failure.Error{
			Kind:  failure.TypeMismatch,
			Kinds: []string{slot.Value.Kind().String()},
			Msg:   "cannot mutate " + slot.Name + " in place",
		}
	}
	return fn(slot.Value)
}

// BindParam binds parameter i of the root scope. Aggregates are aliased,
// scalars copied.
func (e *Environment) BindParam(i int, v value.Value) {
	slot := &e.scopes[0].slots[i]
	slot.Value, slot.Bound = v, true
	slot.Aliased = v.Kind().Aggregate()
}

// Slot returns the slot addressed by ref.
func (e *Environment) Slot(ref graph.SlotRef) *Slot {
	s := e.scopes[len(e.scopes)-1-ref.Depth]
	return &s.slots[ref.Index]
}

// Load reads the slot addressed by ref.
func (e *Environment) Load(ref graph.SlotRef) (value.Value, error) {
	slot := e.Slot(ref)
	if !slot.Bound {
		return value.None, failure.New(failure.UnboundName, "local variable %q referenced before assignment", slot.Name)
	}
	return slot.Value, nil
}

// Store binds the slot addressed by ref.
func (e *Environment) Store(ref graph.SlotRef, v value.Value) {
	slot := e.Slot(ref)
	slot.Value, slot.Bound = v, true
}

// Target applies fn to the aggregate in the slot addressed by ref.
func (e *Environment) Target(ref graph.SlotRef, fn func(target value.Value) error) error {
	slot := e.Slot(ref)
	if !slot.Bound {
		return failure.New(failure.UnboundName, "local variable %q referenced before assignment", slot.Name)
	}
	return mutate(slot, fn)
}
