package config

import (
	"fmt"

	"github.com/vk/execgraph/internal/ast"
	"github.com/vk/execgraph/internal/value"
)

// Model is the unified representation of every loaded source file.
type Model struct {
	Functions   []*ast.Function
	Invocations []*Invocation
}

// Invocation is one requested call of a declared function, with the
// outcome it is expected to have.
type Invocation struct {
	Function string
	Args     []value.Value
	// Expect is the expected return value, when given.
	Expect *value.Value
	// ExpectArgs are the expected argument values after the call. A nil
	// slice means no expectation.
	ExpectArgs []value.Value
	// ExpectError names a failure kind, such as "TypeMismatch", the call
	// must fail with.
	ExpectError string
	Pos         ast.Pos
}

// Name identifies the invocation in reports.
func (inv *Invocation) Name() string {
	if inv.Pos.IsValid() {
		return fmt.Sprintf("%s@%s", inv.Function, inv.Pos)
	}
	return inv.Function
}

// Function returns the declared function with the given name.
func (m *Model) Function(name string) (*ast.Function, bool) {
	for _, fn := range m.Functions {
		if fn.Name == name {
			return fn, true
		}
	}
	return nil, false
}

// Merge adds the contents of other. Declaring a function twice is an error.
func (m *Model) Merge(other *Model) error {
	if other == nil {
		return nil
	}
	for _, fn := range other.Functions {
		if prev, dup := m.Function(fn.Name); dup {
			return fmt.Errorf("function %q declared at %s is already declared at %s", fn.Name, fn.Pos, prev.Pos)
		}
		m.Functions = append(m.Functions, fn)
	}
	m.Invocations = append(m.Invocations, other.Invocations...)
	return nil
}

// Validate checks that every invocation refers to a declared function.
func (m *Model) Validate() error {
	for _, inv := range m.Invocations {
		if _, ok := m.Function(inv.Function); !ok {
			return fmt.Errorf("invocation at %s refers to undeclared function %q", inv.Pos, inv.Function)
		}
	}
	return nil
}
