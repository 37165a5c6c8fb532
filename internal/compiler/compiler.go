// Package compiler lowers a captured function body into an execution graph.
//
// Lowering is a single recursive descent over the syntax tree. Each
// expression becomes one node whose inputs are its lowered sub-expressions;
// each statement becomes a Bind, an Invoke of a primitive, or a control node
// with nested blocks. Names are resolved statically against a stack of
// scopes, so a reference to a name with no visible binding fails the build
// with UnboundName instead of failing at run time.
//
// The registry decides what is expressible. Calls to unregistered names and
// control forms whose descriptor is missing fail with UnsupportedConstruct,
// and no partially built graph is ever returned.
package compiler

import (
	"context"
	"fmt"

	"github.com/vk/execgraph/internal/ast"
	"github.com/vk/execgraph/internal/ctxlog"
	"github.com/vk/execgraph/internal/failure"
	"github.com/vk/execgraph/internal/graph"
	"github.com/vk/execgraph/internal/registry"
)

// Artifact is a compiled function: its graph plus the slots its parameters
// are bound to.
type Artifact struct {
	Name       string
	Params     []string
	Graph      *graph.Graph
	ParamSlots []graph.SlotRef
	// Fingerprint identifies the source and registry version the artifact
	// was built from.
	Fingerprint string
}

// Compiler turns syntax trees into artifacts using the primitives of one
// registry.
type Compiler struct {
	reg *registry.Registry
}

// New creates a Compiler bound to reg.
func New(reg *registry.Registry) *Compiler {
	return &Compiler{reg: reg}
}

// Registry returns the registry the compiler resolves primitives against.
func (c *Compiler) Registry() *registry.Registry { return c.reg }

// Compile lowers fn. On failure it returns a *failure.Error and no artifact.
func (c *Compiler) Compile(ctx context.Context, fn *ast.Function) (*Artifact, error) {
	logger := ctxlog.FromContext(ctx).With("function", fn.Name)
	logger.Debug("Compiling function.", "params", fn.Params)

	st := &state{reg: c.reg, b: graph.NewBuilder(fn.Name, fn.Params)}
	root := st.push()
	slots := make([]graph.SlotRef, len(fn.Params))
	for i, p := range fn.Params {
		if _, dup := root.index[p]; dup {
			return nil, failure.At(failure.UnsupportedConstruct, fn.Pos, "duplicate parameter %q", p)
		}
		slots[i] = st.declare(p)
	}
	if err := st.control("block", fn.Pos); err != nil {
		return nil, err
	}

	stmts, err := st.stmts(fn.Body)
	if err != nil {
		logger.Debug("Compilation failed.", "error", err)
		return nil, err
	}
	rootID := st.b.Add(graph.Node{Op: graph.Block, Inputs: stmts, Scope: root.scope, Pos: fn.Pos})
	st.pop()

	g, err := st.b.Finish(rootID)
	if err != nil {
		return nil, fmt.Errorf("compiler produced an invalid graph for %s: %w", fn.Name, err)
	}
	logger.Debug("Compiled function.", "nodes", g.Len())
	return &Artifact{
		Name:        fn.Name,
		Params:      append([]string(nil), fn.Params...),
		Graph:       g,
		ParamSlots:  slots,
		Fingerprint: Fingerprint(fn, c.reg.Version()),
	}, nil
}

// state is the per-compilation bookkeeping.
type state struct {
	reg    *registry.Registry
	b      *graph.Builder
	frames []*frame
	loops  int
}

// control checks that a control form is registered as such.
func (st *state) control(name string, pos ast.Pos) error {
	d, err := st.reg.Lookup(name)
	if err != nil || !d.Control {
		return &failure.Error{
			Kind: failure.UnsupportedConstruct,
			Op:   name,
			Pos:  pos,
			Msg:  "control form is not registered",
		}
	}
	return nil
}

// primitive resolves a callable primitive for an invocation.
func (st *state) primitive(name string, nargs int, pos ast.Pos) (*registry.Descriptor, error) {
	d, err := st.reg.Lookup(name)
	if err != nil || d.Control {
		return nil, &failure.Error{
			Kind: failure.UnsupportedConstruct,
			Op:   name,
			Pos:  pos,
			Msg:  "unknown function",
		}
	}
	if !d.Arity.Accepts(nargs) {
		return nil, &failure.Error{
			Kind: failure.ArityMismatch,
			Op:   name,
			Pos:  pos,
			Msg:  fmt.Sprintf("expects %s inputs, got %d", d.Arity, nargs),
		}
	}
	return d, nil
}
