package graph

import (
	"errors"
	"fmt"

	"github.com/vk/execgraph/internal/registry"
)

// Builder appends nodes to a graph under construction.
type Builder struct {
	g *Graph
}

// NewBuilder starts a graph for the named function.
func NewBuilder(name string, params []string) *Builder {
	return &Builder{g: &Graph{
		Name:   name,
		Params: append([]string(nil), params...),
		prims:  make(map[NodeID]*registry.Descriptor),
	}}
}

// Add appends n and returns its ID. Inputs must already exist; adding a
// node that refers forward is a compiler bug and panics.
func (b *Builder) Add(n Node) NodeID {
	id := NodeID(len(b.g.Nodes))
	for _, in := range n.Inputs {
		if in < 0 || in >= id {
			panic(fmt.Sprintf("node %d (%s) refers to input %d which does not exist yet", id, n.Op, in))
		}
	}
	n.ID = id
	b.g.Nodes = append(b.g.Nodes, n)
	return id
}

// Invoke appends an Invoke node bound to the resolved descriptor d.
func (b *Builder) Invoke(d *registry.Descriptor, n Node) NodeID {
	n.Op = Invoke
	n.Prim = d.Name
	id := b.Add(n)
	b.g.prims[id] = d
	return id
}

// Len returns the number of nodes added so far.
func (b *Builder) Len() int { return len(b.g.Nodes) }

// Finish validates the graph rooted at root and hands it over. The Builder
// must not be used afterwards.
func (b *Builder) Finish(root NodeID) (*Graph, error) {
	g := b.g
	b.g = nil
	g.Root = root
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks the structural invariants of the graph: inputs exist and
// precede their consumers, there are no cycles, every Invoke is bound to an
// executable primitive, and the root is a scoped block.
func (g *Graph) Validate() error {
	var errs []error
	if g.Root < 0 || int(g.Root) >= len(g.Nodes) {
		return fmt.Errorf("root node %d out of range", g.Root)
	}
	if root := g.Nodes[g.Root]; root.Op != Block || root.Scope == nil {
		errs = append(errs, fmt.Errorf("root node %d must be a scoped block, got %s", g.Root, root.Op))
	}
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.ID != NodeID(i) {
			errs = append(errs, fmt.Errorf("node at index %d carries ID %d", i, n.ID))
		}
		for _, in := range n.Inputs {
			if in < 0 || int(in) >= len(g.Nodes) {
				errs = append(errs, fmt.Errorf("node %d refers to missing input %d", n.ID, in))
			}
		}
		switch n.Op {
		case Invoke:
			d := g.prims[n.ID]
			if d == nil || d.Name != n.Prim || d.Eval == nil {
				errs = append(errs, fmt.Errorf("node %d invokes unresolved primitive '%s'", n.ID, n.Prim))
			}
		case Load, Bind, ForEach:
			if n.Slot == nil {
				errs = append(errs, fmt.Errorf("node %d (%s) has no slot", n.ID, n.Op))
			}
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if err := g.detectCycles(); err != nil {
		return fmt.Errorf("error validating execution graph: %w", err)
	}
	return nil
}

// detectCycles checks for circular input references using DFS.
func (g *Graph) detectCycles() error {
	visiting := make(map[NodeID]bool)
	visited := make(map[NodeID]bool)

	var visit func(id NodeID) error
	visit = func(id NodeID) error {
		visiting[id] = true
		for _, dep := range g.Nodes[id].Inputs {
			if visiting[dep] {
				return fmt.Errorf("cycle detected involving node %d", dep)
			}
			if !visited[dep] {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		delete(visiting, id)
		visited[id] = true
		return nil
	}

	for i := range g.Nodes {
		if id := NodeID(i); !visited[id] {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}
