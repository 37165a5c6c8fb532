package graph

import (
	"fmt"

	"github.com/vk/execgraph/internal/ast"
	"github.com/vk/execgraph/internal/registry"
	"github.com/vk/execgraph/internal/value"
)

// NodeID indexes a node within its Graph.
type NodeID int

// Op is the kind of a node.
type Op uint8

const (
	// Literal produces Node.Literal.
	Literal Op = iota + 1
	// Load reads the variable at Node.Slot.
	Load
	// Invoke calls primitive Node.Prim with Inputs as arguments. For
	// mutating primitives Node.Slot, when set, addresses the aggregate
	// mutated through.
	Invoke
	// Bind stores the value of Inputs[0] into Node.Slot.
	Bind
	// Block runs Inputs in order, opening Node.Scope when set.
	Block
	// Branch evaluates Inputs[0] and continues with Inputs[1] when truthy,
	// otherwise with Inputs[2] if present.
	Branch
	// Loop re-evaluates Inputs[0] and runs the body Inputs[1] while it holds.
	Loop
	// ForEach binds Node.Slot to each item of Inputs[0] and runs the body
	// Inputs[1], whose scope is opened once per item.
	ForEach
	// And yields the first falsy input, or the last one.
	And
	// Or yields the first truthy input, or the last one.
	Or
	// Return leaves the function with Inputs[0], or None.
	Return
	// Break leaves the innermost loop.
	Break
	// Continue starts the next iteration of the innermost loop.
	Continue
)

var opNames = map[Op]string{
	Literal:  "literal",
	Load:     "load",
	Invoke:   "invoke",
	Bind:     "bind",
	Block:    "block",
	Branch:   "branch",
	Loop:     "loop",
	ForEach:  "for_each",
	And:      "and",
	Or:       "or",
	Return:   "return",
	Break:    "break",
	Continue: "continue",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// SlotRef addresses a variable slot: Depth scopes up from the innermost
// scope, then Index within that scope.
type SlotRef struct {
	Depth int
	Index int
}

func (r SlotRef) String() string { return fmt.Sprintf("%d:%d", r.Depth, r.Index) }

// Scope lists the variables a block declares, by slot index.
type Scope struct {
	Names []string
}

// Node is one vertex of the execution graph.
type Node struct {
	ID     NodeID
	Op     Op
	Prim   string
	Inputs []NodeID
	// Name is the variable name behind Slot, kept for diagnostics.
	Name    string
	Slot    *SlotRef
	Literal value.Value
	Scope   *Scope
	Pos     ast.Pos
}

// Graph is the compiled body of one function.
type Graph struct {
	Name   string
	Params []string
	Nodes  []Node
	Root   NodeID

	prims map[NodeID]*registry.Descriptor
}

// Node returns the node with the given ID.
func (g *Graph) Node(id NodeID) *Node { return &g.Nodes[id] }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.Nodes) }

// Descriptor returns the primitive an Invoke node was resolved to at build time.
func (g *Graph) Descriptor(id NodeID) *registry.Descriptor { return g.prims[id] }

// RootScope returns the scope of the root block, whose first len(Params)
// slots hold the parameters.
func (g *Graph) RootScope() *Scope { return g.Nodes[g.Root].Scope }
