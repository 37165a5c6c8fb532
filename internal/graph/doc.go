// Package graph defines the execution graph: the compiled, immutable form of
// one function body.
//
// # Why Graph Package Exists
//
// The compiler and the evaluator need a shared representation that is
// independent of any front-end syntax. A Graph is that contract: the compiler
// writes it exactly once through a Builder, and any number of concurrent
// invocations read it afterwards.
//
// # Structure
//
// A Graph is a flat, append-only slice of nodes. Each node names an Op and
// lists its inputs as references to other nodes:
//
//	┌──────────────────────────────────────────┐
//	│ %0 load data            (slot 0:0)        │
//	│ %1 literal 'key_int'                      │
//	│ %2 literal 42                             │
//	│ %3 invoke __setitem(%0, %1, %2) -> data   │
//	│ %4 load data                              │
//	│ %5 return(%4)                             │
//	│ %6 block(%3, %5) scope[data]  <- root     │
//	└──────────────────────────────────────────┘
//
// Nodes are appended after their inputs, so every input ID is smaller than
// the ID of the node that consumes it. That ordering is what makes the graph
// acyclic. Iteration is never expressed as an edge: Loop and ForEach nodes
// re-enter their body subgraph, and the back-edge stays implicit inside the
// node.
//
// # Variables
//
// Variables are resolved statically. Every Block that opens a scope carries
// the names of the slots it declares, and every Load, Bind or mutation target
// carries a SlotRef: how many scopes to walk up from the innermost one, and
// the slot index there. The evaluator pushes scopes exactly where the compiler
// opened them, so a SlotRef is valid without any name lookup at run time.
//
// # Thread-Safety
//
// A Graph returned by Builder.Finish is never modified again and may be
// evaluated by many goroutines at once.
package graph
