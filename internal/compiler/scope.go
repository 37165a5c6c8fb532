package compiler

import (
	"github.com/vk/execgraph/internal/ast"
	"github.com/vk/execgraph/internal/graph"
)

// frame is a compile-time scope. Its graph.Scope is shared with the Block
// node that opens it, so slots declared while lowering the block's body end
// up in the node.
type frame struct {
	scope *graph.Scope
	index map[string]int
}

func (st *state) push() *frame {
	f := &frame{scope: &graph.Scope{}, index: make(map[string]int)}
	st.frames = append(st.frames, f)
	return f
}

func (st *state) pop() {
	st.frames = st.frames[:len(st.frames)-1]
}

// declare binds name in the innermost scope. A name already declared there
// keeps its slot.
func (st *state) declare(name string) graph.SlotRef {
	f := st.frames[len(st.frames)-1]
	if i, ok := f.index[name]; ok {
		return graph.SlotRef{Depth: 0, Index: i}
	}
	i := len(f.scope.Names)
	f.index[name] = i
	f.scope.Names = append(f.scope.Names, name)
	return graph.SlotRef{Depth: 0, Index: i}
}

// resolve finds the innermost visible binding of name.
func (st *state) resolve(name string) (graph.SlotRef, bool) {
	for i := len(st.frames) - 1; i >= 0; i-- {
		if idx, ok := st.frames[i].index[name]; ok {
			return graph.SlotRef{Depth: len(st.frames) - 1 - i, Index: idx}, true
		}
	}
	return graph.SlotRef{}, false
}

// assigned returns the names a statement list definitely assigns on every
// path: plain assignments at its top level, and names assigned by both arms
// of a nested if.
func assigned(stmts []ast.Stmt) map[string]bool {
	out := make(map[string]bool)
	for _, s := range stmts {
		switch s := s.(type) {
		case *ast.Assign:
			if !s.Define {
				out[s.Target] = true
			}
		case *ast.If:
			if len(s.Else) == 0 {
				continue
			}
			elseNames := assigned(s.Else)
			for name := range assigned(s.Then) {
				if elseNames[name] {
					out[name] = true
				}
			}
		}
	}
	return out
}
