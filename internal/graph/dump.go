package graph

import (
	"fmt"
	"strings"

	"github.com/vk/execgraph/internal/value"
)

// Dump renders the graph as a stable listing, one node per line.
func (g *Graph) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "graph %s(%s)\n", g.Name, strings.Join(g.Params, ", "))
	for i := range g.Nodes {
		n := &g.Nodes[i]
		fmt.Fprintf(&b, "  %%%d = %s", n.ID, n.Op)
		switch n.Op {
		case Literal:
			fmt.Fprintf(&b, " %s", value.Repr(n.Literal))
		case Invoke:
			fmt.Fprintf(&b, " %s", n.Prim)
		}
		if len(n.Inputs) > 0 || n.Op == Invoke {
			ins := make([]string, len(n.Inputs))
			for j, in := range n.Inputs {
				ins[j] = fmt.Sprintf("%%%d", in)
			}
			fmt.Fprintf(&b, "(%s)", strings.Join(ins, ", "))
		}
		if n.Slot != nil {
			fmt.Fprintf(&b, " %s[%s]", n.Name, n.Slot)
		}
		if n.Scope != nil {
			fmt.Fprintf(&b, " scope[%s]", strings.Join(n.Scope.Names, ", "))
		}
		if n.ID == g.Root {
			b.WriteString(" <- root")
		}
		b.WriteByte('\n')
	}
	return b.String()
}
