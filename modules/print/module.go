package print

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/vk/execgraph/internal/ctxlog"
	"github.com/vk/execgraph/internal/registry"
	"github.com/vk/execgraph/internal/value"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out receives printed lines. Nil means os.Stdout.
	Out io.Writer

	mu sync.Mutex
}

// Print writes the display form of args separated by spaces, followed by a
// newline.
func (m *Module) Print(ctx context.Context, args []value.Value) (value.Value, error) {
	ctxlog.FromContext(ctx).Debug("Printing values.", "count", len(args))

	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = value.Display(a)
	}

	out := m.Out
	if out == nil {
		out = os.Stdout
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := fmt.Fprintln(out, strings.Join(parts, " ")); err != nil {
		return value.None, fmt.Errorf("failed to print: %w", err)
	}
	return value.None, nil
}

// Register registers print and its alias cout.
func (m *Module) Register(r *registry.Registry) {
	for _, name := range []string{"print", "cout"} {
		r.Register(&registry.Descriptor{
			Name:   name,
			Arity:  registry.AtLeast(0),
			Effect: registry.Effectful,
			Doc:    "write the arguments to standard output",
			Eval:   m.Print,
		})
	}
}
