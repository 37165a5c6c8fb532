package registry

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/vk/execgraph/internal/failure"
)

// Module is the interface that all primitive packs must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the primitives available to one engine instance. It is safe
// for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	primitives map[string]*Descriptor
	version    uint64
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{primitives: make(map[string]*Descriptor)}
}

// NewDefault creates a Registry holding the control forms, the builtin
// primitives and the given modules.
func NewDefault(modules ...Module) *Registry {
	r := New()
	registerBuiltins(r)
	for _, mod := range modules {
		mod.Register(r)
	}
	return r
}

// Register adds a primitive. Registering a name twice, or a descriptor
// without a name, an Eval function (unless it is a control form) or a sane
// arity, is a programmer error and panics.
func (r *Registry) Register(d *Descriptor) {
	switch {
	case d == nil || d.Name == "":
		panic("primitive descriptor must have a name")
	case d.Eval == nil && !d.Control:
		panic(fmt.Sprintf("primitive '%s' has no eval function", d.Name))
	case d.Arity.Min < 0 || (d.Arity.Max != Variadic && d.Arity.Max < d.Arity.Min):
		panic(fmt.Sprintf("primitive '%s' has invalid arity %+v", d.Name, d.Arity))
	case d.Offload && d.Effect != Pure:
		panic(fmt.Sprintf("primitive '%s' is offloadable but not pure", d.Name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.primitives[d.Name]; exists {
		panic(fmt.Sprintf("primitive with name '%s' already registered", d.Name))
	}
	slog.Debug("Registering primitive.", "name", d.Name, "arity", d.Arity.String(), "effect", d.Effect.String())
	r.primitives[d.Name] = d
	r.version++
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (*Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.primitives[name]
	if !ok {
		return nil, &failure.Error{Kind: failure.UnknownPrimitive, Op: name, Msg: "primitive is not registered"}
	}
	return d, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.primitives[name]
	return ok
}

// Names returns the sorted names of all registered primitives.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.primitives))
	for name := range r.primitives {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Version increases with every registration. Compiled artifacts are only
// valid for the version they were built against.
func (r *Registry) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}
