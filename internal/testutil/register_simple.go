package testutil

import "github.com/vk/execgraph/internal/registry"

// SimpleModule is a test helper for easily creating a mock module that
// registers a fixed set of primitives.
type SimpleModule struct {
	Descriptors []*registry.Descriptor
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	for _, d := range m.Descriptors {
		r.Register(d)
	}
}
