// Package backend defines where primitive bodies run.
//
// The evaluator never calls a descriptor directly; it asks a Backend for a
// Future and waits on it before moving to the next node, so evaluation order
// is the same whether a primitive runs in-process or on a remote worker.
package backend

import (
	"context"
	"sync"

	"github.com/vk/execgraph/internal/registry"
	"github.com/vk/execgraph/internal/value"
)

// Backend runs primitives.
type Backend interface {
	Invoke(ctx context.Context, d *registry.Descriptor, args []value.Value) *Future
}

// Future is the pending result of one primitive invocation.
type Future struct {
	done chan struct{}
	val  value.Value
	err  error
}

// NewFuture returns an unresolved Future and the function that resolves it.
// Only the first call to resolve has an effect; it is safe to call from
// any goroutine.
func NewFuture() (*Future, func(value.Value, error)) {
	f := &Future{done: make(chan struct{})}
	var once sync.Once
	return f, func(v value.Value, err error) {
		once.Do(func() {
			f.val, f.err = v, err
			close(f.done)
		})
	}
}

// Resolved returns a Future that is already complete.
func Resolved(v value.Value, err error) *Future {
	f, resolve := NewFuture()
	resolve(v, err)
	return f
}

// Get waits for the result or for ctx to end.
func (f *Future) Get(ctx context.Context) (value.Value, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		return value.None, ctx.Err()
	}
}

// Done is closed once the Future is resolved.
func (f *Future) Done() <-chan struct{} { return f.done }

// Local runs every primitive synchronously in the calling goroutine.
type Local struct{}

// Invoke calls d and returns its already resolved result.
func (Local) Invoke(ctx context.Context, d *registry.Descriptor, args []value.Value) *Future {
	return Resolved(d.Call(ctx, args))
}
