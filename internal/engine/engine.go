package engine

import (
	"context"
	"fmt"

	"github.com/vk/execgraph/internal/ast"
	"github.com/vk/execgraph/internal/backend"
	"github.com/vk/execgraph/internal/compiler"
	"github.com/vk/execgraph/internal/evaluator"
	"github.com/vk/execgraph/internal/registry"
	"github.com/vk/execgraph/internal/value"
	"github.com/zclconf/go-cty/cty"
)

// Option configures an Engine.
type Option func(*settings)

type settings struct {
	registry      *registry.Registry
	backend       backend.Backend
	maxIterations int
	modules       []registry.Module
}

// WithRegistry uses reg instead of a fresh default registry. Modules given
// with WithModules are still registered into it.
func WithRegistry(reg *registry.Registry) Option {
	return func(s *settings) { s.registry = reg }
}

// WithBackend runs primitives on b.
func WithBackend(b backend.Backend) Option {
	return func(s *settings) { s.backend = b }
}

// WithMaxIterations bounds every loop execution. Zero means unlimited.
func WithMaxIterations(n int) Option {
	return func(s *settings) { s.maxIterations = n }
}

// WithModules registers additional primitive packs.
func WithModules(mods ...registry.Module) Option {
	return func(s *settings) { s.modules = append(s.modules, mods...) }
}

// Engine compiles and runs functions. It is safe for concurrent use.
type Engine struct {
	reg   *registry.Registry
	cache *compiler.Cache
	eval  *evaluator.Evaluator
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	reg := s.registry
	if reg == nil {
		reg = registry.NewDefault(s.modules...)
	} else {
		for _, mod := range s.modules {
			mod.Register(reg)
		}
	}
	return &Engine{
		reg:   reg,
		cache: compiler.NewCache(compiler.New(reg)),
		eval:  evaluator.New(evaluator.Options{MaxIterations: s.maxIterations, Backend: s.backend}),
	}
}

// Registry returns the engine's registry.
func (e *Engine) Registry() *registry.Registry { return e.reg }

// Register adds a primitive. It panics on a duplicate name.
func (e *Engine) Register(d *registry.Descriptor) { e.reg.Register(d) }

// Compile lowers fn into an artifact, reusing an earlier compilation of
// the same source against the same registry version.
func (e *Engine) Compile(ctx context.Context, fn *ast.Function) (*compiler.Artifact, error) {
	return e.cache.Compile(ctx, fn)
}

// Invoke runs art. Aggregate arguments are shared with the function.
func (e *Engine) Invoke(ctx context.Context, art *compiler.Artifact, args ...value.Value) (value.Value, error) {
	return e.eval.Evaluate(ctx, art, args)
}

// Call compiles fn, using the cache, and invokes it.
func (e *Engine) Call(ctx context.Context, fn *ast.Function, args ...value.Value) (value.Value, error) {
	art, err := e.Compile(ctx, fn)
	if err != nil {
		return value.None, err
	}
	return e.Invoke(ctx, art, args...)
}

// InvokeCty converts args from cty, runs art and converts the result back.
func (e *Engine) InvokeCty(ctx context.Context, art *compiler.Artifact, args ...cty.Value) (cty.Value, error) {
	vals := make([]value.Value, len(args))
	for i, arg := range args {
		v, err := value.FromCty(arg)
		if err != nil {
			return cty.NilVal, fmt.Errorf("argument %d of %s: %w", i, art.Name, err)
		}
		vals[i] = v
	}
	out, err := e.Invoke(ctx, art, vals...)
	if err != nil {
		return cty.NilVal, err
	}
	res, err := value.ToCty(out)
	if err != nil {
		return cty.NilVal, fmt.Errorf("result of %s: %w", art.Name, err)
	}
	return res, nil
}
