package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/execgraph/internal/ast"
	"github.com/vk/execgraph/internal/failure"
	"github.com/vk/execgraph/internal/registry"
	"github.com/vk/execgraph/internal/value"
	"github.com/zclconf/go-cty/cty"
)

func doubleFn() *ast.Function {
	return &ast.Function{
		Name:   "f",
		Params: []string{"x"},
		Body: []ast.Stmt{&ast.Return{Value: &ast.Call{Func: "double", Args: []ast.Expr{&ast.Name{ID: "x"}}}}},
	}
}

var double = &registry.Descriptor{
	Name:    "double",
	Arity:   registry.Fixed(1),
	Inputs:  []value.KindSet{value.Numeric},
	Offload: true,
	Eval: func(_ context.Context, args []value.Value) (value.Value, error) {
		return value.Mul(args[0], value.Int(2))
	},
}

func TestEngine_RegisterExtendsCompilation(t *testing.T) {
	ctx := context.Background()
	eng := New()

	_, err := eng.Compile(ctx, doubleFn())
	require.ErrorIs(t, err, failure.ErrUnsupportedConstruct)

	eng.Register(double)
	out, err := eng.Call(ctx, doubleFn(), value.Int(21))
	require.NoError(t, err)
	assert.Equal(t, int64(42), out.AsInt())
}

func TestEngine_CompileIsCached(t *testing.T) {
	ctx := context.Background()
	eng := New()
	eng.Register(double)

	a, err := eng.Compile(ctx, doubleFn())
	require.NoError(t, err)
	b, err := eng.Compile(ctx, doubleFn())
	require.NoError(t, err)
	assert.Same(t, a, b)
}

type doubleModule struct{}

func (doubleModule) Register(r *registry.Registry) { r.Register(double) }

func TestEngine_WithRegistryAndModules(t *testing.T) {
	reg := registry.NewDefault()
	eng := New(WithRegistry(reg), WithModules(doubleModule{}), WithMaxIterations(10))
	assert.Same(t, reg, eng.Registry())
	assert.True(t, reg.Has("double"))
}

func TestEngine_InvokeCty(t *testing.T) {
	ctx := context.Background()
	eng := New()
	fn := &ast.Function{
		Name:   "change",
		Params: []string{"data"},
		Body: []ast.Stmt{
			&ast.SetItem{Container: &ast.Name{ID: "data"}, Key: &ast.Const{Value: "key_int"}, Value: &ast.Const{Value: int64(42)}},
			&ast.Return{Value: &ast.Name{ID: "data"}},
		},
	}
	art, err := eng.Compile(ctx, fn)
	require.NoError(t, err)

	out, err := eng.InvokeCty(ctx, art, cty.ObjectVal(map[string]cty.Value{"key": cty.StringVal("value")}))
	require.NoError(t, err)
	assert.True(t, out.GetAttr("key_int").RawEquals(cty.NumberIntVal(42)))
	assert.Equal(t, "value", out.GetAttr("key").AsString())
}

func TestEngine_CallDistinguishesIntLiterals(t *testing.T) {
	ctx := context.Background()
	eng := New()
	constFn := func(v any) *ast.Function {
		return &ast.Function{Name: "f", Body: []ast.Stmt{&ast.Return{Value: &ast.Const{Value: v}}}}
	}

	out, err := eng.Call(ctx, constFn(1))
	require.NoError(t, err)
	assert.Equal(t, "1", value.Repr(out))

	out, err = eng.Call(ctx, constFn(2))
	require.NoError(t, err)
	assert.Equal(t, "2", value.Repr(out))
}
