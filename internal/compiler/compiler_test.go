package compiler

import (
	"context"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/execgraph/internal/ast"
	"github.com/vk/execgraph/internal/failure"
	"github.com/vk/execgraph/internal/graph"
	"github.com/vk/execgraph/internal/registry"
	"github.com/vk/execgraph/internal/value"
)

func name(id string) *ast.Name  { return &ast.Name{ID: id} }
func lit(v any) *ast.Const      { return &ast.Const{Value: v} }
func ret(e ast.Expr) *ast.Return { return &ast.Return{Value: e} }

func call(fn string, args ...ast.Expr) *ast.Call { return &ast.Call{Func: fn, Args: args} }

func fn(nm string, params []string, body ...ast.Stmt) *ast.Function {
	return &ast.Function{Name: nm, Params: params, Body: body}
}

func compile(t *testing.T, f *ast.Function) (*Artifact, error) {
	t.Helper()
	return New(registry.NewDefault()).Compile(context.Background(), f)
}

func requireKind(t *testing.T, err error, kind failure.Kind) {
	t.Helper()
	require.Error(t, err)
	got, ok := failure.KindOf(err)
	require.True(t, ok, "not a failure: %v", err)
	require.Equal(t, kind, got, "error: %v", err)
}

func changeFn() *ast.Function {
	return fn("change", []string{"data"},
		&ast.SetItem{Container: name("data"), Key: lit("key_int"), Value: lit(int64(42))},
		ret(name("data")),
	)
}

func TestCompile_SubscriptAssignment(t *testing.T) {
	art, err := compile(t, changeFn())
	require.NoError(t, err)

	want := "graph change(data)\n" +
		"  %0 = load data[0:0]\n" +
		"  %1 = literal 'key_int'\n" +
		"  %2 = literal 42\n" +
		"  %3 = invoke __setitem(%0, %1, %2) data[0:0]\n" +
		"  %4 = load data[0:0]\n" +
		"  %5 = return(%4)\n" +
		"  %6 = block(%3, %5) scope[data] <- root\n"
	assert.Equal(t, want, art.Graph.Dump())
	assert.Equal(t, []graph.SlotRef{{Depth: 0, Index: 0}}, art.ParamSlots)
	assert.NotEmpty(t, art.Fingerprint)
}

func TestCompile_Deterministic(t *testing.T) {
	f := fn("f", []string{"xs"},
		&ast.Assign{Target: "total", Value: lit(int64(0))},
		&ast.For{Var: "x", Iter: name("xs"), Body: []ast.Stmt{
			&ast.If{
				Cond: &ast.Compare{Op: ast.Gt, Left: name("x"), Right: lit(int64(2))},
				Then: []ast.Stmt{&ast.AugAssign{Target: name("total"), Op: ast.Add, Value: name("x")}},
				Else: []ast.Stmt{&ast.Continue{}},
			},
		}},
		ret(name("total")),
	)
	a, err := compile(t, f)
	require.NoError(t, err)
	b, err := compile(t, f)
	require.NoError(t, err)

	opts := cmp.Options{
		cmp.Comparer(value.Identical),
		cmpopts.IgnoreUnexported(graph.Graph{}),
	}
	if diff := cmp.Diff(a, b, opts); diff != "" {
		t.Errorf("compilations differ (-first +second):\n%s", diff)
	}
	assert.Equal(t, a.Graph.Dump(), b.Graph.Dump())
}

func TestCompile_UndeclaredName(t *testing.T) {
	_, err := compile(t, fn("f", nil, ret(name("missing"))))
	requireKind(t, err, failure.UnboundName)
	assert.Contains(t, err.Error(), `"missing"`)
}

func TestCompile_SelfReferentialAssignment(t *testing.T) {
	f := fn("f", nil, &ast.Assign{Target: "x", Value: &ast.Binary{Op: ast.Add, Left: name("x"), Right: lit(int64(1))}})
	_, err := compile(t, f)
	requireKind(t, err, failure.UnboundName)
}

func TestCompile_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		fn   *ast.Function
		kind failure.Kind
	}{
		{"unknown function", fn("f", nil, &ast.ExprStmt{X: call("open", lit("x"))}), failure.UnsupportedConstruct},
		{"control form as call", fn("f", nil, &ast.ExprStmt{X: call("while")}), failure.UnsupportedConstruct},
		{"break outside loop", fn("f", nil, &ast.Break{}), failure.UnsupportedConstruct},
		{"continue outside loop", fn("f", nil, &ast.Continue{}), failure.UnsupportedConstruct},
		{"unsupported literal", fn("f", nil, ret(lit([]int{1}))), failure.UnsupportedConstruct},
		{"duplicate parameter", fn("f", []string{"a", "a"}), failure.UnsupportedConstruct},
		{"wrong arity", fn("f", nil, ret(call("len"))), failure.ArityMismatch},
		{
			"impure augmented subscript",
			fn("f", []string{"d"}, &ast.AugAssign{
				Target: &ast.Subscript{X: call("list"), Index: lit(int64(0))},
				Op:     ast.Add,
				Value:  lit(int64(1)),
			}),
			failure.UnsupportedConstruct,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			art, err := compile(t, tt.fn)
			requireKind(t, err, tt.kind)
			assert.Nil(t, art)
		})
	}
}

func TestCompile_MissingControlForm(t *testing.T) {
	reg := registry.New()
	_, err := New(reg).Compile(context.Background(), fn("f", nil))
	requireKind(t, err, failure.UnsupportedConstruct)
}

func TestCompile_MethodFallback(t *testing.T) {
	f := fn("f", []string{"xs"}, &ast.ExprStmt{X: call("append", name("xs"), lit(int64(1)))})
	art, err := compile(t, f)
	require.NoError(t, err)

	inv := art.Graph.Node(2)
	assert.Equal(t, graph.Invoke, inv.Op)
	assert.Equal(t, ".append", inv.Prim)
	require.NotNil(t, inv.Slot)
	assert.Equal(t, "xs", inv.Name)
}

func TestCompile_ScopeRules(t *testing.T) {
	t.Run("names bound in both arms survive the if", func(t *testing.T) {
		f := fn("f", []string{"c"},
			&ast.If{
				Cond: name("c"),
				Then: []ast.Stmt{&ast.Assign{Target: "y", Value: lit(int64(1))}},
				Else: []ast.Stmt{&ast.Assign{Target: "y", Value: lit(int64(2))}},
			},
			ret(name("y")),
		)
		art, err := compile(t, f)
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "y"}, art.Graph.RootScope().Names)
	})

	t.Run("names bound in one arm do not", func(t *testing.T) {
		f := fn("f", []string{"c"},
			&ast.If{Cond: name("c"), Then: []ast.Stmt{&ast.Assign{Target: "y", Value: lit(int64(1))}}},
			ret(name("y")),
		)
		_, err := compile(t, f)
		requireKind(t, err, failure.UnboundName)
	})

	t.Run("loop variable is local to the body", func(t *testing.T) {
		f := fn("f", []string{"xs"},
			&ast.For{Var: "x", Iter: name("xs"), Body: []ast.Stmt{&ast.Pass{}}},
			ret(name("x")),
		)
		_, err := compile(t, f)
		requireKind(t, err, failure.UnboundName)
	})

	t.Run("define shadows an outer binding", func(t *testing.T) {
		f := fn("f", []string{"x"},
			&ast.While{Cond: lit(false), Body: []ast.Stmt{
				&ast.Assign{Target: "x", Value: lit(int64(1)), Define: true},
			}},
			ret(name("x")),
		)
		art, err := compile(t, f)
		require.NoError(t, err)
		loop := art.Graph.Node(art.Graph.Node(art.Graph.Root).Inputs[0])
		require.Equal(t, graph.Loop, loop.Op)
		body := art.Graph.Node(loop.Inputs[1])
		assert.Equal(t, []string{"x"}, body.Scope.Names)
		bind := art.Graph.Node(body.Inputs[0])
		assert.Equal(t, graph.SlotRef{Depth: 0, Index: 0}, *bind.Slot)
	})

	t.Run("plain assignment updates an outer binding", func(t *testing.T) {
		f := fn("f", []string{"x"},
			&ast.While{Cond: lit(false), Body: []ast.Stmt{
				&ast.Assign{Target: "x", Value: lit(int64(1))},
			}},
		)
		art, err := compile(t, f)
		require.NoError(t, err)
		loop := art.Graph.Node(art.Graph.Node(art.Graph.Root).Inputs[0])
		body := art.Graph.Node(loop.Inputs[1])
		assert.Empty(t, body.Scope.Names)
		bind := art.Graph.Node(body.Inputs[0])
		assert.Equal(t, graph.SlotRef{Depth: 1, Index: 0}, *bind.Slot)
	})
}

func TestCompile_PassProducesNoNode(t *testing.T) {
	art, err := compile(t, fn("f", nil, &ast.Pass{}, &ast.Pass{}))
	require.NoError(t, err)
	assert.Equal(t, 1, art.Graph.Len())
	assert.Empty(t, art.Graph.Node(art.Graph.Root).Inputs)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint(changeFn(), 1)
	assert.Equal(t, a, Fingerprint(changeFn(), 1))
	assert.NotEqual(t, a, Fingerprint(changeFn(), 2))
	assert.NotEqual(t, a, Fingerprint(fn("change", []string{"data"}), 1))
	assert.Len(t, a, 64)
}

func TestCache_CompilesOnce(t *testing.T) {
	cache := NewCache(New(registry.NewDefault()))
	ctx := context.Background()

	const workers = 16
	arts := make([]*Artifact, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			art, err := cache.Compile(ctx, changeFn())
			assert.NoError(t, err)
			arts[i] = art
		}()
	}
	wg.Wait()

	require.Equal(t, 1, cache.Len())
	for _, art := range arts[1:] {
		assert.Same(t, arts[0], art)
	}
}

func TestCache_DoesNotCacheFailures(t *testing.T) {
	cache := NewCache(New(registry.NewDefault()))
	_, err := cache.Compile(context.Background(), fn("f", nil, ret(name("missing"))))
	requireKind(t, err, failure.UnboundName)
	assert.Equal(t, 0, cache.Len())
}

func TestCache_DistinguishesIntLiterals(t *testing.T) {
	cache := NewCache(New(registry.NewDefault()))
	ctx := context.Background()

	one, err := cache.Compile(ctx, fn("f", nil, ret(&ast.Const{Value: 1})))
	require.NoError(t, err)
	two, err := cache.Compile(ctx, fn("f", nil, ret(&ast.Const{Value: 2})))
	require.NoError(t, err)

	assert.NotSame(t, one, two)
	assert.Equal(t, 2, cache.Len())
	assert.NotEqual(t, Fingerprint(fn("f", nil, ret(&ast.Const{Value: 1})), 1), Fingerprint(fn("f", nil, ret(&ast.Const{Value: 2})), 1))
	assert.Equal(t, Fingerprint(fn("f", nil, ret(&ast.Const{Value: 1})), 1), Fingerprint(fn("f", nil, ret(&ast.Const{Value: int64(1)})), 1))
}
