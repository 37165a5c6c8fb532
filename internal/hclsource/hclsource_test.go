package hclsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/execgraph/internal/ast"
	"github.com/vk/execgraph/internal/engine"
	"github.com/vk/execgraph/internal/failure"
	"github.com/vk/execgraph/internal/value"
)

const changeSource = `
function "change" {
  params = ["data"]
  body = block(
    store(data.key, "new value"),
    store(data["key_int"], 42),
    store(data["key_float"], 42.0),
    data,
  )
}

invoke "change" {
  args        = [{ key = "value" }]
  expect_args = [{ key = "new value", key_float = 42.0, key_int = 42 }]
}
`

func parse(t *testing.T, src string) (*ast.Function, []*ast.Function) {
	t.Helper()
	m, err := Parse([]byte(src), "test.hcl")
	require.NoError(t, err)
	require.NotEmpty(t, m.Functions)
	return m.Functions[0], m.Functions
}

func TestParse_Change(t *testing.T) {
	m, err := Parse([]byte(changeSource), "change.hcl")
	require.NoError(t, err)
	require.Len(t, m.Functions, 1)
	require.Len(t, m.Invocations, 1)

	fn := m.Functions[0]
	assert.Equal(t, ast.Pos{File: "change.hcl", Line: 2, Column: 1}, fn.Pos)
	assert.Equal(t, `def change(data):
    data["key"] = "new value"
    data["key_int"] = 42
    data["key_float"] = 42.0
    return data
`, ast.Format(fn))

	inv := m.Invocations[0]
	assert.Equal(t, "change", inv.Function)
	assert.Equal(t, "change@change.hcl:12:1", inv.Name())
	require.Len(t, inv.Args, 1)
	assert.Equal(t, "{'key': 'value'}", value.Repr(inv.Args[0]))
	require.Len(t, inv.ExpectArgs, 1)
	assert.Equal(t, "{'key': 'new value', 'key_float': 42.0, 'key_int': 42}", value.Repr(inv.ExpectArgs[0]))
	assert.Nil(t, inv.Expect)
	assert.Empty(t, inv.ExpectError)
}

func TestParse_ChangeRunsEndToEnd(t *testing.T) {
	m, err := Parse([]byte(changeSource), "change.hcl")
	require.NoError(t, err)
	inv := m.Invocations[0]

	eng := engine.New()
	out, err := eng.Call(context.Background(), m.Functions[0], inv.Args...)
	require.NoError(t, err)
	assert.True(t, value.Equal(inv.ExpectArgs[0], inv.Args[0]), "argument is %s", inv.Args[0])
	assert.True(t, value.Equal(inv.ExpectArgs[0], out))
}

func TestParse_ControlFlow(t *testing.T) {
	fn, _ := parse(t, `
function "total" {
  params = ["xs"]
  body = block(
    define(acc, 0),
    for_each(x, xs, block(
      if(x == 3, continue()),
      if(x > 4, break()),
      store(acc, acc + x),
    )),
    while(acc < 10, store(acc, acc * 2)),
    acc,
  )
}
`)
	assert.Equal(t, `def total(xs):
    let acc = 0
    for x in xs:
        if (x == 3):
            continue
        if (x > 4):
            break
        acc = (acc + x)
    while (acc < 10):
        acc = (acc * 2)
    return acc
`, ast.Format(fn))

	xs := value.NewList(value.Int(1), value.Int(2), value.Int(3), value.Int(4), value.Int(5), value.Int(6))
	out, err := engine.New().Call(context.Background(), fn, xs)
	require.NoError(t, err)
	assert.Equal(t, int64(14), out.AsInt())
}

func TestParse_Expressions(t *testing.T) {
	fn, _ := parse(t, `
function "f" {
  params = ["a", "b"]
  body = block(
    define(s, "n=${a}"),
    define(c, a > b ? a : b),
    define(d, if(!(a == b) && true, -1, 1e3)),
    return([s, c, d, len(s) % 2, null]),
  )
}
`)
	assert.Equal(t, `def f(a, b):
    let s = ("n=" + str(a))
    let c = (a if (a > b) else b)
    let d = ((-1) if ((not (a == b)) and True) else 1000.0)
    return [s, c, d, (len(s) % 2), None]
`, ast.Format(fn))
}

func TestParse_IfElseStatement(t *testing.T) {
	fn, _ := parse(t, `
function "sign" {
  params = ["x"]
  body = if(x < 0, return("neg"), block(return("pos")))
}
`)
	assert.Equal(t, `def sign(x):
    if (x < 0):
        return "neg"
    else:
        return "pos"
`, ast.Format(fn))
}

func TestParse_Invocations(t *testing.T) {
	m, err := Parse([]byte(`
function "id" {
  params = ["x"]
  body   = x
}

invoke "id" {
  args   = [-2, 2.5, "s", [1, true], null]
  expect = -2
}

invoke "id" {
  expect_error = "ArityMismatch"
}
`), "inv.hcl")
	require.NoError(t, err)
	require.Len(t, m.Invocations, 2)

	first := m.Invocations[0]
	require.Len(t, first.Args, 5)
	assert.Equal(t, "[-2, 2.5, 's', [1, True], None]", value.Repr(value.NewList(first.Args...)))
	require.NotNil(t, first.Expect)
	assert.Equal(t, value.IntKind, first.Expect.Kind())
	assert.Equal(t, int64(-2), first.Expect.AsInt())
	assert.Nil(t, first.ExpectArgs)

	second := m.Invocations[1]
	assert.Empty(t, second.Args)
	assert.Equal(t, "ArityMismatch", second.ExpectError)
}

func TestParse_EmptyExpectArgsIsAnExpectation(t *testing.T) {
	m, err := Parse([]byte(`
function "noop" {
  body = null
}

invoke "noop" {
  expect_args = []
}
`), "noop.hcl")
	require.NoError(t, err)
	assert.NotNil(t, m.Invocations[0].ExpectArgs)
	assert.Empty(t, m.Invocations[0].ExpectArgs)
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name string
		body string
		msg  string
	}{
		{"function definition", `define(f, x, x)`, "function definitions"},
		{"statement as value", `len(block(1))`, "is a statement"},
		{"for expression", `[for x in [1] : x]`, "unsupported expression"},
		{"splat", `[[1]][*]`, "unsupported expression"},
		{"if value without else", `len(if(true, 1))`, "needs an else branch"},
		{"store into call", `store(len(x), 1)`, "cannot store"},
		{"for_each needs a name", `for_each(1, [1], 1)`, "loop variable"},
		{"expansion", `len([1]...)`, "expansion"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte("function \"f\" {\n  params = [\"x\"]\n  body = "+tc.body+"\n}\n"), "bad.hcl")
			require.Error(t, err)
			require.ErrorIs(t, err, failure.ErrUnsupportedConstruct)
			assert.Contains(t, err.Error(), tc.msg)
			assert.Contains(t, err.Error(), "bad.hcl:3:")
		})
	}
}

func TestParse_StatementArity(t *testing.T) {
	_, err := Parse([]byte(`
function "f" {
  body = break(1)
}
`), "arity.hcl")
	require.ErrorIs(t, err, failure.ErrArityMismatch)
}

func TestParse_NonConstantArgs(t *testing.T) {
	_, err := Parse([]byte(`
function "f" {
  body = null
}

invoke "f" {
  args = [len("x")]
}
`), "args.hcl")
	require.ErrorIs(t, err, failure.ErrUnsupportedConstruct)
	assert.Contains(t, err.Error(), "not a constant")
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := Parse([]byte(`function "f" {`), "broken.hcl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse HCL source broken.hcl")
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.hcl")
	b := filepath.Join(dir, "b.hcl")
	require.NoError(t, os.WriteFile(a, []byte(changeSource), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("function \"other\" {\n  body = 1\n}\n"), 0o644))

	l := NewLoader()
	assert.Equal(t, []string{".hcl"}, l.Extensions())

	m, err := l.Load(context.Background(), a, b)
	require.NoError(t, err)
	assert.Len(t, m.Functions, 2)
	assert.Len(t, m.Invocations, 1)
	require.NoError(t, m.Validate())

	_, err = l.Load(context.Background(), a, a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already declared")
}

func TestFormatFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.hcl")
	require.NoError(t, os.WriteFile(path, []byte("function \"f\" {\nparams=[\"a\"]\nbody=a\n}\n"), 0o644))

	changed, err := FormatFile(path)
	require.NoError(t, err)
	assert.True(t, changed)

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(out), "  params = [\"a\"]\n")

	changed, err = FormatFile(path)
	require.NoError(t, err)
	assert.False(t, changed)
}
