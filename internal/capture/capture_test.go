package capture

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

const changeCapture = `
functions:
  - type: FunctionDef
    name: change
    args: {type: arguments, args: [{type: arg, arg: data}]}
    lineno: 1
    col_offset: 0
    body:
      - type: Assign
        lineno: 2
        col_offset: 4
        targets:
          - type: Subscript
            value: {type: Name, id: data}
            slice: {type: Constant, value: key_float}
        value: {type: Constant, value: 42.0}
      - type: Assign
        targets:
          - type: Subscript
            value: {type: Name, id: data}
            slice: {type: Constant, value: key_int}
        value: {type: Constant, value: 42}
      - type: Assign
        targets:
          - type: Subscript
            value: {type: Name, id: data}
            slice: {type: Constant, value: key}
        value: {type: Constant, value: new value}
      - type: Return
        value: {type: Name, id: data}
invocations:
  - function: change
    args: [{key: value}]
    expect_args: [{key: new value, key_float: 42.0, key_int: 42}]
`

func TestParse_Change(t *testing.T) {
	m, err := Parse([]byte(changeCapture), "change.yaml")
	require.NoError(t, err)
	require.Len(t, m.Functions, 1)
	require.Len(t, m.Invocations, 1)

	fn := m.Functions[0]
	assert.Equal(t, []string{"data"}, fn.Params)
	assert.Equal(t, ast.Pos{File: "change.yaml", Line: 1, Column: 1}, fn.Pos)
	assert.Equal(t, ast.Pos{File: "change.yaml", Line: 2, Column: 5}, fn.Body[0].Position())
	assert.Equal(t, `def change(data):
    data["key_float"] = 42.0
    data["key_int"] = 42
    data["key"] = "new value"
    return data
`, ast.Format(fn))

	inv := m.Invocations[0]
	require.Len(t, inv.Args, 1)
	out, err := engine.New().Call(context.Background(), fn, inv.Args...)
	require.NoError(t, err)
	assert.Equal(t, "{'key': 'new value', 'key_float': 42.0, 'key_int': 42}", value.Repr(inv.Args[0]))
	assert.True(t, value.Equal(inv.ExpectArgs[0], out))
}

func TestParse_JSONKeepsNumberKinds(t *testing.T) {
	m, err := Parse([]byte(`{
  "type": "FunctionDef",
  "name": "pair",
  "args": [],
  "body": [
    {"type": "Return", "value": {"type": "List", "elts": [
      {"type": "Constant", "value": 1},
      {"type": "Constant", "value": 1.0},
      {"type": "Constant", "value": "1"},
      {"type": "Constant", "value": true},
      {"type": "Constant", "value": null}
    ]}}
  ]
}`), "pair.json")
	require.NoError(t, err)
	require.Len(t, m.Functions, 1)
	assert.Equal(t, `def pair():
    return [1, 1.0, "1", True, None]
`, ast.Format(m.Functions[0]))
}

func TestParse_Module(t *testing.T) {
	m, err := Parse([]byte(`
type: Module
body:
  - {type: FunctionDef, name: a, args: [x], body: [{type: Return, value: {type: Name, id: x}}]}
  - {type: FunctionDef, name: b, args: [], body: [{type: Pass}]}
`), "mod.yaml")
	require.NoError(t, err)
	require.Len(t, m.Functions, 2)
	assert.Equal(t, "b", m.Functions[1].Name)
}

func TestParse_Statements(t *testing.T) {
	m, err := Parse([]byte(`
type: FunctionDef
name: f
args: [xs]
body:
  - {type: Assign, targets: [{type: Name, id: total}], value: {type: Constant, value: 0}}
  - type: For
    target: {type: Name, id: x}
    iter: {type: Name, id: xs}
    body:
      - type: If
        test: {type: Compare, left: {type: Name, id: x}, ops: [{type: Eq}], comparators: [{type: Constant, value: 3}]}
        body: [{type: Continue}]
        orelse:
          - {type: AugAssign, target: {type: Name, id: total}, op: {type: Add}, value: {type: Name, id: x}}
  - type: While
    test: {type: Compare, left: {type: Constant, value: 0}, ops: [Lt, LtE], comparators: [{type: Name, id: total}, {type: Constant, value: 100}]}
    body:
      - {type: AugAssign, target: {type: Name, id: total}, op: Mult, value: {type: Constant, value: 2}}
  - {type: Expr, value: {type: Call, func: {type: Attribute, value: {type: Name, id: xs}, attr: append}, args: [{type: Name, id: total}]}}
  - type: Return
    value:
      type: IfExp
      test: {type: BoolOp, op: Or, values: [{type: Name, id: xs}, {type: UnaryOp, op: Not, operand: {type: Name, id: total}}]}
      body: {type: Subscript, value: {type: Name, id: xs}, slice: {type: Slice, lower: {type: UnaryOp, op: USub, operand: {type: Constant, value: 1}}}}
      orelse: {type: Dict, keys: [{type: Constant, value: k}], values: [{type: BinOp, left: {type: Name, id: total}, op: FloorDiv, right: {type: Constant, value: 2}}]}
`), "f.yaml")
	require.NoError(t, err)
	fn := m.Functions[0]
	assert.Equal(t, `def f(xs):
    total = 0
    for x in xs:
        if (x == 3):
            continue
        else:
            total += x
    while ((0 < total) and (total <= 100)):
        total *= 2
    xs.append(total)
    return (xs[(-1):] if (xs or (not total)) else {"k": (total // 2)})
`, ast.Format(fn))

	xs := value.NewList(value.Int(1), value.Int(2), value.Int(3), value.Int(4))
	out, err := engine.New().Call(context.Background(), fn, xs)
	require.NoError(t, err)
	assert.Equal(t, "[112]", value.Repr(out))
	assert.Equal(t, "[1, 2, 3, 4, 112]", value.Repr(xs))
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name string
		stmt string
		msg  string
	}{
		{"chained assignment", `{type: Assign, targets: [{type: Name, id: a}, {type: Name, id: b}], value: {type: Constant, value: 1}}`, "chained assignment"},
		{"tuple target", `{type: Assign, targets: [{type: Tuple, elts: []}], value: {type: Constant, value: 1}}`, "cannot assign to Tuple"},
		{"keywords", `{type: Expr, value: {type: Call, func: {type: Name, id: f}, args: [], keywords: [{type: keyword}]}}`, "keyword arguments"},
		{"lambda", `{type: Expr, value: {type: Lambda}}`, "unsupported expression Lambda"},
		{"with", `{type: With}`, "unsupported statement With"},
		{"loop else", `{type: While, test: {type: Constant, value: true}, body: [], orelse: [{type: Pass}]}`, "else clauses"},
		{"complex chain", `{type: Expr, value: {type: Compare, left: {type: Constant, value: 1}, ops: [Lt, Lt], comparators: [{type: Call, func: {type: Name, id: f}, args: []}, {type: Constant, value: 3}]}}`, "chained comparison"},
		{"matmul", `{type: Expr, value: {type: BinOp, left: {type: Name, id: a}, op: MatMult, right: {type: Name, id: a}}}`, "unsupported operator MatMult"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			src := "type: FunctionDef\nname: f\nargs: [a]\nbody:\n  - " + tc.stmt + "\n"
			_, err := Parse([]byte(src), "bad.yaml")
			require.Error(t, err)
			require.ErrorIs(t, err, failure.ErrUnsupportedConstruct)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestParse_Invocations(t *testing.T) {
	m, err := Parse([]byte(`
functions:
  - {type: FunctionDef, name: f, args: [], body: [{type: Return}]}
invocations:
  - function: f
    expect: null
  - function: f
    args: [1, [2.5, x], {1: one}]
    expect_error: ArityMismatch
`), "inv.yaml")
	require.NoError(t, err)
	require.Len(t, m.Invocations, 2)

	first := m.Invocations[0]
	require.NotNil(t, first.Expect)
	assert.True(t, first.Expect.IsNil())
	assert.Equal(t, "f@inv.yaml:5:5", first.Name())

	second := m.Invocations[1]
	assert.Equal(t, "[1, [2.5, 'x'], {1: 'one'}]", value.Repr(value.NewList(second.Args...)))
	assert.Equal(t, "ArityMismatch", second.ExpectError)
	assert.Nil(t, second.ExpectArgs)
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("functions: [\n"), "broken.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse capture file broken.yaml")

	_, err = Parse([]byte("- 1\n"), "list.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document must be a mapping")

	_, err = Parse([]byte("invocations: [{args: []}]\n"), "noname.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invocation has no function")

	m, err := Parse(nil, "empty.yaml")
	require.NoError(t, err)
	assert.Empty(t, m.Functions)
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.json")
	require.NoError(t, os.WriteFile(a, []byte(changeCapture), 0o644))
	require.NoError(t, os.WriteFile(b, []byte(`{"type": "FunctionDef", "name": "g", "args": [], "body": []}`), 0o644))

	l := NewLoader()
	assert.Equal(t, []string{".yaml", ".yml", ".json"}, l.Extensions())

	m, err := l.Load(context.Background(), a, b)
	require.NoError(t, err)
	assert.Len(t, m.Functions, 2)
	require.NoError(t, m.Validate())

	_, err = l.Load(context.Background(), filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
