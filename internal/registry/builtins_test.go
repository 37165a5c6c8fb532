package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/execgraph/internal/failure"
	"github.com/vk/execgraph/internal/value"
)

var (
	i = value.Int
	f = value.Float
	s = value.String
	l = value.NewList
)

func call(t *testing.T, r *Registry, name string, args ...value.Value) (value.Value, error) {
	t.Helper()
	d, err := r.Lookup(name)
	require.NoError(t, err)
	return d.Call(context.Background(), args)
}

func d(t *testing.T, kv ...value.Value) value.Value {
	t.Helper()
	out, err := value.DictOf(kv...)
	require.NoError(t, err)
	return out
}

func TestBuiltins(t *testing.T) {
	r := NewDefault()
	tests := []struct {
		name string
		prim string
		args []value.Value
		want value.Value
	}{
		{"list", "list", []value.Value{i(1)}, l(i(1))},
		{"empty list", "list", nil, l()},
		{"make_list", "make_list", []value.Value{i(1), f(2)}, l(i(1), f(2))},
		{"dict literal", "__dict", []value.Value{s("k"), s("v")}, d(t, s("k"), s("v"))},
		{"dict from pairs", "dict", []value.Value{l(l(s("a"), i(1)))}, d(t, s("a"), i(1))},
		{"range", "range", []value.Value{i(3)}, l(i(0), i(1), i(2))},
		{"range step", "range", []value.Value{i(5), i(0), i(-2)}, l(i(5), i(3), i(1))},
		{"getitem negative", "__getitem", []value.Value{l(i(1), i(2)), i(-1)}, i(2)},
		{"getitem string", "__getitem", []value.Value{s("héllo"), i(1)}, s("é")},
		{"getitem dict", "__getitem", []value.Value{d(t, f(1), s("one")), i(1)}, s("one")},
		{"slice", "slice", []value.Value{l(i(0), i(1), i(2), i(3)), i(1), value.None}, l(i(1), i(2), i(3))},
		{"slice reverse", "slice", []value.Value{s("abc"), value.None, value.None, i(-1)}, s("cba")},
		{"slice step", "slice", []value.Value{l(i(0), i(1), i(2), i(3)), value.None, i(-1), i(2)}, l(i(0), i(2))},
		{"len", "len", []value.Value{d(t, s("a"), i(1))}, i(1)},
		{"in list", "__in", []value.Value{f(1), l(i(1))}, value.True},
		{"in dict", "__in", []value.Value{s("k"), d(t, s("k"), i(1))}, value.True},
		{"not in string", "__not_in", []value.Value{s("z"), s("abc")}, value.True},
		{"eq fresh lists", "__eq", []value.Value{l(i(1)), l(i(1))}, value.True},
		{"eq none", "__eq", []value.Value{value.None, l()}, value.False},
		{"ne", "__ne", []value.Value{i(1), f(1)}, value.False},
		{"lt strings", "__lt", []value.Value{s("a"), s("b")}, value.True},
		{"is fresh lists", "__is", []value.Value{l(), l()}, value.False},
		{"add", "__add", []value.Value{i(1), f(0.5)}, f(1.5)},
		{"not", "__not", []value.Value{l()}, value.True},
		{"int from string", "int", []value.Value{s(" 42 ")}, i(42)},
		{"int from float", "int", []value.Value{f(-2.7)}, i(-2)},
		{"float from string", "float", []value.Value{s("1e3")}, f(1000)},
		{"str", "str", []value.Value{f(42)}, s("42.0")},
		{"bool", "bool", []value.Value{s("")}, value.False},
		{"min iterable", "min", []value.Value{l(i(3), f(1.5), i(2))}, f(1.5)},
		{"max args", "max", []value.Value{i(3), i(7), i(5)}, i(7)},
		{"sum", "sum", []value.Value{l(i(1), i(2), f(0.5))}, f(3.5)},
		{"sorted", "sorted", []value.Value{l(i(3), i(1), i(2))}, l(i(1), i(2), i(3))},
		{"get default", ".get", []value.Value{d(t), s("k"), i(0)}, i(0)},
		{"items", ".items", []value.Value{d(t, s("k"), i(1))}, l(l(s("k"), i(1)))},
		{"index", ".index", []value.Value{l(s("a"), s("b")), s("b")}, i(1)},
		{"count", ".count", []value.Value{s("banana"), s("a")}, i(3)},
		{"join", ".join", []value.Value{s("-"), l(s("a"), s("b"))}, s("a-b")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := call(t, r, tc.prim, tc.args...)
			require.NoError(t, err)
			assert.True(t, value.Identical(tc.want, got), "want %s, got %s", tc.want, got)
		})
	}
}

func TestBuiltins_Errors(t *testing.T) {
	r := NewDefault()
	tests := []struct {
		name string
		prim string
		args []value.Value
		want error
	}{
		{"mapping vs sequence", "__eq", []value.Value{d(t), l()}, failure.ErrTypeMismatch},
		{"str vs int order", "__lt", []value.Value{s("a"), i(1)}, failure.ErrTypeMismatch},
		{"index scalar", "__getitem", []value.Value{i(1), i(0)}, failure.ErrTypeMismatch},
		{"list index by str", "__getitem", []value.Value{l(), s("k")}, failure.ErrTypeMismatch},
		{"absent key", "__getitem", []value.Value{d(t), s("k")}, failure.ErrKeyError},
		{"out of range", "__getitem", []value.Value{l(i(1)), i(1)}, failure.ErrIndexError},
		{"unhashable key", "__setitem", []value.Value{d(t), l(), i(1)}, failure.ErrTypeMismatch},
		{"setitem on string", "__setitem", []value.Value{s("abc"), i(0), s("x")}, failure.ErrTypeMismatch},
		{"arity", "len", nil, failure.ErrArityMismatch},
		{"odd dict literal", "__dict", []value.Value{s("k")}, failure.ErrArityMismatch},
		{"int parse", "int", []value.Value{s("abc")}, failure.ErrValueError},
		{"float parse", "float", []value.Value{s("x1")}, failure.ErrValueError},
		{"int from list", "int", []value.Value{l()}, failure.ErrTypeMismatch},
		{"range zero step", "range", []value.Value{i(0), i(3), i(0)}, failure.ErrValueError},
		{"min empty", "min", []value.Value{l()}, failure.ErrValueError},
		{"sorted mixed", "sorted", []value.Value{l(i(1), s("a"))}, failure.ErrTypeMismatch},
		{"index missing", ".index", []value.Value{l(), i(1)}, failure.ErrValueError},
		{"pop empty", ".pop", []value.Value{l()}, failure.ErrIndexError},
		{"slice zero step", "slice", []value.Value{l(), value.None, value.None, i(0)}, failure.ErrValueError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := call(t, r, tc.prim, tc.args...)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestSetItem_MutatesInPlace(t *testing.T) {
	r := NewDefault()
	data := d(t, s("key"), s("value"))

	for _, kv := range [][2]value.Value{
		{s("key_float"), f(42)},
		{s("key_int"), i(42)},
		{s("key"), s("new value")},
	} {
		out, err := call(t, r, "__setitem", data, kv[0], kv[1])
		require.NoError(t, err)
		assert.True(t, out.IsNil())
	}

	want := d(t, s("key"), s("new value"), s("key_float"), f(42), s("key_int"), i(42))
	assert.True(t, value.Identical(want, data), "got %s", data)
}

func TestMethods_MutateReceiver(t *testing.T) {
	r := NewDefault()
	xs := l(i(1))
	_, err := call(t, r, ".append", xs, i(2))
	require.NoError(t, err)
	_, err = call(t, r, ".extend", xs, s("ab"))
	require.NoError(t, err)
	_, err = call(t, r, ".insert", xs, i(0), i(0))
	require.NoError(t, err)
	assert.Equal(t, "[0, 1, 2, 'a', 'b']", xs.String())

	popped, err := call(t, r, ".pop", xs)
	require.NoError(t, err)
	assert.Equal(t, "b", popped.Str())

	m := d(t, s("a"), i(1))
	_, err = call(t, r, ".update", m, d(t, s("b"), i(2)))
	require.NoError(t, err)
	got, err := call(t, r, ".pop", m, s("zz"), value.None)
	require.NoError(t, err)
	assert.True(t, got.IsNil())
	assert.Equal(t, "{'a': 1, 'b': 2}", m.String())

	_, err = call(t, r, ".clear", m)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Dict().Len())
}

func TestConstruction_AllocatesFreshAggregates(t *testing.T) {
	r := NewDefault()
	a, err := call(t, r, "list", i(1))
	require.NoError(t, err)
	b, err := call(t, r, "list", i(1))
	require.NoError(t, err)
	assert.NotSame(t, a.List(), b.List())

	src := d(t, s("k"), i(1))
	cp, err := call(t, r, "dict", src)
	require.NoError(t, err)
	require.NoError(t, cp.Dict().Set(s("k"), i(2)))
	v, err := src.Dict().Lookup(s("k"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.AsInt())
}
