package value

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestFromCty(t *testing.T) {
	in := cty.ObjectVal(map[string]cty.Value{
		"b": cty.NumberIntVal(42),
		"a": cty.NumberFloatVal(1.5),
		"l": cty.TupleVal([]cty.Value{cty.StringVal("x"), cty.NullVal(cty.String), cty.True}),
	})
	got, err := FromCty(in)
	require.NoError(t, err)

	want := NewDict()
	require.NoError(t, want.Dict().Set(String("a"), Float(1.5)))
	require.NoError(t, want.Dict().Set(String("b"), Int(42)))
	require.NoError(t, want.Dict().Set(String("l"), NewList(String("x"), None, True)))
	assert.True(t, Identical(want, got), "got %s", got)
}

func TestFromCty_Unknown(t *testing.T) {
	_, err := FromCty(cty.UnknownVal(cty.String))
	require.Error(t, err)
}

func TestToCty(t *testing.T) {
	d := NewDict()
	require.NoError(t, d.Dict().Set(String("n"), Int(7)))
	require.NoError(t, d.Dict().Set(Int(1), NewList(String("x"))))

	got, err := ToCty(d)
	require.NoError(t, err)
	want := cty.ObjectVal(map[string]cty.Value{
		"n": cty.NumberIntVal(7),
		"1": cty.TupleVal([]cty.Value{cty.StringVal("x")}),
	})
	assert.True(t, want.RawEquals(got), "got %#v", got)

	empty, err := ToCty(NewList())
	require.NoError(t, err)
	assert.True(t, cty.EmptyTupleVal.RawEquals(empty))

	_, err = ToCty(Float(math.Inf(1)))
	require.Error(t, err)
}

func TestToCty_CollidingKeys(t *testing.T) {
	d := NewDict()
	require.NoError(t, d.Dict().Set(Int(1), String("a")))
	require.NoError(t, d.Dict().Set(String("1"), String("b")))

	_, err := ToCty(d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `attribute "1"`)

	nested := NewList(d)
	_, err = ToCty(nested)
	require.Error(t, err)
}

func TestWire_PreservesKinds(t *testing.T) {
	d := NewDict()
	require.NoError(t, d.Dict().Set(String("key_float"), Float(42)))
	require.NoError(t, d.Dict().Set(String("key_int"), Int(math.MaxInt64)))
	require.NoError(t, d.Dict().Set(Int(3), NewList(None, True, Float(math.NaN()))))

	data, err := json.Marshal(d)
	require.NoError(t, err)

	var got Value
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, Identical(d, got), "got %s", got)
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]any{})
	require.Error(t, err)
	_, err = Decode(map[string]any{"kind": "complex"})
	require.Error(t, err)
	_, err = Decode(map[string]any{"kind": "dict", "value": []any{[]any{1.0}}})
	require.Error(t, err)
}
