package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/execgraph/internal/failure"
	"github.com/vk/execgraph/internal/value"
)

func identity(_ context.Context, args []value.Value) (value.Value, error) {
	return args[0], nil
}

func TestRegister_PanicsOnDuplicate(t *testing.T) {
	r := New()
	r.Register(&Descriptor{Name: "id", Arity: Fixed(1), Eval: identity})
	assert.PanicsWithValue(t, "primitive with name 'id' already registered", func() {
		r.Register(&Descriptor{Name: "id", Arity: Fixed(1), Eval: identity})
	})
}

func TestRegister_PanicsOnMalformedDescriptor(t *testing.T) {
	r := New()
	assert.Panics(t, func() { r.Register(&Descriptor{Arity: Fixed(1), Eval: identity}) })
	assert.Panics(t, func() { r.Register(&Descriptor{Name: "noeval", Arity: Fixed(1)}) })
	assert.Panics(t, func() { r.Register(&Descriptor{Name: "arity", Arity: Between(2, 1), Eval: identity}) })
	assert.Panics(t, func() {
		r.Register(&Descriptor{Name: "offload", Arity: Fixed(1), Effect: Mutates, Offload: true, Eval: identity})
	})
	assert.Empty(t, r.Names())
}

func TestLookup_Unknown(t *testing.T) {
	_, err := New().Lookup("nope")
	require.ErrorIs(t, err, failure.ErrUnknownPrimitive)
	assert.Contains(t, err.Error(), "nope")
}

func TestVersion_IncreasesOnRegister(t *testing.T) {
	r := New()
	v0 := r.Version()
	r.Register(&Descriptor{Name: "a", Arity: Fixed(1), Eval: identity})
	r.Register(&Descriptor{Name: "b", Arity: Fixed(1), Eval: identity})
	assert.Equal(t, v0+2, r.Version())
	assert.Equal(t, []string{"a", "b"}, r.Names())
}

func TestDescriptor_Check(t *testing.T) {
	d := &Descriptor{
		Name:   "f",
		Arity:  AtLeast(1),
		Inputs: []value.KindSet{value.KindsOf(value.ListKind), value.Numeric},
		Eval:   identity,
	}
	require.NoError(t, d.Check([]value.Value{value.NewList(), value.Int(1), value.Float(2)}))

	err := d.Check(nil)
	require.ErrorIs(t, err, failure.ErrArityMismatch)
	assert.Contains(t, err.Error(), "expects at least 1 inputs, got 0")

	err = d.Check([]value.Value{value.NewList(), value.Int(1), value.String("x")})
	require.ErrorIs(t, err, failure.ErrTypeMismatch)
	var fe *failure.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "f", fe.Op)
	assert.Equal(t, []string{"list", "int", "str"}, fe.Kinds)
}

func TestDescriptor_CallControlForm(t *testing.T) {
	d, err := NewDefault().Lookup("while")
	require.NoError(t, err)
	assert.True(t, d.Control)
	_, err = d.Call(context.Background(), nil)
	require.ErrorIs(t, err, failure.ErrUnsupportedConstruct)
}

func TestValidate(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, NewDefault().Validate(ctx))

	r := New()
	r.Register(&Descriptor{Name: "if", Arity: Fixed(1), Eval: identity})
	err := r.Validate(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "primitive 'if' shadows a control form")
}

type testModule struct{ registered bool }

func (m *testModule) Register(r *Registry) {
	m.registered = true
	r.Register(&Descriptor{Name: "ext", Arity: Fixed(1), Eval: identity})
}

func TestNewDefault_RegistersModules(t *testing.T) {
	mod := &testModule{}
	r := NewDefault(mod)
	assert.True(t, mod.registered)
	assert.True(t, r.Has("ext"))
	assert.True(t, r.Has("list"))
	for _, name := range ControlForms {
		assert.True(t, r.Has(name), name)
	}
}
