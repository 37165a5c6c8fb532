package env_vars

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/execgraph/internal/registry"
	"github.com/vk/execgraph/internal/value"
)

func TestGetenv(t *testing.T) {
	t.Setenv("EXECGRAPH_TEST_VAR", "hello")
	reg := registry.NewDefault(&Module{})
	d, err := reg.Lookup("getenv")
	require.NoError(t, err)

	out, err := d.Call(context.Background(), []value.Value{value.String("EXECGRAPH_TEST_VAR")})
	require.NoError(t, err)
	assert.Equal(t, "hello", out.Str())

	out, err = d.Call(context.Background(), []value.Value{value.String("EXECGRAPH_TEST_UNSET"), value.Int(7)})
	require.NoError(t, err)
	assert.Equal(t, int64(7), out.AsInt())

	out, err = d.Call(context.Background(), []value.Value{value.String("EXECGRAPH_TEST_UNSET")})
	require.NoError(t, err)
	assert.True(t, out.IsNil())
}

func TestEnviron(t *testing.T) {
	t.Setenv("EXECGRAPH_TEST_VAR", "hello")
	out, err := Environ(context.Background(), nil)
	require.NoError(t, err)

	got, err := out.Dict().Lookup(value.String("EXECGRAPH_TEST_VAR"))
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Str())
}
