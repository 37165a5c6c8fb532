package print

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/execgraph/internal/registry"
	"github.com/vk/execgraph/internal/value"
)

func TestPrint(t *testing.T) {
	var out bytes.Buffer
	m := &Module{Out: &out}
	reg := registry.NewDefault(m)

	for _, name := range []string{"print", "cout"} {
		d, err := reg.Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, registry.Effectful, d.Effect)

		res, err := d.Call(context.Background(), []value.Value{value.String("a"), value.Int(1), value.Float(2), value.NewList(value.String("x"))})
		require.NoError(t, err)
		assert.True(t, res.IsNil())
	}
	assert.Equal(t, "a 1 2.0 ['x']\na 1 2.0 ['x']\n", out.String())
}
