package env_vars

import (
	"context"
	"os"
	"slices"
	"strings"

	"github.com/vk/execgraph/internal/registry"
	"github.com/vk/execgraph/internal/value"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Getenv returns the named environment variable, or the default (None when
// not given) when it is unset.
func Getenv(_ context.Context, args []value.Value) (value.Value, error) {
	if v, ok := os.LookupEnv(args[0].Str()); ok {
		return value.String(v), nil
	}
	if len(args) > 1 {
		return args[1], nil
	}
	return value.None, nil
}

// Environ returns every environment variable as a dict sorted by name.
func Environ(_ context.Context, _ []value.Value) (value.Value, error) {
	env := os.Environ()
	slices.Sort(env)
	out := value.NewDict()
	for _, e := range env {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			if err := out.Dict().Set(value.String(pair[0]), value.String(pair[1])); err != nil {
				return value.None, err
			}
		}
	}
	return out, nil
}

// Register registers the primitives with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&registry.Descriptor{
		Name:   "getenv",
		Arity:  registry.Between(1, 2),
		Inputs: []value.KindSet{value.KindsOf(value.StringKind), value.Any},
		Effect: registry.Effectful,
		Doc:    "getenv(name[, default]) reads an environment variable",
		Eval:   Getenv,
	})
	r.Register(&registry.Descriptor{
		Name:   "environ",
		Arity:  registry.Fixed(0),
		Effect: registry.Effectful,
		Doc:    "all environment variables as a dict",
		Eval:   Environ,
	})
}
