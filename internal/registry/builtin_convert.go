package registry

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/vk/execgraph/internal/failure"
	"github.com/vk/execgraph/internal/value"
)

// Explicit conversions. Unlike value.Coerce they may narrow and parse, and
// report unparsable input as ValueError.

var scalar = value.KindsOf(value.BoolKind, value.IntKind, value.FloatKind, value.StringKind)

func registerConvert(r *Registry) {
	r.Register(&Descriptor{
		Name:    "int",
		Arity:   Between(0, 1),
		Inputs:  []value.KindSet{scalar},
		Offload: true,
		Eval: func(_ context.Context, args []value.Value) (value.Value, error) {
			if len(args) == 0 {
				return value.Int(0), nil
			}
			return toInt(args[0])
		},
	})
	r.Register(&Descriptor{
		Name:    "float",
		Arity:   Between(0, 1),
		Inputs:  []value.KindSet{scalar},
		Offload: true,
		Eval: func(_ context.Context, args []value.Value) (value.Value, error) {
			if len(args) == 0 {
				return value.Float(0), nil
			}
			return toFloat(args[0])
		},
	})
	r.Register(&Descriptor{
		Name:    "str",
		Arity:   Between(0, 1),
		Offload: true,
		Eval: func(_ context.Context, args []value.Value) (value.Value, error) {
			return value.String(value.Display(optional(args, 0, value.String("")))), nil
		},
	})
	r.Register(&Descriptor{
		Name:    "bool",
		Arity:   Between(0, 1),
		Offload: true,
		Eval: func(_ context.Context, args []value.Value) (value.Value, error) {
			return value.Bool(value.Truthy(optional(args, 0, value.False))), nil
		},
	})
}

func toInt(v value.Value) (value.Value, error) {
	switch v.Kind() {
	case value.BoolKind, value.IntKind:
		return value.Int(v.AsInt()), nil
	case value.FloatKind:
		f := v.AsFloat()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return value.None, failure.New(failure.ValueError, "cannot convert float %s to integer", value.Repr(v))
		}
		if f >= math.MaxInt64 || f < math.MinInt64 {
			return value.None, failure.New(failure.ValueError, "float %s does not fit in an int", value.Repr(v))
		}
		return value.Int(int64(math.Trunc(f))), nil
	case value.StringKind:
		s := strings.ReplaceAll(strings.TrimSpace(v.Str()), "_", "")
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return value.None, failure.New(failure.ValueError, "invalid literal for int() with base 10: %s", value.Repr(v))
		}
		return value.Int(i), nil
	}
	return value.None, failure.Mismatch("int", v.Kind().String())
}

func toFloat(v value.Value) (value.Value, error) {
	switch v.Kind() {
	case value.BoolKind, value.IntKind, value.FloatKind:
		return value.Float(v.AsFloat()), nil
	case value.StringKind:
		s := strings.ToLower(strings.TrimSpace(v.Str()))
		switch s {
		case "nan", "+nan", "-nan":
			return value.Float(math.NaN()), nil
		case "inf", "+inf", "infinity", "+infinity":
			return value.Float(math.Inf(1)), nil
		case "-inf", "-infinity":
			return value.Float(math.Inf(-1)), nil
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(s, "_", ""), 64)
		if err != nil {
			return value.None, failure.New(failure.ValueError, "could not convert string to float: %s", value.Repr(v))
		}
		return value.Float(f), nil
	}
	return value.None, failure.Mismatch("float", v.Kind().String())
}
