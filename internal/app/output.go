package app

import (
	"fmt"
	"io"

	"github.com/vk/execgraph/internal/failure"
	"github.com/vk/execgraph/internal/value"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// report writes one line per result in the configured format.
func (a *App) report(results []Result) error {
	for _, res := range results {
		var err error
		if a.config.Output == OutputJSON {
			err = writeJSON(a.outW, res)
		} else {
			err = writeText(a.outW, res)
		}
		if err != nil {
			return fmt.Errorf("failed to write result of %s: %w", res.Invocation, err)
		}
	}
	return nil
}

func writeText(w io.Writer, res Result) error {
	var err error
	switch {
	case res.Status == StatusFailed:
		_, err = fmt.Fprintf(w, "FAIL %s: %s\n", res.Invocation, res.Problem)
	case res.Err != nil:
		kind, _ := failure.KindOf(res.Err)
		_, err = fmt.Fprintf(w, "PASS %s raised %s\n", res.Invocation, kind)
	default:
		_, err = fmt.Fprintf(w, "PASS %s -> %s\n", res.Invocation, value.Repr(res.Value))
	}
	return err
}

// writeJSON writes a result as a JSON object. Numbers lose their kind in
// JSON, so the kind of the returned value is reported next to it.
func writeJSON(w io.Writer, res Result) error {
	result, err := value.ToCty(res.Value)
	if err != nil {
		result = cty.StringVal(value.Repr(res.Value))
	}
	attrs := map[string]cty.Value{
		"invocation":  cty.StringVal(res.Invocation),
		"status":      cty.StringVal(res.Status),
		"result":      nullsAsStrings(result),
		"kind":        cty.StringVal(res.Value.Kind().String()),
		"error":       cty.NullVal(cty.String),
		"problem":     cty.NullVal(cty.String),
		"duration_ms": cty.NumberFloatVal(float64(res.Duration.Microseconds()) / 1000),
	}
	if res.Err != nil {
		attrs["error"] = cty.StringVal(res.Err.Error())
	}
	if res.Problem != "" {
		attrs["problem"] = cty.StringVal(res.Problem)
	}
	obj := cty.ObjectVal(attrs)
	raw, err := ctyjson.Marshal(obj, obj.Type())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", raw)
	return err
}

// nullsAsStrings gives untyped nulls a concrete type so that they marshal
// as a plain JSON null.
func nullsAsStrings(v cty.Value) cty.Value {
	ty := v.Type()
	switch {
	case v.IsNull():
		if ty == cty.DynamicPseudoType {
			return cty.NullVal(cty.String)
		}
		return v
	case ty.IsTupleType():
		if v.LengthInt() == 0 {
			return v
		}
		elems := make([]cty.Value, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, e := it.Element()
			elems = append(elems, nullsAsStrings(e))
		}
		return cty.TupleVal(elems)
	case ty.IsObjectType():
		if len(ty.AttributeTypes()) == 0 {
			return v
		}
		attrs := make(map[string]cty.Value, len(ty.AttributeTypes()))
		for it := v.ElementIterator(); it.Next(); {
			k, e := it.Element()
			attrs[k.AsString()] = nullsAsStrings(e)
		}
		return cty.ObjectVal(attrs)
	}
	return v
}
