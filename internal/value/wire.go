package value

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Wire form: every value travels as {"kind": <name>, "value": <payload>} so
// that int and float survive a JSON transport. Ints are sent as decimal
// strings to keep all 64 bits; non-finite floats as "nan", "inf", "-inf";
// dict payloads are lists of [key, value] pairs to keep order and key kinds.

// Encode converts v to its wire form, a tree of maps, slices and scalars
// that encoding/json can marshal.
func Encode(v Value) any {
	payload := func(p any) map[string]any {
		return map[string]any{"kind": v.kind.String(), "value": p}
	}
	switch v.kind {
	case NilKind:
		return payload(nil)
	case BoolKind:
		return payload(v.b)
	case IntKind:
		return payload(strconv.FormatInt(v.i, 10))
	case FloatKind:
		switch {
		case math.IsNaN(v.f):
			return payload("nan")
		case math.IsInf(v.f, 1):
			return payload("inf")
		case math.IsInf(v.f, -1):
			return payload("-inf")
		}
		return payload(v.f)
	case StringKind:
		return payload(v.s)
	case ListKind:
		items := make([]any, len(v.l.items))
		for i, item := range v.l.items {
			items[i] = Encode(item)
		}
		return payload(items)
	case DictKind:
		pairs := make([]any, len(v.d.keys))
		for i, k := range v.d.keys {
			pairs[i] = []any{Encode(k), Encode(v.d.vals[i])}
		}
		return payload(pairs)
	}
	return payload(nil)
}

// Decode converts a wire-form tree, as produced by encoding/json decoding
// into any, back into a Value.
func Decode(data any) (Value, error) {
	m, ok := data.(map[string]any)
	if !ok {
		return None, fmt.Errorf("wire value must be an object, got %T", data)
	}
	name, _ := m["kind"].(string)
	kind, ok := ParseKind(name)
	if !ok {
		return None, fmt.Errorf("unknown wire kind %q", name)
	}
	raw := m["value"]
	switch kind {
	case NilKind:
		return None, nil
	case BoolKind:
		b, ok := raw.(bool)
		if !ok {
			return None, fmt.Errorf("bool payload must be a boolean, got %T", raw)
		}
		return Bool(b), nil
	case IntKind:
		switch p := raw.(type) {
		case string:
			i, err := strconv.ParseInt(p, 10, 64)
			if err != nil {
				return None, fmt.Errorf("invalid int payload: %w", err)
			}
			return Int(i), nil
		case float64:
			return Int(int64(p)), nil
		case json.Number:
			i, err := p.Int64()
			if err != nil {
				return None, fmt.Errorf("invalid int payload: %w", err)
			}
			return Int(i), nil
		}
		return None, fmt.Errorf("int payload must be a string or number, got %T", raw)
	case FloatKind:
		switch p := raw.(type) {
		case float64:
			return Float(p), nil
		case json.Number:
			f, err := p.Float64()
			if err != nil {
				return None, fmt.Errorf("invalid float payload: %w", err)
			}
			return Float(f), nil
		case string:
			switch p {
			case "nan":
				return Float(math.NaN()), nil
			case "inf":
				return Float(math.Inf(1)), nil
			case "-inf":
				return Float(math.Inf(-1)), nil
			}
			f, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return None, fmt.Errorf("invalid float payload: %w", err)
			}
			return Float(f), nil
		}
		return None, fmt.Errorf("float payload must be a number, got %T", raw)
	case StringKind:
		s, ok := raw.(string)
		if !ok {
			return None, fmt.Errorf("str payload must be a string, got %T", raw)
		}
		return String(s), nil
	case ListKind:
		items, ok := raw.([]any)
		if !ok && raw != nil {
			return None, fmt.Errorf("list payload must be an array, got %T", raw)
		}
		out := &List{items: make([]Value, 0, len(items))}
		for _, item := range items {
			v, err := Decode(item)
			if err != nil {
				return None, err
			}
			out.items = append(out.items, v)
		}
		return FromList(out), nil
	case DictKind:
		pairs, ok := raw.([]any)
		if !ok && raw != nil {
			return None, fmt.Errorf("dict payload must be an array of pairs, got %T", raw)
		}
		out := newDict()
		for _, p := range pairs {
			pair, ok := p.([]any)
			if !ok || len(pair) != 2 {
				return None, fmt.Errorf("dict entry must be a [key, value] pair")
			}
			k, err := Decode(pair[0])
			if err != nil {
				return None, err
			}
			v, err := Decode(pair[1])
			if err != nil {
				return None, err
			}
			if err := out.Set(k, v); err != nil {
				return None, err
			}
		}
		return FromDict(out), nil
	}
	return None, fmt.Errorf("unsupported wire kind %q", name)
}

// MarshalJSON encodes v in wire form.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(Encode(v))
}

// UnmarshalJSON decodes a wire-form document into v.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out, err := Decode(raw)
	if err != nil {
		return err
	}
	*v = out
	return nil
}
