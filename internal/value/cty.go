package value

import (
	"fmt"
	"math"
	"math/big"

	"github.com/zclconf/go-cty/cty"
)

// FromCty converts a cty.Value into a Value. Integral numbers become ints,
// others floats; objects and maps become dicts with string keys in cty's
// (sorted) attribute order; lists, tuples and sets become lists.
func FromCty(val cty.Value) (Value, error) {
	val, _ = val.UnmarkDeep()
	if !val.IsKnown() {
		return None, fmt.Errorf("cannot convert unknown value of type %s", val.Type().FriendlyName())
	}
	if val.IsNull() {
		return None, nil
	}
	ty := val.Type()
	if ty.IsPrimitiveType() {
		switch ty {
		case cty.String:
			return String(val.AsString()), nil
		case cty.Bool:
			return Bool(val.True()), nil
		case cty.Number:
			bf := val.AsBigFloat()
			if bf.IsInt() {
				if i, acc := bf.Int64(); acc == big.Exact {
					return Int(i), nil
				}
			}
			f, _ := bf.Float64()
			return Float(f), nil
		default:
			return None, fmt.Errorf("unsupported primitive type: %s", ty.FriendlyName())
		}
	}
	if ty.IsObjectType() || ty.IsMapType() {
		out := NewDict()
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			item, err := FromCty(v)
			if err != nil {
				return None, err
			}
			if err := out.d.Set(String(k.AsString()), item); err != nil {
				return None, err
			}
		}
		return out, nil
	}
	if ty.IsTupleType() || ty.IsListType() || ty.IsSetType() {
		out := &List{}
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			item, err := FromCty(v)
			if err != nil {
				return None, err
			}
			out.items = append(out.items, item)
		}
		return FromList(out), nil
	}
	return None, fmt.Errorf("unsupported cty.Type for conversion: %s", ty.FriendlyName())
}

// ToCty converts a Value into a cty.Value. Lists become tuples and dicts
// become objects whose attribute names are the str() of each key. cty has no
// int/float distinction, so the kind tag of numbers is not preserved.
func ToCty(v Value) (cty.Value, error) {
	switch v.kind {
	case NilKind:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case BoolKind:
		return cty.BoolVal(v.b), nil
	case IntKind:
		return cty.NumberIntVal(v.i), nil
	case FloatKind:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return cty.NilVal, fmt.Errorf("cannot represent %s as a cty number", Repr(v))
		}
		return cty.NumberFloatVal(v.f), nil
	case StringKind:
		return cty.StringVal(v.s), nil
	case ListKind:
		if len(v.l.items) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, 0, len(v.l.items))
		for _, item := range v.l.items {
			ev, err := ToCty(item)
			if err != nil {
				return cty.NilVal, err
			}
			elems = append(elems, ev)
		}
		return cty.TupleVal(elems), nil
	case DictKind:
		if v.d.Len() == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, v.d.Len())
		owners := make(map[string]Value, v.d.Len())
		for i, k := range v.d.keys {
			name := Display(k)
			if prev, ok := owners[name]; ok {
				return cty.NilVal, fmt.Errorf("dict keys %s and %s both map to attribute %q", Repr(prev), Repr(k), name)
			}
			owners[name] = k
			av, err := ToCty(v.d.vals[i])
			if err != nil {
				return cty.NilVal, err
			}
			attrs[name] = av
		}
		return cty.ObjectVal(attrs), nil
	}
	return cty.NilVal, fmt.Errorf("unsupported kind %s", v.kind)
}
