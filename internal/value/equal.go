package value

import (
	"cmp"
	"math"

	"github.com/vk/execgraph/internal/failure"
)

type family uint8

const (
	famNil family = iota
	famNumber
	famString
	famList
	famDict
)

func familyOf(k Kind) family {
	switch k {
	case BoolKind, IntKind, FloatKind:
		return famNumber
	case StringKind:
		return famString
	case ListKind:
		return famList
	case DictKind:
		return famDict
	}
	return famNil
}

// Equal is structural equality. It never looks at allocation identity, so two
// independently built list(1) values are equal. Numbers compare by value
// across bool, int and float; values of different families are unequal.
func Equal(a, b Value) bool {
	fa, fb := familyOf(a.kind), familyOf(b.kind)
	if fa != fb {
		return false
	}
	switch fa {
	case famNil:
		return true
	case famNumber:
		if a.kind != FloatKind && b.kind != FloatKind {
			return a.AsInt() == b.AsInt()
		}
		return a.AsFloat() == b.AsFloat()
	case famString:
		return a.s == b.s
	case famList:
		if a.l == b.l {
			return true
		}
		if len(a.l.items) != len(b.l.items) {
			return false
		}
		for i := range a.l.items {
			if !Equal(a.l.items[i], b.l.items[i]) {
				return false
			}
		}
		return true
	case famDict:
		if a.d == b.d {
			return true
		}
		if a.d.Len() != b.d.Len() {
			return false
		}
		for i, k := range a.d.keys {
			other, err := b.d.Lookup(k)
			if err != nil || !Equal(a.d.vals[i], other) {
				return false
			}
		}
		return true
	}
	return false
}

// Comparable reports whether a and b may be tested for equality at the top
// level of an == or != expression. None compares with anything; otherwise
// both sides must belong to the same family.
func Comparable(a, b Value) bool {
	if a.kind == NilKind || b.kind == NilKind {
		return true
	}
	return familyOf(a.kind) == familyOf(b.kind)
}

// Identical is Equal with the additional requirement that kind tags match at
// every level and dict entries appear in the same order.
func Identical(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case NilKind:
		return true
	case BoolKind:
		return a.b == b.b
	case IntKind:
		return a.i == b.i
	case FloatKind:
		return a.f == b.f || (math.IsNaN(a.f) && math.IsNaN(b.f))
	case StringKind:
		return a.s == b.s
	case ListKind:
		if len(a.l.items) != len(b.l.items) {
			return false
		}
		for i := range a.l.items {
			if !Identical(a.l.items[i], b.l.items[i]) {
				return false
			}
		}
		return true
	case DictKind:
		if a.d.Len() != b.d.Len() {
			return false
		}
		for i := range a.d.keys {
			if !Identical(a.d.keys[i], b.d.keys[i]) || !Identical(a.d.vals[i], b.d.vals[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Compare orders two values for <, <=, > and >=. Numbers order numerically,
// strings lexicographically by code point, lists lexicographically. Anything
// else is a TypeMismatch.
func Compare(a, b Value) (int, error) {
	fa, fb := familyOf(a.kind), familyOf(b.kind)
	if fa != fb {
		return 0, failure.Mismatch("compare", a.kind.String(), b.kind.String())
	}
	switch fa {
	case famNumber:
		if a.kind != FloatKind && b.kind != FloatKind {
			return cmp.Compare(a.AsInt(), b.AsInt()), nil
		}
		return cmp.Compare(a.AsFloat(), b.AsFloat()), nil
	case famString:
		return cmp.Compare(a.s, b.s), nil
	case famList:
		x, y := a.l.items, b.l.items
		for i := 0; i < len(x) && i < len(y); i++ {
			if Equal(x[i], y[i]) {
				continue
			}
			return Compare(x[i], y[i])
		}
		return cmp.Compare(len(x), len(y)), nil
	}
	return 0, failure.Mismatch("compare", a.kind.String(), b.kind.String())
}

// Truthy applies host truthiness: None, False, zero, and empty strings,
// lists and dicts are false.
func Truthy(v Value) bool {
	switch v.kind {
	case BoolKind:
		return v.b
	case IntKind:
		return v.i != 0
	case FloatKind:
		return v.f != 0
	case StringKind:
		return v.s != ""
	case ListKind:
		return len(v.l.items) > 0
	case DictKind:
		return v.d.Len() > 0
	}
	return false
}

// Copy returns a deep copy of aggregates. Scalars are returned unchanged.
func Copy(v Value) Value {
	switch v.kind {
	case ListKind:
		out := &List{items: make([]Value, len(v.l.items))}
		for i, item := range v.l.items {
			out.items[i] = Copy(item)
		}
		return FromList(out)
	case DictKind:
		out := newDict()
		for i, k := range v.d.keys {
			_ = out.Set(k, Copy(v.d.vals[i]))
		}
		return FromDict(out)
	}
	return v
}

// ShallowCopy returns a new aggregate holding the same elements.
func ShallowCopy(v Value) Value {
	switch v.kind {
	case ListKind:
		return NewList(v.l.items...)
	case DictKind:
		out := newDict()
		for i, k := range v.d.keys {
			_ = out.Set(k, v.d.vals[i])
		}
		return FromDict(out)
	}
	return v
}

// Coerce converts v to kind k. Only widening along bool -> int -> float is
// defined; every other conversion, in particular between str and the
// numeric kinds, is a TypeMismatch.
func Coerce(v Value, k Kind) (Value, error) {
	if v.kind == k {
		return v, nil
	}
	switch {
	case v.kind == BoolKind && k == IntKind:
		return Int(v.AsInt()), nil
	case (v.kind == BoolKind || v.kind == IntKind) && k == FloatKind:
		return Float(v.AsFloat()), nil
	}
	return None, &failure.Error{
		Kind:  failure.TypeMismatch,
		Op:    "coerce",
		Kinds: []string{v.kind.String(), k.String()},
		Msg:   "no implicit conversion",
	}
}
