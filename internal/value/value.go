// Package value is the runtime data model of the engine: a tagged union over
// the host language's built-in kinds.
//
// Scalars (None, bool, int, float, str) are stored inline, so copying a Value
// copies the scalar. Lists and dicts are stored behind pointers, so copying a
// Value aliases the aggregate; this is how pass-by-object-reference reaches
// the caller. The zero Value is None.
package value

import (
	"fmt"
	"math"
)

// Kind is the explicit tag carried by every Value.
type Kind uint8

const (
	NilKind Kind = iota
	BoolKind
	IntKind
	FloatKind
	StringKind
	ListKind
	DictKind
)

var kindNames = [...]string{
	NilKind:    "NoneType",
	BoolKind:   "bool",
	IntKind:    "int",
	FloatKind:  "float",
	StringKind: "str",
	ListKind:   "list",
	DictKind:   "dict",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a kind name back to its Kind. It accepts the names printed
// by String plus a few aliases used in captured trees and wire payloads.
func ParseKind(name string) (Kind, bool) {
	switch name {
	case "NoneType", "none", "nil", "null":
		return NilKind, true
	case "bool", "boolean":
		return BoolKind, true
	case "int", "integer":
		return IntKind, true
	case "float":
		return FloatKind, true
	case "str", "string":
		return StringKind, true
	case "list", "sequence":
		return ListKind, true
	case "dict", "mapping":
		return DictKind, true
	}
	return 0, false
}

// Numeric reports whether k is bool, int or float.
func (k Kind) Numeric() bool { return k == BoolKind || k == IntKind || k == FloatKind }

// Aggregate reports whether k is a reference kind (list or dict).
func (k Kind) Aggregate() bool { return k == ListKind || k == DictKind }

// Value is a dynamically typed runtime value.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	l    *List
	d    *Dict
}

// None is the Nil value.
var None = Value{}

// True and False are the two booleans.
var (
	True  = Value{kind: BoolKind, b: true}
	False = Value{kind: BoolKind}
)

func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

func Int(i int64) Value     { return Value{kind: IntKind, i: i} }
func Float(f float64) Value { return Value{kind: FloatKind, f: f} }
func String(s string) Value { return Value{kind: StringKind, s: s} }

// NewList allocates a fresh list holding items.
func NewList(items ...Value) Value {
	l := &List{items: make([]Value, len(items))}
	copy(l.items, items)
	return Value{kind: ListKind, l: l}
}

// NewDict allocates a fresh, empty dict.
func NewDict() Value {
	return Value{kind: DictKind, d: newDict()}
}

// FromList wraps an existing list without copying it.
func FromList(l *List) Value { return Value{kind: ListKind, l: l} }

// FromDict wraps an existing dict without copying it.
func FromDict(d *Dict) Value { return Value{kind: DictKind, d: d} }

// Kind returns the value's tag.
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNil() bool { return v.kind == NilKind }

// AsBool returns the payload of a bool. It does not apply truthiness.
func (v Value) AsBool() bool { return v.b }

// AsInt returns the integer payload of a bool or int.
func (v Value) AsInt() int64 {
	if v.kind == BoolKind {
		if v.b {
			return 1
		}
		return 0
	}
	return v.i
}

// AsFloat returns the numeric payload of a bool, int or float widened to float64.
func (v Value) AsFloat() float64 {
	switch v.kind {
	case FloatKind:
		return v.f
	case IntKind, BoolKind:
		return float64(v.AsInt())
	}
	return math.NaN()
}

// Str returns the payload of a str.
func (v Value) Str() string { return v.s }

// List returns the list behind a list value, or nil.
func (v Value) List() *List { return v.l }

// Dict returns the dict behind a dict value, or nil.
func (v Value) Dict() *Dict { return v.d }

// Same reports identity in the sense of the host's "is": aggregates are the
// same allocation, scalars are equal with the same kind.
func Same(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case ListKind:
		return a.l == b.l
	case DictKind:
		return a.d == b.d
	}
	return Identical(a, b)
}

// Kinds returns the kind names of vs, for error reporting.
func Kinds(vs ...Value) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.kind.String()
	}
	return out
}
