package value

import (
	"math"

	"github.com/vk/execgraph/internal/failure"
)

// Dict is an insertion-ordered mapping with unique hashable keys.
//
// Keys that compare numerically equal (1, 1.0 and True) address the same
// entry. The first key inserted is retained; later writes only replace the
// value, and the stored value keeps whatever kind it was written with.
type Dict struct {
	keys  []Value
	vals  []Value
	index map[hashKey]int
}

type hashKey struct {
	kind Kind
	i    int64
	f    float64
	s    string
}

func newDict() *Dict {
	return &Dict{index: make(map[hashKey]int)}
}

// Hashable reports whether v may be used as a dict key.
func Hashable(v Value) bool { return !v.kind.Aggregate() }

func keyOf(v Value) (hashKey, error) {
	switch v.kind {
	case NilKind:
		return hashKey{kind: NilKind}, nil
	case BoolKind, IntKind:
		return hashKey{kind: IntKind, i: v.AsInt()}, nil
	case FloatKind:
		if f := v.f; f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
			return hashKey{kind: IntKind, i: int64(f)}, nil
		}
		return hashKey{kind: FloatKind, f: v.f}, nil
	case StringKind:
		return hashKey{kind: StringKind, s: v.s}, nil
	}
	return hashKey{}, &failure.Error{
		Kind:  failure.TypeMismatch,
		Kinds: []string{v.kind.String()},
		Msg:   "unhashable key",
	}
}

func (d *Dict) Len() int { return len(d.keys) }

// Lookup returns the value stored under k.
func (d *Dict) Lookup(k Value) (Value, error) {
	hk, err := keyOf(k)
	if err != nil {
		return None, err
	}
	i, ok := d.index[hk]
	if !ok {
		return None, failure.New(failure.KeyError, "%s", Repr(k))
	}
	return d.vals[i], nil
}

// Has reports whether k is present.
func (d *Dict) Has(k Value) (bool, error) {
	hk, err := keyOf(k)
	if err != nil {
		return false, err
	}
	_, ok := d.index[hk]
	return ok, nil
}

// Set inserts or overwrites the entry for k.
func (d *Dict) Set(k, v Value) error {
	hk, err := keyOf(k)
	if err != nil {
		return err
	}
	if i, ok := d.index[hk]; ok {
		d.vals[i] = v
		return nil
	}
	d.index[hk] = len(d.keys)
	d.keys = append(d.keys, k)
	d.vals = append(d.vals, v)
	return nil
}

// Delete removes the entry for k.
func (d *Dict) Delete(k Value) error {
	_, err := d.Pop(k)
	return err
}

// Pop removes the entry for k and returns its value.
func (d *Dict) Pop(k Value) (Value, error) {
	hk, err := keyOf(k)
	if err != nil {
		return None, err
	}
	i, ok := d.index[hk]
	if !ok {
		return None, failure.New(failure.KeyError, "%s", Repr(k))
	}
	v := d.vals[i]
	d.keys = append(d.keys[:i], d.keys[i+1:]...)
	d.vals = append(d.vals[:i], d.vals[i+1:]...)
	delete(d.index, hk)
	for j := i; j < len(d.keys); j++ {
		moved, _ := keyOf(d.keys[j])
		d.index[moved] = j
	}
	return v, nil
}

// Keys returns a snapshot of the keys in insertion order.
func (d *Dict) Keys() []Value {
	out := make([]Value, len(d.keys))
	copy(out, d.keys)
	return out
}

// Values returns a snapshot of the values in insertion order.
func (d *Dict) Values() []Value {
	out := make([]Value, len(d.vals))
	copy(out, d.vals)
	return out
}

// Range calls fn for each entry in insertion order until fn returns false.
func (d *Dict) Range(fn func(k, v Value) bool) {
	for i := range d.keys {
		if !fn(d.keys[i], d.vals[i]) {
			return
		}
	}
}

func (d *Dict) Clear() {
	d.keys, d.vals = nil, nil
	clear(d.index)
}

// DictOf builds a fresh dict from alternating keys and values.
func DictOf(kv ...Value) (Value, error) {
	if len(kv)%2 != 0 {
		return None, failure.New(failure.ArityMismatch, "odd number of key/value inputs")
	}
	out := NewDict()
	for i := 0; i < len(kv); i += 2 {
		if err := out.d.Set(kv[i], kv[i+1]); err != nil {
			return None, err
		}
	}
	return out, nil
}
