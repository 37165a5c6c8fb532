package value

import (
	"github.com/vk/execgraph/internal/failure"
)

// List is an ordered, growable sequence of values.
type List struct {
	items []Value
}

func (l *List) Len() int { return len(l.items) }

// Items returns a snapshot of the elements.
func (l *List) Items() []Value {
	out := make([]Value, len(l.items))
	copy(out, l.items)
	return out
}

// index resolves a host-style index (negative counts from the end).
func index(i int64, n int) (int, bool) {
	if i < 0 {
		i += int64(n)
	}
	if i < 0 || i >= int64(n) {
		return 0, false
	}
	return int(i), true
}

// Get returns the element at i.
func (l *List) Get(i int64) (Value, error) {
	idx, ok := index(i, len(l.items))
	if !ok {
		return None, failure.New(failure.IndexError, "list index %d out of range", i)
	}
	return l.items[idx], nil
}

// Set replaces the element at i.
func (l *List) Set(i int64, v Value) error {
	idx, ok := index(i, len(l.items))
	if !ok {
		return failure.New(failure.IndexError, "list assignment index %d out of range", i)
	}
	l.items[idx] = v
	return nil
}

func (l *List) Append(v Value) { l.items = append(l.items, v) }

func (l *List) Extend(vs ...Value) { l.items = append(l.items, vs...) }

// Insert places v before position i, clamping i to the list bounds.
func (l *List) Insert(i int64, v Value) {
	n := int64(len(l.items))
	if i < 0 {
		i += n
	}
	i = max(0, min(i, n))
	l.items = append(l.items, None)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = v
}

// Pop removes and returns the element at i.
func (l *List) Pop(i int64) (Value, error) {
	if len(l.items) == 0 {
		return None, failure.New(failure.IndexError, "pop from empty list")
	}
	idx, ok := index(i, len(l.items))
	if !ok {
		return None, failure.New(failure.IndexError, "pop index %d out of range", i)
	}
	v := l.items[idx]
	l.items = append(l.items[:idx], l.items[idx+1:]...)
	return v, nil
}

// Delete removes the element at i.
func (l *List) Delete(i int64) error {
	idx, ok := index(i, len(l.items))
	if !ok {
		return failure.New(failure.IndexError, "list assignment index %d out of range", i)
	}
	l.items = append(l.items[:idx], l.items[idx+1:]...)
	return nil
}

func (l *List) Clear() { l.items = nil }
