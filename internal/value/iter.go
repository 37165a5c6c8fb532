package value

import "github.com/vk/execgraph/internal/failure"

// Iterate returns a snapshot of the items a for loop visits: list
// elements, the characters of a string, or the keys of a dict.
func Iterate(v Value) ([]Value, error) {
	switch v.kind {
	case ListKind:
		return v.l.Items(), nil
	case StringKind:
		out := make([]Value, 0, len(v.s))
		for _, r := range v.s {
			out = append(out, String(string(r)))
		}
		return out, nil
	case DictKind:
		return v.d.Keys(), nil
	}
	return nil, failure.Mismatch("iterate", v.kind.String())
}
