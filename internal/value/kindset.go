package value

import "strings"

// KindSet is a set of kinds. The empty set means "any kind".
type KindSet uint16

// Common sets used by primitive descriptors.
var (
	Any       KindSet
	Numeric   = KindsOf(BoolKind, IntKind, FloatKind)
	Integral  = KindsOf(BoolKind, IntKind)
	Sequence  = KindsOf(StringKind, ListKind)
	Container = KindsOf(StringKind, ListKind, DictKind)
	Hashables = KindsOf(NilKind, BoolKind, IntKind, FloatKind, StringKind)
)

// KindsOf builds a set from kinds.
func KindsOf(kinds ...Kind) KindSet {
	var s KindSet
	for _, k := range kinds {
		s |= 1 << k
	}
	return s
}

// Has reports whether k is a member. The empty set contains every kind.
func (s KindSet) Has(k Kind) bool {
	return s == 0 || s&(1<<k) != 0
}

func (s KindSet) String() string {
	if s == 0 {
		return "any"
	}
	var names []string
	for k := NilKind; k <= DictKind; k++ {
		if s&(1<<k) != 0 {
			names = append(names, k.String())
		}
	}
	return strings.Join(names, "|")
}
