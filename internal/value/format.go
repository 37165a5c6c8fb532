package value

import (
	"strconv"
	"strings"

	"github.com/vk/execgraph/internal/ast"
)

// String renders v like the host's repr.
func (v Value) String() string { return Repr(v) }

// Repr renders v like the host's repr: None, True, 42, 42.0, 'text',
// [1, 2], {'k': 'v'}. Self-referencing aggregates print as [...] or {...}.
func Repr(v Value) string {
	var b strings.Builder
	writeRepr(&b, v, map[any]bool{})
	return b.String()
}

// Display renders v like the host's str: strings are unquoted, everything
// else is rendered as Repr.
func Display(v Value) string {
	if v.kind == StringKind {
		return v.s
	}
	return Repr(v)
}

func writeRepr(b *strings.Builder, v Value, seen map[any]bool) {
	switch v.kind {
	case NilKind:
		b.WriteString("None")
	case BoolKind:
		if v.b {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case IntKind:
		b.WriteString(strconv.FormatInt(v.i, 10))
	case FloatKind:
		b.WriteString(ast.FormatFloat(v.f))
	case StringKind:
		b.WriteString(quote(v.s))
	case ListKind:
		if seen[v.l] {
			b.WriteString("[...]")
			return
		}
		seen[v.l] = true
		defer delete(seen, v.l)
		b.WriteByte('[')
		for i, item := range v.l.items {
			if i > 0 {
				b.WriteString(", ")
			}
			writeRepr(b, item, seen)
		}
		b.WriteByte(']')
	case DictKind:
		if seen[v.d] {
			b.WriteString("{...}")
			return
		}
		seen[v.d] = true
		defer delete(seen, v.d)
		b.WriteByte('{')
		for i, k := range v.d.keys {
			if i > 0 {
				b.WriteString(", ")
			}
			writeRepr(b, k, seen)
			b.WriteString(": ")
			writeRepr(b, v.d.vals[i], seen)
		}
		b.WriteByte('}')
	}
}

// quote mirrors the host's choice of quotes: single unless the text holds a
// single quote and no double quote.
func quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}
	var b strings.Builder
	b.WriteByte(q)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(q):
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\r':
			b.WriteString(`\r`)
		case r < 0x20 || r == 0x7f:
			b.WriteString(`\x`)
			b.WriteString(strconv.FormatInt(int64(r)|0x100, 16)[1:])
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}
