package value

import (
	"math"
	"strings"

	"github.com/vk/execgraph/internal/failure"
)

// Arithmetic follows host rules: bool and int combine to int, any float
// operand widens the operation to float, and true division always yields a
// float. Integers are 64-bit; results that do not fit fail with ValueError.

func bothInts(a, b Value) bool {
	return (a.kind == IntKind || a.kind == BoolKind) && (b.kind == IntKind || b.kind == BoolKind)
}

func bothNumbers(a, b Value) bool { return a.kind.Numeric() && b.kind.Numeric() }

func overflow(op string) error {
	return &failure.Error{Kind: failure.ValueError, Op: op, Msg: "integer overflow"}
}

func zeroDivision(op, msg string) error {
	return &failure.Error{Kind: failure.ZeroDivision, Op: op, Msg: msg}
}

// Add implements +: numbers, string concatenation and list concatenation.
func Add(a, b Value) (Value, error) {
	switch {
	case bothInts(a, b):
		x, y := a.AsInt(), b.AsInt()
		s := x + y
		if (s > x) != (y > 0) {
			return None, overflow("__add")
		}
		return Int(s), nil
	case bothNumbers(a, b):
		return Float(a.AsFloat() + b.AsFloat()), nil
	case a.kind == StringKind && b.kind == StringKind:
		if err := CheckLength("__add", uint64(len(a.s))+uint64(len(b.s))); err != nil {
			return None, err
		}
		return String(a.s + b.s), nil
	case a.kind == ListKind && b.kind == ListKind:
		if err := CheckLength("__add", uint64(len(a.l.items))+uint64(len(b.l.items))); err != nil {
			return None, err
		}
		out := &List{items: make([]Value, 0, len(a.l.items)+len(b.l.items))}
		out.items = append(out.items, a.l.items...)
		out.items = append(out.items, b.l.items...)
		return FromList(out), nil
	}
	return None, failure.Mismatch("__add", Kinds(a, b)...)
}

// IAdd implements +=. A list on the left is extended in place with the
// items of the right operand and returned; other kinds behave as Add.
func IAdd(a, b Value) (Value, error) {
	if a.kind != ListKind {
		return Add(a, b)
	}
	items, err := Iterate(b)
	if err != nil {
		return None, failure.Mismatch("__iadd", Kinds(a, b)...)
	}
	if err := CheckLength("__iadd", uint64(len(a.l.items))+uint64(len(items))); err != nil {
		return None, err
	}
	a.l.Extend(items...)
	return a, nil
}

// IMul implements *=. A list on the left is repeated in place and returned;
// other kinds behave as Mul.
func IMul(a, b Value) (Value, error) {
	if a.kind != ListKind {
		return Mul(a, b)
	}
	if b.kind != IntKind && b.kind != BoolKind {
		return None, failure.Mismatch("__imul", Kinds(a, b)...)
	}
	total, err := repeatCount("__imul", len(a.l.items), b.AsInt())
	if err != nil {
		return None, err
	}
	if total == 0 {
		a.l.Clear()
		return a, nil
	}
	orig := a.l.items
	items := make([]Value, 0, total)
	for len(items) < total {
		items = append(items, orig...)
	}
	a.l.items = items
	return a, nil
}

// Sub implements binary -.
func Sub(a, b Value) (Value, error) {
	switch {
	case bothInts(a, b):
		x, y := a.AsInt(), b.AsInt()
		s := x - y
		if (s < x) != (y > 0) {
			return None, overflow("__sub")
		}
		return Int(s), nil
	case bothNumbers(a, b):
		return Float(a.AsFloat() - b.AsFloat()), nil
	}
	return None, failure.Mismatch("__sub", Kinds(a, b)...)
}

func mulInt(x, y int64) (int64, bool) {
	if x == 0 || y == 0 {
		return 0, true
	}
	p := x * y
	if p/y != x || (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) {
		return 0, false
	}
	return p, true
}

// Mul implements *: numbers and repetition of strings and lists.
func Mul(a, b Value) (Value, error) {
	switch {
	case bothInts(a, b):
		p, ok := mulInt(a.AsInt(), b.AsInt())
		if !ok {
			return None, overflow("__mul")
		}
		return Int(p), nil
	case bothNumbers(a, b):
		return Float(a.AsFloat() * b.AsFloat()), nil
	}
	seq, n := a, b
	if a.kind == IntKind || a.kind == BoolKind {
		seq, n = b, a
	}
	if n.kind != IntKind && n.kind != BoolKind {
		return None, failure.Mismatch("__mul", Kinds(a, b)...)
	}
	switch seq.kind {
	case StringKind:
		total, err := repeatCount("__mul", len(seq.s), n.AsInt())
		if err != nil {
			return None, err
		}
		if total == 0 {
			return String(""), nil
		}
		return String(strings.Repeat(seq.s, total/len(seq.s))), nil
	case ListKind:
		total, err := repeatCount("__mul", len(seq.l.items), n.AsInt())
		if err != nil {
			return None, err
		}
		out := &List{items: make([]Value, 0, total)}
		for len(out.items) < total {
			out.items = append(out.items, seq.l.items...)
		}
		return FromList(out), nil
	}
	return None, failure.Mismatch("__mul", Kinds(a, b)...)
}

// Div implements true division; the result is always a float.
func Div(a, b Value) (Value, error) {
	if !bothNumbers(a, b) {
		return None, failure.Mismatch("__div", Kinds(a, b)...)
	}
	if b.AsFloat() == 0 {
		return None, zeroDivision("__div", "division by zero")
	}
	return Float(a.AsFloat() / b.AsFloat()), nil
}

// FloorDiv implements //, rounding toward negative infinity.
func FloorDiv(a, b Value) (Value, error) {
	if !bothNumbers(a, b) {
		return None, failure.Mismatch("__floordiv", Kinds(a, b)...)
	}
	if bothInts(a, b) {
		x, y := a.AsInt(), b.AsInt()
		if y == 0 {
			return None, zeroDivision("__floordiv", "integer division by zero")
		}
		if x == math.MinInt64 && y == -1 {
			return None, overflow("__floordiv")
		}
		q := x / y
		if (x%y != 0) && ((x < 0) != (y < 0)) {
			q--
		}
		return Int(q), nil
	}
	if b.AsFloat() == 0 {
		return None, zeroDivision("__floordiv", "float floor division by zero")
	}
	return Float(math.Floor(a.AsFloat() / b.AsFloat())), nil
}

// Mod implements %, taking the sign of the divisor.
func Mod(a, b Value) (Value, error) {
	if !bothNumbers(a, b) {
		return None, failure.Mismatch("__mod", Kinds(a, b)...)
	}
	if bothInts(a, b) {
		x, y := a.AsInt(), b.AsInt()
		if y == 0 {
			return None, zeroDivision("__mod", "integer modulo by zero")
		}
		if y == -1 {
			return Int(0), nil
		}
		r := x % y
		if r != 0 && (r < 0) != (y < 0) {
			r += y
		}
		return Int(r), nil
	}
	x, y := a.AsFloat(), b.AsFloat()
	if y == 0 {
		return None, zeroDivision("__mod", "float modulo")
	}
	r := math.Mod(x, y)
	switch {
	case r == 0:
		r = math.Copysign(0, y)
	case (r < 0) != (y < 0):
		r += y
	}
	return Float(r), nil
}

// Pow implements **. A negative integer exponent yields a float.
func Pow(a, b Value) (Value, error) {
	if !bothNumbers(a, b) {
		return None, failure.Mismatch("__pow", Kinds(a, b)...)
	}
	if bothInts(a, b) && b.AsInt() >= 0 {
		return powInt(a.AsInt(), b.AsInt())
	}
	x, y := a.AsFloat(), b.AsFloat()
	if x == 0 && y < 0 {
		return None, zeroDivision("__pow", "0.0 cannot be raised to a negative power")
	}
	if x < 0 && y != math.Trunc(y) {
		return None, &failure.Error{Kind: failure.ValueError, Op: "__pow", Msg: "negative number raised to a fractional power"}
	}
	return Float(math.Pow(x, y)), nil
}

func powInt(base, exp int64) (Value, error) {
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			r, ok := mulInt(result, base)
			if !ok {
				return None, overflow("__pow")
			}
			result = r
		}
		exp >>= 1
		if exp > 0 {
			sq, ok := mulInt(base, base)
			if !ok {
				return None, overflow("__pow")
			}
			base = sq
		}
	}
	return Int(result), nil
}

// Neg implements unary -.
func Neg(v Value) (Value, error) {
	switch v.kind {
	case BoolKind, IntKind:
		if v.AsInt() == math.MinInt64 {
			return None, overflow("__neg")
		}
		return Int(-v.AsInt()), nil
	case FloatKind:
		return Float(-v.f), nil
	}
	return None, failure.Mismatch("__neg", v.kind.String())
}

// Pos implements unary +.
func Pos(v Value) (Value, error) {
	switch v.kind {
	case BoolKind, IntKind:
		return Int(v.AsInt()), nil
	case FloatKind:
		return v, nil
	}
	return None, failure.Mismatch("__pos", v.kind.String())
}

// Abs returns the absolute value of a number.
func Abs(v Value) (Value, error) {
	switch v.kind {
	case BoolKind, IntKind:
		i := v.AsInt()
		if i == math.MinInt64 {
			return None, overflow("abs")
		}
		if i < 0 {
			i = -i
		}
		return Int(i), nil
	case FloatKind:
		return Float(math.Abs(v.f)), nil
	}
	return None, failure.Mismatch("abs", v.kind.String())
}

// Len returns the length of a string (in code points), list or dict.
func Len(v Value) (int64, error) {
	switch v.kind {
	case StringKind:
		return int64(len([]rune(v.s))), nil
	case ListKind:
		return int64(len(v.l.items)), nil
	case DictKind:
		return int64(v.d.Len()), nil
	}
	return 0, failure.Mismatch("len", v.kind.String())
}
