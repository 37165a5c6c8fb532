// Package failure defines the error taxonomy shared by the compiler, the
// primitive registry and the evaluator.
//
// Every failure is a *Error carrying a Kind. Callers test for a category
// with errors.Is against the exported sentinels:
//
//	if errors.Is(err, failure.ErrTypeMismatch) { ... }
//
// and use errors.As to reach the offending primitive, value kinds and
// source position.
package failure

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/execgraph/internal/ast"
)

// Kind classifies a failure.
type Kind int

const (
	// UnsupportedConstruct is raised at compile time for syntax outside the
	// translatable subset.
	UnsupportedConstruct Kind = iota + 1
	// UnboundName is raised at compile time for a name with no visible binding.
	UnboundName
	// UnknownPrimitive means a graph references a primitive the registry
	// does not know. Always an internal consistency failure.
	UnknownPrimitive
	// TypeMismatch is raised when an operation receives a value kind it
	// cannot handle or coerce.
	TypeMismatch
	// KeyError is raised on mapping lookup of an absent key.
	KeyError
	// IndexError is raised on out-of-range sequence access.
	IndexError
	// ArityMismatch is raised when a primitive or compiled function receives
	// the wrong number of inputs.
	ArityMismatch
	// ZeroDivision is raised on division or modulo by zero.
	ZeroDivision
	// ValueError is raised by explicit conversions given a well-typed but
	// unparsable value, e.g. int("abc").
	ValueError
	// LimitExceeded is raised when a loop exceeds the configured iteration bound.
	LimitExceeded
)

var kindNames = map[Kind]string{
	UnsupportedConstruct: "UnsupportedConstruct",
	UnboundName:          "UnboundName",
	UnknownPrimitive:     "UnknownPrimitive",
	TypeMismatch:         "TypeMismatch",
	KeyError:             "KeyError",
	IndexError:           "IndexError",
	ArityMismatch:        "ArityMismatch",
	ZeroDivision:         "ZeroDivision",
	ValueError:           "ValueError",
	LimitExceeded:        "LimitExceeded",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a kind name (as printed by String) back to its Kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if strings.EqualFold(n, name) {
			return k, true
		}
	}
	return 0, false
}

// CompileTime reports whether failures of this kind are produced by the compiler.
func (k Kind) CompileTime() bool {
	return k == UnsupportedConstruct || k == UnboundName
}

// Sentinels for errors.Is.
var (
	ErrUnsupportedConstruct = &Error{Kind: UnsupportedConstruct}
	ErrUnboundName          = &Error{Kind: UnboundName}
	ErrUnknownPrimitive     = &Error{Kind: UnknownPrimitive}
	ErrTypeMismatch         = &Error{Kind: TypeMismatch}
	ErrKeyError             = &Error{Kind: KeyError}
	ErrIndexError           = &Error{Kind: IndexError}
	ErrArityMismatch        = &Error{Kind: ArityMismatch}
	ErrZeroDivision         = &Error{Kind: ZeroDivision}
	ErrValueError           = &Error{Kind: ValueError}
	ErrLimitExceeded        = &Error{Kind: LimitExceeded}
)

// Error is the concrete failure type.
type Error struct {
	Kind Kind
	// Op names the primitive or construct involved, if any.
	Op string
	// Kinds lists the value kinds that triggered a TypeMismatch.
	Kinds []string
	// Pos is the source position, when known.
	Pos ast.Pos
	Msg string
	// Err is an optional underlying cause.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Pos.IsValid() {
		fmt.Fprintf(&b, " at %s", e.Pos)
	}
	if e.Op != "" {
		fmt.Fprintf(&b, " in %s", e.Op)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if len(e.Kinds) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(e.Kinds, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Is matches any *Error of the same Kind, which makes the sentinels work.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// At returns an *Error of the given kind at a source position.
func At(kind Kind, pos ast.Pos, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Mismatch builds a TypeMismatch for an operation and the kinds it received.
func Mismatch(op string, kinds ...string) *Error {
	return &Error{Kind: TypeMismatch, Op: op, Kinds: kinds, Msg: "unsupported operand kinds"}
}

// Annotate fills in the operation and position of err when it is an *Error
// that does not carry them yet. Other errors are returned unchanged.
func Annotate(err error, op string, pos ast.Pos) error {
	fe, ok := err.(*Error)
	if !ok {
		return err
	}
	if fe.Op != "" && fe.Pos.IsValid() {
		return err
	}
	cp := *fe
	if cp.Op == "" {
		cp.Op = op
	}
	if !cp.Pos.IsValid() {
		cp.Pos = pos
	}
	return &cp
}

// WithOp fills in the operation of err when it is an *Error without one.
func WithOp(err error, op string) error {
	return Annotate(err, op, ast.Pos{})
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}
