// Package ast defines the syntax tree of the translatable subset: the shape a
// captured function body has once a front-end has extracted it from the host
// language.
//
// The tree mirrors the host's own syntax closely (assignment, subscript
// assignment, if/while/for, return, calls, operators, list and dict
// displays) so that front-ends stay thin. Nothing here knows about graphs
// or values; the compiler package owns the lowering.
package ast

import "fmt"

// Pos is a 1-based source position. The zero Pos means "unknown".
type Pos struct {
	File   string
	Line   int
	Column int
}

// IsValid reports whether the position carries a line number.
func (p Pos) IsValid() bool { return p.Line > 0 }

func (p Pos) String() string {
	if !p.IsValid() {
		return "-"
	}
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Node is implemented by every syntax tree node.
type Node interface {
	Position() Pos
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Function is a captured function definition.
type Function struct {
	Name   string
	Params []string
	Body   []Stmt
	Pos    Pos
}

func (f *Function) Position() Pos { return f.Pos }

// ---------------------------------------------------------------------------
// Operators

// BinaryOp is an arithmetic operator.
type BinaryOp int

const (
	Add BinaryOp = iota + 1
	Sub
	Mul
	Div
	FloorDiv
	Mod
	Pow
)

// UnaryOp is a prefix operator.
type UnaryOp int

const (
	Neg UnaryOp = iota + 1
	Plus
	Not
)

// CompareOp is a comparison operator.
type CompareOp int

const (
	Eq CompareOp = iota + 1
	NotEq
	Lt
	LtE
	Gt
	GtE
	In
	NotIn
	Is
	IsNot
)

// BoolOpKind is a short-circuit boolean operator.
type BoolOpKind int

const (
	And BoolOpKind = iota + 1
	Or
)

var binarySymbols = map[BinaryOp]string{Add: "+", Sub: "-", Mul: "*", Div: "/", FloorDiv: "//", Mod: "%", Pow: "**"}
var unarySymbols = map[UnaryOp]string{Neg: "-", Plus: "+", Not: "not "}
var compareSymbols = map[CompareOp]string{
	Eq: "==", NotEq: "!=", Lt: "<", LtE: "<=", Gt: ">", GtE: ">=",
	In: "in", NotIn: "not in", Is: "is", IsNot: "is not",
}

func (op BinaryOp) String() string  { return binarySymbols[op] }
func (op UnaryOp) String() string   { return unarySymbols[op] }
func (op CompareOp) String() string { return compareSymbols[op] }

func (op BoolOpKind) String() string {
	if op == And {
		return "and"
	}
	return "or"
}

// ---------------------------------------------------------------------------
// Expressions

// Const is a literal. Value is one of nil, bool, int64, float64 or string.
type Const struct {
	Value any
	Pos   Pos
}

// Name is a variable reference.
type Name struct {
	ID  string
	Pos Pos
}

// Call invokes a named primitive, e.g. list(1) or len(x).
type Call struct {
	Func string
	Args []Expr
	Pos  Pos
}

// MethodCall invokes a method on a receiver, e.g. data.get("k").
type MethodCall struct {
	Recv   Expr
	Method string
	Args   []Expr
	Pos    Pos
}

// Binary is an arithmetic expression.
type Binary struct {
	Op          BinaryOp
	Left, Right Expr
	Pos         Pos
}

// Unary is a prefix expression.
type Unary struct {
	Op  UnaryOp
	X   Expr
	Pos Pos
}

// Compare is a single (non-chained) comparison.
type Compare struct {
	Op          CompareOp
	Left, Right Expr
	Pos         Pos
}

// BoolOp is a short-circuit chain such as a and b and c.
type BoolOp struct {
	Op     BoolOpKind
	Values []Expr
	Pos    Pos
}

// IfExp is a conditional expression: Then if Cond else Else.
type IfExp struct {
	Cond, Then, Else Expr
	Pos              Pos
}

// Subscript is x[index].
type Subscript struct {
	X     Expr
	Index Expr
	Pos   Pos
}

// Slice is x[lo:hi:step]; any bound may be nil.
type Slice struct {
	X            Expr
	Lo, Hi, Step Expr
	Pos          Pos
}

// ListLit is a list display [a, b].
type ListLit struct {
	Elts []Expr
	Pos  Pos
}

// DictLit is a dict display {k: v}. Keys and Values have equal length.
type DictLit struct {
	Keys   []Expr
	Values []Expr
	Pos    Pos
}

func (e *Const) Position() Pos      { return e.Pos }
func (e *Name) Position() Pos       { return e.Pos }
func (e *Call) Position() Pos       { return e.Pos }
func (e *MethodCall) Position() Pos { return e.Pos }
func (e *Binary) Position() Pos     { return e.Pos }
func (e *Unary) Position() Pos      { return e.Pos }
func (e *Compare) Position() Pos    { return e.Pos }
func (e *BoolOp) Position() Pos     { return e.Pos }
func (e *IfExp) Position() Pos      { return e.Pos }
func (e *Subscript) Position() Pos  { return e.Pos }
func (e *Slice) Position() Pos      { return e.Pos }
func (e *ListLit) Position() Pos    { return e.Pos }
func (e *DictLit) Position() Pos    { return e.Pos }

func (*Const) exprNode()      {}
func (*Name) exprNode()       {}
func (*Call) exprNode()       {}
func (*MethodCall) exprNode() {}
func (*Binary) exprNode()     {}
func (*Unary) exprNode()      {}
func (*Compare) exprNode()    {}
func (*BoolOp) exprNode()     {}
func (*IfExp) exprNode()      {}
func (*Subscript) exprNode()  {}
func (*Slice) exprNode()      {}
func (*ListLit) exprNode()    {}
func (*DictLit) exprNode()    {}

// ---------------------------------------------------------------------------
// Statements

// Assign binds Value to the name Target. With Define set the name is always
// declared in the current scope, shadowing any outer binding; otherwise the
// nearest existing binding is updated and a new one is declared only when
// none exists.
type Assign struct {
	Target string
	Value  Expr
	Define bool
	Pos    Pos
}

// SetItem is container[key] = value. The container is mutated in place.
type SetItem struct {
	Container Expr
	Key       Expr
	Value     Expr
	Pos       Pos
}

// AugAssign is target op= value where target is a Name or a Subscript.
type AugAssign struct {
	Target Expr
	Op     BinaryOp
	Value  Expr
	Pos    Pos
}

// ExprStmt evaluates an expression for its side effects.
type ExprStmt struct {
	X   Expr
	Pos Pos
}

// If is a conditional statement. Else may be empty.
type If struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
	Pos  Pos
}

// While loops while Cond is truthy.
type While struct {
	Cond Expr
	Body []Stmt
	Pos  Pos
}

// For iterates Var over the items of Iter.
type For struct {
	Var  string
	Iter Expr
	Body []Stmt
	Pos  Pos
}

// Return leaves the function. A nil Value returns None.
type Return struct {
	Value Expr
	Pos   Pos
}

// Break leaves the innermost loop.
type Break struct{ Pos Pos }

// Continue starts the next iteration of the innermost loop.
type Continue struct{ Pos Pos }

// Pass does nothing.
type Pass struct{ Pos Pos }

func (s *Assign) Position() Pos    { return s.Pos }
func (s *SetItem) Position() Pos   { return s.Pos }
func (s *AugAssign) Position() Pos { return s.Pos }
func (s *ExprStmt) Position() Pos  { return s.Pos }
func (s *If) Position() Pos        { return s.Pos }
func (s *While) Position() Pos     { return s.Pos }
func (s *For) Position() Pos       { return s.Pos }
func (s *Return) Position() Pos    { return s.Pos }
func (s *Break) Position() Pos     { return s.Pos }
func (s *Continue) Position() Pos  { return s.Pos }
func (s *Pass) Position() Pos      { return s.Pos }

func (*Assign) stmtNode()    {}
func (*SetItem) stmtNode()   {}
func (*AugAssign) stmtNode() {}
func (*ExprStmt) stmtNode()  {}
func (*If) stmtNode()        {}
func (*While) stmtNode()     {}
func (*For) stmtNode()       {}
func (*Return) stmtNode()    {}
func (*Break) stmtNode()     {}
func (*Continue) stmtNode()  {}
func (*Pass) stmtNode()      {}
