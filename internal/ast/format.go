package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders a function in a canonical, host-like textual form. Source
// positions are not part of the output, so two trees that differ only in
// layout format identically. The compiler cache keys artifacts on it.
func Format(fn *Function) string {
	var p printer
	fmt.Fprintf(&p.b, "def %s(%s):\n", fn.Name, strings.Join(fn.Params, ", "))
	p.block(fn.Body, 1)
	return p.b.String()
}

// FormatExpr renders a single expression.
func FormatExpr(e Expr) string {
	var p printer
	p.expr(e)
	return p.b.String()
}

type printer struct {
	b strings.Builder
}

func (p *printer) indent(depth int) {
	p.b.WriteString(strings.Repeat("    ", depth))
}

func (p *printer) block(stmts []Stmt, depth int) {
	if len(stmts) == 0 {
		p.indent(depth)
		p.b.WriteString("pass\n")
		return
	}
	for _, s := range stmts {
		p.stmt(s, depth)
	}
}

func (p *printer) stmt(s Stmt, depth int) {
	p.indent(depth)
	switch s := s.(type) {
	case *Assign:
		if s.Define {
			p.b.WriteString("let ")
		}
		p.b.WriteString(s.Target)
		p.b.WriteString(" = ")
		p.expr(s.Value)
		p.b.WriteByte('\n')
	case *SetItem:
		p.expr(s.Container)
		p.b.WriteByte('[')
		p.expr(s.Key)
		p.b.WriteString("] = ")
		p.expr(s.Value)
		p.b.WriteByte('\n')
	case *AugAssign:
		p.expr(s.Target)
		fmt.Fprintf(&p.b, " %s= ", s.Op)
		p.expr(s.Value)
		p.b.WriteByte('\n')
	case *ExprStmt:
		p.expr(s.X)
		p.b.WriteByte('\n')
	case *If:
		p.b.WriteString("if ")
		p.expr(s.Cond)
		p.b.WriteString(":\n")
		p.block(s.Then, depth+1)
		if len(s.Else) > 0 {
			p.indent(depth)
			p.b.WriteString("else:\n")
			p.block(s.Else, depth+1)
		}
	case *While:
		p.b.WriteString("while ")
		p.expr(s.Cond)
		p.b.WriteString(":\n")
		p.block(s.Body, depth+1)
	case *For:
		fmt.Fprintf(&p.b, "for %s in ", s.Var)
		p.expr(s.Iter)
		p.b.WriteString(":\n")
		p.block(s.Body, depth+1)
	case *Return:
		p.b.WriteString("return")
		if s.Value != nil {
			p.b.WriteByte(' ')
			p.expr(s.Value)
		}
		p.b.WriteByte('\n')
	case *Break:
		p.b.WriteString("break\n")
	case *Continue:
		p.b.WriteString("continue\n")
	case *Pass:
		p.b.WriteString("pass\n")
	default:
		fmt.Fprintf(&p.b, "<%T>\n", s)
	}
}

func (p *printer) exprs(es []Expr) {
	for i, e := range es {
		if i > 0 {
			p.b.WriteString(", ")
		}
		p.expr(e)
	}
}

func (p *printer) expr(e Expr) {
	switch e := e.(type) {
	case nil:
		p.b.WriteString("None")
	case *Const:
		p.b.WriteString(FormatConst(e.Value))
	case *Name:
		p.b.WriteString(e.ID)
	case *Call:
		p.b.WriteString(e.Func)
		p.b.WriteByte('(')
		p.exprs(e.Args)
		p.b.WriteByte(')')
	case *MethodCall:
		p.expr(e.Recv)
		fmt.Fprintf(&p.b, ".%s(", e.Method)
		p.exprs(e.Args)
		p.b.WriteByte(')')
	case *Binary:
		p.b.WriteByte('(')
		p.expr(e.Left)
		fmt.Fprintf(&p.b, " %s ", e.Op)
		p.expr(e.Right)
		p.b.WriteByte(')')
	case *Unary:
		p.b.WriteByte('(')
		p.b.WriteString(e.Op.String())
		p.expr(e.X)
		p.b.WriteByte(')')
	case *Compare:
		p.b.WriteByte('(')
		p.expr(e.Left)
		fmt.Fprintf(&p.b, " %s ", e.Op)
		p.expr(e.Right)
		p.b.WriteByte(')')
	case *BoolOp:
		p.b.WriteByte('(')
		for i, v := range e.Values {
			if i > 0 {
				fmt.Fprintf(&p.b, " %s ", e.Op)
			}
			p.expr(v)
		}
		p.b.WriteByte(')')
	case *IfExp:
		p.b.WriteByte('(')
		p.expr(e.Then)
		p.b.WriteString(" if ")
		p.expr(e.Cond)
		p.b.WriteString(" else ")
		p.expr(e.Else)
		p.b.WriteByte(')')
	case *Subscript:
		p.expr(e.X)
		p.b.WriteByte('[')
		p.expr(e.Index)
		p.b.WriteByte(']')
	case *Slice:
		p.expr(e.X)
		p.b.WriteByte('[')
		p.optional(e.Lo)
		p.b.WriteByte(':')
		p.optional(e.Hi)
		if e.Step != nil {
			p.b.WriteByte(':')
			p.expr(e.Step)
		}
		p.b.WriteByte(']')
	case *ListLit:
		p.b.WriteByte('[')
		p.exprs(e.Elts)
		p.b.WriteByte(']')
	case *DictLit:
		p.b.WriteByte('{')
		for i := range e.Keys {
			if i > 0 {
				p.b.WriteString(", ")
			}
			p.expr(e.Keys[i])
			p.b.WriteString(": ")
			p.expr(e.Values[i])
		}
		p.b.WriteByte('}')
	default:
		fmt.Fprintf(&p.b, "<%T>", e)
	}
}

func (p *printer) optional(e Expr) {
	if e != nil {
		p.expr(e)
	}
}

// FormatConst renders a literal the way the host language spells it.
func FormatConst(v any) string {
	switch v := v.(type) {
	case nil:
		return "None"
	case bool:
		if v {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return FormatFloat(v)
	case string:
		return strconv.Quote(v)
	default:
		return fmt.Sprintf("<%T>", v)
	}
}

// FormatFloat renders a float so that integral values keep a trailing ".0".
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	switch s {
	case "+Inf":
		return "inf"
	case "-Inf":
		return "-inf"
	case "NaN":
		return "nan"
	}
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
