package compiler

import (
	"slices"

	"github.com/vk/execgraph/internal/ast"
	"github.com/vk/execgraph/internal/failure"
	"github.com/vk/execgraph/internal/graph"
)

// stmts lowers a statement list in the current scope. Statements that produce
// no node, such as pass, are dropped.
func (st *state) stmts(list []ast.Stmt) ([]graph.NodeID, error) {
	ids := make([]graph.NodeID, 0, len(list))
	for _, s := range list {
		id, ok, err := st.stmt(s)
		if err != nil {
			return nil, err
		}
		if ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// block lowers list into a Block node that opens its own scope. Names
// declared inside are invisible once the block is closed.
func (st *state) block(list []ast.Stmt, pos ast.Pos, pre func()) (graph.NodeID, error) {
	f := st.push()
	defer st.pop()
	if pre != nil {
		pre()
	}
	ids, err := st.stmts(list)
	if err != nil {
		return 0, err
	}
	return st.b.Add(graph.Node{Op: graph.Block, Inputs: ids, Scope: f.scope, Pos: pos}), nil
}

func (st *state) stmt(s ast.Stmt) (graph.NodeID, bool, error) {
	var (
		id  graph.NodeID
		err error
	)
	switch s := s.(type) {
	case *ast.Pass:
		return 0, false, nil
	case *ast.Assign:
		id, err = st.assign(s)
	case *ast.SetItem:
		id, err = st.invoke("__setitem", []ast.Expr{s.Container, s.Key, s.Value}, s.Pos)
	case *ast.AugAssign:
		id, err = st.augAssign(s)
	case *ast.ExprStmt:
		id, err = st.expr(s.X)
	case *ast.If:
		id, err = st.ifStmt(s)
	case *ast.While:
		id, err = st.while(s)
	case *ast.For:
		id, err = st.forEach(s)
	case *ast.Return:
		id, err = st.ret(s)
	case *ast.Break:
		id, err = st.jump("break", graph.Break, s.Pos)
	case *ast.Continue:
		id, err = st.jump("continue", graph.Continue, s.Pos)
	case nil:
		err = failure.New(failure.UnsupportedConstruct, "missing statement")
	default:
		err = failure.At(failure.UnsupportedConstruct, s.Position(), "unsupported statement %T", s)
	}
	return id, err == nil, err
}

// assign lowers a binding. The value is lowered before the target is
// declared, so x = x + 1 with no earlier x fails with UnboundName.
func (st *state) assign(s *ast.Assign) (graph.NodeID, error) {
	form := "store"
	if s.Define {
		form = "define"
	}
	if err := st.control(form, s.Pos); err != nil {
		return 0, err
	}
	val, err := st.expr(s.Value)
	if err != nil {
		return 0, err
	}
	ref, ok := st.resolve(s.Target)
	if s.Define || !ok {
		ref = st.declare(s.Target)
	}
	return st.b.Add(graph.Node{Op: graph.Bind, Inputs: []graph.NodeID{val}, Name: s.Target, Slot: &ref, Pos: s.Pos}), nil
}

func (st *state) augAssign(s *ast.AugAssign) (graph.NodeID, error) {
	opName, ok := binaryPrims[s.Op]
	if !ok {
		return 0, failure.At(failure.UnsupportedConstruct, s.Pos, "unsupported operator %d", int(s.Op))
	}
	if name, ok := inplacePrims[s.Op]; ok && st.reg.Has(name) {
		opName = name
	}
	switch t := s.Target.(type) {
	case *ast.Name:
		if err := st.control("store", s.Pos); err != nil {
			return 0, err
		}
		ref, ok := st.resolve(t.ID)
		if !ok {
			return 0, failure.At(failure.UnboundName, t.Pos, "name %q is not defined", t.ID)
		}
		// The operand is loaded rather than targeted through its slot, so a
		// scalar on the left is rebound and a list is updated where it lives.
		d, err := st.primitive(opName, 2, s.Pos)
		if err != nil {
			return 0, err
		}
		ins, err := st.exprs([]ast.Expr{t, s.Value})
		if err != nil {
			return 0, err
		}
		val := st.b.Invoke(d, graph.Node{Inputs: ins, Pos: s.Pos})
		return st.b.Add(graph.Node{Op: graph.Bind, Inputs: []graph.NodeID{val}, Name: t.ID, Slot: &ref, Pos: s.Pos}), nil

	case *ast.Subscript:
		// The container and key nodes feed both the read and the write.
		if !pure(t.X) || !pure(t.Index) {
			return 0, failure.At(failure.UnsupportedConstruct, s.Pos, "augmented assignment to a subscript needs a side-effect free container and key")
		}
		get, err := st.primitive("__getitem", 2, s.Pos)
		if err != nil {
			return 0, err
		}
		op, err := st.primitive(opName, 2, s.Pos)
		if err != nil {
			return 0, err
		}
		set, err := st.primitive("__setitem", 3, s.Pos)
		if err != nil {
			return 0, err
		}
		ins, err := st.exprs([]ast.Expr{t.X, t.Index})
		if err != nil {
			return 0, err
		}
		cur := st.b.Invoke(get, graph.Node{Inputs: ins, Pos: t.Pos})
		rhs, err := st.expr(s.Value)
		if err != nil {
			return 0, err
		}
		sum := st.b.Invoke(op, graph.Node{Inputs: []graph.NodeID{cur, rhs}, Pos: s.Pos})
		n := graph.Node{Inputs: []graph.NodeID{ins[0], ins[1], sum}, Pos: s.Pos}
		if name, ok := t.X.(*ast.Name); ok {
			ref, _ := st.resolve(name.ID)
			n.Name, n.Slot = name.ID, &ref
		}
		return st.b.Invoke(set, n), nil
	}
	return 0, failure.At(failure.UnsupportedConstruct, s.Pos, "unsupported augmented assignment target %T", s.Target)
}

// ifStmt lowers a conditional. Names both arms assign, and which are not yet
// visible, are declared in the enclosing scope so they stay bound after the
// statement.
func (st *state) ifStmt(s *ast.If) (graph.NodeID, error) {
	if err := st.control("if", s.Pos); err != nil {
		return 0, err
	}
	cond, err := st.expr(s.Cond)
	if err != nil {
		return 0, err
	}
	if len(s.Else) > 0 {
		elseNames := assigned(s.Else)
		var both []string
		for name := range assigned(s.Then) {
			if _, visible := st.resolve(name); elseNames[name] && !visible {
				both = append(both, name)
			}
		}
		slices.Sort(both)
		for _, name := range both {
			st.declare(name)
		}
	}

	then, err := st.block(s.Then, s.Pos, nil)
	if err != nil {
		return 0, err
	}
	ins := []graph.NodeID{cond, then}
	if len(s.Else) > 0 {
		els, err := st.block(s.Else, s.Pos, nil)
		if err != nil {
			return 0, err
		}
		ins = append(ins, els)
	}
	return st.b.Add(graph.Node{Op: graph.Branch, Inputs: ins, Pos: s.Pos}), nil
}

func (st *state) while(s *ast.While) (graph.NodeID, error) {
	if err := st.control("while", s.Pos); err != nil {
		return 0, err
	}
	cond, err := st.expr(s.Cond)
	if err != nil {
		return 0, err
	}
	st.loops++
	body, err := st.block(s.Body, s.Pos, nil)
	st.loops--
	if err != nil {
		return 0, err
	}
	return st.b.Add(graph.Node{Op: graph.Loop, Inputs: []graph.NodeID{cond, body}, Pos: s.Pos}), nil
}

// forEach lowers a for loop. The loop variable takes slot 0 of the body
// scope, which the evaluator opens afresh for every item.
func (st *state) forEach(s *ast.For) (graph.NodeID, error) {
	if err := st.control("for_each", s.Pos); err != nil {
		return 0, err
	}
	iter, err := st.expr(s.Iter)
	if err != nil {
		return 0, err
	}
	st.loops++
	body, err := st.block(s.Body, s.Pos, func() { st.declare(s.Var) })
	st.loops--
	if err != nil {
		return 0, err
	}
	return st.b.Add(graph.Node{
		Op:     graph.ForEach,
		Inputs: []graph.NodeID{iter, body},
		Name:   s.Var,
		Slot:   &graph.SlotRef{Depth: 0, Index: 0},
		Pos:    s.Pos,
	}), nil
}

func (st *state) ret(s *ast.Return) (graph.NodeID, error) {
	if err := st.control("return", s.Pos); err != nil {
		return 0, err
	}
	n := graph.Node{Op: graph.Return, Pos: s.Pos}
	if s.Value != nil {
		v, err := st.expr(s.Value)
		if err != nil {
			return 0, err
		}
		n.Inputs = []graph.NodeID{v}
	}
	return st.b.Add(n), nil
}

func (st *state) jump(form string, op graph.Op, pos ast.Pos) (graph.NodeID, error) {
	if err := st.control(form, pos); err != nil {
		return 0, err
	}
	if st.loops == 0 {
		return 0, failure.At(failure.UnsupportedConstruct, pos, "'%s' outside loop", form)
	}
	return st.b.Add(graph.Node{Op: op, Pos: pos}), nil
}
