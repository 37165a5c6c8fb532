// Package evaluator runs compiled execution graphs.
//
// Evaluation is a recursive walk from the root block. Expression nodes yield
// a value; statement nodes may additionally yield a control signal (return,
// break, continue) that unwinds to the enclosing loop or function. Signals
// are not errors: an error always aborts the whole invocation.
//
// Every primitive body runs through a backend.Backend. The evaluator waits
// for each Future before evaluating the next node, so results and side
// effects appear in source order regardless of where primitives run.
package evaluator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vk/execgraph/internal/backend"
	"github.com/vk/execgraph/internal/compiler"
	"github.com/vk/execgraph/internal/ctxlog"
	"github.com/vk/execgraph/internal/env"
	"github.com/vk/execgraph/internal/failure"
	"github.com/vk/execgraph/internal/graph"
	"github.com/vk/execgraph/internal/registry"
	"github.com/vk/execgraph/internal/value"
)

// Options configures an Evaluator.
type Options struct {
	// MaxIterations bounds the iterations of each loop execution. Zero
	// means unlimited.
	MaxIterations int
	// Backend runs primitives. Nil means backend.Local.
	Backend backend.Backend
}

// Evaluator runs artifacts. It holds no per-invocation state and is safe for
// concurrent use.
type Evaluator struct {
	opts Options
}

// New creates an Evaluator.
func New(opts Options) *Evaluator {
	if opts.Backend == nil {
		opts.Backend = backend.Local{}
	}
	return &Evaluator{opts: opts}
}

// Evaluate runs art with default options.
func Evaluate(ctx context.Context, art *compiler.Artifact, args []value.Value) (value.Value, error) {
	return New(Options{}).Evaluate(ctx, art, args)
}

// Evaluate runs art with args bound to its parameters. Aggregate arguments
// are shared with the caller, so in-place mutation inside the function is
// visible afterwards; scalar arguments are copied.
func (ev *Evaluator) Evaluate(ctx context.Context, art *compiler.Artifact, args []value.Value) (value.Value, error) {
	if len(args) != len(art.Params) {
		return value.None, &failure.Error{
			Kind: failure.ArityMismatch,
			Op:   art.Name,
			Msg:  fmt.Sprintf("takes %d arguments but %d were given", len(art.Params), len(args)),
		}
	}
	logger := ctxlog.FromContext(ctx).With("function", art.Name)
	logger.Debug("▶️ Invoking function.", "args", len(args))

	g := art.Graph
	e := env.New(env.FromGraph(g.RootScope()))
	for i, ref := range art.ParamSlots {
		e.BindParam(ref.Index, args[i])
	}
	r := &run{ev: ev, g: g, env: e, logger: logger}

	root := g.Node(g.Root)
	out, sig, err := r.block(ctx, root, false, nil)
	if err != nil {
		logger.Debug("Invocation failed.", "error", err)
		return value.None, err
	}
	if sig != signalReturn {
		out = value.None
	}
	logger.Debug("✅ Finished invocation.", "result", value.Repr(out))
	return out, nil
}

// signal is a non-local exit travelling up the tree.
type signal uint8

const (
	signalNone signal = iota
	signalReturn
	signalBreak
	signalContinue
)

// run is the state of one invocation.
type run struct {
	ev     *Evaluator
	g      *graph.Graph
	env    *env.Environment
	logger *slog.Logger
}

// value evaluates an expression node.
func (r *run) value(ctx context.Context, id graph.NodeID) (value.Value, error) {
	v, sig, err := r.exec(ctx, id)
	if err != nil {
		return value.None, err
	}
	if sig != signalNone {
		return value.None, fmt.Errorf("node %d: %s signal in expression position", id, r.g.Node(id).Op)
	}
	return v, nil
}

func (r *run) values(ctx context.Context, ids []graph.NodeID) ([]value.Value, error) {
	out := make([]value.Value, len(ids))
	for i, id := range ids {
		v, err := r.value(ctx, id)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (r *run) exec(ctx context.Context, id graph.NodeID) (value.Value, signal, error) {
	n := r.g.Node(id)
	switch n.Op {
	case graph.Literal:
		return n.Literal, signalNone, nil

	case graph.Load:
		v, err := r.env.Load(*n.Slot)
		if err != nil {
			return value.None, signalNone, failure.Annotate(err, n.Name, n.Pos)
		}
		return v, signalNone, nil

	case graph.Invoke:
		v, err := r.invoke(ctx, n)
		return v, signalNone, err

	case graph.Bind:
		v, err := r.value(ctx, n.Inputs[0])
		if err != nil {
			return value.None, signalNone, err
		}
		r.env.Store(*n.Slot, v)
		return value.None, signalNone, nil

	case graph.Block:
		return r.block(ctx, n, true, nil)

	case graph.Branch:
		cond, err := r.value(ctx, n.Inputs[0])
		if err != nil {
			return value.None, signalNone, err
		}
		if value.Truthy(cond) {
			return r.exec(ctx, n.Inputs[1])
		}
		if len(n.Inputs) > 2 {
			return r.exec(ctx, n.Inputs[2])
		}
		return value.None, signalNone, nil

	case graph.Loop:
		return r.loop(ctx, n)

	case graph.ForEach:
		return r.forEach(ctx, n)

	case graph.And, graph.Or:
		var v value.Value
		for _, in := range n.Inputs {
			var err error
			if v, err = r.value(ctx, in); err != nil {
				return value.None, signalNone, err
			}
			if value.Truthy(v) == (n.Op == graph.Or) {
				break
			}
		}
		return v, signalNone, nil

	case graph.Return:
		if len(n.Inputs) == 0 {
			return value.None, signalReturn, nil
		}
		v, err := r.value(ctx, n.Inputs[0])
		if err != nil {
			return value.None, signalNone, err
		}
		return v, signalReturn, nil

	case graph.Break:
		return value.None, signalBreak, nil

	case graph.Continue:
		return value.None, signalContinue, nil
	}
	return value.None, signalNone, fmt.Errorf("node %d has unknown op %s", id, n.Op)
}

// block runs the statements of a Block node. With open set the block's scope
// is pushed for the duration; bind, when non-nil, runs right after the push.
func (r *run) block(ctx context.Context, n *graph.Node, open bool, bind func()) (value.Value, signal, error) {
	if open && n.Scope != nil {
		r.env.Push(env.FromGraph(n.Scope))
		defer r.env.Pop()
	}
	if bind != nil {
		bind()
	}
	var last value.Value
	for _, in := range n.Inputs {
		v, sig, err := r.exec(ctx, in)
		if err != nil {
			return value.None, signalNone, err
		}
		if sig != signalNone {
			return v, sig, nil
		}
		last = v
	}
	return last, signalNone, nil
}

// tick is called once per loop iteration.
func (r *run) tick(ctx context.Context, n *graph.Node, iterations int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if limit := r.ev.opts.MaxIterations; limit > 0 && iterations > limit {
		return &failure.Error{
			Kind: failure.LimitExceeded,
			Op:   n.Op.String(),
			Pos:  n.Pos,
			Msg:  fmt.Sprintf("loop exceeded %d iterations", limit),
		}
	}
	return nil
}

func (r *run) loop(ctx context.Context, n *graph.Node) (value.Value, signal, error) {
	body := r.g.Node(n.Inputs[1])
	for i := 1; ; i++ {
		cond, err := r.value(ctx, n.Inputs[0])
		if err != nil {
			return value.None, signalNone, err
		}
		if !value.Truthy(cond) {
			return value.None, signalNone, nil
		}
		if err := r.tick(ctx, n, i); err != nil {
			return value.None, signalNone, err
		}
		v, sig, err := r.block(ctx, body, true, nil)
		if err != nil {
			return value.None, signalNone, err
		}
		switch sig {
		case signalReturn:
			return v, sig, nil
		case signalBreak:
			return value.None, signalNone, nil
		}
	}
}

func (r *run) forEach(ctx context.Context, n *graph.Node) (value.Value, signal, error) {
	seq, err := r.value(ctx, n.Inputs[0])
	if err != nil {
		return value.None, signalNone, err
	}
	items, err := value.Iterate(seq)
	if err != nil {
		return value.None, signalNone, failure.Annotate(err, "for", n.Pos)
	}
	body := r.g.Node(n.Inputs[1])
	for i, item := range items {
		if err := r.tick(ctx, n, i+1); err != nil {
			return value.None, signalNone, err
		}
		v, sig, err := r.block(ctx, body, true, func() { r.env.Store(*n.Slot, item) })
		if err != nil {
			return value.None, signalNone, err
		}
		switch sig {
		case signalReturn:
			return v, sig, nil
		case signalBreak:
			return value.None, signalNone, nil
		}
	}
	return value.None, signalNone, nil
}

// invoke evaluates the inputs of an Invoke node left to right and dispatches
// the primitive. A mutating primitive whose target is a variable receives
// the aggregate held in that variable's slot.
func (r *run) invoke(ctx context.Context, n *graph.Node) (value.Value, error) {
	d := r.g.Descriptor(n.ID)
	if d == nil {
		return value.None, &failure.Error{Kind: failure.UnknownPrimitive, Op: n.Prim, Pos: n.Pos, Msg: "primitive was not resolved"}
	}
	args, err := r.values(ctx, n.Inputs)
	if err != nil {
		return value.None, err
	}
	if err := ctx.Err(); err != nil {
		return value.None, err
	}

	if d.Effect != registry.Mutates || n.Slot == nil {
		return r.dispatch(ctx, d, n, args)
	}
	var out value.Value
	err = r.env.Target(*n.Slot, func(target value.Value) error {
		args[0] = target
		var err error
		out, err = r.dispatch(ctx, d, n, args)
		return err
	})
	if err != nil {
		return value.None, failure.Annotate(err, d.Name, n.Pos)
	}
	return out, nil
}

func (r *run) dispatch(ctx context.Context, d *registry.Descriptor, n *graph.Node, args []value.Value) (value.Value, error) {
	r.logger.Debug("Dispatching primitive.", "primitive", d.Name, "node", n.ID, "kinds", value.Kinds(args...))
	out, err := r.ev.opts.Backend.Invoke(ctx, d, args).Get(ctx)
	if err != nil {
		return value.None, failure.Annotate(err, d.Name, n.Pos)
	}
	return out, nil
}
