package app

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/execgraph/internal/compiler"
	"github.com/vk/execgraph/internal/config"
	"github.com/vk/execgraph/internal/ctxlog"
	"github.com/vk/execgraph/internal/engine"
	"github.com/vk/execgraph/internal/failure"
	"github.com/vk/execgraph/internal/value"
)

// Invocation outcomes.
const (
	StatusPassed = "passed"
	StatusFailed = "failed"
)

// Result is the outcome of one invocation.
type Result struct {
	Invocation string
	Status     string
	// Value is the returned value; None when the call failed.
	Value value.Value
	// Err is the error the call failed with, if any.
	Err error
	// Problem says why the invocation failed its expectations.
	Problem  string
	Duration time.Duration
}

// compiled is the outcome of compiling one declared function.
type compiled struct {
	art *compiler.Artifact
	err error
}

// compileAll compiles every declared function. Compile errors are kept and
// reported by the invocations that use the function.
func (a *App) compileAll(ctx context.Context, eng *engine.Engine) map[string]compiled {
	logger := ctxlog.FromContext(ctx)
	out := make(map[string]compiled, len(a.model.Functions))
	for _, fn := range a.model.Functions {
		art, err := eng.Compile(ctx, fn)
		if err != nil {
			logger.Warn("Function failed to compile.", "function", fn.Name, "error", err)
		} else if a.config.DumpGraph {
			fmt.Fprint(a.outW, art.Graph.Dump())
		}
		out[fn.Name] = compiled{art: art, err: err}
	}
	return out
}

// invoke runs one invocation on fresh copies of its arguments and checks
// the outcome.
func (a *App) invoke(ctx context.Context, eng *engine.Engine, arts map[string]compiled, inv *config.Invocation) Result {
	logger := ctxlog.FromContext(ctx).With("invocation", inv.Name())
	logger.Debug("Invocation starting.")

	args := make([]value.Value, len(inv.Args))
	for i, arg := range inv.Args {
		args[i] = value.Copy(arg)
	}

	start := time.Now()
	out, err := value.None, arts[inv.Function].err
	if err == nil {
		out, err = eng.Invoke(ctx, arts[inv.Function].art, args...)
	}
	res := Result{
		Invocation: inv.Name(),
		Status:     StatusPassed,
		Value:      out,
		Err:        err,
		Duration:   time.Since(start),
	}
	if res.Problem = check(inv, out, err, args); res.Problem != "" {
		res.Status = StatusFailed
	}
	logger.Debug("Invocation finished.", "status", res.Status, "duration", res.Duration)
	return res
}

// check compares an outcome against the invocation's expectations and
// returns a description of the first mismatch.
func check(inv *config.Invocation, out value.Value, err error, args []value.Value) string {
	if inv.ExpectError != "" {
		want, ok := failure.ParseKind(inv.ExpectError)
		if !ok {
			return fmt.Sprintf("unknown error kind %q", inv.ExpectError)
		}
		if err == nil {
			return fmt.Sprintf("expected %s error, got %s", want, value.Repr(out))
		}
		if got, _ := failure.KindOf(err); got != want {
			return fmt.Sprintf("expected %s error, got: %v", want, err)
		}
		return ""
	}
	if err != nil {
		return err.Error()
	}
	if inv.Expect != nil && !value.Identical(*inv.Expect, out) {
		return fmt.Sprintf("expected %s, got %s", value.Repr(*inv.Expect), value.Repr(out))
	}
	if inv.ExpectArgs != nil {
		if len(inv.ExpectArgs) != len(args) {
			return fmt.Sprintf("expected %d arguments after the call, have %d", len(inv.ExpectArgs), len(args))
		}
		for i := range args {
			if !value.Identical(inv.ExpectArgs[i], args[i]) {
				return fmt.Sprintf("argument %d: expected %s, got %s", i, value.Repr(inv.ExpectArgs[i]), value.Repr(args[i]))
			}
		}
	}
	return ""
}
