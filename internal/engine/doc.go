// Package engine is the entry point for running captured functions.
//
// An Engine bundles a primitive registry, a compile cache and an evaluator
// configured with a backend. Callers hand it syntax trees produced by a
// front-end and get back compiled artifacts, which can be invoked any
// number of times, concurrently, each with its own environment:
//
//	eng := engine.New(engine.WithMaxIterations(1_000_000))
//	art, err := eng.Compile(ctx, fn)
//	out, err := eng.Invoke(ctx, art, value.Int(1))
//
// Registering a primitive after compiling bumps the registry version, so
// later compilations of the same source produce fresh artifacts.
package engine
