// Package registry is the catalogue of primitives the engine can execute.
//
// A primitive is a named operation with a fixed contract: how many inputs it
// takes, which value kinds each input accepts, whether it mutates its first
// input in place, and the Go function that evaluates it. The compiler lowers
// every expression to an invocation of a registered primitive and fails closed
// on anything the registry does not know, so the registry is the single
// source of truth for what is expressible.
//
// Control forms (block, if, while, ...) are registered as descriptors
// without an Eval function. The compiler checks for them before lowering the
// corresponding syntax.
//
// Primitive packs outside the core implement Module and are registered at
// startup, before any function is compiled.
package registry
