// Package config defines the format-agnostic model of a source tree: the
// functions it declares and the invocations to run against them, along with
// the Loader interface implemented by each front-end.
//
// Front-ends translate their own syntax into ast.Function values and
// constant value.Value arguments, so the app never sees HCL or YAML.
package config
