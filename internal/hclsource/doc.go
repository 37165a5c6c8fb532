// Package hclsource reads function definitions and invocations written in
// HCL.
//
// A function body is a single expression built from call-shaped forms:
//
//	function "change" {
//	  params = ["data"]
//	  body = block(
//	    store(data.key, "new value"),
//	    store(data["key_int"], 42),
//	    data,
//	  )
//	}
//
//	invoke "change" {
//	  args        = [{ key = "value" }]
//	  expect_args = [{ key = "new value", key_int = 42 }]
//	}
//
// The statement forms are block, define, store, if, while, for_each,
// return, break and continue. if with three arguments may also be used as
// a value. Every other call names a primitive. The last plain expression of
// a body is its result. Integers and floats are told apart by spelling, so
// 42 is an int and 42.0 a float.
package hclsource
