// Package capture reads syntax trees exported by a host-side capturer.
//
// A capture file is YAML or JSON. Each node is a mapping whose "type" field
// names a node of the host's own ast module (FunctionDef, Assign, Subscript,
// Constant, ...), with the host's field names:
//
//	functions:
//	  - type: FunctionDef
//	    name: change
//	    args: [data]
//	    lineno: 1
//	    body:
//	      - type: Assign
//	        targets:
//	          - type: Subscript
//	            value: {type: Name, id: data}
//	            slice: {type: Constant, value: key_float}
//	        value: {type: Constant, value: 42.0}
//	      - type: Return
//	        value: {type: Name, id: data}
//	invocations:
//	  - function: change
//	    args: [{key: value}]
//	    expect_args: [{key: value, key_float: 42.0}]
//
// Scalars keep their YAML tags, so 42 decodes as an int and 42.0 as a float.
// A document may also be a single FunctionDef or a Module whose body holds
// FunctionDefs.
package capture
