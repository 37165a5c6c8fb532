package ast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func changeFunction(pos Pos) *Function {
	data := func() Expr { return &Name{ID: "data", Pos: pos} }
	return &Function{
		Name:   "change",
		Params: []string{"data"},
		Pos:    pos,
		Body: []Stmt{
			&SetItem{Container: data(), Key: &Const{Value: "key_float"}, Value: &Const{Value: 42.0}, Pos: pos},
			&SetItem{Container: data(), Key: &Const{Value: "key_int"}, Value: &Const{Value: int64(42)}, Pos: pos},
			&Return{Value: data(), Pos: pos},
		},
	}
}

func TestFormat_Function(t *testing.T) {
	got := Format(changeFunction(Pos{}))
	want := "def change(data):\n" +
		"    data[\"key_float\"] = 42.0\n" +
		"    data[\"key_int\"] = 42\n" +
		"    return data\n"
	assert.Equal(t, want, got)
}

func TestFormat_IgnoresPositions(t *testing.T) {
	a := Format(changeFunction(Pos{}))
	b := Format(changeFunction(Pos{File: "x.hcl", Line: 4, Column: 2}))
	assert.Equal(t, a, b)
}

func TestFormat_ControlFlow(t *testing.T) {
	fn := &Function{
		Name:   "loop",
		Params: []string{"n"},
		Body: []Stmt{
			&Assign{Target: "i", Value: &Const{Value: int64(0)}, Define: true},
			&While{
				Cond: &Compare{Op: Lt, Left: &Name{ID: "i"}, Right: &Name{ID: "n"}},
				Body: []Stmt{
					&AugAssign{Target: &Name{ID: "i"}, Op: Add, Value: &Const{Value: int64(1)}},
					&If{
						Cond: &BoolOp{Op: And, Values: []Expr{&Const{Value: true}, &Unary{Op: Not, X: &Const{Value: nil}}}},
						Then: []Stmt{&Break{}},
					},
				},
			},
			&Return{},
		},
	}
	want := "def loop(n):\n" +
		"    let i = 0\n" +
		"    while (i < n):\n" +
		"        i += 1\n" +
		"        if (True and (not None)):\n" +
		"            break\n" +
		"    return\n"
	assert.Equal(t, want, Format(fn))
}

func TestFormatExpr(t *testing.T) {
	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{"call", &Call{Func: "list", Args: []Expr{&Const{Value: int64(1)}}}, "list(1)"},
		{"method", &MethodCall{Recv: &Name{ID: "d"}, Method: "get", Args: []Expr{&Const{Value: "k"}}}, `d.get("k")`},
		{"dict", &DictLit{Keys: []Expr{&Const{Value: "k"}}, Values: []Expr{&Const{Value: 1.5}}}, `{"k": 1.5}`},
		{"slice", &Slice{X: &Name{ID: "s"}, Hi: &Const{Value: int64(2)}}, "s[:2]"},
		{"ifexp", &IfExp{Cond: &Name{ID: "c"}, Then: &Const{Value: int64(1)}, Else: &Const{Value: int64(2)}}, "(1 if c else 2)"},
		{"compare", &Compare{Op: NotIn, Left: &Name{ID: "k"}, Right: &Name{ID: "d"}}, "(k not in d)"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatExpr(tc.expr))
		})
	}
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "42.0", FormatFloat(42))
	assert.Equal(t, "0.5", FormatFloat(0.5))
	assert.Equal(t, "1e+21", FormatFloat(1e21))
	assert.Equal(t, "inf", FormatFloat(math.Inf(1)))
	assert.Equal(t, "nan", FormatFloat(math.NaN()))
}
