// Package matrixops provides linear algebra over numbers, vectors (lists of
// numbers) and matrices (lists of equally long vectors).
package matrixops

import (
	"context"
	"fmt"

	"github.com/vk/execgraph/internal/failure"
	"github.com/vk/execgraph/internal/registry"
	"github.com/vk/execgraph/internal/value"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// operand is a number, vector or matrix. rank is 0, 1 or 2.
type operand struct {
	rank   int
	scalar value.Value
	vec    []value.Value
	mat    [][]value.Value
}

func numeric(v value.Value) error {
	if !value.Numeric.Has(v.Kind()) {
		return failure.Mismatch("dot", v.Kind().String())
	}
	return nil
}

func shapeError(format string, args ...any) error {
	return &failure.Error{Kind: failure.ValueError, Op: "dot", Msg: fmt.Sprintf(format, args...)}
}

func classify(v value.Value) (operand, error) {
	if v.Kind() != value.ListKind {
		if err := numeric(v); err != nil {
			return operand{}, err
		}
		return operand{rank: 0, scalar: v}, nil
	}
	items := v.List().Items()
	if len(items) == 0 || items[0].Kind() != value.ListKind {
		for _, item := range items {
			if err := numeric(item); err != nil {
				return operand{}, err
			}
		}
		return operand{rank: 1, vec: items}, nil
	}
	rows := make([][]value.Value, len(items))
	for i, item := range items {
		if item.Kind() != value.ListKind {
			return operand{}, shapeError("row %d is not a list", i)
		}
		row := item.List().Items()
		if i > 0 && len(row) != len(rows[0]) {
			return operand{}, shapeError("row %d has %d columns, expected %d", i, len(row), len(rows[0]))
		}
		for _, x := range row {
			if err := numeric(x); err != nil {
				return operand{}, err
			}
		}
		rows[i] = row
	}
	return operand{rank: 2, mat: rows}, nil
}

// inner is the sum of the products of a and b. Ints stay ints.
func inner(a, b []value.Value) (value.Value, error) {
	if len(a) != len(b) {
		return value.None, shapeError("shapes (%d,) and (%d,) are not aligned", len(a), len(b))
	}
	sum := value.Int(0)
	for i := range a {
		p, err := value.Mul(a[i], b[i])
		if err != nil {
			return value.None, err
		}
		if sum, err = value.Add(sum, p); err != nil {
			return value.None, err
		}
	}
	return sum, nil
}

func column(m [][]value.Value, j int) []value.Value {
	out := make([]value.Value, len(m))
	for i, row := range m {
		out[i] = row[j]
	}
	return out
}

// scale multiplies every number in v by k.
func scale(k, v value.Value) (value.Value, error) {
	if v.Kind() != value.ListKind {
		return value.Mul(k, v)
	}
	items := v.List().Items()
	out := make([]value.Value, len(items))
	for i, item := range items {
		var err error
		if out[i], err = scale(k, item); err != nil {
			return value.None, err
		}
	}
	return value.NewList(out...), nil
}

// Dot is the dot product: a product with a number scales, vectors give
// their inner product, and matrices multiply as in linear algebra.
func Dot(_ context.Context, args []value.Value) (value.Value, error) {
	a, err := classify(args[0])
	if err != nil {
		return value.None, err
	}
	b, err := classify(args[1])
	if err != nil {
		return value.None, err
	}
	switch {
	case a.rank == 0:
		return scale(a.scalar, args[1])
	case b.rank == 0:
		return scale(b.scalar, args[0])
	case a.rank == 1 && b.rank == 1:
		return inner(a.vec, b.vec)
	case a.rank == 2 && b.rank == 1:
		out := make([]value.Value, len(a.mat))
		for i, row := range a.mat {
			if out[i], err = inner(row, b.vec); err != nil {
				return value.None, err
			}
		}
		return value.NewList(out...), nil
	case a.rank == 1 && b.rank == 2:
		if len(a.vec) != len(b.mat) {
			return value.None, shapeError("shapes (%d,) and (%d, %d) are not aligned", len(a.vec), len(b.mat), len(b.mat[0]))
		}
		out := make([]value.Value, len(b.mat[0]))
		for j := range out {
			if out[j], err = inner(a.vec, column(b.mat, j)); err != nil {
				return value.None, err
			}
		}
		return value.NewList(out...), nil
	}
	if len(a.mat[0]) != len(b.mat) {
		return value.None, shapeError("shapes (%d, %d) and (%d, %d) are not aligned", len(a.mat), len(a.mat[0]), len(b.mat), len(b.mat[0]))
	}
	rows := make([]value.Value, len(a.mat))
	for i, row := range a.mat {
		cells := make([]value.Value, len(b.mat[0]))
		for j := range cells {
			if cells[j], err = inner(row, column(b.mat, j)); err != nil {
				return value.None, err
			}
		}
		rows[i] = value.NewList(cells...)
	}
	return value.NewList(rows...), nil
}

// Register registers the primitives with the registry.
func (m *Module) Register(r *registry.Registry) {
	operands := value.KindsOf(value.BoolKind, value.IntKind, value.FloatKind, value.ListKind)
	r.Register(&registry.Descriptor{
		Name:    "dot",
		Arity:   registry.Fixed(2),
		Inputs:  []value.KindSet{operands},
		Offload: true,
		Doc:     "dot(a, b) of numbers, vectors and matrices",
		Eval:    Dot,
	})
}
