package failure_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/execgraph/internal/ast"
	"github.com/vk/execgraph/internal/failure"
)

func TestError_IsMatchesByKind(t *testing.T) {
	err := failure.Mismatch("__eq", "dict", "list")
	wrapped := fmt.Errorf("invoke foo: %w", err)

	require.ErrorIs(t, wrapped, failure.ErrTypeMismatch)
	require.NotErrorIs(t, wrapped, failure.ErrKeyError)

	var fe *failure.Error
	require.True(t, errors.As(wrapped, &fe))
	assert.Equal(t, "__eq", fe.Op)
	assert.Equal(t, []string{"dict", "list"}, fe.Kinds)
}

func TestError_MessageIncludesPositionAndOp(t *testing.T) {
	err := failure.At(failure.UnboundName, ast.Pos{Line: 3, Column: 7}, "name %q is not defined", "y")
	assert.Equal(t, `UnboundName at 3:7: name "y" is not defined`, err.Error())
}

func TestAnnotate_FillsMissingContextOnly(t *testing.T) {
	base := failure.New(failure.KeyError, "'missing'")
	pos := ast.Pos{Line: 2, Column: 1}

	annotated := failure.Annotate(base, "__getitem", pos)
	var fe *failure.Error
	require.True(t, errors.As(annotated, &fe))
	assert.Equal(t, "__getitem", fe.Op)
	assert.Equal(t, pos, fe.Pos)
	assert.Empty(t, base.Op, "the wrapped error must not be modified")

	plain := errors.New("boom")
	assert.Same(t, plain, failure.Annotate(plain, "x", pos))
}

func TestParseKind(t *testing.T) {
	k, ok := failure.ParseKind("typemismatch")
	require.True(t, ok)
	assert.Equal(t, failure.TypeMismatch, k)

	_, ok = failure.ParseKind("nope")
	assert.False(t, ok)

	kind, ok := failure.KindOf(fmt.Errorf("wrap: %w", failure.New(failure.IndexError, "x")))
	require.True(t, ok)
	assert.Equal(t, failure.IndexError, kind)
}
