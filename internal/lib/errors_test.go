package lib

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapErrorMatchesBoth(t *testing.T) {
	parent := errors.New("parent")
	child := errors.New("child")

	err := WrapError(parent, child)

	require.ErrorIs(t, err, parent)
	require.ErrorIs(t, err, child)
	require.Equal(t, "parent: child", err.Error())
}

func TestWrapErrorNested(t *testing.T) {
	root := errors.New("root")
	err := WrapError(errors.New("outer"), WrapError(errors.New("inner"), root))

	require.ErrorIs(t, err, root)
}
