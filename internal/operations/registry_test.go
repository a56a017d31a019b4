package operations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context, *OperationState) error { return nil }

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(NewFuncStep("b", "B", noop)))
	require.NoError(t, r.Register(NewFuncStep("a", "A", noop)))
	require.NoError(t, r.Register(NewFuncStep("c", "C", noop)))

	assert.Equal(t, 3, r.Count())
	assert.Equal(t, []string{"b", "a", "c"}, r.ListIDs())
	assert.True(t, r.Has("a"))
	assert.False(t, r.Has("z"))

	step, err := r.Get("c")
	require.NoError(t, err)
	assert.Equal(t, "C", step.Name())

	_, err = r.Get("z")
	assert.Error(t, err)

	list := r.List()
	require.Len(t, list, 3)
	assert.Equal(t, "b", list[0].ID())
}

func TestRegistry_RejectsInvalid(t *testing.T) {
	r := NewRegistry()

	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(NewFuncStep("", "Nameless", noop)))

	require.NoError(t, r.Register(NewFuncStep("fetch", "Fetch", noop)))
	err := r.Register(NewFuncStep("fetch", "Fetch again", noop))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
	assert.Equal(t, 1, r.Count())
}
