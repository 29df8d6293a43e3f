package registry_test

import (
	"context"
	"testing"

	"github.com/aretw0/canvas/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := registry.NewRegistry()
	r.Register("upper", func(ctx context.Context, args map[string]any) (any, error) {
		return args["value"], nil
	})

	assert.True(t, r.Has("upper"))
	assert.False(t, r.Has("lower"))

	out, err := r.Execute(context.Background(), "upper", map[string]any{"value": "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", out)

	_, err = r.Execute(context.Background(), "lower", nil)
	assert.ErrorIs(t, err, registry.ErrAdapterNotFound)
}

func TestRegistry_OverwriteAndIDs(t *testing.T) {
	r := registry.NewRegistry()
	r.Register("b", func(context.Context, map[string]any) (any, error) { return 1, nil })
	r.Register("a", func(context.Context, map[string]any) (any, error) { return 1, nil })
	r.Register("b", func(context.Context, map[string]any) (any, error) { return 2, nil })

	assert.Equal(t, []string{"a", "b"}, r.IDs())
	out, err := r.Execute(context.Background(), "b", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, out)
}
