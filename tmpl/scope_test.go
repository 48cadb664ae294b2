package tmpl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScope_Chain(t *testing.T) {
	root := NewScope(context.Background())
	root.Set("a", 1)
	root.Set("b", 2)

	inner := root.nest()
	inner.Set("b", 3)

	assert.Nil(t, root.Parent())
	assert.Same(t, root, inner.Parent())
	assert.Equal(t, 0, root.Depth())
	assert.Equal(t, 1, inner.Depth())

	v, ok := inner.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = inner.Lookup("b")
	assert.True(t, ok)
	assert.Equal(t, 3, v, "inner binding shadows outer")

	v, ok = root.Lookup("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v, "outer binding unchanged")

	_, ok = root.Lookup("missing")
	assert.False(t, ok)
}

type scopeKey struct{}

func TestScope_KeysAreComparable(t *testing.T) {
	s := NewScope(context.Background())
	s.Set(scopeKey{}, "typed")

	v, ok := s.nest().nest().Lookup(scopeKey{})
	assert.True(t, ok)
	assert.Equal(t, "typed", v)

	_, ok = s.Lookup("scopeKey")
	assert.False(t, ok)
}

func TestScope_Context(t *testing.T) {
	ctx := context.WithValue(context.Background(), scopeKey{}, "v")

	s := NewScope(ctx)
	assert.Equal(t, ctx, s.Context())
	assert.Equal(t, ctx, s.nest().Context())

	//nolint:staticcheck
	assert.NotNil(t, NewScope(nil).Context())
}
