package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(c *Chain) []ID {
	var ids []ID
	for id := c.Head(); !id.IsNil(); id = c.Next(id) {
		ids = append(ids, id)
	}
	return ids
}

func TestChain_PushPop(t *testing.T) {
	p, err := NewPool(2)
	require.NoError(t, err)
	c := NewChain(p)

	a, err := c.PushBack()
	require.NoError(t, err)
	b, err := c.PushBack()
	require.NoError(t, err)
	d, err := c.PushBack()
	require.NoError(t, err)

	assert.Equal(t, []ID{a, b, d}, collect(c))
	assert.Equal(t, a, c.Prev(b))
	assert.Equal(t, uint64(48), c.Capacity())
	assert.Equal(t, b, c.Page(1))
	assert.Equal(t, d, c.Page(2))

	c.PopFront()
	assert.Equal(t, []ID{b, d}, collect(c))
	assert.True(t, c.Prev(b).IsNil())

	c.PopBack()
	assert.Equal(t, []ID{b}, collect(c))
	assert.Equal(t, b, c.Head())
	assert.Equal(t, b, c.Tail())

	c.Reset()
	assert.Zero(t, c.Len())
	assert.True(t, c.Head().IsNil())
	assert.Zero(t, p.Stats().InUse)
}

func TestChain_ReserveIsAtomic(t *testing.T) {
	p, err := NewPool(2, WithAllocLimit(3))
	require.NoError(t, err)
	c := NewChain(p)

	require.NoError(t, c.Reserve(20)) // two 16-bit pages
	assert.Equal(t, 2, c.Len())

	err = c.Reserve(64) // needs four
	require.ErrorIs(t, err, ErrResourceExhausted)
	assert.Equal(t, 2, c.Len(), "failed reserve must not keep partial pages")
	assert.Equal(t, 2, p.Stats().InUse)
}

func TestChain_ShrinkAndTrim(t *testing.T) {
	p, err := NewPool(2)
	require.NoError(t, err)
	c := NewChain(p)
	require.NoError(t, c.Reserve(80))
	require.Equal(t, 5, c.Len())

	c.Shrink(33)
	assert.Equal(t, 3, c.Len())

	c.Shrink(48)
	assert.Equal(t, 3, c.Len())

	c.TrimFront(2)
	assert.Equal(t, 1, c.Len())
	assert.Panics(t, func() { c.TrimFront(2) })
}

func TestChain_ReleaseLinkedPagePanics(t *testing.T) {
	p, err := NewPool(2)
	require.NoError(t, err)
	c := NewChain(p)
	_, err = c.PushBack()
	require.NoError(t, err)
	b, err := c.PushBack()
	require.NoError(t, err)

	assert.Panics(t, func() { p.Release(b) })
}
