package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore runs the behavior shared by every Store implementation.
func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("put and read", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "a/1.blob", []byte("hello")))

		data, err := ReadAll(ctx, s, "a/1.blob")
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), data)

		obj, err := s.Open(ctx, "a/1.blob")
		require.NoError(t, err)
		defer func() { _ = obj.Close() }()
		assert.Equal(t, int64(5), obj.Size())

		buf := make([]byte, 4)
		n, err := obj.ReadAt(ctx, buf, 3)
		assert.ErrorIs(t, err, io.EOF)
		assert.Equal(t, 2, n)
		assert.Equal(t, "lo", string(buf[:n]))
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "a/2.blob", []byte("old")))
		require.NoError(t, s.Put(ctx, "a/2.blob", []byte("new!")))

		data, err := ReadAll(ctx, s, "a/2.blob")
		require.NoError(t, err)
		assert.Equal(t, []byte("new!"), data)
	})

	t.Run("empty object", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "b/empty", nil))
		data, err := ReadAll(ctx, s, "b/empty")
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("list", func(t *testing.T) {
		names, err := s.List(ctx, "a/")
		require.NoError(t, err)
		assert.Equal(t, []string{"a/1.blob", "a/2.blob"}, names)

		all, err := s.List(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"a/1.blob", "a/2.blob", "b/empty"}, all)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := s.Open(ctx, "missing")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "a/1.blob"))
		require.NoError(t, s.Delete(ctx, "a/1.blob"), "deleting twice is fine")

		_, err := s.Open(ctx, "a/1.blob")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		require.ErrorIs(t, s.Put(cctx, "c", []byte("x")), context.Canceled)
	})
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	testStore(t, s)

	t.Run("put copies", func(t *testing.T) {
		buf := []byte("abc")
		require.NoError(t, s.Put(context.Background(), "copy", buf))
		buf[0] = 'x'

		data, err := ReadAll(context.Background(), s, "copy")
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), data)
	})
}
