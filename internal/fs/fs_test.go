package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sub")
	lfs := LocalFS{}

	require.NoError(t, lfs.MkdirAll(dir, 0o755))

	p := filepath.Join(dir, "a.tmp")
	f, err := lfs.OpenFile(p, os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	require.NoError(t, lfs.Rename(p, filepath.Join(dir, "a")))
	entries, err := lfs.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].Name())

	require.NoError(t, lfs.Remove(filepath.Join(dir, "a")))
	assert.ErrorIs(t, lfs.Remove(filepath.Join(dir, "a")), os.ErrNotExist)
}

func TestFaultyFS(t *testing.T) {
	dir := t.TempDir()

	t.Run("write limit", func(t *testing.T) {
		ffs := NewFaultyFS(nil)
		ffs.AddRule("limited", Fault{FailAfterBytes: 4})

		f, err := ffs.OpenFile(filepath.Join(dir, "limited"), os.O_CREATE|os.O_WRONLY, 0o644)
		require.NoError(t, err)
		_, err = f.Write([]byte("abc"))
		require.NoError(t, err)
		_, err = f.Write([]byte("de"))
		require.ErrorIs(t, err, ErrInjected)
		require.NoError(t, f.Close())
		assert.Equal(t, int64(3), ffs.Written())
	})

	t.Run("sync and close", func(t *testing.T) {
		ffs := NewFaultyFS(nil)
		ffs.AddRule("bad", Fault{FailAfterBytes: -1, FailOnSync: true, FailOnClose: true, Err: os.ErrPermission})

		f, err := ffs.OpenFile(filepath.Join(dir, "bad"), os.O_CREATE|os.O_WRONLY, 0o644)
		require.NoError(t, err)
		require.ErrorIs(t, f.Sync(), os.ErrPermission)
		require.ErrorIs(t, f.Close(), os.ErrPermission)
	})

	t.Run("rename", func(t *testing.T) {
		ffs := NewFaultyFS(nil)
		ffs.AddRule("target", Fault{FailAfterBytes: -1, FailOnRename: true})

		src := filepath.Join(dir, "src")
		require.NoError(t, os.WriteFile(src, nil, 0o644))
		require.ErrorIs(t, ffs.Rename(src, filepath.Join(dir, "target")), ErrInjected)

		ffs.ClearRules()
		require.NoError(t, ffs.Rename(src, filepath.Join(dir, "target")))
	})
}
