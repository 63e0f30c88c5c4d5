package sink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/colbuf/blob"
	"github.com/hupe1980/colbuf/blobstore"
	"github.com/hupe1980/colbuf/internal/bitpack"
	"github.com/hupe1980/colbuf/internal/resource"
	"github.com/hupe1980/colbuf/pagemap"
)

func newBlob(column string, start, end uint64) *blob.Blob {
	pm := pagemap.New()
	pm.AppendRun(2, uint32(end-start)) //nolint:gosec // test ranges are small
	return &blob.Blob{
		Column:   column,
		StartID:  start,
		EndID:    end,
		ElemBits: 8,
		NumElems: 2,
		Data:     bitpack.Pack(8, 0xca, 0xfe),
		PageMap:  pm,
	}
}

func TestObjectName(t *testing.T) {
	assert.Equal(t, "temp/00000000000000000007-00000000000000000042.blob", ObjectName(newBlob("temp", 7, 42)))
}

func TestMemorySink(t *testing.T) {
	s := NewMemorySink()
	ctx := context.Background()

	a, b, c := newBlob("a", 0, 4), newBlob("b", 0, 4), newBlob("a", 4, 9)
	released := 0
	for _, bl := range []*blob.Blob{a, b, c} {
		bl.OnRelease(func() { released++ })
		require.NoError(t, s.Deliver(ctx, bl))
	}

	assert.Equal(t, []*blob.Blob{a, b, c}, s.Blobs())
	assert.Equal(t, []*blob.Blob{a, c}, s.Column("a"))

	s.Release()
	assert.Equal(t, 3, released)
	assert.Empty(t, s.Blobs())
}

func TestStoreSink(t *testing.T) {
	store := blobstore.NewMemoryStore()
	s := NewStoreSink(store, WithCompression(blob.CompressionLZ4))
	ctx := context.Background()

	in := newBlob("temp", 3, 8)
	released := false
	in.OnRelease(func() { released = true })

	require.NoError(t, s.Deliver(ctx, in))
	assert.True(t, released, "the sink releases delivered blobs")

	names, err := store.List(ctx, "temp/")
	require.NoError(t, err)
	require.Equal(t, []string{ObjectName(in)}, names)

	data, err := blobstore.ReadAll(ctx, store, names[0])
	require.NoError(t, err)
	out, err := blob.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, in.Data, out.Data)
	assert.Equal(t, in.PageMap.Runs(), out.PageMap.Runs())
}

type failingStore struct {
	blobstore.Store
	err error
}

func (f failingStore) Put(context.Context, string, []byte) error { return f.err }

func TestStoreSink_PutError(t *testing.T) {
	boom := errors.New("boom")
	s := NewStoreSink(failingStore{Store: blobstore.NewMemoryStore(), err: boom})

	in := newBlob("temp", 0, 1)
	released := false
	in.OnRelease(func() { released = true })

	err := s.Deliver(context.Background(), in)
	require.ErrorIs(t, err, boom)
	assert.True(t, released)
}

func TestStoreSink_IOLimit(t *testing.T) {
	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 1})
	s := NewStoreSink(blobstore.NewMemoryStore(), WithIOLimiter(rc))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// an encoded blob is far larger than one byte per second allows
	err := s.Deliver(ctx, newBlob("temp", 0, 1))
	require.Error(t, err)
}
