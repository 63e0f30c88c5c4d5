package blob

import (
	"bytes"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/colbuf/internal/bitpack"
	"github.com/hupe1980/colbuf/pagemap"
)

// newTestBlob returns rows 10..16 of a 4-bit column:
// [1 2 3] x2, [] x3 (two of them NULL), [9].
func newTestBlob() *Blob {
	pm := pagemap.New()
	pm.AppendRun(3, 2)
	pm.AppendRun(0, 3)
	pm.AppendRun(1, 1)

	return &Blob{
		Column:   "temperature",
		StartID:  10,
		EndID:    16,
		ElemBits: 4,
		NumElems: 4,
		Data:     bitpack.Pack(4, 1, 2, 3, 9),
		PageMap:  pm,
		Nulls:    roaring.BitmapOf(2, 4),
	}
}

func TestBlob_Rows(t *testing.T) {
	b := newTestBlob()
	assert.Equal(t, uint64(6), b.NumRows())

	elems, ok := b.RowElems(11)
	require.True(t, ok)
	assert.Equal(t, []uint64{1, 2, 3}, elems)

	elems, ok = b.RowElems(13)
	require.True(t, ok)
	assert.Empty(t, elems)

	elems, ok = b.RowElems(15)
	require.True(t, ok)
	assert.Equal(t, []uint64{9}, elems)

	_, ok = b.RowElems(16)
	assert.False(t, ok)

	assert.True(t, b.IsNull(12))
	assert.False(t, b.IsNull(13))
	assert.True(t, b.IsNull(14))
	assert.False(t, b.IsNull(9))
}

func TestBlob_ReleaseOnce(t *testing.T) {
	b := newTestBlob()
	calls := 0
	b.OnRelease(func() { calls++ })

	b.Release()
	b.Release()
	assert.Equal(t, 1, calls)
}

func TestEncodeDecode(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			want := newTestBlob()
			// long repetitive payload so that compression kicks in
			want.NumElems = 4096
			want.Data = bytes.Repeat([]byte{0x21, 0x93}, 1024)
			want.PageMap = pagemap.New()
			want.PageMap.AppendRun(4096, 6)

			data, err := Marshal(want, c)
			require.NoError(t, err)
			if c != CompressionNone {
				assert.Less(t, len(data), len(want.Data))
			}

			got, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, want.Column, got.Column)
			assert.Equal(t, want.StartID, got.StartID)
			assert.Equal(t, want.EndID, got.EndID)
			assert.Equal(t, want.ElemBits, got.ElemBits)
			assert.Equal(t, want.NumElems, got.NumElems)
			assert.Equal(t, want.Data, got.Data)
			assert.Equal(t, want.PageMap.Runs(), got.PageMap.Runs())
			assert.True(t, want.Nulls.Equals(got.Nulls))
		})
	}
}

func TestDecode_NoNulls(t *testing.T) {
	want := newTestBlob()
	want.Nulls = nil

	data, err := Marshal(want, CompressionNone)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.True(t, got.Nulls.IsEmpty())
	assert.False(t, got.IsNull(12))
}

func TestDecode_Corrupt(t *testing.T) {
	data, err := Marshal(newTestBlob(), CompressionZSTD)
	require.NoError(t, err)

	t.Run("flipped byte", func(t *testing.T) {
		bad := bytes.Clone(data)
		bad[len(bad)/2] ^= 0xff
		_, err := Decode(bad)
		require.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := Decode(data[:5])
		require.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Decode(nil)
		require.ErrorIs(t, err, ErrCorrupt)
	})
}

func TestMarshal_UnknownCompression(t *testing.T) {
	_, err := Marshal(newTestBlob(), Compression(9))
	require.ErrorIs(t, err, ErrUnknownCompression)
}
