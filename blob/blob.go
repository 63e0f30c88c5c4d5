// Package blob defines the immutable unit produced by flushing a column buffer.
//
// A Blob covers the contiguous row-id range [StartID, EndID) of one column. It
// holds NumElems bit-packed elements of ElemBits bits (LSB-first) and a
// PageMap that maps each row to its element range. Rows completed by a NULL
// default are listed in Nulls.
//
// Blobs may reserve memory from the writer's memory budget; call Release once
// the blob has been consumed.
package blob

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/colbuf/internal/bitpack"
	"github.com/hupe1980/colbuf/pagemap"
)

// Blob is a flushed, immutable row range of one column.
type Blob struct {
	Column   string
	StartID  uint64
	EndID    uint64
	ElemBits uint
	NumElems uint64
	Data     []byte
	PageMap  *pagemap.PageMap
	Nulls    *roaring.Bitmap // row offsets relative to StartID

	releaseOnce sync.Once
	release     func()
}

// OnRelease registers fn to run on the first call to Release.
func (b *Blob) OnRelease(fn func()) {
	b.release = fn
}

// Release runs the registered release hook once.
func (b *Blob) Release() {
	b.releaseOnce.Do(func() {
		if b.release != nil {
			b.release()
		}
	})
}

// NumRows returns the number of rows covered.
func (b *Blob) NumRows() uint64 { return b.EndID - b.StartID }

// Contains reports whether row id lies in the blob's range.
func (b *Blob) Contains(id uint64) bool { return id >= b.StartID && id < b.EndID }

// Row returns the element offset and element count of row id.
func (b *Blob) Row(id uint64) (off uint64, length uint32, ok bool) {
	if !b.Contains(id) || b.PageMap == nil {
		return 0, 0, false
	}
	return b.PageMap.Row(id - b.StartID)
}

// Elem returns element i. ElemBits must not exceed 64.
func (b *Blob) Elem(i uint64) uint64 {
	return bitpack.Read(b.Data, i*uint64(b.ElemBits), b.ElemBits)
}

// RowElems returns the elements of row id.
func (b *Blob) RowElems(id uint64) ([]uint64, bool) {
	off, length, ok := b.Row(id)
	if !ok {
		return nil, false
	}
	out := make([]uint64, length)
	for i := range out {
		out[i] = b.Elem(off + uint64(i))
	}
	return out, true
}

// IsNull reports whether row id was completed by a NULL default.
func (b *Blob) IsNull(id uint64) bool {
	if !b.Contains(id) || b.Nulls == nil {
		return false
	}
	return b.Nulls.Contains(uint32(id - b.StartID)) //nolint:gosec // blob ranges stay below 2^32 rows
}

// Size returns the size of the element buffer in bytes.
func (b *Blob) Size() int { return len(b.Data) }
