package column

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/colbuf/blob"
	"github.com/hupe1980/colbuf/internal/bitcursor"
	"github.com/hupe1980/colbuf/internal/conv"
	"github.com/hupe1980/colbuf/pagemap"
)

// Flush moves the rows [StartID, target) into a new blob and retires the
// pages that held only those rows. A target at or before StartID returns a
// nil blob. On error the buffer is unchanged.
func (b *Buffer) Flush(target uint64) (*blob.Blob, error) {
	if b.rowOpen {
		return nil, fmt.Errorf("%w: %s: flush with an open row", ErrSequenceViolation, b.schema.Name)
	}
	if !b.started || target <= b.startID {
		return nil, nil
	}
	if target > b.endID {
		return nil, fmt.Errorf("%w: %s: flush to %d beyond end %d", ErrSequenceViolation, b.schema.Name, target, b.endID)
	}

	// Walk the runs covering [start, target).
	var (
		pm         = pagemap.New()
		rowsLeft   = target - b.startID
		elems      uint64 // elements copied into the blob
		consumed   uint64 // entries fully consumed
		doneElems  uint64 // elements of fully consumed entries
		splitLen   uint64
		splitCnt   uint64 // repeat count left in the split entry
		splitEntry bool
	)
	c := bitcursor.InitHead(b.rowmap, b.rowmapOff, rowmapEntryBits, b.numRows)
	for rowsLeft > 0 {
		if consumed == b.numRows {
			panic("column: row map shorter than buffered rows")
		}
		length, cnt := readEntry(&c)
		take := min(uint64(cnt), rowsLeft)
		pm.AppendRun(length, uint32(take)) //nolint:gosec // take <= cnt
		elems += uint64(length)
		rowsLeft -= take

		if take < uint64(cnt) {
			splitEntry = true
			splitLen, splitCnt = uint64(length), uint64(cnt)-take
			break
		}
		consumed++
		doneElems += uint64(length)
	}

	size := conv.BitsToBytes(elems * b.width)
	if b.mem != nil {
		if err := b.mem.AcquireMemory(int64(size)); err != nil { //nolint:gosec // bounded by buffered pages
			return nil, fmt.Errorf("%w: %s: blob of %d bytes: %w", ErrResourceExhausted, b.schema.Name, size, err)
		}
	}

	out := &blob.Blob{
		Column:   b.schema.Name,
		StartID:  b.startID,
		EndID:    target,
		ElemBits: b.schema.ElemBits,
		NumElems: elems,
		Data:     make([]byte, size),
		PageMap:  pm,
		Nulls:    b.takeNulls(target),
	}
	if b.mem != nil {
		mem := b.mem
		out.OnRelease(func() { mem.ReleaseMemory(int64(size)) }) //nolint:gosec // bounded by buffered pages
	}

	src := bitcursor.InitHead(b.data, b.dataOff, b.schema.ElemBits, elems)
	bitcursor.CopyOut(out.Data, 0, &src)

	// The split run keeps its payload; its entry becomes the new head.
	b.numRows -= consumed
	b.rowmapOff += consumed * rowmapEntryBits
	b.numElems -= doneElems
	b.dataOff += doneElems * b.width
	if splitEntry {
		b.writeEntry(0, splitLen, splitCnt)
		if b.numRows == 1 {
			b.lastCnt = splitCnt
		}
	}
	b.retire()

	b.startID, b.cutoffID = target, target
	return out, nil
}

// retire releases the pages that lie entirely before the retained bits and
// rebases the offsets onto the new head pages.
func (b *Buffer) retire() {
	pageBits := b.data.PageBits()

	if n := b.dataOff / pageBits; n > 0 {
		b.data.TrimFront(int(n)) //nolint:gosec // n <= chain length
		b.dataOff -= n * pageBits
	}
	if n := b.rowmapOff / pageBits; n > 0 {
		b.rowmap.TrimFront(int(n)) //nolint:gosec // n <= chain length
		b.rowmapOff -= n * pageBits
	}
}

// takeNulls removes the NULL row ids below target and returns them as
// offsets from StartID.
func (b *Buffer) takeNulls(target uint64) *roaring.Bitmap {
	bm := roaring.New()
	i := 0
	for ; i < len(b.nulls) && b.nulls[i] < target; i++ {
		off, err := conv.Uint64ToUint32(b.nulls[i] - b.startID)
		if err != nil {
			panic(fmt.Sprintf("column: null row offset %d exceeds 32 bits", b.nulls[i]-b.startID))
		}
		bm.Add(off)
	}
	b.nulls = b.nulls[i:]
	return bm
}
