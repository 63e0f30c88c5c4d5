package column

import (
	"fmt"

	"github.com/hupe1980/colbuf/internal/bitcursor"
)

// OpenRow opens row id. The first row of a fresh buffer fixes the start of
// its id range; every later row must use EndID.
func (b *Buffer) OpenRow(id uint64) error {
	if b.rowOpen {
		return fmt.Errorf("%w: %s: row %d is still open", ErrSequenceViolation, b.schema.Name, b.endID)
	}
	if b.started && id != b.endID {
		return fmt.Errorf("%w: %s: open row %d, expected %d", ErrSequenceViolation, b.schema.Name, id, b.endID)
	}

	// Room for one more entry, so that CommitRow cannot fail on allocation.
	if err := b.rowmap.Reserve(b.rowmapEnd() + rowmapEntryBits); err != nil {
		return fmt.Errorf("%w: %s: row map: %w", ErrResourceExhausted, b.schema.Name, err)
	}

	if !b.started {
		b.started = true
		b.startID, b.endID, b.cutoffID = id, id, id
	}
	b.rowOpen = true
	b.rowLen = 0
	b.rowWritten, b.rowCommitted, b.rowNull = false, false, false
	return nil
}

// Write appends count elements of elemBits bits from buf, starting at bit
// bitOffset, to the open row. elemBits must be a multiple or a divisor of the
// column width and the written bits must form whole column elements. A
// zero-length write marks the row as written.
func (b *Buffer) Write(elemBits uint, buf []byte, bitOffset, count uint64) error {
	if !b.rowOpen || b.rowCommitted {
		return fmt.Errorf("%w: %s: write without an open row", ErrSequenceViolation, b.schema.Name)
	}

	w := uint64(elemBits)
	if w == 0 || (w%b.width != 0 && b.width%w != 0) {
		return fmt.Errorf("%w: %s: %d-bit elements into %d-bit column", ErrTypeMismatch, b.schema.Name, w, b.width)
	}
	// Bound count before multiplying so that w*count cannot wrap.
	avail := uint64(len(buf)) * 8
	if bitOffset > avail || count > (avail-bitOffset)/w {
		return fmt.Errorf("%w: %s: %d %d-bit elements at offset %d, have %d bits", ErrShortBuffer, b.schema.Name, count, w, bitOffset, avail)
	}
	total := w * count
	if total%b.width != 0 {
		return fmt.Errorf("%w: %s: %d bits is not a whole number of %d-bit elements", ErrTypeMismatch, b.schema.Name, total, b.width)
	}

	if total == 0 {
		b.rowWritten = true
		return nil
	}

	pos := b.dataEnd() + b.rowLen*b.width
	if err := b.data.Reserve(pos + total); err != nil {
		return fmt.Errorf("%w: %s: data: %w", ErrResourceExhausted, b.schema.Name, err)
	}

	n := total / b.width
	c := bitcursor.InitHead(b.data, pos, b.schema.ElemBits, n)
	bitcursor.CopyIn(&c, buf, bitOffset)
	b.rowLen += n
	b.rowWritten = true
	return nil
}

// ApplyDefaultIfUnwritten completes an unwritten row with the column default.
// A NULL default marks the row NULL without payload.
func (b *Buffer) ApplyDefaultIfUnwritten() error {
	if !b.rowOpen || b.rowCommitted {
		return fmt.Errorf("%w: %s: no open row", ErrSequenceViolation, b.schema.Name)
	}
	if b.rowWritten {
		return nil
	}

	d := b.schema.Default
	switch {
	case d == nil:
		return fmt.Errorf("%w: %s: row %d", ErrIncompleteRow, b.schema.Name, b.endID)
	case d.Null:
		return b.WriteNull()
	default:
		return b.Write(b.schema.ElemBits, d.Data, d.BitOffset, d.Count)
	}
}

// WriteNull completes an unwritten open row as NULL without payload,
// whatever the column default.
func (b *Buffer) WriteNull() error {
	if !b.rowOpen || b.rowCommitted {
		return fmt.Errorf("%w: %s: no open row", ErrSequenceViolation, b.schema.Name)
	}
	if b.rowWritten {
		return fmt.Errorf("%w: %s: row %d already written", ErrSequenceViolation, b.schema.Name, b.endID)
	}
	b.rowWritten = true
	b.rowNull = true
	return nil
}

// CommitRow commits the open row and returns the flush boundary: hint, or a
// lower row id when the buffer asks for an earlier flush. Pass NoFlush to
// request no flush. Committing never allocates.
func (b *Buffer) CommitRow(hint uint64) (uint64, error) {
	if !b.rowOpen || b.rowCommitted {
		return hint, fmt.Errorf("%w: %s: no open row", ErrSequenceViolation, b.schema.Name)
	}
	if err := b.ApplyDefaultIfUnwritten(); err != nil {
		return hint, err
	}

	if b.isDuplicate() {
		b.lastCnt++
		b.dups++
		b.writeEntry(b.numRows-1, b.lastLen, b.lastCnt)
		// the duplicate payload is dropped with any page it added
		b.data.Shrink(b.dataEnd())
	} else {
		b.writeEntry(b.numRows, b.rowLen, 1)
		b.numRows++
		b.numElems += b.rowLen
		b.lastLen, b.lastCnt = b.rowLen, 1
	}
	b.rowLen = 0

	if b.rowNull {
		b.nulls = append(b.nulls, b.endID)
	}
	b.rowCommitted = true

	next := b.endID + 1
	if b.schema.TriggerBytes > 0 && b.BufferedBytes() >= b.schema.TriggerBytes {
		hint = min(hint, next)
	}
	if span := b.schema.MaxRowSpan; span > 0 && next-b.startID >= span {
		b.cutoffID = b.startID + span
		hint = min(hint, b.cutoffID)
	}
	return hint, nil
}

// CloseRow closes the open row. A committed row advances EndID; an
// uncommitted row is abandoned and the pages holding only its payload are
// released.
func (b *Buffer) CloseRow() error {
	if !b.rowOpen {
		return fmt.Errorf("%w: %s: no open row", ErrSequenceViolation, b.schema.Name)
	}

	if b.rowCommitted {
		b.endID++
	} else {
		b.data.Shrink(b.dataEnd())
		b.rowmap.Shrink(b.rowmapEnd())
	}
	b.rowLen = 0
	b.rowOpen = false
	b.rowWritten, b.rowCommitted, b.rowNull = false, false, false
	return nil
}
