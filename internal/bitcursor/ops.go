package bitcursor

import "github.com/hupe1980/colbuf/internal/bitpack"

// EqualReverse reports whether the spans of two tail cursors hold identical
// bits. Both spans must have the same length. The cursors are consumed.
func EqualReverse(a, b *Cursor) bool {
	remaining := a.Len()
	if remaining != b.Len() {
		return false
	}
	for remaining > 0 {
		wa, wb := a.Access(), b.Access()
		k := min(wa.Bits, wb.Bits, remaining)
		if k == 0 {
			panic("bitcursor: empty window inside span")
		}
		if !bitpack.Equal(wa.Buf, wa.Off+wa.Bits-k, wb.Buf, wb.Off+wb.Bits-k, k) {
			return false
		}
		remaining -= k
		if remaining == 0 {
			break
		}
		if !a.Advance(k, true) || !b.Advance(k, true) {
			panic("bitcursor: reverse advance out of span")
		}
	}
	return true
}

// Read copies up to n bits from the marker of a head cursor to dst starting
// at bit dstOff and moves past them. It returns the number of bits copied,
// which is short only when the span is exhausted.
func (c *Cursor) Read(dst []byte, dstOff uint64, n uint64) uint64 {
	var done uint64
	for done < n && c.marker < c.end {
		w := c.Access()
		k := min(w.Bits, n-done)
		bitpack.Copy(dst, dstOff+done, w.Buf, w.Off, k)
		done += k
		if !c.Advance(k, false) {
			c.marker = c.end
		}
	}
	return done
}

// CopyOut copies the span of a head cursor to dst starting at bit dstOff.
// The cursor is consumed.
func CopyOut(dst []byte, dstOff uint64, c *Cursor) {
	want := c.end - c.marker
	if got := c.Read(dst, dstOff, want); got != want {
		panic("bitcursor: short read inside span")
	}
}

// CopyIn fills the span of a head cursor from src starting at bit srcOff.
// The cursor is consumed.
func CopyIn(c *Cursor, src []byte, srcOff uint64) {
	remaining := c.end - c.marker
	for remaining > 0 {
		w := c.Access()
		k := min(w.Bits, remaining)
		bitpack.Copy(w.Buf, w.Off, src, srcOff, k)
		srcOff += k
		remaining -= k
		if remaining > 0 && !c.Advance(k, false) {
			panic("bitcursor: forward advance out of span")
		}
	}
}
