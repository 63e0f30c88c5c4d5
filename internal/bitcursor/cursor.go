package bitcursor

import (
	"fmt"

	"github.com/hupe1980/colbuf/internal/page"
)

// Window is the part of the span that lies in the cursor's current page:
// bits [Off, Off+Bits) of Buf.
type Window struct {
	Buf  []byte
	Off  uint64
	Bits uint64
}

// Cursor is a read/scan position inside a bit span of a page chain.
type Cursor struct {
	chain     *page.Chain
	start     uint64
	end       uint64
	marker    uint64
	page      page.ID
	pageStart uint64 // chain bit offset of page's first bit
	tail      bool
}

// InitHead returns a cursor on the first bit of the span of count elements of
// elemBits bits starting at startBit. An empty span is valid.
func InitHead(chain *page.Chain, startBit uint64, elemBits uint, count uint64) Cursor {
	c := Cursor{
		chain:  chain,
		start:  startBit,
		end:    startBit + uint64(elemBits)*count,
		marker: startBit,
	}
	if c.end > c.start {
		c.locate()
	}
	return c
}

// InitTail returns a cursor on the last bit of the span. The span must not be
// empty.
func InitTail(chain *page.Chain, startBit uint64, elemBits uint, count uint64) Cursor {
	if elemBits == 0 || count == 0 {
		panic("bitcursor: tail cursor over empty span")
	}
	c := Cursor{
		chain: chain,
		start: startBit,
		end:   startBit + uint64(elemBits)*count,
		tail:  true,
	}
	c.marker = c.end - 1
	c.locate()
	return c
}

// locate resolves the page holding marker from the nearer end of the chain.
func (c *Cursor) locate() {
	pageBits := c.chain.PageBits()
	idx := c.marker / pageBits
	if idx >= uint64(c.chain.Len()) {
		panic(fmt.Sprintf("bitcursor: bit %d beyond chain of %d pages", c.marker, c.chain.Len()))
	}
	c.page = c.chain.Page(int(idx)) //nolint:gosec // idx < chain length
	c.pageStart = idx * pageBits
}

// Start returns the first bit of the span.
func (c *Cursor) Start() uint64 { return c.start }

// End returns the bit after the span.
func (c *Cursor) End() uint64 { return c.end }

// Marker returns the current bit position.
func (c *Cursor) Marker() uint64 { return c.marker }

// Len returns the span length in bits.
func (c *Cursor) Len() uint64 { return c.end - c.start }

// Advance moves the marker by bits, backward when reverse is set. It returns
// false and leaves the cursor untouched when the target lies outside the span.
func (c *Cursor) Advance(bits uint64, reverse bool) bool {
	var target uint64
	if reverse {
		if bits > c.marker-c.start || c.marker >= c.end {
			return false
		}
		target = c.marker - bits
	} else {
		if c.marker >= c.end || bits >= c.end-c.marker {
			return false
		}
		target = c.marker + bits
	}

	pageBits := c.chain.PageBits()
	for target >= c.pageStart+pageBits {
		c.page = c.chain.Next(c.page)
		c.pageStart += pageBits
		if c.page.IsNil() {
			panic("bitcursor: chain ends inside span")
		}
	}
	for target < c.pageStart {
		c.page = c.chain.Prev(c.page)
		c.pageStart -= pageBits
		if c.page.IsNil() {
			panic("bitcursor: chain starts inside span")
		}
	}
	c.marker = target
	return true
}

// Access returns the window of the current page. A head cursor's window
// starts at the marker; a tail cursor's window ends on it. The window is
// empty when the span is empty or exhausted.
func (c *Cursor) Access() Window {
	if c.page.IsNil() || c.marker >= c.end {
		return Window{}
	}
	buf := c.chain.Bytes(c.page)
	pageEnd := c.pageStart + c.chain.PageBits()

	if c.tail {
		from := max(c.pageStart, c.start)
		return Window{Buf: buf, Off: from - c.pageStart, Bits: c.marker - from + 1}
	}
	to := min(pageEnd, c.end)
	return Window{Buf: buf, Off: c.marker - c.pageStart, Bits: to - c.marker}
}

// Preceding returns a cursor over the equally long span that ends where this
// span starts, positioned at the same relative bit. The chain is walked from
// the current page.
func (c *Cursor) Preceding() (Cursor, bool) {
	n := c.Len()
	if n == 0 || c.start < n {
		return Cursor{}, false
	}
	p := *c
	p.start -= n
	p.end -= n
	p.marker -= n

	pageBits := c.chain.PageBits()
	for p.marker < p.pageStart {
		p.page = c.chain.Prev(p.page)
		p.pageStart -= pageBits
		if p.page.IsNil() {
			panic("bitcursor: chain starts inside span")
		}
	}
	return p, true
}
