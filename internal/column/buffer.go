package column

import (
	"encoding/binary"
	"fmt"

	"github.com/hupe1980/colbuf/internal/bitcursor"
	"github.com/hupe1980/colbuf/internal/conv"
	"github.com/hupe1980/colbuf/internal/page"
	"github.com/hupe1980/colbuf/pagemap"
)

// rowmapEntryBits is the width of one row-map entry.
const rowmapEntryBits = 64

// MemoryAcquirer reserves memory for flushed blobs.
type MemoryAcquirer interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithMemoryAcquirer charges flushed blob buffers against acquirer.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(b *Buffer) {
		b.mem = acquirer
	}
}

// Buffer accumulates the rows of one column between flushes.
type Buffer struct {
	schema Schema
	width  uint64
	data   *page.Chain
	rowmap *page.Chain
	mem    MemoryAcquirer

	started  bool
	startID  uint64
	endID    uint64
	cutoffID uint64

	dataOff   uint64 // bit offset of the first retained element
	numElems  uint64 // committed elements
	rowLen    uint64 // elements written to the open row
	rowmapOff uint64 // bit offset of the first retained entry
	numRows   uint64 // row-map entries

	lastLen uint64 // cached last entry, valid while numRows > 0
	lastCnt uint64
	dups    uint64 // rows folded into the previous run

	rowOpen      bool
	rowWritten   bool
	rowCommitted bool
	rowNull      bool

	nulls []uint64 // ids of rows completed as NULL
}

// New returns an empty buffer for schema drawing pages from pool.
func New(schema Schema, pool *page.Pool, opts ...Option) (*Buffer, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	b := &Buffer{
		schema: schema,
		width:  uint64(schema.ElemBits),
		data:   page.NewChain(pool),
		rowmap: page.NewChain(pool),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Schema returns the column schema.
func (b *Buffer) Schema() Schema { return b.schema }

// Name returns the column name.
func (b *Buffer) Name() string { return b.schema.Name }

// StartID returns the first buffered row id.
func (b *Buffer) StartID() uint64 { return b.startID }

// EndID returns the id after the last closed row.
func (b *Buffer) EndID() uint64 { return b.endID }

// CutoffID returns the soft cutoff set by MaxRowSpan.
func (b *Buffer) CutoffID() uint64 { return b.cutoffID }

// BufferedRows returns the number of committed rows not yet flushed.
func (b *Buffer) BufferedRows() uint64 { return b.endID - b.startID }

// NumElems returns the number of committed elements held.
func (b *Buffer) NumElems() uint64 { return b.numElems }

// BufferedBytes returns the payload and row-map size held.
func (b *Buffer) BufferedBytes() int64 {
	bits := b.numElems*b.width + b.numRows*rowmapEntryBits
	return int64(conv.BitsToBytes(bits)) //nolint:gosec // bounded by page allocation
}

// DataPages returns the number of pages in the data chain.
func (b *Buffer) DataPages() int { return b.data.Len() }

// RowmapPages returns the number of pages in the row-map chain.
func (b *Buffer) RowmapPages() int { return b.rowmap.Len() }

// Duplicates returns the number of committed rows that extended the previous
// run instead of adding a row-map entry.
func (b *Buffer) Duplicates() uint64 { return b.dups }

// RowOpen reports whether a row is open.
func (b *Buffer) RowOpen() bool { return b.rowOpen }

// Runs returns the buffered row-map entries in order.
func (b *Buffer) Runs() []pagemap.Run {
	runs := make([]pagemap.Run, 0, b.numRows)
	c := bitcursor.InitHead(b.rowmap, b.rowmapOff, rowmapEntryBits, b.numRows)
	for range b.numRows {
		length, cnt := readEntry(&c)
		runs = append(runs, pagemap.Run{Len: length, Cnt: cnt})
	}
	return runs
}

// Close releases every page. The buffer must not be used afterwards.
func (b *Buffer) Close() {
	b.data.Reset()
	b.rowmap.Reset()
	b.numElems, b.numRows, b.rowLen = 0, 0, 0
	b.dataOff, b.rowmapOff = 0, 0
	b.rowOpen = false
}

// dataEnd returns the bit after the committed payload.
func (b *Buffer) dataEnd() uint64 { return b.dataOff + b.numElems*b.width }

// rowmapEnd returns the bit after the last entry.
func (b *Buffer) rowmapEnd() uint64 { return b.rowmapOff + b.numRows*rowmapEntryBits }

// readEntry reads the entry at the marker of a head cursor and moves past it.
func readEntry(c *bitcursor.Cursor) (length, cnt uint32) {
	var buf [8]byte
	if c.Read(buf[:], 0, rowmapEntryBits) != rowmapEntryBits {
		panic("column: row-map entry truncated")
	}
	return binary.LittleEndian.Uint32(buf[0:]), binary.LittleEndian.Uint32(buf[4:])
}

// writeEntry stores entry i. Room must already be reserved.
func (b *Buffer) writeEntry(i uint64, length, cnt uint64) {
	l, err := conv.Uint64ToUint32(length)
	if err != nil {
		panic(fmt.Sprintf("column: row length %d overflows entry", length))
	}
	n, err := conv.Uint64ToUint32(cnt)
	if err != nil {
		panic(fmt.Sprintf("column: repeat count %d overflows entry", cnt))
	}

	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:], l)
	binary.LittleEndian.PutUint32(buf[4:], n)
	c := bitcursor.InitHead(b.rowmap, b.rowmapOff+i*rowmapEntryBits, rowmapEntryBits, 1)
	bitcursor.CopyIn(&c, buf[:], 0)
}
