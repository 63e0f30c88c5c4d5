// Package pagemap records per-row element boundaries inside a flushed blob.
//
// A PageMap is a sequence of runs. A run (Len, Cnt) describes Cnt consecutive
// rows of Len elements each that share the same element storage: the run's
// Len elements are stored once and every row of the run reads them.
package pagemap

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"sort"
)

// ErrInvalidEncoding is returned when decoding malformed page-map bytes.
var ErrInvalidEncoding = errors.New("pagemap: invalid encoding")

// Run is Cnt consecutive rows of Len elements sharing storage.
type Run struct {
	Len uint32
	Cnt uint32
}

// PageMap maps row offsets to element ranges.
type PageMap struct {
	runs     []Run
	rowEnds  []uint64 // cumulative row count after each run
	elemOffs []uint64 // element offset of each run
	numRows  uint64
	numElems uint64
}

// New returns an empty PageMap.
func New() *PageMap {
	return &PageMap{}
}

// AppendRun appends cnt rows of length elements that share storage.
// A zero count is ignored.
func (m *PageMap) AppendRun(length, cnt uint32) {
	if cnt == 0 {
		return
	}
	m.runs = append(m.runs, Run{Len: length, Cnt: cnt})
	m.elemOffs = append(m.elemOffs, m.numElems)
	m.numRows += uint64(cnt)
	m.numElems += uint64(length)
	m.rowEnds = append(m.rowEnds, m.numRows)
}

// NumRows returns the number of rows.
func (m *PageMap) NumRows() uint64 { return m.numRows }

// NumElems returns the number of stored elements.
func (m *PageMap) NumElems() uint64 { return m.numElems }

// Runs returns a copy of the runs in order.
func (m *PageMap) Runs() []Run { return slices.Clone(m.runs) }

// Row returns the element offset and length of row i.
func (m *PageMap) Row(i uint64) (off uint64, length uint32, ok bool) {
	if i >= m.numRows {
		return 0, 0, false
	}
	r := sort.Search(len(m.rowEnds), func(j int) bool { return m.rowEnds[j] > i })
	return m.elemOffs[r], m.runs[r].Len, true
}

// AppendBinary appends the encoding of m to b: the run count followed by
// (len, cnt) pairs, all uvarints.
func (m *PageMap) AppendBinary(b []byte) ([]byte, error) {
	b = binary.AppendUvarint(b, uint64(len(m.runs)))
	for _, r := range m.runs {
		b = binary.AppendUvarint(b, uint64(r.Len))
		b = binary.AppendUvarint(b, uint64(r.Cnt))
	}
	return b, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m *PageMap) MarshalBinary() ([]byte, error) {
	return m.AppendBinary(nil)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (m *PageMap) UnmarshalBinary(data []byte) error {
	n, rest, err := uvarint(data)
	if err != nil {
		return err
	}
	// each run needs at least two bytes
	if n > uint64(len(rest))/2 {
		return fmt.Errorf("%w: %d runs in %d bytes", ErrInvalidEncoding, n, len(rest))
	}

	*m = PageMap{}
	for range n {
		var length, cnt uint64
		if length, rest, err = uvarint(rest); err != nil {
			return err
		}
		if cnt, rest, err = uvarint(rest); err != nil {
			return err
		}
		if length > uint64(^uint32(0)) || cnt > uint64(^uint32(0)) || cnt == 0 {
			return fmt.Errorf("%w: run (%d, %d)", ErrInvalidEncoding, length, cnt)
		}
		m.AppendRun(uint32(length), uint32(cnt))
	}
	if len(rest) != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrInvalidEncoding, len(rest))
	}
	return nil
}

func uvarint(b []byte) (uint64, []byte, error) {
	v, n := binary.Uvarint(b)
	if n <= 0 {
		return 0, nil, fmt.Errorf("%w: bad uvarint", ErrInvalidEncoding)
	}
	return v, b[n:], nil
}
