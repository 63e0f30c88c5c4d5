package colbuf

import (
	"github.com/hupe1980/colbuf/internal/bitpack"
	"github.com/hupe1980/colbuf/internal/column"
)

type (
	// Schema describes one column.
	Schema = column.Schema

	// Default is the value written into a row that leaves a column unwritten.
	Default = column.Default
)

// noFlush is the hint that requests no flush.
const noFlush = column.NoFlush

// NullDefault returns a default that completes rows as NULL.
func NullDefault() *Default { return column.NullDefault() }

// ValueDefault returns a default holding the elements of v. v must use the
// element width of the column it is registered on.
func ValueDefault(v Value) *Default {
	return &Default{Data: v.Data, BitOffset: v.BitOffset, Count: v.Count}
}

// Value is the content written to one column of a row: Count elements of
// ElemBits bits each, read from Data starting at bit BitOffset.
//
// ElemBits may differ from the column width when one is a multiple of the
// other, as long as the value covers whole column elements.
type Value struct {
	ElemBits  uint
	Data      []byte
	BitOffset uint64
	Count     uint64

	// Null leaves the column unwritten so that its default applies.
	Null bool
}

// Row maps column names to values. Columns absent from the row receive their
// default.
type Row map[string]Value

// Bits packs values into a Value of width-bit elements.
func Bits(width uint, values ...uint64) Value {
	return Value{
		ElemBits: width,
		Data:     bitpack.Pack(width, values...),
		Count:    uint64(len(values)),
	}
}

// Bytes wraps b as a Value of 8-bit elements.
func Bytes(b []byte) Value {
	return Value{ElemBits: 8, Data: b, Count: uint64(len(b))}
}

// Empty returns a zero-length Value of width-bit elements.
func Empty(width uint) Value {
	return Value{ElemBits: width}
}

// Null returns a Value that leaves the column to its default.
func Null() Value {
	return Value{Null: true}
}
