package column

import (
	"math"

	"github.com/hupe1980/colbuf/internal/bitcursor"
)

// isDuplicate reports whether the open row repeats the last committed run.
func (b *Buffer) isDuplicate() bool {
	if b.numRows == 0 || b.lastLen != b.rowLen || b.lastCnt == math.MaxUint32 {
		return false
	}
	if b.rowLen == 0 {
		return true
	}

	// The previous run's payload ends where the new row starts.
	cur := bitcursor.InitTail(b.data, b.dataEnd(), b.schema.ElemBits, b.rowLen)
	prev, ok := cur.Preceding()
	if !ok || prev.Start() < b.dataOff {
		panic("column: previous run payload missing")
	}
	return bitcursor.EqualReverse(&cur, &prev)
}
