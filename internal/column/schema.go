package column

import (
	"fmt"
	"math"
)

// NoFlush is the flush hint that requests no flush.
const NoFlush uint64 = math.MaxUint64

// Default is the value written into a row that received no write.
type Default struct {
	// Null marks rows completed by this default as NULL. Data is ignored.
	Null bool

	// Data holds Count elements of the column's width starting at BitOffset.
	Data      []byte
	BitOffset uint64
	Count     uint64
}

// NullDefault returns a default that completes rows as NULL.
func NullDefault() *Default { return &Default{Null: true} }

// Schema describes one column.
type Schema struct {
	Name     string
	ElemBits uint     // native element width, 1..64
	Default  *Default // nil means rows must be written

	// TriggerBytes requests a flush once the buffered payload reaches this
	// size. Zero disables the trigger.
	TriggerBytes int64

	// MaxRowSpan bounds the number of buffered rows. Zero disables the bound.
	MaxRowSpan uint64
}

// Validate checks the schema.
func (s Schema) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidSchema)
	}
	if s.ElemBits == 0 || s.ElemBits > 64 {
		return fmt.Errorf("%w: %s: element width %d", ErrInvalidSchema, s.Name, s.ElemBits)
	}
	if s.TriggerBytes < 0 {
		return fmt.Errorf("%w: %s: negative trigger", ErrInvalidSchema, s.Name)
	}
	if d := s.Default; d != nil && !d.Null {
		if need := d.BitOffset + d.Count*uint64(s.ElemBits); need > uint64(len(d.Data))*8 {
			return fmt.Errorf("%w: %s: default holds %d bits, need %d", ErrInvalidSchema, s.Name, len(d.Data)*8, need)
		}
	}
	return nil
}
