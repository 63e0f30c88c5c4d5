package colbuf

import (
	"errors"
	"fmt"

	"github.com/hupe1980/colbuf/internal/column"
)

var (
	// ErrResourceExhausted is returned when the page pool or the memory limit
	// cannot serve an allocation. The failed operation leaves no trace.
	ErrResourceExhausted = column.ErrResourceExhausted

	// ErrTypeMismatch is returned when a value's element width does not fit the
	// column width.
	ErrTypeMismatch = column.ErrTypeMismatch

	// ErrSequenceViolation is returned when an operation is called out of order.
	ErrSequenceViolation = column.ErrSequenceViolation

	// ErrIncompleteRow is returned when a row leaves a column without a default
	// unwritten.
	ErrIncompleteRow = column.ErrIncompleteRow

	// ErrInvalidSchema is returned by New for a malformed column schema.
	ErrInvalidSchema = column.ErrInvalidSchema

	// ErrShortBuffer is returned when a value's buffer holds fewer bits than
	// its element count requires.
	ErrShortBuffer = column.ErrShortBuffer

	// ErrUnknownColumn is returned when a row names a column the writer does
	// not have.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrDuplicateColumn is returned by New when two schemas share a name.
	ErrDuplicateColumn = errors.New("duplicate column")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("writer closed")
)

// ColumnError reports a failure on one column of one row.
//
// The underlying kind can be tested with errors.Is.
type ColumnError struct {
	Column string
	RowID  uint64
	Err    error
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("column %q row %d: %v", e.Column, e.RowID, e.Err)
}

func (e *ColumnError) Unwrap() error { return e.Err }
