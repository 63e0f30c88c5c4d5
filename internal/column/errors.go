package column

import "errors"

var (
	// ErrResourceExhausted is returned when pages or memory cannot be acquired.
	// The failed operation leaves the buffer unchanged.
	ErrResourceExhausted = errors.New("column: resource exhausted")

	// ErrTypeMismatch is returned when a write's element width is incompatible
	// with the column. The row stays open for a retried write.
	ErrTypeMismatch = errors.New("column: type mismatch")

	// ErrSequenceViolation is returned for out-of-order row ids and calls made
	// in the wrong row state.
	ErrSequenceViolation = errors.New("column: sequence violation")

	// ErrIncompleteRow is returned when a row without data has no default.
	ErrIncompleteRow = errors.New("column: incomplete row")

	// ErrInvalidSchema is returned by New for an unusable schema.
	ErrInvalidSchema = errors.New("column: invalid schema")

	// ErrShortBuffer is returned when a write's source buffer is too small.
	ErrShortBuffer = errors.New("column: short buffer")
)
