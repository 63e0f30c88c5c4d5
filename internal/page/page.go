package page

import (
	"errors"
	"fmt"

	"github.com/hupe1980/colbuf/internal/mmap"
)

const (
	// DefaultPageSize is the default page size in bytes (32 KiB, 262144 bits).
	DefaultPageSize = 32 << 10
)

var (
	// ErrResourceExhausted is returned when no pooled page is available and the
	// allocation ceiling (or the memory limit) has been reached.
	ErrResourceExhausted = errors.New("page: resource exhausted")

	// ErrInvalidPageSize is returned for a non-positive page size.
	ErrInvalidPageSize = errors.New("page: invalid page size")
)

// ID identifies a page slot at a specific generation. The zero ID is Nil.
type ID struct {
	slot uint32 // slot index + 1
	gen  uint32
}

// Nil is the ID of no page.
var Nil ID

// IsNil reports whether id refers to no page.
func (id ID) IsNil() bool { return id.slot == 0 }

func (id ID) String() string {
	if id.IsNil() {
		return "page(nil)"
	}
	return fmt.Sprintf("page(%d@%d)", id.slot-1, id.gen)
}

type slotState uint8

const (
	stateVacant slotState = iota // no buffer
	statePooled                  // buffer cached in the pool
	stateInUse                   // handed out by Acquire
)

// Page is a pool slot: a buffer plus its chain links.
type Page struct {
	data    []byte
	mapping *mmap.Mapping
	gen     uint32
	state   slotState
	prev    ID
	next    ID
}
