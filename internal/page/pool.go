package page

import (
	"errors"
	"fmt"

	"github.com/hupe1980/colbuf/internal/mmap"
)

// MemoryAcquirer reserves and releases managed memory.
type MemoryAcquirer interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

// Stats tracks pool usage.
type Stats struct {
	PageSize   int
	PoolCount  int    // pages currently cached
	PoolLimit  int    // cache bound
	AllocCount int    // pages currently allocated (cached + in use)
	AllocLimit int    // allocation ceiling (0 = unlimited)
	InUse      int    // pages currently linked or handed out
	Acquired   uint64 // historical: Acquire calls that succeeded
	Reused     uint64 // historical: acquisitions served from the cache
	Released   uint64 // historical: Release calls
	Freed      uint64 // historical: buffers dropped because the cache was full
}

// Option configures a Pool.
type Option func(*Pool)

// WithPoolLimit bounds the number of released pages kept for reuse.
func WithPoolLimit(n int) Option {
	return func(p *Pool) {
		p.poolLimit = max(n, 0)
	}
}

// WithAllocLimit sets the allocation ceiling. Zero means unlimited.
func WithAllocLimit(n int) Option {
	return func(p *Pool) {
		p.allocLimit = max(n, 0)
	}
}

// WithMemoryAcquirer charges page buffers against acquirer.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(p *Pool) {
		p.acquirer = acquirer
	}
}

// WithOffHeap allocates page buffers with anonymous mmap instead of the Go heap.
func WithOffHeap() Option {
	return func(p *Pool) {
		p.offHeap = true
	}
}

// Pool is a bounded cache of page buffers and the slot arena that owns them.
type Pool struct {
	pageSize   int
	poolLimit  int
	allocLimit int
	offHeap    bool
	acquirer   MemoryAcquirer

	slots  []*Page
	pooled []uint32 // slot indexes holding a cached buffer
	vacant []uint32 // slot indexes without a buffer

	allocCount int
	inUse      int
	acquired   uint64
	reused     uint64
	released   uint64
	freed      uint64
}

// NewPool creates a pool of pageSize-byte pages.
// By default up to 64 released pages are cached and allocation is unlimited.
func NewPool(pageSize int, opts ...Option) (*Pool, error) {
	if pageSize <= 0 {
		return nil, ErrInvalidPageSize
	}

	p := &Pool{
		pageSize:  pageSize,
		poolLimit: 64,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// PageSize returns the page size in bytes.
func (p *Pool) PageSize() int { return p.pageSize }

// PageBits returns the page capacity in bits.
func (p *Pool) PageBits() uint64 { return uint64(p.pageSize) << 3 }

// Acquire returns a zeroed, unlinked page.
func (p *Pool) Acquire() (ID, error) {
	if n := len(p.pooled); n > 0 {
		idx := p.pooled[n-1]
		p.pooled = p.pooled[:n-1]
		pg := p.slots[idx]
		pg.state = stateInUse
		p.inUse++
		p.acquired++
		p.reused++
		return ID{slot: idx + 1, gen: pg.gen}, nil
	}

	if p.allocLimit > 0 && p.allocCount >= p.allocLimit {
		return Nil, fmt.Errorf("%w: %d of %d pages allocated", ErrResourceExhausted, p.allocCount, p.allocLimit)
	}

	if p.acquirer != nil {
		if err := p.acquirer.AcquireMemory(int64(p.pageSize)); err != nil {
			return Nil, fmt.Errorf("%w: %w", ErrResourceExhausted, err)
		}
	}

	var (
		data    []byte
		mapping *mmap.Mapping
	)
	if p.offHeap {
		m, err := mmap.MapAnon(p.pageSize)
		if err != nil {
			if p.acquirer != nil {
				p.acquirer.ReleaseMemory(int64(p.pageSize))
			}
			return Nil, fmt.Errorf("%w: map page: %w", ErrResourceExhausted, err)
		}
		mapping = m
		data = m.Bytes()
	} else {
		data = make([]byte, p.pageSize)
	}

	var idx uint32
	if n := len(p.vacant); n > 0 {
		idx = p.vacant[n-1]
		p.vacant = p.vacant[:n-1]
	} else {
		idx = uint32(len(p.slots)) //nolint:gosec // slot count is bounded by memory
		p.slots = append(p.slots, &Page{gen: 1})
	}

	pg := p.slots[idx]
	pg.data = data
	pg.mapping = mapping
	pg.state = stateInUse
	pg.prev, pg.next = Nil, Nil

	p.allocCount++
	p.inUse++
	p.acquired++
	return ID{slot: idx + 1, gen: pg.gen}, nil
}

// Release returns a page to the pool, or frees it when the cache is full.
// The page must be unlinked. Its ID becomes stale.
func (p *Pool) Release(id ID) {
	pg := p.page(id)
	if !pg.prev.IsNil() || !pg.next.IsNil() {
		panic(fmt.Sprintf("page: release of linked %s", id))
	}

	idx := id.slot - 1
	pg.gen++
	p.inUse--
	p.released++

	if len(p.pooled) < p.poolLimit {
		clear(pg.data)
		pg.state = statePooled
		p.pooled = append(p.pooled, idx)
		return
	}

	p.free(pg)
	p.vacant = append(p.vacant, idx)
	p.freed++
}

func (p *Pool) free(pg *Page) {
	if pg.mapping != nil {
		_ = pg.mapping.Close()
		pg.mapping = nil
	}
	pg.data = nil
	pg.state = stateVacant
	p.allocCount--
	if p.acquirer != nil {
		p.acquirer.ReleaseMemory(int64(p.pageSize))
	}
}

// Bytes returns the buffer of an acquired page.
func (p *Pool) Bytes(id ID) []byte {
	return p.page(id).data
}

// Valid reports whether id refers to a page that is currently acquired.
func (p *Pool) Valid(id ID) bool {
	if id.IsNil() || int(id.slot) > len(p.slots) {
		return false
	}
	pg := p.slots[id.slot-1]
	return pg.gen == id.gen && pg.state == stateInUse
}

// page resolves id, panicking on a stale or foreign id.
func (p *Pool) page(id ID) *Page {
	if !p.Valid(id) {
		panic(fmt.Sprintf("page: stale or invalid %s", id))
	}
	return p.slots[id.slot-1]
}

// Stats returns a snapshot of pool counters.
func (p *Pool) Stats() Stats {
	return Stats{
		PageSize:   p.pageSize,
		PoolCount:  len(p.pooled),
		PoolLimit:  p.poolLimit,
		AllocCount: p.allocCount,
		AllocLimit: p.allocLimit,
		InUse:      p.inUse,
		Acquired:   p.acquired,
		Reused:     p.reused,
		Released:   p.released,
		Freed:      p.freed,
	}
}

// Close frees every cached page. Pages still in use stay valid; callers
// release their chains first.
func (p *Pool) Close() error {
	var errs []error
	for _, idx := range p.pooled {
		pg := p.slots[idx]
		if pg.mapping != nil {
			if err := pg.mapping.Close(); err != nil {
				errs = append(errs, err)
			}
			pg.mapping = nil
		}
		pg.data = nil
		pg.state = stateVacant
		p.allocCount--
		p.freed++
		if p.acquirer != nil {
			p.acquirer.ReleaseMemory(int64(p.pageSize))
		}
		p.vacant = append(p.vacant, idx)
	}
	p.pooled = p.pooled[:0]
	return errors.Join(errs...)
}

func (p *Pool) String() string {
	s := p.Stats()
	return fmt.Sprintf("Pool{page: %d B, pooled: %d/%d, allocated: %d/%d, in use: %d}",
		s.PageSize, s.PoolCount, s.PoolLimit, s.AllocCount, s.AllocLimit, s.InUse)
}
