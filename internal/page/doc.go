// Package page provides the fixed-size page arena that backs column write buffers.
//
// # Pages and IDs
//
// A Page is a fixed-size byte buffer. Pages live in slots owned by a Pool and are
// addressed by ID, a (slot, generation) pair. Every release bumps the slot's
// generation, so an ID held past the page's retirement is detected as stale
// instead of silently aliasing a recycled buffer.
//
// # Pool
//
// The Pool hands out pages and takes them back:
//
//   - Acquire reuses a pooled page if one is cached, otherwise allocates a new
//     one while the allocation ceiling (AllocLimit) allows it, otherwise fails
//     with ErrResourceExhausted.
//   - Release clears the page and caches it while fewer than PoolLimit pages are
//     cached; otherwise the buffer is freed and the allocation count drops.
//
// Page buffers can live off-heap (anonymous mmap) and are charged against an
// optional MemoryAcquirer, usually a resource.Controller shared by a writer.
//
// # Chains
//
// A Chain is a doubly linked list of pages, linked through the slots' prev/next
// IDs. A page is linked into at most one chain at a time.
//
// # Concurrency
//
// Pool and Chain are not safe for concurrent use. A pool shared by several
// column buffers must be driven from one goroutine or guarded by the caller.
package page
