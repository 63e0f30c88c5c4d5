// Package mmap provides memory mappings for page buffers and blob files.
//
// Two kinds of mappings are used:
//
//   - MapAnon creates zeroed, read-write anonymous memory outside the Go heap.
//     The page pool uses it for off-heap page buffers so that large write
//     buffers do not add GC scan work.
//   - Open maps a file read-only. The local blob store serves Open calls with it.
//
// # Usage
//
//	m, err := mmap.MapAnon(32 << 10)
//	if err != nil { ... }
//	defer m.Close()
//	buf := m.Bytes()
//
// # Platform Support
//
//   - Unix: mmap(2) / munmap(2), with madvise(2) for access hints
//   - Windows: CreateFileMapping/MapViewOfFile and VirtualAlloc (advice is a no-op)
//
// Close is idempotent. Callers must not touch Bytes() after Close returns.
package mmap
