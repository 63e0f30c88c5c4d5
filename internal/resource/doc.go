// Package resource governs the memory and IO budget of a writer.
//
//	┌──────────────────────────────────────────────┐
//	│                  Controller                  │
//	├──────────────────────┬───────────────────────┤
//	│  Memory Limit        │  IO Rate Limiter      │
//	│  (fail-fast)         │  (token bucket)       │
//	├──────────────────────┼───────────────────────┤
//	│  AcquireMemory       │  AcquireIO            │
//	│  ReleaseMemory       │                       │
//	│  Tracked             │                       │
//	│  MemoryUsage / Peak  │                       │
//	└──────────────────────┴───────────────────────┘
//
// # Memory
//
// Page buffers and blob buffers are "managed memory". The page pool reserves
// one page worth of bytes before allocating a page and releases it when the
// page is freed. A flush charges the blob size through Tracked, which never
// fails, and the blob releases it once delivered: a full budget stops new
// pages but never blocks the flush that drains it. AcquireMemory never
// blocks, since the write path is synchronous:
//
//	rc := resource.NewController(resource.Config{MemoryLimitBytes: 64 << 20})
//	if err := rc.AcquireMemory(32 << 10); err != nil {
//	    // ErrMemoryLimitExceeded
//	}
//	defer rc.ReleaseMemory(32 << 10)
//
//	blobs := rc.Tracked() // always succeeds, still counted
//
// # IO
//
// Blob delivery to object storage is throttled with a token bucket:
//
//	if err := rc.AcquireIO(ctx, len(encoded)); err != nil {
//	    return err
//	}
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully; they become no-ops.
package resource
