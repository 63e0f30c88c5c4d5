package colbuf

import (
	"github.com/hupe1980/colbuf/internal/page"
)

type options struct {
	pageSize            int
	poolLimit           int
	allocLimit          int
	memoryLimit         int64
	ioLimit             int64
	deliveryConcurrency int
	offHeap             bool
	startRowID          uint64
	incompleteRows      IncompleteRowPolicy
	logger              *Logger
	metricsCollector    MetricsCollector
}

// Option configures a Writer.
type Option func(*options)

// WithPageSize sets the size in bytes of the pages that back every column.
// Default: 32 KiB.
func WithPageSize(bytes int) Option {
	return func(o *options) {
		o.pageSize = bytes
	}
}

// WithPoolLimit bounds the number of released pages kept for reuse.
// Zero disables caching. Default: 64.
func WithPoolLimit(n int) Option {
	return func(o *options) {
		o.poolLimit = n
	}
}

// WithAllocLimit caps the number of pages allocated at any time across all
// columns. Zero means unlimited.
//
// Appends that would need more pages fail with ErrResourceExhausted and leave
// the writer unchanged.
func WithAllocLimit(n int) Option {
	return func(o *options) {
		o.allocLimit = n
	}
}

// WithMemoryLimit caps the bytes held by page buffers and by flushed blobs
// that have not been released. Zero means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithIOLimit throttles blob delivery to bytesPerSec bytes of element payload
// per second. Zero means unlimited.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithDeliveryConcurrency bounds the number of blobs delivered in parallel
// after a flush. Default: one per column.
func WithDeliveryConcurrency(n int) Option {
	return func(o *options) {
		o.deliveryConcurrency = n
	}
}

// WithOffHeapPages allocates page buffers with anonymous mmap, outside the Go
// heap.
func WithOffHeapPages() Option {
	return func(o *options) {
		o.offHeap = true
	}
}

// WithStartRowID sets the id of the first appended row. Use it to resume a
// row id sequence after a restart.
func WithStartRowID(id uint64) Option {
	return func(o *options) {
		o.startRowID = id
	}
}

// IncompleteRowPolicy selects how Append treats a row that leaves a column
// without a default unwritten.
type IncompleteRowPolicy int

const (
	// AbandonIncompleteRow rolls the row back on every column and returns
	// ErrIncompleteRow. This is the default.
	AbandonIncompleteRow IncompleteRowPolicy = iota

	// NullIncompleteRow completes the unwritten column as NULL and logs a
	// warning. The row is committed.
	NullIncompleteRow
)

// WithIncompleteRowPolicy sets how Append treats incomplete rows.
func WithIncompleteRowPolicy(p IncompleteRowPolicy) Option {
	return func(o *options) {
		o.incompleteRows = p
	}
}

// WithLogger configures structured logging.
//
// Example:
//
//	logger := colbuf.NewJSONLogger(slog.LevelDebug)
//	w, err := colbuf.New(s, schemas, colbuf.WithLogger(logger))
//
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures metrics collection.
//
// Example:
//
//	metrics := &colbuf.BasicMetricsCollector{}
//	w, err := colbuf.New(s, schemas, colbuf.WithMetricsCollector(metrics))
//	...
//	stats := metrics.GetStats()
//
// If nil is passed, NoopMetricsCollector is used.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

func applyOptions(optFns ...Option) options {
	o := options{
		pageSize:         page.DefaultPageSize,
		poolLimit:        64,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
