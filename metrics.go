package colbuf

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// prommetrics package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordAppend is called after each Append. err is nil if the row was
	// committed on every column.
	RecordAppend(duration time.Duration, err error)

	// RecordAbandon is called when a row is abandoned on every column.
	RecordAbandon()

	// RecordFlush is called after each column flush.
	RecordFlush(column string, rows, elems uint64, duration time.Duration, err error)

	// RecordDeliver is called after each blob delivery. bytes is the size of
	// the blob's element buffer.
	RecordDeliver(column string, bytes int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAppend(time.Duration, error)                        {}
func (NoopMetricsCollector) RecordAbandon()                                           {}
func (NoopMetricsCollector) RecordFlush(string, uint64, uint64, time.Duration, error) {}
func (NoopMetricsCollector) RecordDeliver(string, int, time.Duration, error)          {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AppendCount      atomic.Int64
	AppendErrors     atomic.Int64
	AppendTotalNanos atomic.Int64
	AbandonCount     atomic.Int64
	FlushCount       atomic.Int64
	FlushErrors      atomic.Int64
	FlushedRows      atomic.Int64
	FlushedElems     atomic.Int64
	DeliverCount     atomic.Int64
	DeliverErrors    atomic.Int64
	DeliveredBytes   atomic.Int64
}

// RecordAppend implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAppend(duration time.Duration, err error) {
	b.AppendCount.Add(1)
	b.AppendTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AppendErrors.Add(1)
	}
}

// RecordAbandon implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAbandon() {
	b.AbandonCount.Add(1)
}

// RecordFlush implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFlush(_ string, rows, elems uint64, _ time.Duration, err error) {
	b.FlushCount.Add(1)
	if err != nil {
		b.FlushErrors.Add(1)
		return
	}
	b.FlushedRows.Add(int64(rows))   //nolint:gosec // counters
	b.FlushedElems.Add(int64(elems)) //nolint:gosec // counters
}

// RecordDeliver implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDeliver(_ string, bytes int, _ time.Duration, err error) {
	b.DeliverCount.Add(1)
	if err != nil {
		b.DeliverErrors.Add(1)
		return
	}
	b.DeliveredBytes.Add(int64(bytes))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		AppendCount:    b.AppendCount.Load(),
		AppendErrors:   b.AppendErrors.Load(),
		AbandonCount:   b.AbandonCount.Load(),
		FlushCount:     b.FlushCount.Load(),
		FlushErrors:    b.FlushErrors.Load(),
		FlushedRows:    b.FlushedRows.Load(),
		FlushedElems:   b.FlushedElems.Load(),
		DeliverCount:   b.DeliverCount.Load(),
		DeliverErrors:  b.DeliverErrors.Load(),
		DeliveredBytes: b.DeliveredBytes.Load(),
	}
	if s.AppendCount > 0 {
		s.AppendAvgNanos = b.AppendTotalNanos.Load() / s.AppendCount
	}
	return s
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AppendCount    int64
	AppendErrors   int64
	AppendAvgNanos int64
	AbandonCount   int64
	FlushCount     int64
	FlushErrors    int64
	FlushedRows    int64
	FlushedElems   int64
	DeliverCount   int64
	DeliverErrors  int64
	DeliveredBytes int64
}
