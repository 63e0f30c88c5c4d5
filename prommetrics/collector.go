// Package prommetrics exports writer metrics to Prometheus.
package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/colbuf"
)

const namespace = "colbuf"

// Collector implements colbuf.MetricsCollector with Prometheus metrics.
type Collector struct {
	Appends        *prometheus.CounterVec
	AppendLatency  prometheus.Histogram
	Abandons       prometheus.Counter
	Flushes        *prometheus.CounterVec
	FlushedRows    *prometheus.CounterVec
	FlushedElems   *prometheus.CounterVec
	FlushLatency   *prometheus.HistogramVec
	Deliveries     *prometheus.CounterVec
	DeliveredBytes *prometheus.CounterVec
	DeliverLatency *prometheus.HistogramVec
}

var _ colbuf.MetricsCollector = (*Collector)(nil)

// NewCollector creates and registers all metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		Appends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appends_total",
			Help:      "Rows passed to Append, by result",
		}, []string{"status"}),
		AppendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "append_duration_seconds",
			Help:      "Append latency, including any flush it triggered",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		Abandons: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "abandoned_rows_total",
			Help:      "Rows rolled back on every column",
		}),
		Flushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flushes_total",
			Help:      "Column flushes, by result",
		}, []string{"column", "status"}),
		FlushedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flushed_rows_total",
			Help:      "Rows moved into blobs",
		}, []string{"column"}),
		FlushedElems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flushed_elements_total",
			Help:      "Elements moved into blobs after run-length compaction",
		}, []string{"column"}),
		FlushLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flush_duration_seconds",
			Help:      "Column flush latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"column"}),
		Deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Blob deliveries, by result",
		}, []string{"column", "status"}),
		DeliveredBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivered_bytes_total",
			Help:      "Element bytes of delivered blobs",
		}, []string{"column"}),
		DeliverLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "deliver_duration_seconds",
			Help:      "Blob delivery latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"column"}),
	}

	reg.MustRegister(
		c.Appends,
		c.AppendLatency,
		c.Abandons,
		c.Flushes,
		c.FlushedRows,
		c.FlushedElems,
		c.FlushLatency,
		c.Deliveries,
		c.DeliveredBytes,
		c.DeliverLatency,
	)
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordAppend implements colbuf.MetricsCollector.
func (c *Collector) RecordAppend(d time.Duration, err error) {
	c.Appends.WithLabelValues(status(err)).Inc()
	c.AppendLatency.Observe(d.Seconds())
}

// RecordAbandon implements colbuf.MetricsCollector.
func (c *Collector) RecordAbandon() {
	c.Abandons.Inc()
}

// RecordFlush implements colbuf.MetricsCollector.
func (c *Collector) RecordFlush(column string, rows, elems uint64, d time.Duration, err error) {
	c.Flushes.WithLabelValues(column, status(err)).Inc()
	c.FlushLatency.WithLabelValues(column).Observe(d.Seconds())
	if err != nil {
		return
	}
	c.FlushedRows.WithLabelValues(column).Add(float64(rows))
	c.FlushedElems.WithLabelValues(column).Add(float64(elems))
}

// RecordDeliver implements colbuf.MetricsCollector.
func (c *Collector) RecordDeliver(column string, bytes int, d time.Duration, err error) {
	c.Deliveries.WithLabelValues(column, status(err)).Inc()
	c.DeliverLatency.WithLabelValues(column).Observe(d.Seconds())
	if err != nil {
		return
	}
	c.DeliveredBytes.WithLabelValues(column).Add(float64(bytes))
}
