package colbuf

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/colbuf/blob"
	"github.com/hupe1980/colbuf/internal/column"
	"github.com/hupe1980/colbuf/internal/page"
	"github.com/hupe1980/colbuf/internal/resource"
	"github.com/hupe1980/colbuf/sink"
)

// Writer appends rows to a set of column buffers and delivers flushed blobs
// to a sink.
//
// All methods are safe for concurrent use; calls are serialized.
type Writer struct {
	mu   sync.Mutex
	opts options
	sink sink.Sink
	rc   *resource.Controller
	pool *page.Pool

	columns []*column.Buffer
	index   map[string]int

	nextID uint64
	closed bool
}

// New creates a writer for the given columns. Blobs are handed to s.
func New(s sink.Sink, schemas []Schema, optFns ...Option) (*Writer, error) {
	if s == nil {
		return nil, errors.New("sink is nil")
	}
	if len(schemas) == 0 {
		return nil, fmt.Errorf("%w: no columns", ErrInvalidSchema)
	}

	o := applyOptions(optFns...)

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   o.memoryLimit,
		IOLimitBytesPerSec: o.ioLimit,
	})

	poolOpts := []page.Option{
		page.WithPoolLimit(o.poolLimit),
		page.WithAllocLimit(o.allocLimit),
		page.WithMemoryAcquirer(rc),
	}
	if o.offHeap {
		poolOpts = append(poolOpts, page.WithOffHeap())
	}
	pool, err := page.NewPool(o.pageSize, poolOpts...)
	if err != nil {
		return nil, fmt.Errorf("page pool: %w", err)
	}

	w := &Writer{
		opts:    o,
		sink:    s,
		rc:      rc,
		pool:    pool,
		columns: make([]*column.Buffer, 0, len(schemas)),
		index:   make(map[string]int, len(schemas)),
		nextID:  o.startRowID,
	}
	for _, schema := range schemas {
		if _, ok := w.index[schema.Name]; ok {
			_ = w.release()
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, schema.Name)
		}
		// Blobs are charged without a limit check so that a full budget
		// can still be flushed.
		buf, err := column.New(schema, pool, column.WithMemoryAcquirer(rc.Tracked()))
		if err != nil {
			_ = w.release()
			return nil, err
		}
		w.index[schema.Name] = len(w.columns)
		w.columns = append(w.columns, buf)
	}

	return w, nil
}

// Append writes row to every column and returns its row id.
//
// The row is committed on all columns or on none: on error every column is
// rolled back and the row id is not consumed. When a column asks for a flush,
// all columns are flushed to the same row id and the blobs are delivered
// before Append returns; a flush or delivery error is returned together with
// the id of the committed row.
func (w *Writer) Append(ctx context.Context, row Row) (uint64, error) {
	start := time.Now()

	w.mu.Lock()
	defer w.mu.Unlock()

	id, err := w.append(ctx, row)
	w.opts.metricsCollector.RecordAppend(time.Since(start), err)
	return id, err
}

func (w *Writer) append(ctx context.Context, row Row) (uint64, error) {
	if w.closed {
		return 0, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	id := w.nextID
	for name := range row {
		if _, ok := w.index[name]; !ok {
			return 0, &ColumnError{Column: name, RowID: id, Err: ErrUnknownColumn}
		}
	}

	// Prepare every column before committing any, so that a failure leaves
	// no column ahead of the others.
	for i, buf := range w.columns {
		opened, err := w.prepare(ctx, buf, id, row)
		if err != nil {
			n := i
			if opened {
				n++
			}
			cerr := &ColumnError{Column: buf.Name(), RowID: id, Err: err}
			w.abandon(ctx, id, w.columns[:n], cerr)
			return 0, cerr
		}
	}

	hint := noFlush
	for _, buf := range w.columns {
		h, err := buf.CommitRow(hint)
		if err != nil {
			panic(fmt.Sprintf("colbuf: commit %s row %d after prepare: %v", buf.Name(), id, err))
		}
		hint = h
	}
	for _, buf := range w.columns {
		closeRow(buf)
	}
	w.nextID++
	w.opts.logger.LogAppend(ctx, id, hint)

	if hint != noFlush {
		if err := w.flush(ctx, hint); err != nil {
			return id, err
		}
	}
	return id, nil
}

// prepare opens row id on buf and writes its value or default. opened reports
// whether the row was left open.
func (w *Writer) prepare(ctx context.Context, buf *column.Buffer, id uint64, row Row) (opened bool, err error) {
	if err := buf.OpenRow(id); err != nil {
		return false, err
	}
	if v, ok := row[buf.Name()]; ok && !v.Null {
		if err := buf.Write(v.ElemBits, v.Data, v.BitOffset, v.Count); err != nil {
			return true, err
		}
	}

	err = buf.ApplyDefaultIfUnwritten()
	if errors.Is(err, ErrIncompleteRow) && w.opts.incompleteRows == NullIncompleteRow {
		w.opts.logger.WithColumn(buf.Name()).WithRowID(id).LogNullFill(ctx, err)
		return true, buf.WriteNull()
	}
	return true, err
}

func (w *Writer) abandon(ctx context.Context, id uint64, opened []*column.Buffer, err error) {
	for _, buf := range opened {
		closeRow(buf)
	}
	w.opts.metricsCollector.RecordAbandon()
	w.opts.logger.WithRowID(id).LogAbandon(ctx, err)
}

func closeRow(buf *column.Buffer) {
	if err := buf.CloseRow(); err != nil {
		panic(fmt.Sprintf("colbuf: close %s: %v", buf.Name(), err))
	}
}

// Flush flushes every buffered row and delivers the blobs.
func (w *Writer) Flush(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	return w.flush(ctx, w.nextID)
}

// flush moves the rows below target out of every column and delivers them.
// A column that fails to flush keeps its rows; the others still deliver.
func (w *Writer) flush(ctx context.Context, target uint64) error {
	var (
		blobs = make([]*blob.Blob, 0, len(w.columns))
		errs  []error
	)
	for _, buf := range w.columns {
		from := buf.StartID()
		start := time.Now()
		b, err := buf.Flush(target)
		if err != nil {
			w.opts.metricsCollector.RecordFlush(buf.Name(), 0, 0, time.Since(start), err)
			w.opts.logger.WithColumn(buf.Name()).LogFlush(ctx, from, target, 0, err)
			errs = append(errs, &ColumnError{Column: buf.Name(), RowID: from, Err: err})
			continue
		}
		if b == nil {
			continue
		}
		w.opts.metricsCollector.RecordFlush(b.Column, b.NumRows(), b.NumElems, time.Since(start), nil)
		w.opts.logger.WithColumn(b.Column).LogFlush(ctx, b.StartID, b.EndID, b.NumElems, nil)
		blobs = append(blobs, b)
	}

	if err := w.deliver(ctx, blobs); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// deliver hands blobs to the sink in parallel. Every blob is attempted; a blob
// whose delivery fails is released.
func (w *Writer) deliver(ctx context.Context, blobs []*blob.Blob) error {
	if len(blobs) == 0 {
		return nil
	}

	limit := w.opts.deliveryConcurrency
	if limit <= 0 {
		limit = len(blobs)
	}

	var g errgroup.Group
	g.SetLimit(limit)

	errs := make([]error, len(blobs))
	for i, b := range blobs {
		g.Go(func() error {
			start := time.Now()
			err := w.deliverOne(ctx, b)
			w.opts.metricsCollector.RecordDeliver(b.Column, len(b.Data), time.Since(start), err)
			w.opts.logger.WithColumn(b.Column).LogDeliver(ctx, b.StartID, b.EndID, err)
			if err != nil {
				b.Release()
				errs[i] = &ColumnError{Column: b.Column, RowID: b.StartID, Err: err}
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

func (w *Writer) deliverOne(ctx context.Context, b *blob.Blob) error {
	if err := w.rc.AcquireIO(ctx, len(b.Data)); err != nil {
		return err
	}
	return w.sink.Deliver(ctx, b)
}

// Close flushes every buffered row, delivers the blobs and releases all
// pages. Rows that fail to flush are dropped. Close is idempotent.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	err := w.flush(ctx, w.nextID)
	if cerr := w.release(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	return err
}

func (w *Writer) release() error {
	for _, buf := range w.columns {
		buf.Close()
	}
	return w.pool.Close()
}

// NextRowID returns the id the next appended row will receive.
func (w *Writer) NextRowID() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.nextID
}

// ColumnStats describes the buffered state of one column.
type ColumnStats struct {
	Name          string
	StartID       uint64 // first buffered row
	EndID         uint64 // one past the last committed row
	BufferedRows  uint64
	BufferedBytes int64
	NumElems      uint64
	Duplicates    uint64 // rows folded into the previous run, since creation
	DataPages     int
	RowmapPages   int
}

// PoolStats describes the shared page pool.
type PoolStats struct {
	PageSize   int
	PoolCount  int
	PoolLimit  int
	AllocCount int
	AllocLimit int
	InUse      int
	Acquired   uint64
	Reused     uint64
	Released   uint64
	Freed      uint64
}

// Stats is a snapshot of writer state.
type Stats struct {
	NextRowID   uint64
	Columns     []ColumnStats
	Pool        PoolStats
	MemoryUsed  int64 // pages plus unreleased blobs
	MemoryPeak  int64
	MemoryLimit int64
}

// Stats returns a snapshot of writer state.
func (w *Writer) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()

	ps := w.pool.Stats()
	s := Stats{
		NextRowID: w.nextID,
		Columns:   make([]ColumnStats, 0, len(w.columns)),
		Pool: PoolStats{
			PageSize:   ps.PageSize,
			PoolCount:  ps.PoolCount,
			PoolLimit:  ps.PoolLimit,
			AllocCount: ps.AllocCount,
			AllocLimit: ps.AllocLimit,
			InUse:      ps.InUse,
			Acquired:   ps.Acquired,
			Reused:     ps.Reused,
			Released:   ps.Released,
			Freed:      ps.Freed,
		},
		MemoryUsed:  w.rc.MemoryUsage(),
		MemoryPeak:  w.rc.MemoryPeak(),
		MemoryLimit: w.rc.MemoryLimit(),
	}
	for _, buf := range w.columns {
		s.Columns = append(s.Columns, ColumnStats{
			Name:          buf.Name(),
			StartID:       buf.StartID(),
			EndID:         buf.EndID(),
			BufferedRows:  buf.BufferedRows(),
			BufferedBytes: buf.BufferedBytes(),
			NumElems:      buf.NumElems(),
			Duplicates:    buf.Duplicates(),
			DataPages:     buf.DataPages(),
			RowmapPages:   buf.RowmapPages(),
		})
	}
	return s
}
