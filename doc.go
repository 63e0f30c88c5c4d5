// Package colbuf buffers rows column by column and hands them off as
// immutable, compacted blobs.
//
// # Overview
//
// A Writer owns one buffer per column. Each buffer stores its elements
// bit-packed (LSB-first) in fixed-size pages drawn from a shared pool, next to
// a row map of (length, count) entries. Consecutive rows with identical
// content collapse into a single row-map entry whose count is incremented, so
// repetitive data costs one copy.
//
// When a column crosses its size trigger or its row span limit, the writer
// flushes every column up to the same row id and delivers one blob per column
// to a sink. Pages that held only flushed rows go back to the pool.
//
// # Quick Start
//
//	s := sink.NewMemorySink()
//	w, err := colbuf.New(s, []colbuf.Schema{
//	    {Name: "status", ElemBits: 8, Default: colbuf.NullDefault()},
//	    {Name: "flags", ElemBits: 1, TriggerBytes: 1 << 20},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close(ctx)
//
//	id, err := w.Append(ctx, colbuf.Row{
//	    "status": colbuf.Bytes([]byte{200}),
//	    "flags":  colbuf.Bits(1, 1, 0, 1),
//	})
//
// # Rows
//
// Append writes a row to every column or to none. A column missing from the
// row receives its default; a column without a default makes the row fail
// with ErrIncompleteRow. Failed rows are abandoned and do not consume a row id.
//
// # Sinks
//
// Blobs are delivered to a sink.Sink. sink.StoreSink encodes them with
// blob.Marshal and writes them to a blobstore.Store (local filesystem, MinIO
// or S3). Blobs reserve memory from the writer's memory limit until released.
//
// # Concurrency
//
// A Writer serializes its calls with a mutex. Blobs of one flush are
// delivered in parallel, bounded by WithDeliveryConcurrency.
package colbuf
