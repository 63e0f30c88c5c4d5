// Package column implements the write buffer of one logical column.
//
// A Buffer accumulates bit-packed rows in two page chains drawn from a shared
// page.Pool: the data chain holds element payloads and the row-map chain holds
// run entries. Each run entry is 64 bits, the row length (element count) in the
// low 32 bits and the repeat count in the high 32 bits.
//
// # Row lifecycle
//
//	OpenRow(id) -> Write(...)* -> [ApplyDefaultIfUnwritten] -> CommitRow(hint) -> CloseRow
//
// Row ids are gap-free and monotonic. A row closed without a commit is
// abandoned: its payload pages are released and the id stays unused.
//
// # Run-length encoding
//
// CommitRow compares the new row against the previous committed row. Rows of
// equal length and identical bits extend the previous run instead of adding a
// new entry, and their payload is discarded. Empty rows collapse without a
// comparison.
//
// # Flush
//
// Flush copies the rows [start, target) into a blob.Blob, then retires every
// page that lies entirely before the first retained bit. A run split by the
// target keeps its payload and its remaining repeat count.
//
// A Buffer is owned by one writer. It performs no locking.
package column
