// Package sink receives flushed blobs.
//
// A Sink takes ownership of each delivered blob: the writer keeps no
// reference to it after Deliver returns. Sinks are called concurrently for
// the blobs of different columns.
package sink

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/colbuf/blob"
)

// Sink consumes flushed blobs.
type Sink interface {
	Deliver(ctx context.Context, b *blob.Blob) error
}

// Func adapts a function to a Sink.
type Func func(ctx context.Context, b *blob.Blob) error

// Deliver calls f.
func (f Func) Deliver(ctx context.Context, b *blob.Blob) error { return f(ctx, b) }

// MemorySink retains delivered blobs in memory. Retained blobs keep their
// memory reservation until the caller releases them.
type MemorySink struct {
	mu    sync.Mutex
	blobs []*blob.Blob
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Deliver retains b.
func (s *MemorySink) Deliver(ctx context.Context, b *blob.Blob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs = append(s.blobs, b)
	return nil
}

// Blobs returns the retained blobs in delivery order.
func (s *MemorySink) Blobs() []*blob.Blob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*blob.Blob(nil), s.blobs...)
}

// Column returns the retained blobs of one column in row order.
func (s *MemorySink) Column(name string) []*blob.Blob {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*blob.Blob
	for _, b := range s.blobs {
		if b.Column == name {
			out = append(out, b)
		}
	}
	return out
}

// Release releases and forgets every retained blob.
func (s *MemorySink) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.blobs {
		b.Release()
	}
	s.blobs = nil
}

// ObjectName returns the store name of a blob:
// <column>/<start id>-<end id>.blob with zero-padded ids, so that names
// sort in row order.
func ObjectName(b *blob.Blob) string {
	return fmt.Sprintf("%s/%020d-%020d.blob", b.Column, b.StartID, b.EndID)
}
