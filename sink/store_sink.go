package sink

import (
	"context"
	"fmt"

	"github.com/hupe1980/colbuf/blob"
	"github.com/hupe1980/colbuf/blobstore"
)

// IOLimiter throttles delivery bandwidth.
type IOLimiter interface {
	AcquireIO(ctx context.Context, bytes int) error
}

// StoreOption configures a StoreSink.
type StoreOption func(*StoreSink)

// WithCompression sets the data block compression. Default: zstd.
func WithCompression(c blob.Compression) StoreOption {
	return func(s *StoreSink) {
		s.compression = c
	}
}

// WithIOLimiter throttles uploads through limiter.
func WithIOLimiter(limiter IOLimiter) StoreOption {
	return func(s *StoreSink) {
		s.limiter = limiter
	}
}

// StoreSink encodes blobs and writes them to a blobstore.Store. A delivered
// blob is released once it is encoded, whether or not the write succeeds.
type StoreSink struct {
	store       blobstore.Store
	compression blob.Compression
	limiter     IOLimiter
}

// NewStoreSink creates a sink writing to store.
func NewStoreSink(store blobstore.Store, opts ...StoreOption) *StoreSink {
	s := &StoreSink{
		store:       store,
		compression: blob.CompressionZSTD,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Deliver encodes b and puts it under ObjectName(b).
func (s *StoreSink) Deliver(ctx context.Context, b *blob.Blob) error {
	data, err := blob.Marshal(b, s.compression)
	b.Release()
	if err != nil {
		return fmt.Errorf("sink: encode %s: %w", ObjectName(b), err)
	}

	if s.limiter != nil {
		if err := s.limiter.AcquireIO(ctx, len(data)); err != nil {
			return fmt.Errorf("sink: throttle %s: %w", ObjectName(b), err)
		}
	}

	name := ObjectName(b)
	if err := s.store.Put(ctx, name, data); err != nil {
		return fmt.Errorf("sink: put %s: %w", name, err)
	}
	return nil
}
