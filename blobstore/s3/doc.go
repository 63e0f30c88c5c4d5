// Package s3 provides a blobstore.Store for Amazon S3.
//
// # Usage
//
//	store, err := s3.NewStoreFromConfig(ctx, "my-bucket", "colbuf/")
//	w, err := colbuf.New(sink.NewStoreSink(store), schemas)
//
// Uploads go through the S3 transfer manager, so large blobs are sent as
// multipart uploads. Single-part uploads carry a CRC32-C checksum that S3
// verifies on receipt. Reads are ranged GetObject calls.
package s3
