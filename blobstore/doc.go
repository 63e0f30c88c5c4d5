// Package blobstore stores encoded blobs as named, immutable objects.
//
// Store is the interface every backend implements. Names are slash-separated
// paths such as "temperature/00000000000000000000-00000000000000004096.blob".
// Put replaces an object atomically: readers observe the old content or the
// new one, never a partial write. Implementations must be safe for concurrent
// use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests and ephemeral pipelines
//   - LocalStore: local filesystem; writes via temp file and rename, reads via mmap
//   - minio.Store: MinIO and S3-compatible services
//   - s3.Store: Amazon S3 with multipart uploads
package blobstore
