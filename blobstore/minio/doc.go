// Package minio provides a blobstore.Store for MinIO and S3-compatible object
// storage using the minio-go client.
//
// # Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	store := minio.NewStore(client, "colbuf", "blobs/")
//	w, err := colbuf.New(sink.NewStoreSink(store), schemas)
//
// Object keys are the blob names joined to the root prefix.
package minio
