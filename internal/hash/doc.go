// Package hash provides the checksum used by the blob wire format.
//
// Every encoded blob ends with a CRC32-Castagnoli (CRC32C) trailer computed over
// all preceding bytes. Go's hash/crc32 uses the SSE4.2 / ARM CRC instructions
// for this polynomial when available.
//
//	sum := hash.CRC32C(frame)
//	if !hash.Verify(frame, sum) { ... }
//
// The S3 backend sends the same checksum with single-part uploads.
package hash
