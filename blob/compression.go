package blob

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the codec of the encoded data block.
type Compression uint8

const (
	// CompressionNone stores the data block raw.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression.
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses zstd.
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil)
}

// Block format: [uncompressed u32][compressed u32][bytes].
// A compressed size of 0 means the bytes are stored raw.
const blockHeaderSize = 8

func appendBlock(dst, data []byte, c Compression) ([]byte, error) {
	var compressed []byte
	switch c {
	case CompressionNone:
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("blob: lz4: %w", err)
		}
		compressed = buf[:n]
	case CompressionZSTD:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, fmt.Errorf("blob: zstd: %w", err)
		}
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCompression, c)
	}

	var hdr [blockHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(len(data))) //nolint:gosec // blobs are far below 4 GiB

	// incompressible data is stored raw
	if len(compressed) == 0 || len(compressed) >= len(data) {
		dst = append(dst, hdr[:]...)
		return append(dst, data...), nil
	}
	binary.LittleEndian.PutUint32(hdr[4:], uint32(len(compressed))) //nolint:gosec // bounded by len(data)
	dst = append(dst, hdr[:]...)
	return append(dst, compressed...), nil
}

// readBlock decodes a block and returns it with the remaining input.
func readBlock(data []byte, c Compression) ([]byte, []byte, error) {
	if len(data) < blockHeaderSize {
		return nil, nil, fmt.Errorf("%w: block header", ErrCorrupt)
	}
	size := uint64(binary.LittleEndian.Uint32(data[0:]))
	csize := uint64(binary.LittleEndian.Uint32(data[4:]))
	data = data[blockHeaderSize:]

	if csize == 0 {
		if uint64(len(data)) < size {
			return nil, nil, fmt.Errorf("%w: raw block truncated", ErrCorrupt)
		}
		return data[:size], data[size:], nil
	}
	if uint64(len(data)) < csize {
		return nil, nil, fmt.Errorf("%w: compressed block truncated", ErrCorrupt)
	}
	src, rest := data[:csize], data[csize:]
	out := make([]byte, size)

	switch c {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(src, out)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: lz4: %w", ErrCorrupt, err)
		}
		if uint64(n) != size {
			return nil, nil, fmt.Errorf("%w: lz4 size mismatch", ErrCorrupt)
		}
	case CompressionZSTD:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, nil, fmt.Errorf("blob: zstd: %w", err)
		}
		out, err = dec.DecodeAll(src, out[:0])
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: zstd: %w", ErrCorrupt, err)
		}
		if uint64(len(out)) != size {
			return nil, nil, fmt.Errorf("%w: zstd size mismatch", ErrCorrupt)
		}
	default:
		return nil, nil, errors.Join(ErrCorrupt, fmt.Errorf("%w: %s", ErrUnknownCompression, c))
	}
	return out, rest, nil
}
