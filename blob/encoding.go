package blob

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/colbuf/internal/conv"
	"github.com/hupe1980/colbuf/internal/hash"
	"github.com/hupe1980/colbuf/pagemap"
)

// Encoded layout:
//
//	magic "CBLB" | version u8 | compression u8
//	uvarint start id, end id, elem bits, elem count, column name length | column name
//	uvarint page-map length | page map
//	uvarint nulls length | roaring bitmap (empty when no nulls)
//	data block
//	crc32c u32 over everything before
const (
	magic   = "CBLB"
	version = 1
)

var (
	// ErrCorrupt is returned when decoding malformed or damaged bytes.
	ErrCorrupt = errors.New("blob: corrupt encoding")

	// ErrUnknownCompression is returned for an unsupported compression mode.
	ErrUnknownCompression = errors.New("blob: unknown compression")
)

// Marshal encodes b with compression c.
func Marshal(b *Blob, c Compression) ([]byte, error) {
	out := make([]byte, 0, 64+len(b.Data))
	out = append(out, magic...)
	out = append(out, version, byte(c))

	out = binary.AppendUvarint(out, b.StartID)
	out = binary.AppendUvarint(out, b.EndID)
	out = binary.AppendUvarint(out, uint64(b.ElemBits))
	out = binary.AppendUvarint(out, b.NumElems)
	out = binary.AppendUvarint(out, uint64(len(b.Column)))
	out = append(out, b.Column...)

	pm := b.PageMap
	if pm == nil {
		pm = pagemap.New()
	}
	pmBytes, err := pm.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("blob: page map: %w", err)
	}
	out = binary.AppendUvarint(out, uint64(len(pmBytes)))
	out = append(out, pmBytes...)

	var nullBytes []byte
	if b.Nulls != nil && !b.Nulls.IsEmpty() {
		if nullBytes, err = b.Nulls.ToBytes(); err != nil {
			return nil, fmt.Errorf("blob: nulls: %w", err)
		}
	}
	out = binary.AppendUvarint(out, uint64(len(nullBytes)))
	out = append(out, nullBytes...)

	if out, err = appendBlock(out, b.Data, c); err != nil {
		return nil, err
	}
	return binary.LittleEndian.AppendUint32(out, hash.CRC32C(out)), nil
}

// Decode parses an encoded blob. The returned blob does not alias data.
func Decode(data []byte) (*Blob, error) {
	if len(data) < len(magic)+2+4 {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorrupt, len(data))
	}
	body, sum := data[:len(data)-4], binary.LittleEndian.Uint32(data[len(data)-4:])
	if !hash.Verify(body, sum) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
	if !bytes.Equal(body[:len(magic)], []byte(magic)) {
		return nil, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	if body[4] != version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, body[4])
	}
	c := Compression(body[5])
	r := &reader{buf: body[6:]}

	b := &Blob{
		StartID: r.uvarint(),
		EndID:   r.uvarint(),
	}
	elemBits := r.uvarint()
	b.NumElems = r.uvarint()
	b.Column = string(r.bytes())
	pmBytes := r.bytes()
	nullBytes := r.bytes()
	if r.err != nil {
		return nil, r.err
	}
	if elemBits == 0 || elemBits > 64 || b.EndID < b.StartID {
		return nil, fmt.Errorf("%w: header", ErrCorrupt)
	}
	b.ElemBits = uint(elemBits)

	b.PageMap = pagemap.New()
	if err := b.PageMap.UnmarshalBinary(pmBytes); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if b.PageMap.NumRows() != b.NumRows() || b.PageMap.NumElems() != b.NumElems {
		return nil, fmt.Errorf("%w: page map does not match header", ErrCorrupt)
	}

	b.Nulls = roaring.New()
	if len(nullBytes) > 0 {
		if err := b.Nulls.UnmarshalBinary(nullBytes); err != nil {
			return nil, fmt.Errorf("%w: nulls: %w", ErrCorrupt, err)
		}
	}

	raw, rest, err := readBlock(r.buf, c)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(rest))
	}
	if uint64(len(raw)) != conv.BitsToBytes(b.NumElems*elemBits) {
		return nil, fmt.Errorf("%w: data size %d", ErrCorrupt, len(raw))
	}
	b.Data = bytes.Clone(raw)
	return b, nil
}

type reader struct {
	buf []byte
	err error
}

func (r *reader) uvarint() uint64 {
	if r.err != nil {
		return 0
	}
	v, n := binary.Uvarint(r.buf)
	if n <= 0 {
		r.err = fmt.Errorf("%w: bad uvarint", ErrCorrupt)
		return 0
	}
	r.buf = r.buf[n:]
	return v
}

func (r *reader) bytes() []byte {
	n := r.uvarint()
	if r.err != nil {
		return nil
	}
	if n > uint64(len(r.buf)) {
		r.err = fmt.Errorf("%w: section of %d bytes truncated", ErrCorrupt, n)
		return nil
	}
	b := r.buf[:n]
	r.buf = r.buf[n:]
	return b
}
