package bitpack

import "bytes"

// Read returns n bits (n <= 64) starting at bit off of buf.
func Read(buf []byte, off uint64, n uint) uint64 {
	var v uint64
	var got uint
	for got < n {
		idx := off >> 3
		shift := uint(off & 7)
		take := min(8-shift, n-got)
		b := uint64(buf[idx]>>shift) & (1<<take - 1)
		v |= b << got
		got += take
		off += uint64(take)
	}
	return v
}

// Write stores the low n bits (n <= 64) of v at bit off of buf.
// Bits outside [off, off+n) are left untouched.
func Write(buf []byte, off uint64, n uint, v uint64) {
	var done uint
	for done < n {
		idx := off >> 3
		shift := uint(off & 7)
		take := min(8-shift, n-done)
		mask := byte((1<<take - 1) << shift)
		bits := byte((v>>done)&(1<<take-1)) << shift
		buf[idx] = buf[idx]&^mask | bits
		done += take
		off += uint64(take)
	}
}

// Copy copies n bits from src starting at bit srcOff to dst starting at bit dstOff.
func Copy(dst []byte, dstOff uint64, src []byte, srcOff uint64, n uint64) {
	if n == 0 {
		return
	}
	if dstOff&7 == 0 && srcOff&7 == 0 {
		full := n >> 3
		copy(dst[dstOff>>3:dstOff>>3+full], src[srcOff>>3:srcOff>>3+full])
		if rem := uint(n & 7); rem > 0 {
			tail := full << 3
			Write(dst, dstOff+tail, rem, Read(src, srcOff+tail, rem))
		}
		return
	}
	for n > 0 {
		take := uint(min(n, 64))
		Write(dst, dstOff, take, Read(src, srcOff, take))
		dstOff += uint64(take)
		srcOff += uint64(take)
		n -= uint64(take)
	}
}

// Equal reports whether the n-bit spans a[aOff:] and b[bOff:] hold identical bits.
func Equal(a []byte, aOff uint64, b []byte, bOff uint64, n uint64) bool {
	if n == 0 {
		return true
	}
	if aOff&7 == 0 && bOff&7 == 0 {
		full := n >> 3
		if !bytes.Equal(a[aOff>>3:aOff>>3+full], b[bOff>>3:bOff>>3+full]) {
			return false
		}
		rem := uint(n & 7)
		if rem == 0 {
			return true
		}
		tail := full << 3
		return Read(a, aOff+tail, rem) == Read(b, bOff+tail, rem)
	}
	for n > 0 {
		take := uint(min(n, 64))
		if Read(a, aOff, take) != Read(b, bOff, take) {
			return false
		}
		aOff += uint64(take)
		bOff += uint64(take)
		n -= uint64(take)
	}
	return true
}

// Pack packs values of width bits each into a new byte slice.
// Values wider than width are truncated.
func Pack(width uint, values ...uint64) []byte {
	total := uint64(width) * uint64(len(values))
	buf := make([]byte, (total+7)>>3)
	for i, v := range values {
		Write(buf, uint64(i)*uint64(width), width, v)
	}
	return buf
}
