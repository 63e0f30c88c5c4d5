// Package bitpack reads, writes, copies and compares bit spans inside byte slices.
//
// Bits are addressed LSB-first: bit i of a span lives in byte i/8 at position
// i%8. Multi-bit values are stored little-endian in that bit order, so a 4-bit
// value 0b1010 written at bit 0 occupies byte 0 as 0x0A.
//
// The helpers operate on a single contiguous slice. Spans that cross page
// boundaries are handled one window at a time by the bitcursor package.
package bitpack
