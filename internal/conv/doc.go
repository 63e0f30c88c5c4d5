// Package conv provides checked integer conversions and bit/byte sizing.
//
// Row-map entries store lengths and repeat counts as 32-bit fields and null
// offsets are 32-bit roaring keys; wider values pass through these helpers
// before they are narrowed.
//
// For conversions that are provably safe by construction (loop indices, values
// already clamped to a page size), use direct casts instead.
package conv
