// Package bitcursor implements a bit-addressable cursor over a page chain.
//
// A Cursor views the span [start, end) of a page.Chain as one continuous bit
// string. Offsets are measured from the first bit of the chain's head page and
// use LSB-first bit order (bit i lives in byte i/8 at position i%8).
//
// Spans that cross page boundaries are processed by repeatedly calling Access,
// which returns the Window of the current page, and Advance by at most the
// window's size. A head cursor (InitHead) walks forward from the first bit; a
// tail cursor (InitTail) starts on the last bit and walks backward, its window
// ending at the marker.
//
// Cursors reference the chain, they never own it. Advancing outside the span
// is rejected without mutation. Page traversal costs O(pages crossed).
package bitcursor
