// Package ctutil provides the 64-bit constant-time primitives shared by the
// fixed-width arithmetic packages. Every function here runs in time
// independent of its operand values; only lengths may influence timing.
package ctutil

import "math/bits"

// Pick returns in1 where mask is all-ones and in2 where mask is zero.
// The result is undefined for any other mask value.
func Pick(mask, in1, in2 uint64) uint64 {
	return (in1 & mask) | (in2 &^ mask)
}

// IsNonZero returns 1 if x != 0 and 0 otherwise.
func IsNonZero(x uint64) uint64 {
	// For x == 0 the subtraction sets the MSB of ^(x-1) low and x has it
	// low, so the OR has MSB clear exactly when x == 0.
	return (x | ^(x - 1)) >> 63
}

// Mask expands the low bit of b into a full-width mask.
func Mask(b uint64) uint64 {
	return -(b & 1)
}

// CMov copies src into dst when move == 1 and leaves dst untouched when
// move == 0. Slices must have equal length.
func CMov(dst, src []uint64, move uint64) {
	m := Mask(move)
	for i := range dst {
		dst[i] = (src[i] & m) | (dst[i] &^ m)
	}
}

// CSwap exchanges a and b when swap == 1. Slices must have equal length.
func CSwap(a, b []uint64, swap uint64) {
	m := Mask(swap)
	for i := range a {
		t := (a[i] ^ b[i]) & m
		a[i] ^= t
		b[i] ^= t
	}
}

// Eq reports whether a == b without leaking where they differ.
func Eq(a, b []uint64) bool {
	var r uint64
	for i := range a {
		r |= a[i] ^ b[i]
	}
	return IsNonZero(r) == 0
}

// Cmp compares a and b as little-endian fixed-width integers and returns
// -1, 0 or 1. Constant time in the operand values.
func Cmp(a, b []uint64) int {
	var borrow, diff uint64
	for i := range a {
		var w uint64
		w, borrow = bits.Sub64(b[i], a[i], borrow)
		diff |= w
	}
	// borrow == 1 means a > b.
	sgn := int(borrow<<1) - 1 // 1 or -1
	return int(IsNonZero(diff)) * sgn
}

// LessVartime reports x < y for little-endian limb slices. Variable time;
// callers use it only on public or freshly sampled values.
func LessVartime(x, y []uint64) bool {
	for i := len(x) - 1; i >= 0; i-- {
		v, c := bits.Sub64(y[i], x[i], 0)
		if c != 0 {
			return false
		}
		if v != 0 {
			return true
		}
	}
	return false
}
