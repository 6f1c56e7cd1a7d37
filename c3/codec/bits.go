package codec

import (
	"fmt"
	"math/bits"
)

// Slice returns bits [lo, hi] of x (inclusive) shifted down to bit 0.
// It panics when lo > hi or hi > 63; those are programming errors, not data
// errors.
//
// Example:
//
//	Slice(0xABCD, 11, 4) = 0xBC
func Slice(x uint64, hi, lo uint) uint64 {
	if lo > hi || hi > 63 {
		panic(fmt.Sprintf("codec: bad slice [%d:%d]", hi, lo))
	}
	width := hi - lo + 1
	if width == 64 {
		return x
	}
	return (x >> lo) & ((uint64(1) << width) - 1)
}

// Bit returns bit i of x as 0 or 1.
func Bit(x uint64, i uint) uint64 {
	return (x >> i) & 1
}

// BitLen returns the number of bits needed to represent x (0 for x == 0).
func BitLen(x uint64) uint {
	return uint(bits.Len64(x))
}

// Place shifts v into position lo after masking it to width bits.
func Place(v uint64, width, lo uint) uint64 {
	return (v & ((uint64(1) << width) - 1)) << lo
}
