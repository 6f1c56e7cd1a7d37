// Package buf contains overflow-safe helpers for 64-bit address arithmetic.
package buf

import (
	"fmt"
	"math/bits"
)

// AddOverflow adds a and b, returning ok = false when the result would wrap
// past 2^64-1.
func AddOverflow(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry == 0
}

// RangeEnd returns off+n, the exclusive end of the range [off, off+n), or an
// error when the sum wraps or exceeds limit.
//
// This is the recommended way to validate an address range before walking it:
//
//	end, err := buf.RangeEnd(base, size, limit)
//	if err != nil {
//	    return fmt.Errorf("alloc: %w", err)
//	}
func RangeEnd(off, n, limit uint64) (uint64, error) {
	end, ok := AddOverflow(off, n)
	if !ok {
		return 0, fmt.Errorf("overflow: off=%#x + n=%#x", off, n)
	}
	if end > limit {
		return 0, fmt.Errorf("bounds: end=%#x > limit=%#x", end, limit)
	}
	return end, nil
}

// Overlaps reports whether [a, a+an) and [b, b+bn) intersect. Ranges are
// assumed not to wrap.
func Overlaps(a, an, b, bn uint64) bool {
	if an == 0 || bn == 0 {
		return false
	}
	return a < b+bn && b < a+an
}
