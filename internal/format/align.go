package format

// AlignDown returns n rounded down to a multiple of the power-of-two a.
//
// Example:
//
//	AlignDown(17, 16) = 16
//	AlignDown(16, 16) = 16
func AlignDown(n, a uint64) uint64 {
	return n &^ (a - 1)
}

// AlignUp returns n rounded up to a multiple of the power-of-two a.
// The result wraps on overflow; callers that care use buf.AddOverflow first.
//
// Example:
//
//	AlignUp(1, 16)  = 16
//	AlignUp(16, 16) = 16
//	AlignUp(17, 16) = 32
func AlignUp(n, a uint64) uint64 {
	return (n + a - 1) &^ (a - 1)
}

// ChunkBase returns the 16-byte aligned chunk that addr falls in.
func ChunkBase(addr uint64) uint64 {
	return addr &^ ChunkMask
}

// PageNumber returns the backing store page index of addr.
func PageNumber(addr uint64) uint64 {
	return addr >> PageShift
}

// PageOffset returns the offset of addr within its page.
func PageOffset(addr uint64) int {
	return int(addr & PageMask)
}
