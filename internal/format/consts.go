// Package format holds the bit layout of a capability address and the
// fixed sizes shared by the codec, the monitor and the backing store. Keeping
// the numbers in one place lets the higher-level packages stay free of magic
// shifts.
package format

// Capability address layout (bit 63 = MSB):
//
//	63      sign            plain bit 63, unencrypted
//	62..57  power           size class, 6 bits
//	56..48  upper slice     high 9 bits of the encrypted slice
//	47      s-prime         plain bit 47, unencrypted
//	46..32  lower slice     low 15 bits of the encrypted slice
//	31..0   plain low       unencrypted low 32 bits of the address
const (
	SignBit   = 63
	SPrimeBit = 47

	PowerShift = 57
	PowerBits  = 6
	PowerMask  = (1 << PowerBits) - 1

	UpperSliceShift = 48
	UpperSliceBits  = 9
	UpperSliceMask  = (1 << UpperSliceBits) - 1

	LowerSliceShift = 32
	LowerSliceBits  = 15
	LowerSliceMask  = (1 << LowerSliceBits) - 1

	PlainLowBits = 32
	PlainLowMask = (1 << PlainLowBits) - 1

	// PlainHighHi/PlainHighLo bound the plaintext fragment that is encrypted
	// into the slice (bits 46..32 of the plain address).
	PlainHighHi = 46
	PlainHighLo = 32
)

const (
	// SliceBits is the width of the encrypted slice and of both keys.
	SliceBits = UpperSliceBits + LowerSliceBits
	SliceMask = (1 << SliceBits) - 1

	// KeyBits is the width of pointer and data keys.
	KeyBits = SliceBits
	KeyMask = SliceMask

	// TweakBits is the width of a tweak.
	TweakBits = 24
	TweakMask = (1 << TweakBits) - 1
)

const (
	// MinPower and MaxPower bound the size class. PowerLimit is the width of
	// the low address window the power is computed over.
	MinPower   = 1
	MaxPower   = 33
	PowerLimit = 34

	PowerWindowMask = (uint64(1) << PowerLimit) - 1
)

// UnrepresentableMask covers plain address bits that no capability address
// field carries (62..48). A base with any of them set cannot be encoded.
const UnrepresentableMask = uint64(0x7FFF) << 48

const (
	// ChunkSize is the granularity at which the data keystream is derived.
	ChunkSize = 16
	ChunkMask = ChunkSize - 1

	// PageSize is the backing store page size.
	PageSize  = 4096
	PageShift = 12
	PageMask  = PageSize - 1
)

const (
	// DefaultAddressSpaceLow and DefaultAddressSpaceHigh bound the plain
	// address space handed out by the allocators: the canonical lower half.
	DefaultAddressSpaceLow  = uint64(0)
	DefaultAddressSpaceHigh = uint64(1) << 47
)
