package codec

import "github.com/joshuapare/c3kit/internal/format"

// Tweak folds a field of up to 38 bits into a 24-bit tweak:
// field[23:0] ^ field[37:24].
func Tweak(field uint64) uint32 {
	return uint32(((field & format.TweakMask) ^ (field >> format.TweakBits)) & format.TweakMask)
}

// TweakInput builds the field that Tweak is applied to for a given size
// class: the power in the bits above the fixed address, and the fixed address
// (plain bits 31..power) below it. For power >= 32 the fixed address is empty.
func TweakInput(power uint, fixed uint64) uint64 {
	if power >= format.PlainLowBits {
		return uint64(power)
	}
	w := format.PlainLowBits - power
	return uint64(power)<<w | (fixed & ((uint64(1) << w) - 1))
}

// FixedAddr returns the plain bits 31..power of addr, the part of the low
// word that every byte of an allocation of this size class shares.
func FixedAddr(addr uint64, power uint) uint64 {
	if power >= format.PlainLowBits {
		return 0
	}
	return Slice(addr, format.PlainLowBits-1, power)
}
