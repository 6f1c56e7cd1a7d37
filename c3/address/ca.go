package address

import (
	"fmt"

	"github.com/joshuapare/c3kit/c3/codec"
	"github.com/joshuapare/c3kit/internal/format"
)

// CA is a capability address.
type CA uint64

// Fields is the unpacked form of a CA.
type Fields struct {
	Sign   uint64 // plain bit 63
	Power  uint   // size class
	Slice  uint32 // 24-bit encrypted slice
	SPrime uint64 // plain bit 47
	Low    uint32 // plain bits 31..0
}

// Pack assembles a CA from its fields. Out-of-range field values are
// truncated to their width.
func Pack(f Fields) CA {
	upper := uint64(f.Slice>>format.LowerSliceBits) & format.UpperSliceMask
	lower := uint64(f.Slice) & format.LowerSliceMask

	v := codec.Place(f.Sign, 1, format.SignBit) |
		codec.Place(uint64(f.Power), format.PowerBits, format.PowerShift) |
		codec.Place(upper, format.UpperSliceBits, format.UpperSliceShift) |
		codec.Place(f.SPrime, 1, format.SPrimeBit) |
		codec.Place(lower, format.LowerSliceBits, format.LowerSliceShift) |
		uint64(f.Low)
	return CA(v)
}

// Fields unpacks c.
func (c CA) Fields() Fields {
	return Fields{
		Sign:   c.Sign(),
		Power:  c.Power(),
		Slice:  c.Slice(),
		SPrime: c.SPrime(),
		Low:    c.Low(),
	}
}

func (c CA) Sign() uint64 {
	return codec.Bit(uint64(c), format.SignBit)
}

func (c CA) Power() uint {
	return uint(codec.Slice(uint64(c), format.PowerShift+format.PowerBits-1, format.PowerShift))
}

func (c CA) SPrime() uint64 {
	return codec.Bit(uint64(c), format.SPrimeBit)
}

// Slice returns the 24-bit encrypted slice (upper 9 bits above lower 15).
func (c CA) Slice() uint32 {
	upper := codec.Slice(uint64(c), format.UpperSliceShift+format.UpperSliceBits-1, format.UpperSliceShift)
	lower := codec.Slice(uint64(c), format.LowerSliceShift+format.LowerSliceBits-1, format.LowerSliceShift)
	return uint32(upper<<format.LowerSliceBits | lower)
}

// Low returns the unencrypted low 32 bits.
func (c CA) Low() uint32 {
	return uint32(uint64(c) & format.PlainLowMask)
}

// Offset returns the offset of c within its size class window.
func (c CA) Offset() uint64 {
	return uint64(c.Low()) & ((uint64(1) << c.Power()) - 1)
}

func (c CA) String() string {
	return fmt.Sprintf("0x%016x", uint64(c))
}
