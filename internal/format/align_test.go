package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlignment(t *testing.T) {
	tests := []struct {
		n, a     uint64
		down, up uint64
	}{
		{0, 16, 0, 0},
		{1, 16, 0, 16},
		{15, 16, 0, 16},
		{16, 16, 16, 16},
		{17, 16, 16, 32},
		{4097, 4096, 4096, 8192},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.down, AlignDown(tt.n, tt.a), "AlignDown(%d,%d)", tt.n, tt.a)
		assert.Equal(t, tt.up, AlignUp(tt.n, tt.a), "AlignUp(%d,%d)", tt.n, tt.a)
	}
}

func TestChunkAndPage(t *testing.T) {
	assert.Equal(t, uint64(0x1230), ChunkBase(0x123F))
	assert.Equal(t, uint64(0x1240), ChunkBase(0x1240))
	assert.Equal(t, uint64(1), PageNumber(0x1FFF))
	assert.Equal(t, 0xFFF, PageOffset(0x1FFF))
	assert.Equal(t, 0, PageOffset(0x2000))
}

func TestLayoutIsDisjoint(t *testing.T) {
	fields := []uint64{
		uint64(1) << SignBit,
		uint64(PowerMask) << PowerShift,
		uint64(UpperSliceMask) << UpperSliceShift,
		uint64(1) << SPrimeBit,
		uint64(LowerSliceMask) << LowerSliceShift,
		uint64(PlainLowMask),
	}

	var union uint64
	for _, f := range fields {
		assert.Zero(t, union&f, "field %#x overlaps", f)
		union |= f
	}
	assert.Equal(t, ^uint64(0), union, "fields should cover every bit")
	assert.Equal(t, 24, SliceBits)
}
