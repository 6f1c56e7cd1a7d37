package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlice(t *testing.T) {
	tests := []struct {
		name   string
		x      uint64
		hi, lo uint
		want   uint64
	}{
		{"nibble", 0xABCD, 11, 4, 0xBC},
		{"single bit", 0x8000_0000_0000_0000, 63, 63, 1},
		{"full width", 0xFFFF_FFFF_FFFF_FFFF, 63, 0, 0xFFFF_FFFF_FFFF_FFFF},
		{"upper address", 0x0000_7FFF_0000_0000, 46, 32, 0x7FFF},
		{"no sign extension", 0xF000_0000_0000_0000, 63, 60, 0xF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slice(tt.x, tt.hi, tt.lo))
		})
	}
}

func TestSlice_PanicsOnBadRange(t *testing.T) {
	assert.Panics(t, func() { Slice(1, 3, 4) })
	assert.Panics(t, func() { Slice(1, 64, 0) })
}

func TestBitHelpers(t *testing.T) {
	assert.Equal(t, uint64(1), Bit(0b100, 2))
	assert.Equal(t, uint64(0), Bit(0b100, 1))

	assert.Equal(t, uint(0), BitLen(0))
	assert.Equal(t, uint(1), BitLen(1))
	assert.Equal(t, uint(14), BitLen(12887))

	require.Equal(t, uint64(0x7F)<<57, Place(0xFFFF, 7, 57))
}
