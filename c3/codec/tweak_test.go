package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTweak(t *testing.T) {
	assert.Equal(t, uint32(0x123456), Tweak(0x123456))
	// 0x3F_FFFF_FFFF: low 24 = 0xFFFFFF, high 14 = 0x3FFF
	assert.Equal(t, uint32(0xFFFFFF^0x3FFF), Tweak(0x3F_FFFF_FFFF))
	assert.Equal(t, uint32(1^1), Tweak(1<<24|1))
}

func TestTweakInput(t *testing.T) {
	// power 14 leaves 18 fixed bits below it
	assert.Equal(t, uint64(14)<<18|0x2ABCD, TweakInput(14, 0x2ABCD))
	// stray bits above the fixed width are dropped
	assert.Equal(t, uint64(14)<<18|0x3FFFF, TweakInput(14, 0xFFFFFF))
	// no fixed bits at or above 32
	assert.Equal(t, uint64(32), TweakInput(32, 0xFF))
	assert.Equal(t, uint64(33), TweakInput(33, 0xFF))
}

func TestFixedAddr(t *testing.T) {
	assert.Equal(t, uint64(0x3FFFF), FixedAddr(0xFFFF_FFFF, 14))
	assert.Equal(t, uint64(0), FixedAddr(0x3FFF, 14))
	assert.Equal(t, uint64(0), FixedAddr(0xFFFF_FFFF, 32))

	// every byte of a power-14 region shares the fixed address
	base := uint64(0x1234_C000)
	for off := uint64(0); off < 1<<14; off += 997 {
		assert.Equal(t, FixedAddr(base, 14), FixedAddr(base+off, 14))
	}
}
