package address

import (
	"github.com/joshuapare/c3kit/c3/codec"
	"github.com/joshuapare/c3kit/internal/buf"
	"github.com/joshuapare/c3kit/internal/format"
)

// Power returns the size class of an allocation of size bytes at base: the
// bit length of base ^ (base+size-1) over the low 34 bits, at least 1.
//
// Allocations that straddle a power-of-two boundary round up to the next
// power. A natural power above 33, or any differing bit at or above bit 34,
// is ErrSizeClassOverflow.
func Power(base, size uint64) (uint, error) {
	if size == 0 {
		return 0, ErrZeroSize
	}
	last, ok := buf.AddOverflow(base, size-1)
	if !ok {
		return 0, ErrAddressOverflow
	}

	diff := base ^ last
	if diff&^format.PowerWindowMask != 0 {
		return 0, ErrSizeClassOverflow
	}

	p := codec.BitLen(diff)
	if p > format.MaxPower {
		return 0, ErrSizeClassOverflow
	}
	if p < format.MinPower {
		p = format.MinPower
	}
	return p, nil
}

// Representable reports whether a plain address survives a round trip
// through the CA layout.
func Representable(addr uint64) bool {
	return addr&format.UnrepresentableMask == 0
}
