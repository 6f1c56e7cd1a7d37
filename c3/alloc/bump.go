package alloc

import "github.com/joshuapare/c3kit/internal/buf"

// Bump is an append-only allocator. Each allocation starts at the bump
// pointer (or the hint, if higher) and advances it. Free forgets the span;
// the range is never handed out again.
type Bump struct {
	low, high uint64
	next      uint64
	live      map[uint64]uint64 // base -> size
	inUse     uint64
}

// NewBump returns an allocator whose pointer starts at low.
func NewBump(low, high uint64) (*Bump, error) {
	if err := checkBounds(low, high); err != nil {
		return nil, err
	}
	return &Bump{
		low:  low,
		high: high,
		next: low,
		live: make(map[uint64]uint64),
	}, nil
}

func (b *Bump) Alloc(size, hint uint64) (uint64, error) {
	if size == 0 {
		return 0, ErrZeroSize
	}

	base := max(b.next, hint)
	end, err := buf.RangeEnd(base, size, b.high)
	if err != nil {
		return 0, ErrNoSpace
	}

	b.next = end
	b.live[base] = size
	b.inUse += size
	return base, nil
}

// Free drops the span at base. The range stays dead.
func (b *Bump) Free(base uint64) error {
	size, ok := b.live[base]
	if !ok {
		return ErrBadBase
	}
	delete(b.live, base)
	b.inUse -= size
	return nil
}

func (b *Bump) SizeOf(base uint64) (uint64, bool) {
	size, ok := b.live[base]
	return size, ok
}

func (b *Bump) Bounds() (uint64, uint64) { return b.low, b.high }

func (b *Bump) InUse() uint64 { return b.inUse }

// Compile-time interface check
var _ Allocator = (*Bump)(nil)
