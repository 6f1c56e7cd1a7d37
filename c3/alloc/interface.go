package alloc

import "fmt"

// Allocator hands out non-overlapping plain address ranges.
//
// Implementations:
//   - FirstFit: reuses freed ranges
//   - Bump: append-only
type Allocator interface {
	// Alloc reserves size bytes at the lowest base >= hint that fits and
	// returns the base.
	Alloc(size, hint uint64) (uint64, error)

	// Free releases the range starting at base.
	Free(base uint64) error

	// SizeOf returns the size of the live allocation at base.
	SizeOf(base uint64) (uint64, bool)

	// Bounds returns the [low, high) address window.
	Bounds() (low, high uint64)

	// InUse returns the number of bytes currently allocated.
	InUse() uint64
}

// Kind names an Allocator implementation.
type Kind string

const (
	KindFirstFit Kind = "firstfit"
	KindBump     Kind = "bump"
)

// New returns the allocator of the given kind over [low, high).
func New(kind Kind, low, high uint64) (Allocator, error) {
	switch kind {
	case "", KindFirstFit:
		return NewFirstFit(low, high)
	case KindBump:
		return NewBump(low, high)
	default:
		return nil, fmt.Errorf("alloc: unknown allocator %q", kind)
	}
}

// span is a live allocation.
type span struct {
	base uint64
	size uint64
}

func (s span) end() uint64 { return s.base + s.size }

func checkBounds(low, high uint64) error {
	if low >= high {
		return fmt.Errorf("alloc: empty address space [%#x, %#x)", low, high)
	}
	return nil
}
