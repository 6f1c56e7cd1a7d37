package alloc

import (
	"slices"

	"github.com/joshuapare/c3kit/internal/buf"
)

// FirstFit keeps live spans sorted by base and places each allocation in the
// first gap at or above the hint.
type FirstFit struct {
	low, high uint64
	spans     []span // sorted by base, non-overlapping
	inUse     uint64
}

// NewFirstFit returns an empty allocator over [low, high).
func NewFirstFit(low, high uint64) (*FirstFit, error) {
	if err := checkBounds(low, high); err != nil {
		return nil, err
	}
	return &FirstFit{low: low, high: high}, nil
}

// Alloc reserves size bytes at the lowest base >= max(hint, low) that does
// not overlap a live span.
func (f *FirstFit) Alloc(size, hint uint64) (uint64, error) {
	if size == 0 {
		return 0, ErrZeroSize
	}

	base := max(hint, f.low)
	// first span that ends after the candidate base
	i, _ := slices.BinarySearchFunc(f.spans, base, func(s span, b uint64) int {
		if s.end() <= b {
			return -1
		}
		return 1
	})

	for ; i < len(f.spans); i++ {
		s := f.spans[i]
		if !buf.Overlaps(base, size, s.base, s.size) {
			break
		}
		if s.end() > base {
			base = s.end()
		}
	}

	if _, err := buf.RangeEnd(base, size, f.high); err != nil {
		return 0, ErrNoSpace
	}

	f.spans = slices.Insert(f.spans, i, span{base: base, size: size})
	f.inUse += size
	return base, nil
}

// Free releases the allocation starting at base.
func (f *FirstFit) Free(base uint64) error {
	i, ok := f.find(base)
	if !ok {
		return ErrBadBase
	}
	f.inUse -= f.spans[i].size
	f.spans = slices.Delete(f.spans, i, i+1)
	return nil
}

func (f *FirstFit) SizeOf(base uint64) (uint64, bool) {
	i, ok := f.find(base)
	if !ok {
		return 0, false
	}
	return f.spans[i].size, true
}

func (f *FirstFit) Bounds() (uint64, uint64) { return f.low, f.high }

func (f *FirstFit) InUse() uint64 { return f.inUse }

func (f *FirstFit) find(base uint64) (int, bool) {
	return slices.BinarySearchFunc(f.spans, base, func(s span, b uint64) int {
		switch {
		case s.base < b:
			return -1
		case s.base > b:
			return 1
		}
		return 0
	})
}

// Compile-time interface check
var _ Allocator = (*FirstFit)(nil)
