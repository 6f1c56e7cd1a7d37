package memory

import (
	"slices"

	"github.com/joshuapare/c3kit/internal/format"
)

// defaultRangeCapacity is the pre-allocated capacity for written ranges.
const defaultRangeCapacity = 64

// Range is a written byte range of plain addresses.
type Range struct {
	Off uint64
	Len uint64
}

// End returns the exclusive end of r.
func (r Range) End() uint64 { return r.Off + r.Len }

// Tracker accumulates written ranges.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type Tracker struct {
	ranges []Range
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{ranges: make([]Range, 0, defaultRangeCapacity)}
}

// Add records a written range. Consecutive single-byte writes extend the
// last range instead of appending, which keeps byte-at-a-time stores cheap.
func (t *Tracker) Add(off, length uint64) {
	if length == 0 {
		return
	}
	if n := len(t.ranges); n > 0 && t.ranges[n-1].End() == off {
		t.ranges[n-1].Len += length
		return
	}
	t.ranges = append(t.ranges, Range{Off: off, Len: length})
}

// Coalesced page-aligns all ranges, sorts them, and merges overlapping or
// adjacent ones.
func (t *Tracker) Coalesced() []Range {
	if len(t.ranges) == 0 {
		return nil
	}

	aligned := make([]Range, len(t.ranges))
	for i, r := range t.ranges {
		start := format.AlignDown(r.Off, format.PageSize)
		end := format.AlignUp(r.End(), format.PageSize)
		if end < start {
			// wrapped at the top of the address space
			end = ^uint64(0)
		}
		aligned[i] = Range{Off: start, Len: end - start}
	}

	slices.SortFunc(aligned, func(a, b Range) int {
		switch {
		case a.Off < b.Off:
			return -1
		case a.Off > b.Off:
			return 1
		}
		return 0
	})

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]
	for _, next := range aligned[1:] {
		if next.Off <= current.End() {
			if next.End() > current.End() {
				current.Len = next.End() - current.Off
			}
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}

// Bytes returns the total length of the coalesced ranges.
func (t *Tracker) Bytes() uint64 {
	var n uint64
	for _, r := range t.Coalesced() {
		n += r.Len
	}
	return n
}
