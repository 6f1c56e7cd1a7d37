package c3

import (
	"slices"

	"github.com/joshuapare/c3kit/c3/address"
	"github.com/joshuapare/c3kit/c3/memory"
	"github.com/joshuapare/c3kit/c3/monitor"
)

// Stats summarises a domain and its space. Allocations is per domain; the
// rest covers the whole space.
type Stats struct {
	Allocations int    `json:"allocations"`
	BytesInUse  uint64 `json:"bytes_in_use"`
	LiveSlices  int    `json:"live_slices"`
	SecureKeys  bool   `json:"secure_keys"`
	Pages       int    `json:"pages"`
	DirtyBytes  uint64 `json:"dirty_bytes"`

	Monitor monitor.Stats `json:"monitor"`
}

// Stats returns a snapshot of the domain and space counters.
func (m *Model) Stats() Stats {
	m.sp.mu.Lock()
	defer m.sp.mu.Unlock()

	return Stats{
		Allocations: len(m.live),
		BytesInUse:  m.sp.alloc.InUse(),
		LiveSlices:  m.enc.LiveSlices(),
		SecureKeys:  m.ring.Secure(),
		Pages:       m.sp.mem.Pages(),
		DirtyBytes:  m.sp.dirty.Bytes(),
		Monitor:     m.sp.mon.Stats(),
	}
}

// AllocationInfo describes a live allocation without revealing its base.
type AllocationInfo struct {
	CA    address.CA `json:"ca"`
	Size  uint64     `json:"size"`
	Power uint       `json:"power"`
}

// Allocations returns the domain's live allocations ordered by CA.
func (m *Model) Allocations() []AllocationInfo {
	m.sp.mu.Lock()
	defer m.sp.mu.Unlock()

	out := make([]AllocationInfo, 0, len(m.live))
	for ca, a := range m.live {
		out = append(out, AllocationInfo{CA: ca, Size: a.size, Power: ca.Power()})
	}
	slices.SortFunc(out, func(a, b AllocationInfo) int {
		switch {
		case a.CA < b.CA:
			return -1
		case a.CA > b.CA:
			return 1
		}
		return 0
	})
	return out
}

// Records returns the monitor records of the whole space.
func (m *Model) Records() []monitor.Record {
	return m.sp.mon.Snapshot()
}

// Dirty returns the page-coalesced ranges of backing memory written so far.
func (m *Model) Dirty() []memory.Range {
	m.sp.mu.Lock()
	defer m.sp.mu.Unlock()
	return m.sp.dirty.Coalesced()
}
