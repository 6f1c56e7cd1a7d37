package memory

import (
	"github.com/joshuapare/c3kit/internal/format"
)

type page struct {
	data    [format.PageSize]byte
	tags    [format.PageSize]uint64
	written [format.PageSize / 64]uint64
}

func (p *page) isWritten(off int) bool {
	return p.written[off>>6]&(1<<(off&63)) != 0
}

// Store is a sparse, page-granular byte store.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type Store struct {
	pages   map[uint64]*page
	tracker *Tracker
}

// NewStore returns an empty store. Writes are reported to t when it is
// non-nil.
func NewStore(t *Tracker) *Store {
	return &Store{
		pages:   make(map[uint64]*page),
		tracker: t,
	}
}

// Write stores ciphertext byte b at addr, tagged with the writer's keystream
// word.
func (s *Store) Write(addr uint64, b byte, tag uint64) {
	pn := format.PageNumber(addr)
	p, ok := s.pages[pn]
	if !ok {
		p = &page{}
		s.pages[pn] = p
	}
	off := format.PageOffset(addr)
	p.data[off] = b
	p.tags[off] = tag
	p.written[off>>6] |= 1 << (off & 63)

	if s.tracker != nil {
		s.tracker.Add(addr, 1)
	}
}

// Read returns the ciphertext byte at addr and its writer tag. ok is false
// for bytes never written.
func (s *Store) Read(addr uint64) (b byte, tag uint64, ok bool) {
	p, found := s.pages[format.PageNumber(addr)]
	if !found {
		return 0, 0, false
	}
	off := format.PageOffset(addr)
	if !p.isWritten(off) {
		return 0, 0, false
	}
	return p.data[off], p.tags[off], true
}

// Peek copies the raw ciphertext of [addr, addr+n) into a new slice. Bytes
// never written read as zero.
func (s *Store) Peek(addr uint64, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i], _, _ = s.Read(addr + uint64(i))
	}
	return out
}

// Pages returns the number of materialised pages.
func (s *Store) Pages() int {
	return len(s.pages)
}
