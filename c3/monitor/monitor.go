package monitor

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/joshuapare/c3kit/c3/address"
)

// Outcome describes what Register did with an existing or new record.
type Outcome uint8

const (
	// Created means no record existed and a new one was added.
	Created Outcome = iota
	// Reactivated means a tombstone was brought back in place.
	Reactivated
	// Collided means a live record already held the coordinates; it was kept
	// and marked Garbled instead of adding a second one.
	Collided
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Reactivated:
		return "reactivated"
	case Collided:
		return "collided"
	default:
		return "unknown"
	}
}

// Stats holds monitor counters.
type Stats struct {
	Records     int    // Total records, live and tombstoned
	Live        int    // Records with Allocated == true
	Collisions  uint64 // Register calls that hit a live record
	Traces      uint64 // Stores that created a record (out-of-bounds writes)
	Untracked   uint64 // Stores dropped because the limit was reached
	Mismatches  uint64 // CheckRead calls that returned false
	Reactivated uint64 // Register calls that revived a tombstone
}

// Monitor is the allocation-state table.
type Monitor struct {
	mu      sync.RWMutex
	records map[Key]*Record
	limit   int // 0 = unlimited
	live    int
	stats   Stats
	log     *slog.Logger
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithLimit caps the number of records. Zero means unlimited.
func WithLimit(n int) Option {
	return func(m *Monitor) { m.limit = n }
}

// WithLogger sets the logger for collisions and out-of-bounds traces.
func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) {
		if l != nil {
			m.log = l
		}
	}
}

// New returns an empty Monitor.
func New(opts ...Option) *Monitor {
	m := &Monitor{
		records: make(map[Key]*Record),
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CanRegister reports whether n more records fit under the limit, assuming
// none of them already exists.
func (m *Monitor) CanRegister(n int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.limit == 0 || len(m.records)+n <= m.limit
}

// Register records that ca is allocated under pk. An existing tombstone is
// reactivated in place with the given state and data key. A live record is
// never duplicated: it is marked Garbled and reported as Collided.
func (m *Monitor) Register(ca address.CA, pk uint32, state State, dk uint32) (Record, Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := Key{CA: ca, PointerKey: pk}
	r, ok := m.records[k]
	switch {
	case !ok:
		if m.limit > 0 && len(m.records) >= m.limit {
			return Record{}, Created, ErrLimit
		}
		r = &Record{CA: ca, PointerKey: pk, DataKey: dk, State: state, Allocated: true}
		m.records[k] = r
		m.live++
		return *r, Created, nil

	case r.Allocated:
		r.State = Garbled
		m.stats.Collisions++
		m.log.Warn("monitor: register collided with live record",
			"ca", ca.String(),
			"data_key", r.DataKey,
		)
		return *r, Collided, nil

	default:
		r.Allocated = true
		r.State = state
		r.DataKey = dk
		m.live++
		m.stats.Reactivated++
		return *r, Reactivated, nil
	}
}

// Store records a write through (ca, pk) with data key dk. A write to an
// unregistered byte still succeeds and leaves a Garbled, unallocated record
// behind; found reports whether a record already existed.
func (m *Monitor) Store(ca address.CA, pk, dk uint32) (rec Record, found bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := Key{CA: ca, PointerKey: pk}
	r, ok := m.records[k]
	if ok {
		r.State = Encrypted
		r.DataKey = dk
		return *r, true
	}

	trace := Record{CA: ca, PointerKey: pk, DataKey: dk, State: Garbled}
	if m.limit > 0 && len(m.records) >= m.limit {
		m.stats.Untracked++
		return trace, false
	}
	m.records[k] = &trace
	m.stats.Traces++
	m.log.Debug("monitor: out-of-bounds store traced", "ca", ca.String())
	return trace, false
}

// CheckRead reports whether the byte at (ca, pk) was last written with dk.
// A missing record is a *LookupError wrapping ErrNoRecord.
func (m *Monitor) CheckRead(ca address.CA, pk, dk uint32) (bool, error) {
	m.mu.RLock()
	r, ok := m.records[Key{CA: ca, PointerKey: pk}]
	var match bool
	if ok {
		match = r.DataKey == dk
	}
	m.mu.RUnlock()

	if !ok {
		return false, &LookupError{CA: ca, PointerKey: pk}
	}
	if !match {
		m.mu.Lock()
		m.stats.Mismatches++
		m.mu.Unlock()
	}
	return match, nil
}

// Free marks the record at (ca, pk) unallocated. Its data key and state are
// kept so that a stale capability later mismatches against a new owner.
func (m *Monitor) Free(ca address.CA, pk uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.records[Key{CA: ca, PointerKey: pk}]
	if !ok {
		return &LookupError{CA: ca, PointerKey: pk}
	}
	if r.Allocated {
		r.Allocated = false
		m.live--
	}
	return nil
}

// Garble forces the record at (ca, pk) into the Garbled state, as when the
// byte is re-encrypted behind its owner's back. The next Store makes it
// Encrypted again.
func (m *Monitor) Garble(ca address.CA, pk uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.records[Key{CA: ca, PointerKey: pk}]
	if !ok {
		return &LookupError{CA: ca, PointerKey: pk}
	}
	r.State = Garbled
	return nil
}

// Lookup returns a copy of the record at (ca, pk).
func (m *Monitor) Lookup(ca address.CA, pk uint32) (Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.records[Key{CA: ca, PointerKey: pk}]
	if !ok {
		return Record{}, false
	}
	return *r, true
}

// Len returns the number of records, live or not.
func (m *Monitor) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Live returns the number of allocated records.
func (m *Monitor) Live() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.live
}

// Stats returns a snapshot of the monitor counters.
func (m *Monitor) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.stats
	s.Records = len(m.records)
	s.Live = m.live
	return s
}

// Snapshot returns copies of all records ordered by CA, then pointer key.
func (m *Monitor) Snapshot() []Record {
	m.mu.RLock()
	out := make([]Record, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, *r)
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b Record) int {
		switch {
		case a.CA < b.CA:
			return -1
		case a.CA > b.CA:
			return 1
		case a.PointerKey < b.PointerKey:
			return -1
		case a.PointerKey > b.PointerKey:
			return 1
		}
		return 0
	})
	return out
}
