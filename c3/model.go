package c3

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/joshuapare/c3kit/c3/address"
	"github.com/joshuapare/c3kit/c3/alloc"
	"github.com/joshuapare/c3kit/c3/keys"
	"github.com/joshuapare/c3kit/c3/keystream"
	"github.com/joshuapare/c3kit/c3/memory"
	"github.com/joshuapare/c3kit/c3/monitor"
	"github.com/joshuapare/c3kit/internal/format"
)

// space is the state shared by every key domain created from one New call.
type space struct {
	mu sync.Mutex

	id      uuid.UUID
	cfg     Config
	alloc   alloc.Allocator
	mon     *monitor.Monitor
	slices  *address.SliceTable
	dirty   *memory.Tracker
	mem     *memory.Store
	log     *slog.Logger
	domains int
}

type allocation struct {
	base uint64
	size uint64
}

// Model is one key domain over a shared address space.
type Model struct {
	id   uuid.UUID
	sp   *space
	ring *keys.Ring
	enc  *address.Encoder
	log  *slog.Logger

	live map[address.CA]allocation
}

// Option configures New.
type Option func(*options)

type options struct {
	log *slog.Logger
}

// WithLogger sets the logger. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// New creates a space from cfg and returns its first key domain.
func New(cfg Config, opts ...Option) (*Model, error) {
	o := options{log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a, err := alloc.New(alloc.Kind(cfg.Allocator), cfg.AddressLow, cfg.AddressHigh)
	if err != nil {
		return nil, fmt.Errorf("c3: %w", err)
	}

	sp := &space{
		id:     uuid.New(),
		cfg:    cfg,
		alloc:  a,
		slices: address.NewSliceTable(),
		dirty:  memory.NewTracker(),
	}
	sp.log = o.log.With("space", sp.id.String())
	sp.mon = monitor.New(
		monitor.WithLimit(cfg.MaxTrackedBytes),
		monitor.WithLogger(sp.log),
	)
	sp.mem = memory.NewStore(sp.dirty)

	p, err := cfg.keyPair()
	if err != nil {
		return nil, err
	}
	m, err := sp.newDomain(p)
	if err != nil {
		return nil, err
	}
	sp.log.Info("c3: space created",
		"mode", cfg.mode().String(),
		"cipher", cfg.Cipher,
		"allocator", cfg.Allocator,
		"secure_keys", m.ring.Secure(),
	)
	return m, nil
}

func (sp *space) newDomain(p keys.Pair) (*Model, error) {
	ring, err := keys.NewRing(p, sp.cfg.SecureKeys, sp.log)
	if err != nil {
		return nil, err
	}

	enc, err := sp.cfg.NewEncoder(p.Pointer, uint64(sp.domains), address.WithSlices(sp.slices))
	if err != nil {
		ring.Destroy()
		return nil, err
	}
	sp.domains++

	id := uuid.New()
	return &Model{
		id:   id,
		sp:   sp,
		ring: ring,
		enc:  enc,
		log:  sp.log.With("domain", id.String()),
		live: make(map[address.CA]allocation),
	}, nil
}

// Sibling returns another key domain over the same allocator, monitor and
// backing store. Zero keys are drawn at random.
func (m *Model) Sibling(p keys.Pair) (*Model, error) {
	m.sp.mu.Lock()
	defer m.sp.mu.Unlock()
	if !m.ring.Alive() {
		return nil, ErrClosed
	}

	if p.Pointer == 0 || p.Data == 0 {
		g, err := keys.Generate()
		if err != nil {
			return nil, err
		}
		if p.Pointer == 0 {
			p.Pointer = g.Pointer
		}
		if p.Data == 0 {
			p.Data = g.Data
		}
	}
	return m.sp.newDomain(p)
}

// ID identifies the domain in logs.
func (m *Model) ID() uuid.UUID {
	return m.id
}

// SpaceID identifies the shared space.
func (m *Model) SpaceID() uuid.UUID {
	return m.sp.id
}

// Mode returns the slice mode.
func (m *Model) Mode() address.Mode {
	return m.enc.Mode()
}

// Advance returns the CA off bytes past ca, as pointer arithmetic on the
// capability would.
func (m *Model) Advance(ca address.CA, off uint64) address.CA {
	m.sp.mu.Lock()
	defer m.sp.mu.Unlock()
	return m.enc.Advance(ca, off)
}

// Close wipes the domain's keys. Allocations stay in the shared space.
func (m *Model) Close() error {
	m.sp.mu.Lock()
	defer m.sp.mu.Unlock()
	m.ring.Destroy()
	return nil
}

// Allocate reserves size bytes at the lowest free address of the window.
// See AllocateAt.
func (m *Model) Allocate(size uint64) (address.CA, error) {
	return m.AllocateAt(size, nil)
}

// AllocateAt reserves size bytes at the lowest free address >= *hint (or the
// window start when hint is nil), mints the CA and registers every covered
// byte as Uninitialized. On error nothing has changed.
func (m *Model) AllocateAt(size uint64, hint *uint64) (address.CA, error) {
	m.sp.mu.Lock()
	defer m.sp.mu.Unlock()
	if !m.ring.Alive() {
		return 0, ErrClosed
	}

	low, _ := m.sp.alloc.Bounds()
	h := low
	if hint != nil {
		h = *hint
	}
	reject := func(err error) (address.CA, error) {
		allocationsTotal.WithLabelValues("rejected").Inc()
		m.log.Debug("c3: allocation rejected", "size", size, "hint", h, "error", err)
		return 0, &PreconditionError{Size: size, Hint: h, Err: err}
	}

	switch {
	case size == 0:
		return reject(address.ErrZeroSize)
	case size > 1<<format.MaxPower:
		return reject(address.ErrSizeClassOverflow)
	case size > math.MaxInt || !m.sp.mon.CanRegister(int(size)):
		return reject(ErrBudgetExceeded)
	}

	base, err := m.sp.alloc.Alloc(size, h)
	if err != nil {
		return reject(err)
	}
	ca, err := m.enc.Encode(base, size)
	if err != nil {
		if ferr := m.sp.alloc.Free(base); ferr != nil {
			m.log.Error("c3: release after failed encode", "base", base, "error", ferr)
		}
		return reject(err)
	}

	pk := uint32(m.ring.Pointer())
	var collided int
	for i := range size {
		_, out, err := m.sp.mon.Register(m.enc.Advance(ca, i), pk, monitor.Uninitialized, 0)
		if err != nil {
			// CanRegister ran under the same lock.
			panic(fmt.Sprintf("c3: pre-checked registration rejected: %v", err))
		}
		if out == monitor.Collided {
			collided++
		}
	}
	if collided > 0 {
		monitorCollisions.Add(float64(collided))
		m.log.Warn("c3: allocation collided with live records", "ca", ca.String(), "bytes", collided)
	}

	m.live[ca] = allocation{base: base, size: size}
	allocationsTotal.WithLabelValues("ok").Inc()
	monitorRecords.Set(float64(m.sp.mon.Len()))
	m.log.Debug("c3: allocated", "ca", ca.String(), "size", size, "power", ca.Power())
	return ca, nil
}

// Store writes data starting at ca. Bytes outside any allocation are still
// written and leave a trace record behind.
func (m *Model) Store(ca address.CA, data []byte) error {
	m.sp.mu.Lock()
	defer m.sp.mu.Unlock()
	if !m.ring.Alive() {
		return ErrClosed
	}
	if err := checkWindow(ca, uint64(len(data))); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	pk := uint32(m.ring.Pointer())
	dk := uint32(m.ring.Data())
	ks := keystream.NewStream(dk)
	var traced int
	for i, b := range data {
		bca := m.enc.Advance(ca, uint64(i))
		if _, found := m.sp.mon.Store(bca, pk, dk); !found {
			traced++
		}
		ct, tag := ks.Apply(bca, b)
		m.sp.mem.Write(m.enc.Resolve(bca), ct, tag)
	}
	if traced > 0 {
		m.log.Warn("c3: store outside tracked allocation", "ca", ca.String(), "bytes", traced)
	}

	storesTotal.Inc()
	monitorRecords.Set(float64(m.sp.mon.Len()))
	return nil
}

// Read returns n bytes starting at ca. If any byte's history does not match
// the domain's keys the result is a *Violation and no data.
func (m *Model) Read(ca address.CA, n uint64) ([]byte, error) {
	m.sp.mu.Lock()
	defer m.sp.mu.Unlock()
	if !m.ring.Alive() {
		return nil, ErrClosed
	}
	if err := m.checkRead(ca, n); err != nil {
		return nil, err
	}

	pk := uint32(m.ring.Pointer())
	dk := uint32(m.ring.Data())
	ks := keystream.NewStream(dk)
	out := make([]byte, n)
	var faults []Fault
	for i := range n {
		bca := m.enc.Advance(ca, i)
		if r, ok := m.check(bca, pk, dk); !ok {
			faults = append(faults, Fault{Offset: i, CA: bca, Reason: r})
			continue
		}
		ct, tag, written := m.sp.mem.Read(m.enc.Resolve(bca))
		if !written || tag != ks.Word(bca) {
			faults = append(faults, Fault{Offset: i, CA: bca, Reason: ReasonGarbled})
			continue
		}
		out[i], _ = ks.Apply(bca, ct)
	}

	if len(faults) > 0 {
		v := &Violation{CA: ca, Length: n, Faults: faults}
		readsTotal.WithLabelValues("violation").Inc()
		for r, c := range v.Counts() {
			violationsTotal.WithLabelValues(r.String()).Add(float64(c))
		}
		m.log.Warn("c3: read violation",
			"ca", ca.String(),
			"length", n,
			"faults", len(faults),
			"first_offset", v.First().Offset,
			"first_reason", v.First().Reason.String(),
		)
		return nil, v
	}
	readsTotal.WithLabelValues("ok").Inc()
	return out, nil
}

func (m *Model) check(bca address.CA, pk, dk uint32) (Reason, bool) {
	match, err := m.sp.mon.CheckRead(bca, pk, dk)
	if err != nil {
		return ReasonNoRecord, false
	}
	if !match {
		return ReasonKeyMismatch, false
	}
	if m.sp.cfg.StrictFree {
		if rec, _ := m.sp.mon.Lookup(bca, pk); !rec.Allocated {
			return ReasonFreed, false
		}
	}
	return 0, true
}

// Free releases the allocation whose base CA is ca. The monitor keeps
// tombstones for every covered byte.
func (m *Model) Free(ca address.CA) error {
	m.sp.mu.Lock()
	defer m.sp.mu.Unlock()
	if !m.ring.Alive() {
		return ErrClosed
	}

	a, ok := m.live[ca]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidFree, ca)
	}

	pk := uint32(m.ring.Pointer())
	for i := range a.size {
		if err := m.sp.mon.Free(m.enc.Advance(ca, i), pk); err != nil {
			panic(fmt.Sprintf("c3: record of live allocation missing: %v", err))
		}
	}
	if err := m.sp.alloc.Free(a.base); err != nil {
		return fmt.Errorf("c3: free %s: %w", ca, err)
	}
	m.enc.Release(ca)
	delete(m.live, ca)

	freesTotal.Inc()
	m.log.Debug("c3: freed", "ca", ca.String(), "size", a.size)
	return nil
}

// Ciphertext returns the raw stored bytes of [ca, ca+n) as resolved by this
// domain, without any monitor check. Bytes never written read as zero.
func (m *Model) Ciphertext(ca address.CA, n uint64) ([]byte, error) {
	m.sp.mu.Lock()
	defer m.sp.mu.Unlock()
	if !m.ring.Alive() {
		return nil, ErrClosed
	}
	if err := m.checkRead(ca, n); err != nil {
		return nil, err
	}
	return m.sp.mem.Peek(m.enc.Resolve(ca), int(n)), nil
}

// checkRead applies checkWindow and caps n at the tracked-byte budget, which
// no allocation can exceed.
func (m *Model) checkRead(ca address.CA, n uint64) error {
	if err := checkWindow(ca, n); err != nil {
		return err
	}
	if limit := m.sp.cfg.MaxTrackedBytes; limit > 0 && n > uint64(limit) {
		return fmt.Errorf("%w: read of %d bytes exceeds %d tracked bytes", ErrBudgetExceeded, n, limit)
	}
	return nil
}

// checkWindow rejects CAs whose power no encoder mints and accesses of
// 2^power bytes or more.
func checkWindow(ca address.CA, n uint64) error {
	p := ca.Power()
	if p < format.MinPower || p > format.MaxPower {
		return fmt.Errorf("%w: power %d outside [%d, %d]", ErrSizeClassExceeded, p, format.MinPower, format.MaxPower)
	}
	if n >= uint64(1)<<p {
		return fmt.Errorf("%w: %d bytes at power %d", ErrSizeClassExceeded, n, p)
	}
	return nil
}
