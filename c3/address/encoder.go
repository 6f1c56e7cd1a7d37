package address

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"

	"github.com/joshuapare/c3kit/c3/codec"
	"github.com/joshuapare/c3kit/internal/format"
)

// DefaultMaxRetries bounds random slice draws per allocation. With 2^24
// slices the budget is only hit once the space is close to full.
const DefaultMaxRetries = 64

// sliceEntry maps a random slice to the plain bits 46..32 it stands for.
type sliceEntry struct {
	high uint32
	live bool
}

// SliceTable records which random slices are held by live CAs. Encoders
// minting into one address space share a table so no two live CAs draw the
// same slice. Entries are kept after release so stale CAs still resolve
// until the slice is drawn again.
//
// NOT thread-safe. Encoders sharing a table must be serialised by the caller.
type SliceTable struct {
	entries map[uint32]*sliceEntry
	live    int
}

// NewSliceTable returns an empty table.
func NewSliceTable() *SliceTable {
	return &SliceTable{entries: make(map[uint32]*sliceEntry)}
}

// Live returns the number of slices currently held.
func (t *SliceTable) Live() int {
	return t.live
}

func (t *SliceTable) full() bool {
	return t.live >= format.SliceMask+1
}

// Encoder mints capability addresses and resolves them back to plain
// addresses.
type Encoder struct {
	cipher     codec.Cipher
	mode       Mode
	rng        *rand.Rand
	maxRetries int

	slices *SliceTable
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithMode selects cipher-derived or random slices.
func WithMode(m Mode) Option {
	return func(e *Encoder) { e.mode = m }
}

// WithRand sets the randomness source for random slices.
func WithRand(r *rand.Rand) Option {
	return func(e *Encoder) { e.rng = r }
}

// WithSeed seeds a deterministic ChaCha8 source for random slices.
func WithSeed(seed uint64) Option {
	return func(e *Encoder) {
		var s [32]byte
		binary.LittleEndian.PutUint64(s[:], seed)
		e.rng = rand.New(rand.NewChaCha8(s))
	}
}

// WithSlices shares t with other encoders over the same address space.
func WithSlices(t *SliceTable) Option {
	return func(e *Encoder) {
		if t != nil {
			e.slices = t
		}
	}
}

// WithMaxRetries bounds the number of random slice draws per allocation.
func WithMaxRetries(n int) Option {
	return func(e *Encoder) {
		if n > 0 {
			e.maxRetries = n
		}
	}
}

// NewEncoder returns an Encoder that encrypts slices with c.
func NewEncoder(c codec.Cipher, opts ...Option) *Encoder {
	e := &Encoder{
		cipher:     c,
		mode:       ModeCipher,
		maxRetries: DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.slices == nil {
		e.slices = NewSliceTable()
	}
	if e.rng == nil {
		var seed [32]byte
		_, _ = crand.Read(seed[:])
		e.rng = rand.New(rand.NewChaCha8(seed))
	}
	return e
}

// Mode returns the slice mode.
func (e *Encoder) Mode() Mode {
	return e.mode
}

// LiveSlices returns the number of random slices currently held by live CAs
// of every encoder sharing the table.
func (e *Encoder) LiveSlices() int {
	return e.slices.Live()
}

// Check validates (base, size) and returns the power without minting
// anything.
func (e *Encoder) Check(base, size uint64) (uint, error) {
	if !Representable(base) {
		return 0, ErrUnrepresentable
	}
	p, err := Power(base, size)
	if err != nil {
		return 0, err
	}
	if e.mode == ModeRandom && e.slices.full() {
		return 0, ErrSliceSpaceExhausted
	}
	return p, nil
}

// Encode mints the CA for an allocation of size bytes at base.
func (e *Encoder) Encode(base, size uint64) (CA, error) {
	p, err := e.Check(base, size)
	if err != nil {
		return 0, err
	}

	upper := uint32(codec.Slice(base, format.PlainHighHi, format.PlainHighLo))

	var slice uint32
	switch e.mode {
	case ModeRandom:
		slice, err = e.draw(upper)
		if err != nil {
			return 0, err
		}
	default:
		slice = e.cipher.Encrypt(upper, tweakFor(base, p))
	}

	return Pack(Fields{
		Sign:   codec.Bit(base, format.SignBit),
		Power:  p,
		Slice:  slice,
		SPrime: codec.Bit(base, format.SPrimeBit),
		Low:    uint32(base & format.PlainLowMask),
	}), nil
}

// Decode inverts the cipher path of Encode. It performs no safety checks;
// a CA minted in random mode decodes to an unrelated address.
func (e *Encoder) Decode(ca CA) uint64 {
	high := e.cipher.Decrypt(ca.Slice(), tweakFor(uint64(ca), ca.Power())) & format.LowerSliceMask
	return assemble(ca, high)
}

// Resolve returns the plain address ca refers to under the encoder's mode.
// In random mode an unknown slice resolves with zero upper bits.
func (e *Encoder) Resolve(ca CA) uint64 {
	if e.mode != ModeRandom {
		return e.Decode(ca)
	}
	var high uint32
	if ent, ok := e.slices.entries[ca.Slice()]; ok {
		high = ent.high
	}
	return assemble(ca, high)
}

// Release returns the random slice of ca to the pool. The mapping stays
// until the slice is drawn again. No-op in cipher mode.
func (e *Encoder) Release(ca CA) {
	if e.mode != ModeRandom {
		return
	}
	if ent, ok := e.slices.entries[ca.Slice()]; ok && ent.live {
		ent.live = false
		e.slices.live--
	}
}

// Advance returns the CA of the byte off bytes past ca.
//
// The common case is plain addition on the low word. When the sum carries
// out of bit 31 (only possible for power 33 or past the end of a window),
// cipher mode re-encodes the carried address under the same power; random
// mode has no slice for the carried address and lets the carry run into the
// slice the way hardware pointer arithmetic would.
func (e *Encoder) Advance(ca CA, off uint64) CA {
	low := uint64(ca.Low()) + off
	if low <= format.PlainLowMask {
		return CA(uint64(ca)&^format.PlainLowMask | low)
	}
	if e.mode == ModeRandom {
		return ca + CA(off)
	}

	plain := e.Decode(ca) + off
	p := ca.Power()
	upper := uint32(codec.Slice(plain, format.PlainHighHi, format.PlainHighLo))
	return Pack(Fields{
		Sign:   codec.Bit(plain, format.SignBit),
		Power:  p,
		Slice:  e.cipher.Encrypt(upper, tweakFor(plain, p)),
		SPrime: codec.Bit(plain, format.SPrimeBit),
		Low:    uint32(plain & format.PlainLowMask),
	})
}

func (e *Encoder) draw(high uint32) (uint32, error) {
	for range e.maxRetries {
		s := uint32(e.rng.Uint64() & format.SliceMask)
		ent, ok := e.slices.entries[s]
		if ok && ent.live {
			continue
		}
		if !ok {
			ent = &sliceEntry{}
			e.slices.entries[s] = ent
		}
		ent.high = high
		ent.live = true
		e.slices.live++
		return s, nil
	}
	return 0, ErrSliceSpaceExhausted
}

// tweakFor derives the tweak for addr under power p. addr may be a plain
// address or a CA; only bits 31..p are read.
func tweakFor(addr uint64, p uint) uint32 {
	return codec.Tweak(codec.TweakInput(p, codec.FixedAddr(addr, p)))
}

func assemble(ca CA, high uint32) uint64 {
	return ca.Sign()<<format.SignBit |
		ca.SPrime()<<format.SPrimeBit |
		uint64(high&format.LowerSliceMask)<<format.PlainHighLo |
		uint64(ca.Low())
}
