// Package keys holds the pointer and data keys of a capability model.
//
// The two keys are distinct types so that one cannot be passed where the
// other is expected. A Ring keeps them in a frozen memguard buffer (mlocked,
// guarded, read-only) when the process mlock limit allows it and falls back
// to ordinary memory otherwise.
package keys

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/awnumar/memguard"

	"github.com/joshuapare/c3kit/internal/format"
)

// PointerKey secures the address-encryption channel.
type PointerKey uint32

// DataKey secures the byte-content channel.
type DataKey uint32

var (
	// ErrZeroKey indicates a key of zero. A zero data key is what unwritten
	// records carry, so it cannot be a writer's key.
	ErrZeroKey = errors.New("keys: key must be nonzero")

	// ErrKeyRange indicates a key wider than 24 bits.
	ErrKeyRange = errors.New("keys: key exceeds 24 bits")

	// ErrDestroyed indicates use of a Ring after Destroy.
	ErrDestroyed = errors.New("keys: ring destroyed")
)

// Pair is a pointer key and a data key.
type Pair struct {
	Pointer PointerKey
	Data    DataKey
}

// Validate checks that both keys are nonzero 24-bit values.
func (p Pair) Validate() error {
	checks := []struct {
		name string
		key  uint32
	}{
		{"pointer", uint32(p.Pointer)},
		{"data", uint32(p.Data)},
	}
	for _, c := range checks {
		if c.key == 0 {
			return fmt.Errorf("%s: %w", c.name, ErrZeroKey)
		}
		if c.key > format.KeyMask {
			return fmt.Errorf("%s %#x: %w", c.name, c.key, ErrKeyRange)
		}
	}
	return nil
}

// Generate draws a random nonzero key pair.
func Generate() (Pair, error) {
	var p Pair
	for p.Pointer == 0 || p.Data == 0 {
		raw, err := randomBytes(8)
		if err != nil {
			return Pair{}, err
		}
		if p.Pointer == 0 {
			p.Pointer = PointerKey(binary.LittleEndian.Uint32(raw[0:4]) & format.KeyMask)
		}
		if p.Data == 0 {
			p.Data = DataKey(binary.LittleEndian.Uint32(raw[4:8]) & format.KeyMask)
		}
	}
	return p, nil
}

func randomBytes(n int) ([]byte, error) {
	if SecureMemoryAvailable() {
		lb := memguard.NewBufferRandom(n)
		defer lb.Destroy()
		return append([]byte(nil), lb.Bytes()...), nil
	}
	out := make([]byte, n)
	if _, err := crand.Read(out); err != nil {
		return nil, fmt.Errorf("keys: random: %w", err)
	}
	return out, nil
}

// Ring holds a Pair for the lifetime of a model.
type Ring struct {
	mu     sync.RWMutex
	buf    *memguard.LockedBuffer // nil when not secure
	plain  [2]uint32
	secure bool
	dead   bool
}

// NewRing stores p. With secure set and enough mlock headroom the keys live
// in a frozen memguard buffer; otherwise in ordinary memory, with a warning.
func NewRing(p Pair, secure bool, log *slog.Logger) (*Ring, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	r := &Ring{}
	if secure && SecureMemoryAvailable() {
		raw := make([]byte, 8)
		binary.LittleEndian.PutUint32(raw[0:4], uint32(p.Pointer))
		binary.LittleEndian.PutUint32(raw[4:8], uint32(p.Data))
		r.buf = memguard.NewBufferFromBytes(raw) // wipes raw
		r.buf.Freeze()
		r.secure = true
		return r, nil
	}
	if secure {
		log.Warn("keys: mlock limit insufficient, holding keys in ordinary memory",
			"mlock_limit_kb", mlockLimitKB(),
			"required_kb", minMlockKB,
		)
	}
	r.plain = [2]uint32{uint32(p.Pointer), uint32(p.Data)}
	return r, nil
}

// Secure reports whether the keys are held in locked memory.
func (r *Ring) Secure() bool {
	return r.secure
}

// Pointer returns the pointer key. It returns 0 after Destroy.
func (r *Ring) Pointer() PointerKey {
	return PointerKey(r.word(0))
}

// Data returns the data key. It returns 0 after Destroy.
func (r *Ring) Data() DataKey {
	return DataKey(r.word(1))
}

// Alive reports whether Destroy has not been called.
func (r *Ring) Alive() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.dead
}

// Destroy wipes the keys.
func (r *Ring) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dead {
		return
	}
	if r.buf != nil {
		r.buf.Destroy()
	}
	r.plain = [2]uint32{}
	r.dead = true
}

func (r *Ring) word(i int) uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.dead {
		return 0
	}
	if r.buf != nil {
		return binary.LittleEndian.Uint32(r.buf.Bytes()[i*4 : i*4+4])
	}
	return r.plain[i]
}
