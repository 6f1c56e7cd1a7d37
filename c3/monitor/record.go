package monitor

import (
	"fmt"

	"github.com/joshuapare/c3kit/c3/address"
)

// State is the encryption status of a tracked byte.
type State uint8

const (
	// Uninitialized bytes have been registered but never written.
	Uninitialized State = iota
	// Encrypted bytes were last written through their own capability.
	Encrypted
	// Garbled bytes were overwritten by a colliding allocation or reached by
	// an out-of-bounds store.
	Garbled
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Encrypted:
		return "encrypted"
	case Garbled:
		return "garbled"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Key identifies a record.
type Key struct {
	CA         address.CA
	PointerKey uint32
}

// Record is the tracked state of one byte.
type Record struct {
	CA         address.CA
	PointerKey uint32
	DataKey    uint32
	State      State
	Allocated  bool
}
