package monitor

import (
	"errors"
	"fmt"

	"github.com/joshuapare/c3kit/c3/address"
)

var (
	// ErrNoRecord indicates no record exists for a (CA, pointer key) pair.
	ErrNoRecord = errors.New("monitor: no record")

	// ErrLimit indicates a new record would exceed the tracked-byte limit.
	ErrLimit = errors.New("monitor: tracked-byte limit reached")
)

// LookupError reports a lookup whose cardinality was not exactly one.
type LookupError struct {
	CA         address.CA
	PointerKey uint32
	Found      int
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("monitor: lookup %s/%06x matched %d records, want 1", e.CA, e.PointerKey, e.Found)
}

// Unwrap lets errors.Is(err, ErrNoRecord) match an empty lookup.
func (e *LookupError) Unwrap() error {
	if e.Found == 0 {
		return ErrNoRecord
	}
	return nil
}
