package c3

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joshuapare/c3kit/c3/address"
)

var (
	// ErrSizeClassExceeded indicates a payload of 2^power bytes or more.
	ErrSizeClassExceeded = errors.New("c3: payload exceeds size class")

	// ErrInvalidFree indicates Free of a CA that is not a live allocation base.
	ErrInvalidFree = errors.New("c3: not a live allocation")

	// ErrBudgetExceeded indicates the allocation would track more bytes than
	// the configured budget.
	ErrBudgetExceeded = errors.New("c3: tracked-byte budget exceeded")

	// ErrClosed indicates use of a Model after Close.
	ErrClosed = errors.New("c3: model closed")
)

// PreconditionError reports an allocation rejected before any state was
// mutated.
type PreconditionError struct {
	Size uint64
	Hint uint64
	Err  error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("c3: allocate %d bytes at hint %#x: %v", e.Size, e.Hint, e.Err)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// Reason says why a byte failed its read check.
type Reason uint8

const (
	// ReasonNoRecord: nothing was ever registered or stored at (CA, pointer key).
	ReasonNoRecord Reason = iota
	// ReasonKeyMismatch: the record's data key differs from the reader's.
	ReasonKeyMismatch
	// ReasonGarbled: the backing byte was last written under another
	// keystream, so decrypting it would produce garbage.
	ReasonGarbled
	// ReasonFreed: the record is a tombstone (only with Config.StrictFree).
	ReasonFreed
)

func (r Reason) String() string {
	switch r {
	case ReasonNoRecord:
		return "no_record"
	case ReasonKeyMismatch:
		return "key_mismatch"
	case ReasonGarbled:
		return "garbled"
	case ReasonFreed:
		return "freed"
	default:
		return fmt.Sprintf("Reason(%d)", uint8(r))
	}
}

// Fault is one byte that failed its read check.
type Fault struct {
	Offset uint64
	CA     address.CA
	Reason Reason
}

// Violation is the result of a read that touched at least one byte whose
// history does not match the reader's keys.
type Violation struct {
	CA     address.CA
	Length uint64
	Faults []Fault
}

func (v *Violation) Error() string {
	counts := v.Counts()
	parts := make([]string, 0, len(counts))
	for _, r := range []Reason{ReasonNoRecord, ReasonKeyMismatch, ReasonGarbled, ReasonFreed} {
		if n := counts[r]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", r, n))
		}
	}
	return fmt.Sprintf("c3: confidentiality violation reading %d bytes at %s: %d/%d bytes failed (%s)",
		v.Length, v.CA, len(v.Faults), v.Length, strings.Join(parts, " "))
}

// Counts returns the number of faults per reason.
func (v *Violation) Counts() map[Reason]int {
	out := make(map[Reason]int, 4)
	for _, f := range v.Faults {
		out[f.Reason]++
	}
	return out
}

// First returns the lowest faulting offset.
func (v *Violation) First() Fault {
	if len(v.Faults) == 0 {
		return Fault{}
	}
	return v.Faults[0]
}

// IsViolation reports whether err is or wraps a *Violation.
func IsViolation(err error) bool {
	var v *Violation
	return errors.As(err, &v)
}
