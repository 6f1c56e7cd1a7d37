package alloc

import "errors"

var (
	// ErrNoSpace indicates no free range large enough was found.
	ErrNoSpace = errors.New("alloc: address space exhausted")

	// ErrBadBase indicates Free was given a base that is not a live allocation.
	ErrBadBase = errors.New("alloc: bad base address")

	// ErrZeroSize indicates a request for zero bytes.
	ErrZeroSize = errors.New("alloc: size must be at least 1")
)
