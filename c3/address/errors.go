package address

import "errors"

var (
	// ErrZeroSize indicates an allocation of zero bytes.
	ErrZeroSize = errors.New("address: size must be at least 1")

	// ErrAddressOverflow indicates base+size wraps past the top of the address space.
	ErrAddressOverflow = errors.New("address: base+size overflows the address space")

	// ErrSizeClassOverflow indicates the allocation needs a power above the maximum.
	ErrSizeClassOverflow = errors.New("address: size class exceeds maximum power")

	// ErrUnrepresentable indicates a base with plain bits 62..48 set; no CA field carries them.
	ErrUnrepresentable = errors.New("address: base not representable as a capability address")

	// ErrSliceSpaceExhausted indicates no free random slice was found within the retry budget.
	ErrSliceSpaceExhausted = errors.New("address: random slice space exhausted")
)
