// Package monitor tracks the allocation state of every byte reachable through
// a capability address.
//
// # Overview
//
// The monitor is a table keyed by (capability address, pointer key). Each
// entry is a Record holding the data key that last wrote the byte, an
// encryption State and an Allocated flag. The two axes are independent:
//
//	State:     Uninitialized -> Encrypted <-> Garbled
//	Allocated: true <-> false
//
// Records are created by Register (allocation) and by Store when a write
// lands on a byte nobody registered (an out-of-bounds trace). Free flips
// Allocated to false and leaves the rest untouched, so the record survives
// as a tombstone. Records are never deleted; the table is bounded by the
// limit passed to New.
//
// # Detecting violations
//
// CheckRead answers whether a read through (ca, pointer key) with a given
// data key sees the key the byte was last written with. A mismatch is not an
// error: it is the signal the model exists to produce. A missing record is a
// LookupError.
//
// # Thread Safety
//
// Monitor is safe for concurrent use. Each operation is a single critical
// section; callers that need several operations to be atomic (an allocation
// registering many bytes) hold their own lock around them.
package monitor
