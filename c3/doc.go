// Package c3 models capability-style pointer encoding with a memory-safety
// monitor.
//
// # Overview
//
// A Model hands out capability addresses (CAs) instead of plain addresses.
// Each CA packs the allocation's size class and an encrypted slice of the
// base address; the monitor remembers, for every byte an allocation covers,
// which data key last wrote it. Reading a byte through a capability whose
// keys do not match its history yields a *Violation rather than wrong data.
//
// # Operations
//
//	m, err := c3.New(c3.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer m.Close()
//
//	ca, err := m.Allocate(12888)     // ca.Power() == 14
//	err = m.Store(ca, []byte("AAAA"))
//	data, err := m.Read(ca, 4)       // "AAAA"
//	err = m.Free(ca)
//
//	_, err = m.Read(ca, 4)           // stale capability
//	var v *c3.Violation
//	if errors.As(err, &v) {
//	    // out-of-bounds or use-after-free detected
//	}
//
// # Errors
//
//   - *PreconditionError: the allocation was rejected before any state changed
//     (size class overflow, address space or slice space exhausted, budget)
//   - *Violation: an ordinary result of Read; detecting it is the point
//   - ErrSizeClassExceeded, ErrInvalidFree: misuse of Store, Read or Free
//
// # Key Domains
//
// Keys are fixed for the lifetime of a Model. Sibling creates another Model
// with its own keys over the same address space, monitor and backing store,
// which is how cross-domain confidentiality is exercised.
//
// # Thread Safety
//
// All Models of one space share a mutex; every operation runs under it.
package c3
