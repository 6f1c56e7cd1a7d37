// Package memory is the backing byte store behind capability addresses.
//
// Store holds ciphertext in sparse 4 KiB pages keyed by plain address. Next
// to every byte it keeps the keystream word the byte was written with, its
// provenance: a reader whose own keystream word differs would decrypt the
// byte to garbage, and the model reports that instead of returning it.
//
// Tracker accumulates written ranges and coalesces them into page-aligned,
// non-overlapping ranges on demand, so a driver can dump exactly the memory
// a run has touched.
package memory
