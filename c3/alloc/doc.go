// Package alloc hands out plain base addresses for the capability model.
//
// # Overview
//
// The capability layer never invents addresses itself. It asks an Allocator
// for a base, encodes that base into a capability address, and gives the
// range back on free. Two implementations are provided:
//
// FirstFit: sorted span list
//
//   - Lowest base at or above the hint that fits
//   - Freed ranges are reused, which is what makes use-after-free reachable
//   - O(n) in the number of live spans
//
// Bump: append-only pointer
//
//   - O(1) allocation
//   - Free forgets the span but never reuses the range
//
// # Address Space
//
// Both allocators work inside [low, high). The default is the canonical lower
// half, [0, 1<<47), so every base they return is representable as a
// capability address.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Callers must synchronize access
// externally; c3.Model holds its space mutex around every call.
package alloc
