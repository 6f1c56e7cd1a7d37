// Package codec provides the stateless bit-field primitives that capability
// addresses are built from.
//
// # Overview
//
// Everything here is a pure function over unsigned 64-bit integers:
//
//   - Slice(x, hi, lo): bits [lo, hi] of x as the low bits of the result
//   - Tweak(field): folds a 38-bit field into a 24-bit tweak
//   - Cipher: a keyed, tweakable 24-bit permutation (Encrypt/Decrypt)
//
// # Ciphers
//
// XOR is the reference transform, value ^ key ^ tweak. It is its own
// inverse and offers no security; it exists so that encoded addresses can be
// checked by hand.
//
// Feistel is a 4-round balanced Feistel network over two 12-bit halves with
// round keys derived from the key by SHA-256. It is still not a vetted
// cipher, but it is a real permutation whose output does not leak the key
// by a single XOR.
//
// Both satisfy Decrypt(Encrypt(p, t), t) == p for every 24-bit p and t.
package codec
