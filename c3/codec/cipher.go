package codec

import (
	"fmt"

	"github.com/joshuapare/c3kit/internal/format"
)

// Cipher names accepted by New.
const (
	NameXOR     = "xor"
	NameFeistel = "feistel"
)

// Cipher is a keyed, tweakable permutation over 24-bit values.
//
// Implementations:
//   - XOR: reference placeholder, value ^ key ^ tweak
//   - Feistel: 4-round Feistel network
//
// Encrypt and Decrypt only look at the low 24 bits of their inputs and return
// values below 2^24.
type Cipher interface {
	Encrypt(plain, tweak uint32) uint32
	Decrypt(ciphertext, tweak uint32) uint32
}

// Combine is the reference keyed transform: value ^ key ^ tweak over 24 bits.
func Combine(value, key, tweak uint32) uint32 {
	return (value ^ key ^ tweak) & format.SliceMask
}

// InverseCombine undoes Combine. XOR is self-inverse, so this is Combine.
func InverseCombine(value, key, tweak uint32) uint32 {
	return Combine(value, key, tweak)
}

// XOR is the reference cipher keyed by a 24-bit pointer key.
type XOR struct {
	key uint32
}

// NewXOR returns the reference cipher for key.
func NewXOR(key uint32) XOR {
	return XOR{key: key & format.KeyMask}
}

func (c XOR) Encrypt(plain, tweak uint32) uint32 {
	return Combine(plain, c.key, tweak)
}

func (c XOR) Decrypt(ciphertext, tweak uint32) uint32 {
	return InverseCombine(ciphertext, c.key, tweak)
}

// New returns the cipher called name keyed by key. An empty name is XOR.
func New(name string, key uint32) (Cipher, error) {
	switch name {
	case "", NameXOR:
		return NewXOR(key), nil
	case NameFeistel:
		return NewFeistel(key), nil
	default:
		return nil, fmt.Errorf("codec: unknown cipher %q", name)
	}
}

// Compile-time interface checks
var (
	_ Cipher = XOR{}
	_ Cipher = (*Feistel)(nil)
)
