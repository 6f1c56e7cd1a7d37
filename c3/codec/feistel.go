package codec

import (
	"crypto/sha256"
	"encoding/binary"
	"math/bits"

	"github.com/joshuapare/c3kit/internal/format"
)

const (
	feistelRounds = 4
	halfBits      = format.SliceBits / 2
	halfMask      = (1 << halfBits) - 1
)

// Feistel is a balanced Feistel network over two 12-bit halves.
type Feistel struct {
	keys [feistelRounds]uint32
}

// NewFeistel derives the round keys for a 24-bit key.
func NewFeistel(key uint32) *Feistel {
	var seed [4]byte
	binary.LittleEndian.PutUint32(seed[:], key&format.KeyMask)

	f := &Feistel{}
	for i := range feistelRounds {
		h := sha256.New()
		h.Write(seed[:])
		h.Write([]byte{byte(i)})
		sum := h.Sum(nil)
		f.keys[i] = binary.LittleEndian.Uint32(sum[:4])
	}
	return f
}

func (f *Feistel) Encrypt(plain, tweak uint32) uint32 {
	left := (plain >> halfBits) & halfMask
	right := plain & halfMask
	for i := range feistelRounds {
		left, right = right, left^f.round(right, tweak, f.keys[i])
	}
	return left<<halfBits | right
}

func (f *Feistel) Decrypt(ciphertext, tweak uint32) uint32 {
	left := (ciphertext >> halfBits) & halfMask
	right := ciphertext & halfMask
	for i := feistelRounds - 1; i >= 0; i-- {
		left, right = right^f.round(left, tweak, f.keys[i]), left
	}
	return left<<halfBits | right
}

func (f *Feistel) round(half, tweak, key uint32) uint32 {
	x := half ^ (tweak & format.TweakMask)
	x += key*0x9e3779b1 + 0x7f4a7c15
	x = bits.RotateLeft32(x^key, int(key&31))
	x ^= x >> 16
	x ^= x >> 12
	return x & halfMask
}
